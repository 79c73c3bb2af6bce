// Package metrics 提供 quicwire 的 prometheus 指标
//
// 指标收集是可选的：未注入 Registerer 时所有方法都是空操作，
// 热路径上只付出一次 nil 判断的代价。
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// 丢弃原因标签值
const (
	// DropReasonTooShort 报文短于最小头部长度
	DropReasonTooShort = "too_short"
	// DropReasonTooBig 报文超过最大报文长度
	DropReasonTooBig = "too_big"
)

// Metrics quicwire 指标集合
//
// 零值（nil）安全：所有方法对 nil 接收者都直接返回。
type Metrics struct {
	packetsReceived prometheus.Counter
	packetsDropped  *prometheus.CounterVec
	packetsSent     prometheus.Counter
	sendErrors      prometheus.Counter
	events          *prometheus.CounterVec
	connsAccepted   prometheus.Counter
}

// New 创建并注册指标集合
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		packetsReceived: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "quicwire",
			Name:      "udp_packets_received_total",
			Help:      "Inbound UDP datagrams accepted by the poller",
		}),
		packetsDropped: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "quicwire",
			Name:      "udp_packets_dropped_total",
			Help:      "Inbound UDP datagrams dropped before routing",
		}, []string{"reason"}),
		packetsSent: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "quicwire",
			Name:      "udp_packets_sent_total",
			Help:      "Outbound UDP datagrams handed to the socket",
		}),
		sendErrors: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "quicwire",
			Name:      "udp_send_errors_total",
			Help:      "Best-effort send failures",
		}),
		events: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "quicwire",
			Name:      "events_delivered_total",
			Help:      "Events delivered to host sinks",
		}, []string{"kind"}),
		connsAccepted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "quicwire",
			Name:      "connections_accepted_total",
			Help:      "Connections created via accept",
		}),
	}
}

// PacketReceived 记录一个被接受的入站报文
func (m *Metrics) PacketReceived() {
	if m == nil {
		return
	}
	m.packetsReceived.Inc()
}

// PacketDropped 记录一个被丢弃的入站报文
func (m *Metrics) PacketDropped(reason string) {
	if m == nil {
		return
	}
	m.packetsDropped.WithLabelValues(reason).Inc()
}

// PacketSent 记录一个出站报文
func (m *Metrics) PacketSent() {
	if m == nil {
		return
	}
	m.packetsSent.Inc()
}

// SendError 记录一次发送失败
func (m *Metrics) SendError() {
	if m == nil {
		return
	}
	m.sendErrors.Inc()
}

// EventDelivered 记录一次事件投递
func (m *Metrics) EventDelivered(kind string) {
	if m == nil {
		return
	}
	m.events.WithLabelValues(kind).Inc()
}

// ConnectionAccepted 记录一次连接接受
func (m *Metrics) ConnectionAccepted() {
	if m == nil {
		return
	}
	m.connsAccepted.Inc()
}
