// Package socket 实现 UDP socket 的轮询与发送
//
// 每个 Poller 独占一个已绑定的 UDP socket 的接收侧，由一个
// 专属 goroutine 运行"等待就绪-批量排空"循环直到关闭。
// 发送侧无锁：Go 运行时保证 *net.UDPConn 并发读写安全，
// 发送从不与接收等待竞争。
package socket

import (
	"errors"
	"net"
	"sync/atomic"
	"time"

	"golang.org/x/net/ipv4"

	"github.com/dep2p/go-quicwire/internal/core/metrics"
	pkgif "github.com/dep2p/go-quicwire/pkg/interfaces"
	"github.com/dep2p/go-quicwire/pkg/lib/log"
	"github.com/dep2p/go-quicwire/pkg/types"
)

var logger = log.Logger("core/socket")

const (
	// defaultEventCapacity 默认单次批量读取的报文数
	defaultEventCapacity = 64

	// readBufferSize 单个报文的接收缓冲
	//
	// 略大于 MaxDatagramSize，保证超长报文能被完整判定并丢弃。
	readBufferSize = 2048
)

// Options Poller 的可选参数
type Options struct {
	// EventCapacity 单次批量读取的报文数上限（0 取默认值）
	EventCapacity int

	// PollInterval 等待就绪的时间上限（0 表示无限等待）
	PollInterval time.Duration

	// ErrorPolicy 非 would-block 接收错误的处理策略
	ErrorPolicy types.ErrorPolicy

	// Metrics 指标集合（可为 nil）
	Metrics *metrics.Metrics
}

// Poller 单个 UDP socket 的轮询器
type Poller struct {
	udp  *net.UDPConn
	pc   *ipv4.PacketConn
	sink pkgif.EventSink
	opts Options

	msgs []ipv4.Message

	reported atomic.Bool
	closed   atomic.Bool
	done     chan struct{}
}

// Open 绑定地址并启动轮询循环
func Open(bind string, sink pkgif.EventSink, opts Options) (*Poller, error) {
	addr, err := net.ResolveUDPAddr("udp", bind)
	if err != nil {
		return nil, err
	}
	udp, err := net.ListenUDP("udp", addr)
	if err != nil {
		return nil, err
	}

	capacity := opts.EventCapacity
	if capacity <= 0 {
		capacity = defaultEventCapacity
	}
	msgs := make([]ipv4.Message, capacity)
	for i := range msgs {
		msgs[i].Buffers = [][]byte{make([]byte, readBufferSize)}
	}

	p := &Poller{
		udp:  udp,
		pc:   ipv4.NewPacketConn(udp),
		sink: sink,
		opts: opts,
		msgs: msgs,
		done: make(chan struct{}),
	}

	logger.Info("socket 已绑定", "addr", udp.LocalAddr().String())
	go p.loop()
	return p, nil
}

// LocalAddr 返回实际绑定的本地地址
func (p *Poller) LocalAddr() *net.UDPAddr {
	return p.udp.LocalAddr().(*net.UDPAddr)
}

// Send 向对端地址发送一个报文
//
// 非阻塞、尽力而为：失败只以返回值报告，从不升级。
func (p *Poller) Send(peer types.Peer, pkt []byte) bool {
	if p.closed.Load() {
		return false
	}
	if _, err := p.udp.WriteToUDPAddrPort(pkt, peer.AddrPort()); err != nil {
		p.opts.Metrics.SendError()
		return false
	}
	p.opts.Metrics.PacketSent()
	return true
}

// Close 停止轮询循环并关闭 socket
func (p *Poller) Close() error {
	if p.closed.Swap(true) {
		return nil
	}
	err := p.udp.Close()
	<-p.done
	return err
}

// loop 等待就绪后批量排空所有待收报文
//
// 循环在 socket 的整个生命周期内运行；接收错误按策略处理，
// 从不终止循环。
func (p *Poller) loop() {
	defer close(p.done)

	for {
		if p.closed.Load() {
			return
		}

		if p.opts.PollInterval > 0 {
			_ = p.udp.SetReadDeadline(time.Now().Add(p.opts.PollInterval))
		}

		n, err := p.pc.ReadBatch(p.msgs, 0)
		if err != nil {
			if p.closed.Load() {
				return
			}
			var nerr net.Error
			if errors.As(err, &nerr) && nerr.Timeout() {
				continue
			}
			p.reportError(err)
			continue
		}

		for i := 0; i < n; i++ {
			p.dispatch(&p.msgs[i])
		}
	}
}

// dispatch 校验并投递单个入站报文
//
// 短于最小头部长度或超过最大报文长度的报文来自不合规对端，
// 静默丢弃：无通知、无错误。
func (p *Poller) dispatch(msg *ipv4.Message) {
	switch {
	case msg.N < types.MinHeaderLen:
		p.opts.Metrics.PacketDropped(metrics.DropReasonTooShort)
		return
	case msg.N > types.MaxDatagramSize:
		p.opts.Metrics.PacketDropped(metrics.DropReasonTooBig)
		return
	}

	ua, ok := msg.Addr.(*net.UDPAddr)
	if !ok {
		return
	}

	data := make([]byte, msg.N)
	copy(data, msg.Buffers[0][:msg.N])

	p.opts.Metrics.PacketReceived()
	p.opts.Metrics.EventDelivered(types.EventPacket.String())
	p.sink.Deliver(types.Event{
		Kind: types.EventPacket,
		Peer: types.NewPeerFromUDPAddr(ua),
		Data: data,
	})
}

// reportError 按策略处理接收路径故障
func (p *Poller) reportError(err error) {
	switch p.opts.ErrorPolicy {
	case types.ErrorPolicySilent:
		return
	case types.ErrorPolicyReportOnce:
		if p.reported.Swap(true) {
			return
		}
		logger.Warn("接收路径故障", "error", err)
		p.opts.Metrics.EventDelivered(types.EventSocketError.String())
		p.sink.Deliver(types.Event{
			Kind: types.EventSocketError,
			Err:  types.ErrCantReceive,
		})
	}
}
