// Package conn 实现单连接的引擎驱动
//
// 每个 Connection 持有一个外部传输引擎实例和一块 1350 字节的
// 暂存缓冲。所有操作在一把互斥锁下全程串行化：同一连接上的
// 并发调用安全但不交错，事件按程序序发出。
//
// 出站报文不直接发送：内部排空（drain）把引擎的每个待发报文
// 作为 drain 事件交给宿主，由宿主经 Socket 层传输。
// 这一解耦让宿主可以批量发送或在迁移时改道。
package conn

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/dep2p/go-quicwire/internal/core/metrics"
	pkgif "github.com/dep2p/go-quicwire/pkg/interfaces"
	"github.com/dep2p/go-quicwire/pkg/lib/log"
	"github.com/dep2p/go-quicwire/pkg/types"
)

var logger = log.Logger("core/conn")

const (
	// DefaultTimeoutMillis 引擎未报告超时时的默认值
	DefaultTimeoutMillis uint64 = 60000

	// drainFailureCode 排空硬故障时本地强制关闭使用的错误码
	drainFailureCode uint64 = 0x1
)

// drainFailureReason 排空硬故障时的关闭原因
var drainFailureReason = []byte("fail")

// Connection 单个 QUIC 连接的驱动
//
// 宿主持有引用并负责释放；引擎进入终止状态后所有变更操作
// 返回 ErrAlreadyClosed。
type Connection struct {
	mu     sync.Mutex
	engine pkgif.Engine
	sink   pkgif.EventSink
	clk    clock.Clock
	met    *metrics.Metrics

	// deadline 最近一次计算出的空闲超时时刻
	deadline time.Time

	buf [types.MaxDatagramSize]byte
}

// Option Connection 的可选参数
type Option func(*Connection)

// WithClock 注入时钟（测试用）
func WithClock(clk clock.Clock) Option {
	return func(c *Connection) {
		c.clk = clk
	}
}

// WithMetrics 注入指标集合
func WithMetrics(met *metrics.Metrics) Option {
	return func(c *Connection) {
		c.met = met
	}
}

// New 创建连接驱动
func New(engine pkgif.Engine, sink pkgif.EventSink, opts ...Option) *Connection {
	c := &Connection{
		engine: engine,
		sink:   sink,
		clk:    clock.New(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// OnPacket 喂入一个入站报文
//
// 接受后依次执行：流数据投递、数据报投递、出站排空，
// 最后返回下一个空闲超时（毫秒）。
// 引擎解析或解密拒绝返回 SystemError。
func (c *Connection) OnPacket(pkt []byte) (uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.engine.IsClosed() {
		return 0, types.ErrAlreadyClosed
	}

	if _, err := c.engine.Recv(pkt); err != nil {
		return 0, systemError("recv", err)
	}

	c.deliverStreams()
	c.deliverDgrams()
	c.drain()
	return c.nextTimeout(), nil
}

// StreamSend 向流写入数据
//
// 以游标推进的循环写入，每次部分写入后排空一次。
// 循环体至少执行一次：空负载也要带着 fin 送达引擎以关闭流。
// 引擎报告"暂时无法接纳"视为成功终止，其余拒绝为 SystemError。
func (c *Connection) StreamSend(streamID uint64, data []byte) (uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.engine.IsClosed() {
		return 0, types.ErrAlreadyClosed
	}

	pos := 0
	for {
		n, err := c.engine.StreamSend(streamID, data[pos:], true)
		if err != nil {
			if errors.Is(err, pkgif.ErrEngineDone) {
				break
			}
			return 0, systemError("stream send", err)
		}
		pos += n
		c.drain()
		if pos >= len(data) {
			break
		}
	}
	return c.nextTimeout(), nil
}

// DgramSend 投递一个不可靠数据报
func (c *Connection) DgramSend(data []byte) (uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.engine.IsClosed() {
		return 0, types.ErrAlreadyClosed
	}

	if err := c.engine.DgramSend(data); err != nil {
		return 0, systemError("dgram send", err)
	}

	c.drain()
	return c.nextTimeout(), nil
}

// OnTimeout 通知引擎截止时刻已到
//
// 触发引擎内部的重传、丢包检测与空闲关闭逻辑，随后排空。
func (c *Connection) OnTimeout() (uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.engine.IsClosed() {
		return 0, types.ErrAlreadyClosed
	}

	c.engine.OnTimeout()
	c.drain()
	return c.nextTimeout(), nil
}

// Close 请求关闭连接
//
// 引擎报告"已无数据可发"视为成功（此时不再排空）。
func (c *Connection) Close(app bool, errorCode uint64, reason []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.engine.IsClosed() {
		return types.ErrAlreadyClosed
	}

	err := c.engine.Close(app, errorCode, reason)
	if err != nil {
		if errors.Is(err, pkgif.ErrEngineDone) {
			return nil
		}
		return systemError("close", err)
	}

	c.drain()
	return nil
}

// IsClosed 连接是否已终止
func (c *Connection) IsClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.engine.IsClosed()
}

// Deadline 返回最近一次计算出的空闲超时时刻
//
// 在任何操作执行前为零值。
func (c *Connection) Deadline() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.deadline
}

// deliverStreams 投递所有可读流数据
//
// 仅在早期数据或握手完成状态下执行。对每个可读流反复读入
// 暂存缓冲，每个分片发一个 stream_recv 事件，直到流报告无更多数据。
func (c *Connection) deliverStreams() {
	if !c.engine.IsInEarlyData() && !c.engine.IsEstablished() {
		return
	}

	for _, streamID := range c.engine.Readable() {
		for {
			n, _, err := c.engine.StreamRecv(streamID, c.buf[:])
			if err != nil {
				break
			}
			data := make([]byte, n)
			copy(data, c.buf[:n])
			c.deliver(types.Event{Kind: types.EventStreamRecv, StreamID: streamID, Data: data})
		}
	}
}

// deliverDgrams 投递所有入站不可靠数据报
func (c *Connection) deliverDgrams() {
	if !c.engine.IsInEarlyData() && !c.engine.IsEstablished() {
		return
	}

	for {
		n, err := c.engine.DgramRecv(c.buf[:])
		if err != nil {
			break
		}
		data := make([]byte, n)
		copy(data, c.buf[:n])
		c.deliver(types.Event{Kind: types.EventDgramRecv, Data: data})
	}
}

// drain 抽取引擎的所有待发出站报文
//
// 每个报文作为一个 drain 事件交给宿主传输。排空总是作为某个
// 操作的副作用运行，自身没有调用方可报告结果：硬故障在本地
// 以固定错误码强制关闭并吞掉，不向上传播。
func (c *Connection) drain() {
	for {
		n, err := c.engine.Send(c.buf[:])
		if err != nil {
			if !errors.Is(err, pkgif.ErrEngineDone) {
				logger.Error("排空失败，本地强制关闭", "error", err)
				_ = c.engine.Close(false, drainFailureCode, drainFailureReason)
			}
			return
		}

		data := make([]byte, n)
		copy(data, c.buf[:n])
		c.deliver(types.Event{Kind: types.EventDrain, Data: data})
	}
}

// nextTimeout 计算并记录下一个空闲超时
func (c *Connection) nextTimeout() uint64 {
	ms := DefaultTimeoutMillis
	if d, ok := c.engine.Timeout(); ok {
		if d < 0 {
			d = 0
		}
		ms = uint64(d.Milliseconds())
	}
	c.deadline = c.clk.Now().Add(time.Duration(ms) * time.Millisecond)
	return ms
}

// deliver 发出一个事件并计数
func (c *Connection) deliver(ev types.Event) {
	c.met.EventDelivered(ev.Kind.String())
	c.sink.Deliver(ev)
}

// systemError 把引擎拒绝包装为 SystemError
func systemError(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", types.ErrSystem, op, err)
}
