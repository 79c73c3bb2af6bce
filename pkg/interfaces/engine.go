// Package interfaces 定义 quicwire 公共接口
//
// 本文件定义传输引擎接口。
package interfaces

import (
	"errors"
	"time"

	"github.com/dep2p/go-quicwire/config"
	"github.com/dep2p/go-quicwire/pkg/types"
)

// ErrEngineDone 引擎当前无事可做
//
// 不是故障：出站排空时表示没有待发报文，流写入时表示
// 引擎暂时无法接纳更多数据。调用方将其视为成功终止条件。
var ErrEngineDone = errors.New("engine done")

// Engine 外部 QUIC 协议状态机
//
// 握手加密、拥塞控制、ACK/丢包账目都在引擎内部完成，
// 本系统只负责喂入入站字节、抽取出站报文、转发超时信号。
// 实现不要求并发安全：每个连接由一把互斥锁全程串行化。
type Engine interface {
	// Recv 喂入一个入站 UDP 报文的负载
	Recv(data []byte) (int, error)

	// Send 将下一个待发出站报文写入 buf
	//
	// 没有待发报文时返回 ErrEngineDone。
	Send(buf []byte) (int, error)

	// Readable 返回当前有数据可读的流 ID 列表
	Readable() []uint64

	// StreamRecv 从流中读取数据到 buf，返回长度与 fin 标志
	//
	// 无更多数据时返回 ErrEngineDone。
	StreamRecv(streamID uint64, buf []byte) (int, bool, error)

	// StreamSend 向流写入数据，返回被接纳的字节数
	//
	// 引擎暂时无法接纳时返回 ErrEngineDone。
	StreamSend(streamID uint64, data []byte, fin bool) (int, error)

	// DgramRecv 读取一个入站不可靠数据报
	//
	// 队列为空时返回 ErrEngineDone。
	DgramRecv(buf []byte) (int, error)

	// DgramSend 投递一个出站不可靠数据报
	DgramSend(data []byte) error

	// OnTimeout 通知引擎超时已到，触发内部重传/丢包检测/空闲关闭
	OnTimeout()

	// Timeout 返回距下一个超时的时长；无待定超时时 ok 为 false
	Timeout() (d time.Duration, ok bool)

	// Close 请求关闭连接
	//
	// 已无数据可发时返回 ErrEngineDone，调用方视为成功。
	Close(app bool, errorCode uint64, reason []byte) error

	// IsClosed 连接是否已进入终止状态
	IsClosed() bool

	// IsEstablished 握手是否完成
	IsEstablished() bool

	// IsInEarlyData 是否处于 0-RTT 早期数据子状态
	IsInEarlyData() bool
}

// EngineFactory 引擎工厂
//
// 由宿主注入，封装具体引擎实现的 accept 逻辑。
type EngineFactory interface {
	// Accept 以给定参数集接受一个新连接
	//
	// scid 为本端选取的连接 ID，odcid 为对端报文中观察到的目的连接 ID。
	Accept(cfg *config.TransportConfig, scid, odcid types.ConnectionID) (Engine, error)
}
