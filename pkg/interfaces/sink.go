// Package interfaces 定义 quicwire 公共接口
//
// 本文件定义事件接收器接口。
package interfaces

import "github.com/dep2p/go-quicwire/pkg/types"

// EventSink 宿主事件监听器
//
// 单一投递方法。注入到 Socket 轮询器与连接驱动中，
// 所有异步通知（packet/stream_recv/dgram_recv/drain/socket_error）
// 都经由 Deliver 发出。Deliver 在调用方的锁内执行，
// 实现应快速返回，不得反向调用同一连接上的操作。
type EventSink interface {
	// Deliver 投递一个事件
	Deliver(ev types.Event)
}

// SinkFunc 函数适配器
type SinkFunc func(ev types.Event)

// Deliver 投递一个事件
func (f SinkFunc) Deliver(ev types.Event) {
	f(ev)
}

// ChanSink 通道适配器
//
// 把事件写入通道，通道满时阻塞调用方（背压由宿主决定）。
type ChanSink chan types.Event

// Deliver 投递一个事件
func (c ChanSink) Deliver(ev types.Event) {
	c <- ev
}
