// Package types 定义 quicwire 公共类型
//
// 本文件定义异步通知事件。
package types

// EventKind 事件类型
type EventKind uint8

const (
	// EventPacket 收到原始 UDP 报文（路由前）
	EventPacket EventKind = iota
	// EventStreamRecv 流上有已解密的应用数据可读
	EventStreamRecv
	// EventDgramRecv 收到不可靠数据报
	EventDgramRecv
	// EventDrain 引擎产出一个待发送的出站报文，宿主负责传输
	EventDrain
	// EventSocketError socket 接收路径故障
	EventSocketError
)

// String 返回事件类型的字符串表示
func (k EventKind) String() string {
	switch k {
	case EventPacket:
		return "packet"
	case EventStreamRecv:
		return "stream_recv"
	case EventDgramRecv:
		return "dgram_recv"
	case EventDrain:
		return "drain"
	case EventSocketError:
		return "socket_error"
	default:
		return "unknown"
	}
}

// Event 发给宿主监听器的异步通知
//
// 同一连接内事件按程序序发出（锁保证），跨连接无顺序保证。
// Data 总是独立拷贝，宿主可以长期持有。
type Event struct {
	// Kind 事件类型
	Kind EventKind

	// Peer 报文来源（仅 EventPacket）
	Peer Peer

	// StreamID 流 ID（仅 EventStreamRecv）
	StreamID uint64

	// Data 事件负载
	Data []byte

	// Err 故障原因（仅 EventSocketError）
	Err error
}
