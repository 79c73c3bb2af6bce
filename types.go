package quicwire

import (
	"github.com/dep2p/go-quicwire/config"
	"github.com/dep2p/go-quicwire/internal/core/conn"
	"github.com/dep2p/go-quicwire/internal/core/packet"
	pkgif "github.com/dep2p/go-quicwire/pkg/interfaces"
	"github.com/dep2p/go-quicwire/pkg/types"
)

// ════════════════════════════════════════════════════════════════════════════
//                              类型别名
// ════════════════════════════════════════════════════════════════════════════

// 宿主常用类型的别名，避免宿主代码直接依赖内部包路径。
type (
	// Peer 远端端点句柄
	Peer = types.Peer

	// ConnectionID QUIC 连接 ID
	ConnectionID = types.ConnectionID

	// PacketType 报文头类型
	PacketType = types.PacketType

	// Event 异步通知事件
	Event = types.Event

	// EventKind 事件类型
	EventKind = types.EventKind

	// ErrorPolicy 接收错误处理策略
	ErrorPolicy = types.ErrorPolicy

	// TransportConfig 传输参数集
	TransportConfig = config.TransportConfig

	// Engine 外部传输引擎
	Engine = pkgif.Engine

	// EngineFactory 引擎工厂
	EngineFactory = pkgif.EngineFactory

	// EventSink 宿主事件监听器
	EventSink = pkgif.EventSink

	// SinkFunc 事件监听器的函数适配器
	SinkFunc = pkgif.SinkFunc

	// ChanSink 事件监听器的通道适配器
	ChanSink = pkgif.ChanSink

	// Connection 连接驱动
	Connection = conn.Connection

	// ConnectionTable 按 dcid 索引的连接表
	ConnectionTable = conn.Table

	// Header 解析出的报文头前缀
	Header = packet.Header

	// TokenMinter Retry 令牌铸造器
	TokenMinter = packet.TokenMinter
)

// 事件类型常量
const (
	EventPacket      = types.EventPacket
	EventStreamRecv  = types.EventStreamRecv
	EventDgramRecv   = types.EventDgramRecv
	EventDrain       = types.EventDrain
	EventSocketError = types.EventSocketError
)

// 报文类型常量
const (
	PacketTypeInitial            = types.PacketTypeInitial
	PacketTypeZeroRTT            = types.PacketTypeZeroRTT
	PacketTypeHandshake          = types.PacketTypeHandshake
	PacketTypeRetry              = types.PacketTypeRetry
	PacketTypeVersionNegotiation = types.PacketTypeVersionNegotiation
	PacketTypeShort              = types.PacketTypeShort
)

// 接收错误策略常量
const (
	ErrorPolicyReportOnce = types.ErrorPolicyReportOnce
	ErrorPolicySilent     = types.ErrorPolicySilent
)

// NewConnectionID 生成一个随机连接 ID
func NewConnectionID() ConnectionID {
	return types.NewConnectionID()
}

// NewConnectionTable 创建连接表
func NewConnectionTable() *ConnectionTable {
	return conn.NewTable()
}
