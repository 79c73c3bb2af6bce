// Package types 定义 quicwire 公共类型
//
// 本文件定义报文相关常量与枚举。
package types

// 协议常量
const (
	// MaxDatagramSize 单个 UDP 报文的最大长度
	//
	// 超过该长度的入站报文视为不合规对端，静默丢弃；
	// 出站整形报文也以该长度为暂存缓冲上限。
	MaxDatagramSize = 1350

	// MinHeaderLen QUIC 报文头的最小长度
	//
	// 短于该长度的入站报文无法承载任何合法头部，静默丢弃。
	MinHeaderLen = 4

	// MaxConnIDLen 连接 ID 的最大长度（QUIC v1）
	MaxConnIDLen = 20

	// ProtocolVersion 支持的 QUIC 版本号
	ProtocolVersion uint32 = 0x00000001
)

// PacketType QUIC 报文头类型
type PacketType uint8

const (
	// PacketTypeInitial Initial 报文
	PacketTypeInitial PacketType = iota
	// PacketTypeZeroRTT 0-RTT 报文
	PacketTypeZeroRTT
	// PacketTypeHandshake Handshake 报文
	PacketTypeHandshake
	// PacketTypeRetry Retry 报文
	PacketTypeRetry
	// PacketTypeVersionNegotiation 版本协商报文
	PacketTypeVersionNegotiation
	// PacketTypeShort 短头部报文（1-RTT）
	PacketTypeShort
)

// String 返回报文类型的字符串表示
func (t PacketType) String() string {
	switch t {
	case PacketTypeInitial:
		return "initial"
	case PacketTypeZeroRTT:
		return "zero_rtt"
	case PacketTypeHandshake:
		return "handshake"
	case PacketTypeRetry:
		return "retry"
	case PacketTypeVersionNegotiation:
		return "version_negotiation"
	case PacketTypeShort:
		return "short"
	default:
		return "unknown"
	}
}

// ErrorPolicy 接收路径非 would-block 错误的处理策略
//
// 显式配置项，默认上报一次。两种策略下轮询循环都不会终止。
type ErrorPolicy uint8

const (
	// ErrorPolicyReportOnce 首次故障上报一个 socket_error 事件，之后静默继续
	ErrorPolicyReportOnce ErrorPolicy = iota
	// ErrorPolicySilent 静默继续，不产生任何通知
	ErrorPolicySilent
)

// String 返回策略的字符串表示
func (p ErrorPolicy) String() string {
	switch p {
	case ErrorPolicyReportOnce:
		return "report_once"
	case ErrorPolicySilent:
		return "silent"
	default:
		return "unknown"
	}
}
