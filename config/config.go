// Package config 提供 quicwire 的传输参数配置
//
// TransportConfig 是按命名空间注册的 QUIC 参数集，
// 在接受新连接时被引擎工厂消费。配置在 Init 时以默认值创建，
// 之后通过 Service 上的 setter 原地修改，生命周期与进程相同。
//
// 使用示例：
//
//	cfg := config.DefaultTransportConfig()
//	cfg.ALPN = []string{"h3"}
//	cfg.MaxIdleTimeoutMillis = 5000
package config

import "fmt"

// 默认值
const (
	// DefaultMaxIdleTimeoutMillis 默认空闲超时（毫秒）
	DefaultMaxIdleTimeoutMillis = 60000

	// DefaultMaxUDPPayloadSize 默认最大 UDP 负载
	DefaultMaxUDPPayloadSize = 1350

	// DefaultAckDelayExponent 默认 ACK 延迟指数
	DefaultAckDelayExponent = 3

	// DefaultMaxAckDelayMillis 默认最大 ACK 延迟（毫秒）
	DefaultMaxAckDelayMillis = 25
)

// TransportConfig 单个命名空间的 QUIC 传输参数集
//
// 字段语义与 QUIC 传输参数一一对应，证书相关字段只携带路径，
// 文件加载由引擎实现负责（不在本系统范围内）。
type TransportConfig struct {
	// CertChainFile 证书链 PEM 文件路径
	CertChainFile string `json:"cert_chain_file"`

	// PrivKeyFile 私钥 PEM 文件路径
	PrivKeyFile string `json:"priv_key_file"`

	// VerifyLocationsFile 信任锚 PEM 文件路径
	VerifyLocationsFile string `json:"verify_locations_file"`

	// VerifyLocationsDir 信任锚目录路径
	VerifyLocationsDir string `json:"verify_locations_dir"`

	// VerifyPeer 是否校验对端证书
	VerifyPeer bool `json:"verify_peer"`

	// Grease 是否启用 GREASE
	Grease bool `json:"grease"`

	// EnableEarlyData 是否允许 0-RTT 早期数据
	EnableEarlyData bool `json:"enable_early_data"`

	// ALPN 应用协议列表
	ALPN []string `json:"alpn"`

	// MaxIdleTimeoutMillis 空闲超时（毫秒）
	MaxIdleTimeoutMillis uint64 `json:"max_idle_timeout_millis"`

	// MaxUDPPayloadSize 最大 UDP 负载长度
	MaxUDPPayloadSize uint64 `json:"max_udp_payload_size"`

	// InitialMaxData 连接级流控上限
	InitialMaxData uint64 `json:"initial_max_data"`

	// InitialMaxStreamDataBidiLocal 本端发起双向流的流控上限
	InitialMaxStreamDataBidiLocal uint64 `json:"initial_max_stream_data_bidi_local"`

	// InitialMaxStreamDataBidiRemote 对端发起双向流的流控上限
	InitialMaxStreamDataBidiRemote uint64 `json:"initial_max_stream_data_bidi_remote"`

	// InitialMaxStreamDataUni 单向流的流控上限
	InitialMaxStreamDataUni uint64 `json:"initial_max_stream_data_uni"`

	// InitialMaxStreamsBidi 双向流数量上限
	InitialMaxStreamsBidi uint64 `json:"initial_max_streams_bidi"`

	// InitialMaxStreamsUni 单向流数量上限
	InitialMaxStreamsUni uint64 `json:"initial_max_streams_uni"`

	// AckDelayExponent ACK 延迟指数
	AckDelayExponent uint64 `json:"ack_delay_exponent"`

	// MaxAckDelayMillis 最大 ACK 延迟（毫秒）
	MaxAckDelayMillis uint64 `json:"max_ack_delay_millis"`

	// DisableActiveMigration 是否禁用主动迁移
	DisableActiveMigration bool `json:"disable_active_migration"`

	// CCAlgorithm 拥塞控制算法名（如 "cubic"、"reno"、"bbr"）
	CCAlgorithm string `json:"cc_algorithm"`

	// EnableHystart 是否启用 HyStart++
	EnableHystart bool `json:"enable_hystart"`

	// EnableDgram 是否启用不可靠数据报扩展
	EnableDgram bool `json:"enable_dgram"`

	// DgramRecvQueueLen 数据报接收队列深度
	DgramRecvQueueLen int `json:"dgram_recv_queue_len"`

	// DgramSendQueueLen 数据报发送队列深度
	DgramSendQueueLen int `json:"dgram_send_queue_len"`
}

// DefaultTransportConfig 返回默认配置
func DefaultTransportConfig() *TransportConfig {
	return &TransportConfig{
		VerifyPeer:           false,
		Grease:               true,
		MaxIdleTimeoutMillis: DefaultMaxIdleTimeoutMillis,
		MaxUDPPayloadSize:    DefaultMaxUDPPayloadSize,
		AckDelayExponent:     DefaultAckDelayExponent,
		MaxAckDelayMillis:    DefaultMaxAckDelayMillis,
		CCAlgorithm:          "cubic",
	}
}

// Clone 返回配置的深拷贝
//
// accept 路径用快照避免在持有注册表锁期间调用引擎工厂。
func (c *TransportConfig) Clone() *TransportConfig {
	out := *c
	if c.ALPN != nil {
		out.ALPN = make([]string, len(c.ALPN))
		copy(out.ALPN, c.ALPN)
	}
	return &out
}

// Validate 校验配置的基本一致性
//
// 在连接 accept 前调用，拦截引擎无法表达的参数组合。
func (c *TransportConfig) Validate() error {
	if c.MaxUDPPayloadSize < 1200 {
		return fmt.Errorf("max_udp_payload_size %d below QUIC minimum 1200", c.MaxUDPPayloadSize)
	}
	// RFC 9000 18.2: ack_delay_exponent 上限 20
	if c.AckDelayExponent > 20 {
		return fmt.Errorf("ack_delay_exponent %d exceeds 20", c.AckDelayExponent)
	}
	if c.EnableDgram && (c.DgramRecvQueueLen < 0 || c.DgramSendQueueLen < 0) {
		return fmt.Errorf("dgram queue lengths must not be negative")
	}
	return nil
}
