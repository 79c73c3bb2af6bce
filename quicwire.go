package quicwire

import (
	"errors"
	"fmt"
	"time"

	"github.com/benbjohnson/clock"
	"go.uber.org/multierr"

	"github.com/dep2p/go-quicwire/config"
	"github.com/dep2p/go-quicwire/internal/core/conn"
	"github.com/dep2p/go-quicwire/internal/core/metrics"
	"github.com/dep2p/go-quicwire/internal/core/packet"
	"github.com/dep2p/go-quicwire/internal/core/registry"
	"github.com/dep2p/go-quicwire/internal/core/socket"
	pkgif "github.com/dep2p/go-quicwire/pkg/interfaces"
	"github.com/dep2p/go-quicwire/pkg/lib/log"
	"github.com/dep2p/go-quicwire/pkg/types"
)

var logger = log.Logger("quicwire")

// ════════════════════════════════════════════════════════════════════════════
//                              版本信息
// ════════════════════════════════════════════════════════════════════════════

// Version 当前版本
const Version = "v0.1.0"

// BuildInfo 构建信息（通过 ldflags 注入）
var (
	// GitCommit Git 提交哈希
	GitCommit string

	// BuildDate 构建日期
	BuildDate string
)

// VersionInfo 返回完整版本信息字符串
func VersionInfo() string {
	info := "quicwire " + Version
	if GitCommit != "" {
		n := len(GitCommit)
		if n > 8 {
			n = 8
		}
		info += " (" + GitCommit[:n] + ")"
	}
	if BuildDate != "" {
		info += " built " + BuildDate
	}
	return info
}

// ════════════════════════════════════════════════════════════════════════════
//                              Service
// ════════════════════════════════════════════════════════════════════════════

// Service quicwire 的显式服务对象
//
// 聚合配置注册表、暂存缓冲注册表与 socket 服务，构造一次后
// 按引用传递到所有创建连接/socket 的位置，内部没有任何
// 进程级静态状态。所有方法并发安全。
type Service struct {
	configs *registry.ConfigRegistry
	buffers *registry.BufferRegistry
	sockets *socket.Service

	factory pkgif.EngineFactory
	met     *metrics.Metrics
	clk     clock.Clock
	policy  types.ErrorPolicy
}

// New 创建服务对象
func New(opts ...Option) *Service {
	s := &Service{
		configs: registry.NewConfigRegistry(),
		buffers: registry.NewBufferRegistry(),
		sockets: socket.NewService(),
		clk:     clock.New(),
		policy:  types.ErrorPolicyReportOnce,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Init 初始化命名空间（幂等）
//
// 同时创建该命名空间的默认配置与暂存缓冲；
// 重复调用不会重置已有配置。
func (s *Service) Init(namespace string) {
	s.configs.Init(namespace)
	s.buffers.Init(namespace)
}

// Close 关闭所有 socket
func (s *Service) Close() error {
	var err error
	err = multierr.Append(err, s.sockets.CloseAll())
	return err
}

// ════════════════════════════════════════════════════════════════════════════
//                              配置 setter
// ════════════════════════════════════════════════════════════════════════════

// 所有 setter 先在注册表读锁下查找命名空间（未初始化返回
// ErrNotFound），再在条目锁下原地修改，互不阻塞其他命名空间。

// SetCertChainFile 设置证书链 PEM 文件路径
func (s *Service) SetCertChainFile(namespace, file string) error {
	return s.configs.Update(namespace, func(cfg *config.TransportConfig) {
		cfg.CertChainFile = file
	})
}

// SetPrivKeyFile 设置私钥 PEM 文件路径
func (s *Service) SetPrivKeyFile(namespace, file string) error {
	return s.configs.Update(namespace, func(cfg *config.TransportConfig) {
		cfg.PrivKeyFile = file
	})
}

// SetVerifyLocationsFile 设置信任锚 PEM 文件路径
func (s *Service) SetVerifyLocationsFile(namespace, file string) error {
	return s.configs.Update(namespace, func(cfg *config.TransportConfig) {
		cfg.VerifyLocationsFile = file
	})
}

// SetVerifyLocationsDir 设置信任锚目录路径
func (s *Service) SetVerifyLocationsDir(namespace, dir string) error {
	return s.configs.Update(namespace, func(cfg *config.TransportConfig) {
		cfg.VerifyLocationsDir = dir
	})
}

// SetVerifyPeer 设置是否校验对端证书
func (s *Service) SetVerifyPeer(namespace string, verify bool) error {
	return s.configs.Update(namespace, func(cfg *config.TransportConfig) {
		cfg.VerifyPeer = verify
	})
}

// SetGrease 设置是否启用 GREASE
func (s *Service) SetGrease(namespace string, grease bool) error {
	return s.configs.Update(namespace, func(cfg *config.TransportConfig) {
		cfg.Grease = grease
	})
}

// EnableEarlyData 允许 0-RTT 早期数据
func (s *Service) EnableEarlyData(namespace string) error {
	return s.configs.Update(namespace, func(cfg *config.TransportConfig) {
		cfg.EnableEarlyData = true
	})
}

// SetApplicationProtos 设置 ALPN 应用协议列表
func (s *Service) SetApplicationProtos(namespace string, protos []string) error {
	return s.configs.Update(namespace, func(cfg *config.TransportConfig) {
		cfg.ALPN = append([]string(nil), protos...)
	})
}

// SetMaxIdleTimeout 设置空闲超时（毫秒）
func (s *Service) SetMaxIdleTimeout(namespace string, millis uint64) error {
	return s.configs.Update(namespace, func(cfg *config.TransportConfig) {
		cfg.MaxIdleTimeoutMillis = millis
	})
}

// SetMaxUDPPayloadSize 设置最大 UDP 负载长度
func (s *Service) SetMaxUDPPayloadSize(namespace string, size uint64) error {
	return s.configs.Update(namespace, func(cfg *config.TransportConfig) {
		cfg.MaxUDPPayloadSize = size
	})
}

// SetInitialMaxData 设置连接级流控上限
func (s *Service) SetInitialMaxData(namespace string, v uint64) error {
	return s.configs.Update(namespace, func(cfg *config.TransportConfig) {
		cfg.InitialMaxData = v
	})
}

// SetInitialMaxStreamDataBidiLocal 设置本端发起双向流的流控上限
func (s *Service) SetInitialMaxStreamDataBidiLocal(namespace string, v uint64) error {
	return s.configs.Update(namespace, func(cfg *config.TransportConfig) {
		cfg.InitialMaxStreamDataBidiLocal = v
	})
}

// SetInitialMaxStreamDataBidiRemote 设置对端发起双向流的流控上限
func (s *Service) SetInitialMaxStreamDataBidiRemote(namespace string, v uint64) error {
	return s.configs.Update(namespace, func(cfg *config.TransportConfig) {
		cfg.InitialMaxStreamDataBidiRemote = v
	})
}

// SetInitialMaxStreamDataUni 设置单向流的流控上限
func (s *Service) SetInitialMaxStreamDataUni(namespace string, v uint64) error {
	return s.configs.Update(namespace, func(cfg *config.TransportConfig) {
		cfg.InitialMaxStreamDataUni = v
	})
}

// SetInitialMaxStreamsBidi 设置双向流数量上限
func (s *Service) SetInitialMaxStreamsBidi(namespace string, v uint64) error {
	return s.configs.Update(namespace, func(cfg *config.TransportConfig) {
		cfg.InitialMaxStreamsBidi = v
	})
}

// SetInitialMaxStreamsUni 设置单向流数量上限
func (s *Service) SetInitialMaxStreamsUni(namespace string, v uint64) error {
	return s.configs.Update(namespace, func(cfg *config.TransportConfig) {
		cfg.InitialMaxStreamsUni = v
	})
}

// SetAckDelayExponent 设置 ACK 延迟指数
func (s *Service) SetAckDelayExponent(namespace string, v uint64) error {
	return s.configs.Update(namespace, func(cfg *config.TransportConfig) {
		cfg.AckDelayExponent = v
	})
}

// SetMaxAckDelay 设置最大 ACK 延迟（毫秒）
func (s *Service) SetMaxAckDelay(namespace string, millis uint64) error {
	return s.configs.Update(namespace, func(cfg *config.TransportConfig) {
		cfg.MaxAckDelayMillis = millis
	})
}

// SetDisableActiveMigration 设置是否禁用主动迁移
func (s *Service) SetDisableActiveMigration(namespace string, disabled bool) error {
	return s.configs.Update(namespace, func(cfg *config.TransportConfig) {
		cfg.DisableActiveMigration = disabled
	})
}

// SetCCAlgorithm 设置拥塞控制算法名
func (s *Service) SetCCAlgorithm(namespace, name string) error {
	return s.configs.Update(namespace, func(cfg *config.TransportConfig) {
		cfg.CCAlgorithm = name
	})
}

// EnableHystart 设置是否启用 HyStart++
func (s *Service) EnableHystart(namespace string, enabled bool) error {
	return s.configs.Update(namespace, func(cfg *config.TransportConfig) {
		cfg.EnableHystart = enabled
	})
}

// EnableDgram 设置不可靠数据报扩展及其队列深度
func (s *Service) EnableDgram(namespace string, enabled bool, recvQueueLen, sendQueueLen int) error {
	return s.configs.Update(namespace, func(cfg *config.TransportConfig) {
		cfg.EnableDgram = enabled
		cfg.DgramRecvQueueLen = recvQueueLen
		cfg.DgramSendQueueLen = sendQueueLen
	})
}

// ════════════════════════════════════════════════════════════════════════════
//                              连接
// ════════════════════════════════════════════════════════════════════════════

// AcceptConnection 以命名空间的配置接受一个新连接
//
// scid 为本端选取的连接 ID，odcid 为对端报文中观察到的目的
// 连接 ID。配置以快照传给引擎工厂，工厂失败返回 SystemError。
func (s *Service) AcceptConnection(namespace string, scid, odcid types.ConnectionID, sink pkgif.EventSink) (*conn.Connection, error) {
	if s.factory == nil {
		return nil, fmt.Errorf("%w: no engine factory configured", types.ErrSystem)
	}

	cfg, err := s.configs.Snapshot(namespace)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: config: %v", types.ErrSystem, err)
	}

	engine, err := s.factory.Accept(cfg, scid, odcid)
	if err != nil {
		return nil, fmt.Errorf("%w: accept: %v", types.ErrSystem, err)
	}

	s.met.ConnectionAccepted()
	logger.Debug("连接已接受", "namespace", namespace, "scid", scid.String())
	return conn.New(engine, sink, conn.WithClock(s.clk), conn.WithMetrics(s.met)), nil
}

// ════════════════════════════════════════════════════════════════════════════
//                              报文头
// ════════════════════════════════════════════════════════════════════════════

// ParseHeader 解析报文头前缀
//
// 用于在连接建立前按 dcid 路由，或决定触发 Retry / 版本协商。
func (s *Service) ParseHeader(data []byte) (*packet.Header, error) {
	return packet.ParseHeader(data, types.MaxConnIDLen)
}

// NegotiateVersion 整形一个版本协商报文
//
// scid/dcid 取自触发报文。在命名空间的暂存缓冲中整形，
// 返回结果拷贝；命名空间未初始化返回 ErrNotFound。
func (s *Service) NegotiateVersion(namespace string, scid, dcid types.ConnectionID) ([]byte, error) {
	out, err := s.buffers.With(namespace, func(buf []byte) (int, error) {
		return packet.BuildVersionNegotiation(buf, scid, dcid)
	})
	if err != nil && !errors.Is(err, types.ErrNotFound) {
		// 缓冲恒为 1350 字节、连接 ID 恒短于 20 字节，整形失败意味着
		// 不变量被破坏；不中止进程，但按内部错误上报。
		logger.Error("版本协商报文整形失败", "error", err)
		return nil, fmt.Errorf("%w: %v", types.ErrSystem, err)
	}
	return out, err
}

// Retry 整形一个 Retry 报文
//
// token 由 TokenMinter 铸造；失败语义与 NegotiateVersion 相同。
func (s *Service) Retry(namespace string, scid, odcid, newSCID types.ConnectionID, token []byte, version uint32) ([]byte, error) {
	out, err := s.buffers.With(namespace, func(buf []byte) (int, error) {
		return packet.BuildRetry(buf, scid, odcid, newSCID, token, version)
	})
	if err != nil && !errors.Is(err, types.ErrNotFound) {
		logger.Error("Retry 报文整形失败", "error", err)
		return nil, fmt.Errorf("%w: %v", types.ErrSystem, err)
	}
	return out, err
}

// NewTokenMinter 创建使用服务时钟的 Retry 令牌铸造器
func (s *Service) NewTokenMinter(secret []byte, ttl time.Duration) (*packet.TokenMinter, error) {
	return packet.NewTokenMinter(secret, ttl, s.clk)
}

// ════════════════════════════════════════════════════════════════════════════
//                              Socket
// ════════════════════════════════════════════════════════════════════════════

// OpenSocket 为命名空间绑定 UDP 地址并启动轮询
//
// 入站报文以 packet 事件发给 sink；eventCapacity 控制单次批量
// 读取的报文数，pollInterval 为 0 表示无限等待就绪。
func (s *Service) OpenSocket(namespace, bind string, sink pkgif.EventSink, eventCapacity int, pollInterval time.Duration) error {
	return s.sockets.Open(namespace, bind, sink, socket.Options{
		EventCapacity: eventCapacity,
		PollInterval:  pollInterval,
		ErrorPolicy:   s.policy,
		Metrics:       s.met,
	})
}

// SendTo 经命名空间的 socket 向对端发送报文（尽力而为）
func (s *Service) SendTo(namespace string, peer types.Peer, pkt []byte) error {
	return s.sockets.Send(namespace, peer, pkt)
}

// SocketAddr 返回命名空间 socket 实际绑定的地址
func (s *Service) SocketAddr(namespace string) (string, error) {
	p, ok := s.sockets.Lookup(namespace)
	if !ok {
		return "", types.ErrNotFound
	}
	return p.LocalAddr().String(), nil
}

// CloseSocket 关闭并移除命名空间的 socket
func (s *Service) CloseSocket(namespace string) error {
	return s.sockets.Close(namespace)
}
