package quicwire

import (
	"github.com/benbjohnson/clock"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/dep2p/go-quicwire/internal/core/metrics"
	pkgif "github.com/dep2p/go-quicwire/pkg/interfaces"
	"github.com/dep2p/go-quicwire/pkg/types"
)

// Option 服务配置选项
type Option func(*Service)

// WithEngineFactory 注入传输引擎工厂
//
// 未注入工厂时 AcceptConnection 返回 SystemError。
func WithEngineFactory(factory pkgif.EngineFactory) Option {
	return func(s *Service) {
		s.factory = factory
	}
}

// WithClock 注入时钟（测试用）
func WithClock(clk clock.Clock) Option {
	return func(s *Service) {
		s.clk = clk
	}
}

// WithMetrics 向给定注册器注册并启用 Prometheus 指标
func WithMetrics(reg prometheus.Registerer) Option {
	return func(s *Service) {
		s.met = metrics.New(reg)
	}
}

// WithErrorPolicy 设置 socket 接收错误的上报策略
//
// 默认 ErrorPolicyReportOnce：首个接收错误以 socket_error
// 事件上报一次，后续错误静默。
func WithErrorPolicy(policy types.ErrorPolicy) Option {
	return func(s *Service) {
		s.policy = policy
	}
}
