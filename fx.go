package quicwire

import (
	"context"

	"github.com/benbjohnson/clock"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	pkgif "github.com/dep2p/go-quicwire/pkg/interfaces"
)

// ════════════════════════════════════════════════════════════════════════════
//                              fx 集成
// ════════════════════════════════════════════════════════════════════════════

// Params fx 依赖注入参数
type Params struct {
	fx.In

	// Factory 传输引擎工厂
	Factory pkgif.EngineFactory `optional:"true"`

	// Registerer Prometheus 注册器
	Registerer prometheus.Registerer `optional:"true"`

	// Clock 时钟
	Clock clock.Clock `optional:"true"`
}

// NewFromParams 基于 fx 参数创建服务
func NewFromParams(params Params) *Service {
	opts := make([]Option, 0, 3)
	if params.Factory != nil {
		opts = append(opts, WithEngineFactory(params.Factory))
	}
	if params.Registerer != nil {
		opts = append(opts, WithMetrics(params.Registerer))
	}
	if params.Clock != nil {
		opts = append(opts, WithClock(params.Clock))
	}
	return New(opts...)
}

// Module quicwire 的 fx 模块
//
// 提供 *Service 并在应用停止时关闭所有 socket。
var Module = fx.Module("quicwire",
	fx.Provide(NewFromParams),
	fx.Invoke(registerLifecycle),
)

func registerLifecycle(lc fx.Lifecycle, s *Service) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return s.Close()
		},
	})
}

// WithFxLogger 让 fx 框架事件走 zap 日志
func WithFxLogger(l *zap.Logger) fx.Option {
	return fx.WithLogger(func() fxevent.Logger {
		return &fxevent.ZapLogger{Logger: l}
	})
}
