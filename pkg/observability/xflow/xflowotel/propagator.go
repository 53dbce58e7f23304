package xflowotel

import (
	"context"
	"net/http"

	"github.com/omeyang/xflow/pkg/context/xctx"

	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

type config struct {
	propagator propagation.TextMapPropagator
}

// Option 配置 Propagator 与 HTTP 集成
type Option func(*config)

// WithPropagator 设置自定义 TextMapPropagator，nil 时使用默认值
func WithPropagator(propagator propagation.TextMapPropagator) Option {
	return func(cfg *config) {
		if propagator != nil {
			cfg.propagator = propagator
		}
	}
}

func applyOptions(opts []Option) *config {
	cfg := &config{
		propagator: propagation.NewCompositeTextMapPropagator(
			propagation.TraceContext{},
			propagation.Baggage{},
		),
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Propagator 跨进程传播 trace context 与活跃 span 的 baggage，
// 默认使用 W3C TraceContext + Baggage。
type Propagator struct {
	propagator propagation.TextMapPropagator
}

// NewPropagator 创建 Propagator
func NewPropagator(opts ...Option) Propagator {
	return Propagator{propagator: applyOptions(opts).propagator}
}

// Inject 将 trace context 与 baggage（含 xflow 写入的 flow id）注入消息头。
// headers 为 nil 时不做任何处理。
func (p Propagator) Inject(ctx context.Context, headers map[string]string) {
	if headers == nil {
		return
	}
	p.InjectCarrier(ctx, propagation.MapCarrier(headers))
}

// InjectHeader 注入 HTTP 请求头
func (p Propagator) InjectHeader(ctx context.Context, h http.Header) {
	if h == nil {
		return
	}
	p.InjectCarrier(ctx, propagation.HeaderCarrier(h))
}

// InjectCarrier 注入任意 carrier
func (p Propagator) InjectCarrier(ctx context.Context, carrier propagation.TextMapCarrier) {
	p.propagator.Inject(ContextWithBaggage(ctx), carrier)
}

// Extract 从消息头提取远端 span context 与 baggage，并同步 trace id 到 xctx。
// 提取结果尚未激活，需要 Start 创建本地 span。
func (p Propagator) Extract(ctx context.Context, headers map[string]string) context.Context {
	if headers == nil {
		if ctx == nil {
			return context.Background()
		}
		return ctx
	}
	return p.ExtractCarrier(ctx, propagation.MapCarrier(headers))
}

// ExtractCarrier 从任意 carrier 提取
func (p Propagator) ExtractCarrier(ctx context.Context, carrier propagation.TextMapCarrier) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return syncTraceToXctx(p.propagator.Extract(ctx, carrier))
}

func syncTraceToXctx(ctx context.Context) context.Context {
	spanContext := trace.SpanContextFromContext(ctx)
	if !spanContext.IsValid() {
		return ctx
	}
	if newCtx, err := xctx.WithTraceID(ctx, spanContext.TraceID().String()); err == nil {
		ctx = newCtx
	}
	return ctx
}
