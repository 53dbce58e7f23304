package xflowotel

import (
	"context"
	"sync"

	"github.com/omeyang/xflow/pkg/observability/xflow"

	"go.opentelemetry.io/otel/baggage"
	"go.opentelemetry.io/otel/trace"
)

type activeSpanKey struct{}

// Tracer 从 context 中查找由 Activate 激活的 span，实现 xflow.Tracer。
// 零值可用。
type Tracer struct{}

var _ xflow.Tracer = Tracer{}

// ActiveSpan 实现 xflow.Tracer
func (Tracer) ActiveSpan(ctx context.Context) xflow.Span {
	if s := fromContext(ctx); s != nil {
		return s
	}
	return nil
}

func fromContext(ctx context.Context) *span {
	if ctx == nil {
		return nil
	}
	s, _ := ctx.Value(activeSpanKey{}).(*span)
	return s
}

// Activate 将 otelSpan 设为 ctx 的活跃 span，baggage 以 ctx 中已有的 baggage 为初值。
// span 的 SpanContext 无效（如 noop tracer 创建的 span）时原样返回 ctx。
func Activate(ctx context.Context, otelSpan trace.Span) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	if otelSpan == nil || !otelSpan.SpanContext().IsValid() {
		return ctx
	}
	s := &span{otel: otelSpan, bag: baggage.FromContext(ctx)}
	ctx = trace.ContextWithSpan(ctx, otelSpan)
	return context.WithValue(ctx, activeSpanKey{}, s)
}

// Baggage 返回 ctx 活跃 span 当前的 baggage；没有活跃 span 时返回 ctx 自带的 baggage
func Baggage(ctx context.Context) baggage.Baggage {
	if s := fromContext(ctx); s != nil {
		return s.currentBaggage()
	}
	if ctx == nil {
		return baggage.Baggage{}
	}
	return baggage.FromContext(ctx)
}

// ContextWithBaggage 把活跃 span 的 baggage 写回 ctx，
// 供 OTel propagator 及其他读取 baggage.FromContext 的组件使用
func ContextWithBaggage(ctx context.Context) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return baggage.ContextWithBaggage(ctx, Baggage(ctx))
}

// =============================================================================
// Scope
// =============================================================================

// Scope 管理由 Start 创建的 span，End 可重复调用
type Scope struct {
	span trace.Span
	once sync.Once
}

// Start 使用 tracer 创建 span 并激活。
// 返回的 context 在作用域内携带活跃 span，离开作用域前调用 Scope.End。
func Start(ctx context.Context, tracer trace.Tracer, name string, opts ...trace.SpanStartOption) (context.Context, *Scope) {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, otelSpan := tracer.Start(ctx, name, opts...)
	return Activate(ctx, otelSpan), &Scope{span: otelSpan}
}

// Span 返回底层 OTel span
func (s *Scope) Span() trace.Span {
	return s.span
}

// End 结束 span，仅第一次调用生效
func (s *Scope) End(opts ...trace.SpanEndOption) {
	s.once.Do(func() {
		s.span.End(opts...)
	})
}
