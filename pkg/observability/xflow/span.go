package xflow

import "context"

// Span 由外部 tracer 持有的追踪单元。
//
// xflow 只读写当前活跃 span 的 baggage 与 tag，不创建、不结束 span。
// 并发安全由 tracer 实现负责。
type Span interface {
	// TraceID 返回 span 所属链路的 trace id，对同一链路稳定
	TraceID() string

	// BaggageItem 返回 baggage 值，缺失返回空字符串
	BaggageItem(key string) string

	// SetBaggageItem 设置 baggage，随 tracer 跨进程传播。
	// tracer 可以拒绝不合法的值，此时 BaggageItem 不返回该值。
	SetBaggageItem(key, value string)

	// SetTag 设置 span 本地 tag，不传播
	SetTag(key, value string)
}

// Tracer 提供当前活跃 span 的查找。
type Tracer interface {
	// ActiveSpan 返回 ctx 中的活跃 span，没有时返回无类型的 nil。
	// 不要返回包装在 Span 中的 typed nil（如 (*mySpan)(nil)），
	// 它不等于 nil，后续调用会 panic。
	ActiveSpan(ctx context.Context) Span
}

// TracerFunc 函数适配器，返回值约定同 Tracer.ActiveSpan
type TracerFunc func(ctx context.Context) Span

// ActiveSpan 实现 Tracer
func (f TracerFunc) ActiveSpan(ctx context.Context) Span {
	return f(ctx)
}

// LookupFunc 入站 header 查找，第二个返回值为 false 表示不存在
type LookupFunc func(name string) (string, bool)

// SinkFunc 出站写入，接收 (header 名, 值)
type SinkFunc func(name, value string)

// MapLookup 基于 map 的 LookupFunc，nil map 视为空
func MapLookup(m map[string]string) LookupFunc {
	return func(name string) (string, bool) {
		v, ok := m[name]
		return v, ok
	}
}

// MapSink 写入 map 的 SinkFunc
func MapSink(m map[string]string) SinkFunc {
	return func(name, value string) {
		m[name] = value
	}
}
