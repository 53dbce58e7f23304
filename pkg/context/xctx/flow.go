package xctx

import (
	"context"

	"go.opentelemetry.io/otel/trace"
)

// 日志属性 Key，与 baggage/tag 默认名保持一致
const (
	KeyFlowID  = "flow_id"
	KeyTraceID = "trace_id"

	// flowFieldCount 字段数量（用于 slog 属性预分配）
	flowFieldCount = 2
)

const (
	keyFlowID  = contextKey("xctx:flow_id")
	keyTraceID = contextKey("xctx:trace_id")
)

// =============================================================================
// FlowID 操作
// =============================================================================

// WithFlowID 将 flow id 注入 context
//
// 如果 ctx 为 nil，返回 ErrNilContext。
func WithFlowID(ctx context.Context, flowID string) (context.Context, error) {
	if ctx == nil {
		return nil, ErrNilContext
	}
	return context.WithValue(ctx, keyFlowID, flowID), nil
}

// FlowID 从 context 提取 flow id，不存在返回空字符串
func FlowID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(keyFlowID).(string); ok {
		return v
	}
	return ""
}

// RequireFlowID 从 context 获取 flow id，不存在则返回错误。
//
// 语义：值必须存在，缺失时返回 ErrMissingFlowID。
// 如果 ctx 为 nil，返回 ErrNilContext。
func RequireFlowID(ctx context.Context) (string, error) {
	if ctx == nil {
		return "", ErrNilContext
	}
	v := FlowID(ctx)
	if v == "" {
		return "", ErrMissingFlowID
	}
	return v, nil
}

// =============================================================================
// TraceID 操作
// =============================================================================

// WithTraceID 将 trace id 注入 context
//
// 仅在 context 中没有有效的 OpenTelemetry span 时才会被 TraceID 读取。
func WithTraceID(ctx context.Context, traceID string) (context.Context, error) {
	if ctx == nil {
		return nil, ErrNilContext
	}
	return context.WithValue(ctx, keyTraceID, traceID), nil
}

// TraceID 从 context 提取 trace id，不存在返回空字符串
//
// 优先读取 OpenTelemetry span context，其次读取 WithTraceID 注入的值。
func TraceID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if sc := trace.SpanContextFromContext(ctx); sc.HasTraceID() {
		return sc.TraceID().String()
	}
	if v, ok := ctx.Value(keyTraceID).(string); ok {
		return v
	}
	return ""
}

// RequireTraceID 从 context 获取 trace id，不存在则返回错误。
func RequireTraceID(ctx context.Context) (string, error) {
	if ctx == nil {
		return "", ErrNilContext
	}
	v := TraceID(ctx)
	if v == "" {
		return "", ErrMissingTraceID
	}
	return v, nil
}
