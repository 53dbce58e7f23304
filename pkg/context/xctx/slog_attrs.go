package xctx

import (
	"context"
	"log/slog"
)

// AppendFlowAttrs 将 context 中的 flow_id/trace_id 追加到现有切片。
// 零分配热路径：只追加非空字段。
func AppendFlowAttrs(attrs []slog.Attr, ctx context.Context) []slog.Attr {
	if ctx == nil {
		return attrs
	}
	if v := FlowID(ctx); v != "" {
		attrs = append(attrs, slog.String(KeyFlowID, v))
	}
	if v := TraceID(ctx); v != "" {
		attrs = append(attrs, slog.String(KeyTraceID, v))
	}
	return attrs
}

// FlowAttrs 从 context 提取 flow_id/trace_id，转换为 slog.Attr 切片
//
// 都为空时返回 nil。热路径建议使用 AppendFlowAttrs。
func FlowAttrs(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	attrs := AppendFlowAttrs(make([]slog.Attr, 0, flowFieldCount), ctx)
	if len(attrs) == 0 {
		return nil
	}
	return attrs
}
