package xctx

import "errors"

// 设计决策: contextKey 使用 string 而非 int+iota，
// 字符串值在调试时可读性高，包私有类型保证不会与其他包冲突。
type contextKey string

var (
	// ErrNilContext 表示传入的 context 为 nil。
	ErrNilContext = errors.New("xctx: nil context")

	// ErrMissingFlowID flow_id 缺失
	ErrMissingFlowID = errors.New("xctx: missing flow_id")

	// ErrMissingTraceID trace_id 缺失
	ErrMissingTraceID = errors.New("xctx: missing trace_id")
)
