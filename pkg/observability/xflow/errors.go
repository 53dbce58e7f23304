package xflow

import "errors"

var (
	// ErrNoActiveSpan 当前 context 中没有活跃 span。
	// 属于调用方使用错误（在追踪作用域之外调用），不重试。
	ErrNoActiveSpan = errors.New("xflow: no active span")

	// ErrNilTracer New 的 tracer 为 nil。
	ErrNilTracer = errors.New("xflow: nil tracer")

	// ErrInvalidConfig key 配置非法。
	ErrInvalidConfig = errors.New("xflow: invalid config")
)
