// Package observability 提供可观测性相关的子包。
//
// 子包列表：
//   - xlog: 结构化日志，基于 log/slog 扩展，支持文件轮转
//   - xflow: flow id 解析与传播，以及 HTTP/gRPC 集成
//   - xflow/xflowotel: OpenTelemetry tracer 适配与 baggage 传播
//   - xflow/xflowtest: 测试用内存 tracer
//
// 遵循 OpenTelemetry 语义规范，日志自动从 context 注入 flow_id 与 trace_id。
package observability
