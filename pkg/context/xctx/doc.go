// Package xctx 提供 flow id 与 trace id 的 context 存取能力。
//
// xctx 是纯粹的存取层：xflow 解析出 flow id 后写入 context，
// 业务代码与日志系统（xlog 的 EnrichHandler）从 context 读取。
//
// # 字段
//
//   - flow_id  : 业务流标识，由 xflow 按优先级解析（baggage > header > trace id）
//   - trace_id : 链路追踪标识，优先取 OpenTelemetry span context，其次取 WithTraceID 注入的值
//
// # 命名约定
//
//	WithXxx(ctx, value)    - 注入：将 value 写入 context
//	Xxx(ctx)               - 读取：从 context 读取值，缺失时返回零值
//	RequireXxx(ctx)        - 强制读取：值必须存在，缺失时返回错误
//
// # 校验策略
//
// flow id 是不透明字符串，xctx 不做任何格式校验。
package xctx
