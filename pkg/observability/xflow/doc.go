// Package xflow 在一次请求的生命周期内传播 flow id。
//
// flow id 是不透明字符串，用于把一次业务流（可能跨越多条链路）串联起来。
// xflow 不生成也不校验 flow id，只负责按优先级解析、同步和传播。
//
// # 解析优先级
//
// ReadFrom 对当前活跃 span 依次检查：
//  1. baggage 中的 flow id（最"粘"的来源）：非空即权威，不会被入站 header 覆盖；
//     tag 与之同步
//  2. 入站 header：非空且不等于 span 的 trace id 时，写入 baggage 和 tag；
//     tracer 拒绝该 baggage 值时不写 tag，按第 3 步处理
//  3. span 的 trace id：直接作为 flow id，不写入 baggage/tag（可从 span 本身恢复）
//
// 空字符串与缺失等价。
//
// CurrentID 不缓存：每次调用都按 baggage > trace id 重新推导，
// 因此同一 span 内重复调用返回相同值，且不会跨 span 串值。
// 请在工作单元入口先调用一次 ReadFrom。
//
// # 活跃 span
//
// Go 没有线程局部变量，活跃 span 通过 context.Context 显式传递：
// Tracer.ActiveSpan(ctx) 返回 nil 表示没有活跃 span，此时所有操作返回 ErrNoActiveSpan。
// 适配器见 xflowotel（OpenTelemetry）与 xflowtest（内存实现，用于测试）。
//
// # 传输层
//
// HTTP：HTTPMiddleware() 服务端中间件（同时在响应头回写 flow id），InjectToRequest() 客户端注入。
// gRPC：GRPCUnaryServerInterceptor()/GRPCStreamServerInterceptor() 服务端拦截器，
// GRPCUnaryClientInterceptor()/GRPCStreamClientInterceptor() 客户端拦截器。
//
// 传输层中间件在没有活跃 span 时记录警告并放行请求，不会中断业务。
//
// # 默认 key
//
//   - Header : X-Flow-ID
//   - Baggage: flow_id
//   - Tag    : flow_id
//
// 可通过 WithConfig 或 LoadConfig（xconf）覆盖。
package xflow
