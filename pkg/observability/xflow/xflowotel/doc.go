// Package xflowotel 将 OpenTelemetry span 适配为 xflow.Tracer。
//
// OTel 的 baggage 是绑定在 context 上的不可变值，而 xflow 需要在活跃 span 上
// 读写 baggage。Activate 为 span 建立一个可变的 baggage 容器并放入 context，
// 之后通过 ContextWithBaggage 或 Propagator 把容器内的 baggage 交给 OTel 传播。
//
// 未经 Activate（或 Start）的 context 视为没有活跃 span。
//
//	ctx, scope := xflowotel.Start(ctx, tracer, "handle")
//	defer scope.End()
//	f := xflow.MustNew(xflowotel.Tracer{})
//	_ = f.ReadFrom(ctx, xflow.HeaderLookup(r.Header))
package xflowotel
