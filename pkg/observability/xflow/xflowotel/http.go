package xflowotel

import (
	"net/http"

	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// HTTPMiddleware 返回服务端 HTTP 中间件：从请求头提取远端 trace context 与 baggage，
// 创建并激活 server span，请求结束时结束 span。
//
// 与 xflow.HTTPMiddleware 组合使用时应位于其外层：
//
//	handler = xflowotel.HTTPMiddleware(tracer)(xflow.HTTPMiddleware(f)(handler))
func HTTPMiddleware(tracer trace.Tracer, opts ...Option) func(http.Handler) http.Handler {
	p := NewPropagator(opts...)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := p.ExtractCarrier(r.Context(), propagation.HeaderCarrier(r.Header))
			ctx, scope := Start(ctx, tracer, r.Method+" "+r.URL.Path,
				trace.WithSpanKind(trace.SpanKindServer))
			defer scope.End()

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Transport 出站 http.RoundTripper，为每个请求注入 trace context 与活跃 span 的 baggage
type Transport struct {
	base       http.RoundTripper
	propagator Propagator
}

// NewTransport 包装 base，base 为 nil 时使用 http.DefaultTransport
func NewTransport(base http.RoundTripper, opts ...Option) *Transport {
	if base == nil {
		base = http.DefaultTransport
	}
	return &Transport{base: base, propagator: NewPropagator(opts...)}
}

// RoundTrip 实现 http.RoundTripper，不修改调用方的请求
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	out := req.Clone(req.Context())
	if out.Header == nil {
		out.Header = make(http.Header)
	}
	t.propagator.InjectHeader(req.Context(), out.Header)
	return t.base.RoundTrip(out)
}
