package xflow

import (
	"context"
	"net/http"
	"strings"

	"github.com/omeyang/xflow/pkg/context/xctx"
	"github.com/omeyang/xflow/pkg/observability/xlog"
)

// HeaderLookup 基于 http.Header 的 LookupFunc。
//
// flow id 本身不透明，但 header 值会去除首尾空白（与 trace header 的处理一致），
// 只含空白的值视为不存在。需要原样读取时使用自定义 LookupFunc。
func HeaderLookup(h http.Header) LookupFunc {
	return func(name string) (string, bool) {
		if h == nil {
			return "", false
		}
		v := strings.TrimSpace(h.Get(name))
		return v, v != ""
	}
}

// =============================================================================
// HTTP 中间件
// =============================================================================

// MiddlewareOption HTTP 中间件与 gRPC 拦截器共用的选项
type MiddlewareOption func(*middlewareConfig)

type middlewareConfig struct {
	echo bool // 是否在响应中回写 flow id
}

// WithEcho 设置是否在响应头（gRPC 为 header metadata）中回写 flow id，默认为 true
func WithEcho(enabled bool) MiddlewareOption {
	return func(cfg *middlewareConfig) {
		cfg.echo = enabled
	}
}

func applyMiddlewareOptions(opts []MiddlewareOption) *middlewareConfig {
	cfg := &middlewareConfig{echo: true}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// HTTPMiddleware 返回 HTTP 中间件。
//
// 要求上游中间件已激活 span（如 xflowotel.HTTPMiddleware）。
// 从请求头解析 flow id，写入 xctx 供日志使用，并默认在响应头回写。
// 没有活跃 span 时记录警告并原样放行。
func HTTPMiddleware(f Flow, opts ...MiddlewareOption) func(http.Handler) http.Handler {
	cfg := applyMiddlewareOptions(opts)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, ok := readInbound(r.Context(), f, HeaderLookup(r.Header))
			if !ok {
				next.ServeHTTP(w, r)
				return
			}
			if cfg.echo {
				// CurrentID 已在 readInbound 中成功，WriteTo 不会失败
				_ = f.WriteTo(ctx, w.Header().Set)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// readInbound 解析 flow id 并写入 xctx；失败时记录警告，ok 为 false
func readInbound(ctx context.Context, f Flow, lookup LookupFunc) (context.Context, bool) {
	if err := f.ReadFrom(ctx, lookup); err != nil {
		xlog.Warn(ctx, "xflow: skip flow id resolution", xlog.Err(err))
		return ctx, false
	}
	id, err := f.CurrentID(ctx)
	if err != nil {
		xlog.Warn(ctx, "xflow: read flow id failed", xlog.Err(err))
		return ctx, false
	}
	if newCtx, err := xctx.WithFlowID(ctx, id); err == nil {
		ctx = newCtx
	}
	return ctx, true
}

// =============================================================================
// HTTP 客户端注入
// =============================================================================

// InjectToRequest 将当前 flow id 写入出站请求头。
// req 为 nil 时不做任何处理。
func InjectToRequest(ctx context.Context, f Flow, req *http.Request) error {
	if req == nil {
		return nil
	}
	// 防止调用方构造 &http.Request{} 导致 nil Header panic
	if req.Header == nil {
		req.Header = make(http.Header)
	}
	return f.WriteTo(ctx, req.Header.Set)
}
