package xflow

import (
	"context"
	"strings"

	"github.com/omeyang/xflow/pkg/observability/xlog"

	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
)

// MetadataLookup 基于 gRPC metadata 的 LookupFunc。
// key 按 gRPC 惯例转为小写，取第一个值并去除首尾空白（同 HeaderLookup）。
func MetadataLookup(md metadata.MD) LookupFunc {
	return func(name string) (string, bool) {
		values := md.Get(name)
		if len(values) == 0 {
			return "", false
		}
		v := strings.TrimSpace(values[0])
		return v, v != ""
	}
}

// metadataSink 写入 metadata 的 SinkFunc，覆盖已有值
func metadataSink(md metadata.MD) SinkFunc {
	return func(name, value string) {
		md.Set(name, value)
	}
}

// incomingLookup 从 incoming context 构造 LookupFunc，没有 metadata 时返回 nil
func incomingLookup(ctx context.Context) LookupFunc {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return nil
	}
	return MetadataLookup(md)
}

// =============================================================================
// gRPC 服务端拦截器
// =============================================================================

// GRPCUnaryServerInterceptor 返回 gRPC 一元服务端拦截器。
// 从 incoming metadata 解析 flow id 并写入 xctx，默认通过 header metadata 回写。
func GRPCUnaryServerInterceptor(f Flow, opts ...MiddlewareOption) grpc.UnaryServerInterceptor {
	cfg := applyMiddlewareOptions(opts)

	return func(
		ctx context.Context,
		req any,
		_ *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (any, error) {
		ctx, ok := readInbound(ctx, f, incomingLookup(ctx))
		if ok && cfg.echo {
			echoHeader(ctx, f, func(md metadata.MD) error { return grpc.SetHeader(ctx, md) })
		}
		return handler(ctx, req)
	}
}

// GRPCStreamServerInterceptor 返回 gRPC 流式服务端拦截器。
func GRPCStreamServerInterceptor(f Flow, opts ...MiddlewareOption) grpc.StreamServerInterceptor {
	cfg := applyMiddlewareOptions(opts)

	return func(
		srv any,
		ss grpc.ServerStream,
		_ *grpc.StreamServerInfo,
		handler grpc.StreamHandler,
	) error {
		ctx, ok := readInbound(ss.Context(), f, incomingLookup(ss.Context()))
		if !ok {
			return handler(srv, ss)
		}
		if cfg.echo {
			echoHeader(ctx, f, ss.SetHeader)
		}
		return handler(srv, &wrappedServerStream{ServerStream: ss, ctx: ctx})
	}
}

// wrappedServerStream 包装 ServerStream 以覆盖 Context
type wrappedServerStream struct {
	grpc.ServerStream
	ctx context.Context
}

// Context 返回包装后的 context
func (w *wrappedServerStream) Context() context.Context {
	return w.ctx
}

// echoHeader 回写失败（如 header 已发送）只记录警告
func echoHeader(ctx context.Context, f Flow, set func(metadata.MD) error) {
	md := metadata.MD{}
	if err := f.WriteTo(ctx, metadataSink(md)); err != nil {
		return
	}
	if err := set(md); err != nil {
		xlog.Warn(ctx, "xflow: echo flow id header failed", xlog.Err(err))
	}
}

// =============================================================================
// gRPC 客户端拦截器
// =============================================================================

// GRPCUnaryClientInterceptor 返回 gRPC 客户端一元拦截器，
// 将 flow id 注入 outgoing metadata。
func GRPCUnaryClientInterceptor(f Flow) grpc.UnaryClientInterceptor {
	return func(
		ctx context.Context,
		method string,
		req, reply any,
		cc *grpc.ClientConn,
		invoker grpc.UnaryInvoker,
		opts ...grpc.CallOption,
	) error {
		return invoker(injectOutgoing(ctx, f), method, req, reply, cc, opts...)
	}
}

// GRPCStreamClientInterceptor 返回 gRPC 客户端流式拦截器。
func GRPCStreamClientInterceptor(f Flow) grpc.StreamClientInterceptor {
	return func(
		ctx context.Context,
		desc *grpc.StreamDesc,
		cc *grpc.ClientConn,
		method string,
		streamer grpc.Streamer,
		opts ...grpc.CallOption,
	) (grpc.ClientStream, error) {
		return streamer(injectOutgoing(ctx, f), desc, cc, method, opts...)
	}
}

// InjectToOutgoingContext 将 flow id 写入 outgoing metadata。
// 复制已有 metadata 并使用 Set 覆盖，重复调用不会产生重复值。
func InjectToOutgoingContext(ctx context.Context, f Flow) (context.Context, error) {
	md, ok := metadata.FromOutgoingContext(ctx)
	if ok {
		md = md.Copy()
	} else {
		md = metadata.MD{}
	}
	if err := f.WriteTo(ctx, metadataSink(md)); err != nil {
		return ctx, err
	}
	return metadata.NewOutgoingContext(ctx, md), nil
}

func injectOutgoing(ctx context.Context, f Flow) context.Context {
	out, err := InjectToOutgoingContext(ctx, f)
	if err != nil {
		xlog.Warn(ctx, "xflow: skip flow id propagation", xlog.Err(err))
	}
	return out
}
