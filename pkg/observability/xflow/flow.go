package xflow

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/omeyang/xflow/pkg/context/xctx"
	"github.com/omeyang/xflow/pkg/observability/xlog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// Source flow id 的解析来源
type Source int

const (
	// SourceTraceID 回退到 span 的 trace id
	SourceTraceID Source = iota
	// SourceHeader 来自入站 header
	SourceHeader
	// SourceBaggage 来自 span baggage
	SourceBaggage
)

// String 返回来源名称，用于日志和指标属性
func (s Source) String() string {
	switch s {
	case SourceHeader:
		return "header"
	case SourceBaggage:
		return "baggage"
	default:
		return "trace_id"
	}
}

// Flow 解析并传播当前活跃 span 的 flow id。
//
// 所有方法在 ctx 中没有活跃 span 时返回 ErrNoActiveSpan。
type Flow interface {
	// ReadFrom 按 baggage > header > trace id 解析 flow id，
	// 并把 header 来源的值同步到 baggage 与 tag。
	// lookup 为 nil 等价于没有任何 header。
	ReadFrom(ctx context.Context, lookup LookupFunc) error

	// CurrentID 返回当前 span 的 flow id（baggage 优先，否则 trace id）
	CurrentID(ctx context.Context) (string, error)

	// WriteTo 以 (header 名, CurrentID) 调用 sink 恰好一次
	WriteTo(ctx context.Context, sink SinkFunc) error
}

// Option 配置 Flow
type Option func(*options)

type options struct {
	config        Config
	meterProvider metric.MeterProvider
}

// WithConfig 覆盖 header/baggage/tag 名称，New 时校验
func WithConfig(cfg Config) Option {
	return func(o *options) {
		o.config = cfg
	}
}

// WithMeterProvider 设置解析计数使用的 MeterProvider，默认使用 otel 全局 provider
func WithMeterProvider(provider metric.MeterProvider) Option {
	return func(o *options) {
		if provider != nil {
			o.meterProvider = provider
		}
	}
}

// flow Flow 的默认实现。
//
// 除 tracer 句柄外不持有任何跨调用状态，flow id 只存在于 span 上。
type flow struct {
	tracer  Tracer
	config  Config
	metrics *metrics
}

var _ Flow = (*flow)(nil)

// New 创建绑定到 tracer 的 Flow
func New(tracer Tracer, opts ...Option) (Flow, error) {
	if tracer == nil {
		return nil, ErrNilTracer
	}
	o := &options{
		config:        DefaultConfig(),
		meterProvider: otel.GetMeterProvider(),
	}
	for _, opt := range opts {
		opt(o)
	}
	if err := o.config.Validate(); err != nil {
		return nil, err
	}
	m, err := newMetrics(o.meterProvider)
	if err != nil {
		return nil, fmt.Errorf("xflow: create metrics: %w", err)
	}
	return &flow{tracer: tracer, config: o.config, metrics: m}, nil
}

// MustNew 与 New 相同，失败时 panic，适用于程序启动
func MustNew(tracer Tracer, opts ...Option) Flow {
	f, err := New(tracer, opts...)
	if err != nil {
		panic(err)
	}
	return f
}

func (f *flow) activeSpan(ctx context.Context) (Span, error) {
	if ctx == nil {
		return nil, ErrNoActiveSpan
	}
	span := f.tracer.ActiveSpan(ctx)
	if span == nil {
		return nil, ErrNoActiveSpan
	}
	return span, nil
}

func (f *flow) ReadFrom(ctx context.Context, lookup LookupFunc) error {
	span, err := f.activeSpan(ctx)
	if err != nil {
		return err
	}

	id, source := f.resolve(ctx, span, lookup)
	f.metrics.record(ctx, source)
	xlog.Debug(ctx, "xflow: flow id resolved",
		slog.String(xctx.KeyFlowID, id), slog.String(AttrSource, source.String()))
	return nil
}

// resolve 优先级：baggage > header > trace id。
//
// header 与 trace id 相同时按 trace id 处理，不写 baggage/tag。
// header 值写入 baggage 后回读不一致（如 tracer 拒绝非法值）同样回退到 trace id。
func (f *flow) resolve(ctx context.Context, span Span, lookup LookupFunc) (string, Source) {
	if id := span.BaggageItem(f.config.Baggage); id != "" {
		span.SetTag(f.config.Tag, id)
		return id, SourceBaggage
	}

	traceID := span.TraceID()
	if lookup != nil {
		if id, ok := lookup(f.config.Header); ok && id != "" && id != traceID {
			span.SetBaggageItem(f.config.Baggage, id)
			// baggage 写入被 tracer 拒绝时，tag 不能记录一个 CurrentID 不会返回的值
			if span.BaggageItem(f.config.Baggage) != id {
				xlog.Warn(ctx, "xflow: tracer rejected flow id baggage, fall back to trace id",
					slog.String("header", f.config.Header))
				return traceID, SourceTraceID
			}
			span.SetTag(f.config.Tag, id)
			return id, SourceHeader
		}
	}
	return traceID, SourceTraceID
}

func (f *flow) CurrentID(ctx context.Context) (string, error) {
	span, err := f.activeSpan(ctx)
	if err != nil {
		return "", err
	}
	if id := span.BaggageItem(f.config.Baggage); id != "" {
		return id, nil
	}
	return span.TraceID(), nil
}

func (f *flow) WriteTo(ctx context.Context, sink SinkFunc) error {
	id, err := f.CurrentID(ctx)
	if err != nil {
		return err
	}
	sink(f.config.Header, id)
	return nil
}

// Write 与 WriteTo 等价，但把 (header 名, flow id) 交给 ctor 构造返回值。
//
//	m, err := xflow.Write(ctx, f, func(k, v string) map[string]string {
//	    return map[string]string{k: v}
//	})
func Write[T any](ctx context.Context, f Flow, ctor func(name, value string) T) (T, error) {
	var out T
	err := f.WriteTo(ctx, func(name, value string) {
		out = ctor(name, value)
	})
	return out, err
}
