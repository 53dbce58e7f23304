package xflow

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/omeyang/xflow/pkg/observability/xflow"

// 解析计数指标，按 AttrSource 属性（Source.String() 的取值）区分来源
const (
	MetricResolveTotal = "xflow.resolve.total"
	AttrSource         = "source"
)

// 预构建属性集，避免热路径分配
var sourceAttrs = map[Source]metric.MeasurementOption{
	SourceTraceID: metric.WithAttributeSet(attribute.NewSet(attribute.String(AttrSource, SourceTraceID.String()))),
	SourceHeader:  metric.WithAttributeSet(attribute.NewSet(attribute.String(AttrSource, SourceHeader.String()))),
	SourceBaggage: metric.WithAttributeSet(attribute.NewSet(attribute.String(AttrSource, SourceBaggage.String()))),
}

type metrics struct {
	resolved metric.Int64Counter
}

func newMetrics(provider metric.MeterProvider) (*metrics, error) {
	meter := provider.Meter(instrumentationName)
	resolved, err := meter.Int64Counter(
		MetricResolveTotal,
		metric.WithDescription("Flow id resolutions by source"),
		metric.WithUnit("{resolution}"),
	)
	if err != nil {
		return nil, err
	}
	return &metrics{resolved: resolved}, nil
}

func (m *metrics) record(ctx context.Context, source Source) {
	m.resolved.Add(ctx, 1, sourceAttrs[source])
}
