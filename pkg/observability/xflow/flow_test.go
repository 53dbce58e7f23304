package xflow_test

import (
	"context"
	"testing"

	"github.com/omeyang/xflow/pkg/observability/xflow"
	"github.com/omeyang/xflow/pkg/observability/xflow/xflowtest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

const (
	flowID      = "REcCvlqMSReeo7adheiYFA"
	otherFlowID = "Rso72qSgLWPNlYIF_OGjvA"
)

// newFlow 创建绑定内存 tracer 的 Flow，并返回激活了新 span 的 context
func newFlow(t *testing.T) (xflow.Flow, *xflowtest.Span, context.Context) {
	t.Helper()
	tracer := xflowtest.NewTracer()
	f, err := xflow.New(tracer)
	require.NoError(t, err)
	span := tracer.StartSpan()
	return f, span, tracer.Activate(context.Background(), span)
}

func noHeaders(string) (string, bool) { return "", false }

func assertNoFlowState(t *testing.T, span *xflowtest.Span) {
	t.Helper()
	assert.Empty(t, span.BaggageItem(xflow.DefaultBaggage))
	_, ok := span.Tag(xflow.DefaultTag)
	assert.False(t, ok, "tag should not be set")
}

func assertFlowState(t *testing.T, span *xflowtest.Span, want string) {
	t.Helper()
	assert.Equal(t, want, span.BaggageItem(xflow.DefaultBaggage))
	tag, ok := span.Tag(xflow.DefaultTag)
	assert.True(t, ok, "tag should be set")
	assert.Equal(t, want, tag)
}

// =============================================================================
// ReadFrom 解析优先级测试
// =============================================================================

func TestReadFrom_Header(t *testing.T) {
	f, span, ctx := newFlow(t)

	require.NoError(t, f.ReadFrom(ctx, xflow.MapLookup(map[string]string{xflow.DefaultHeader: flowID})))

	id, err := f.CurrentID(ctx)
	require.NoError(t, err)
	assert.Equal(t, flowID, id)
	assertFlowState(t, span, flowID)
}

func TestReadFrom_Baggage(t *testing.T) {
	f, span, ctx := newFlow(t)
	span.SetBaggageItem(xflow.DefaultBaggage, flowID)

	require.NoError(t, f.ReadFrom(ctx, noHeaders))

	id, err := f.CurrentID(ctx)
	require.NoError(t, err)
	assert.Equal(t, flowID, id)
	assertFlowState(t, span, flowID)
}

func TestReadFrom_TraceIDFallback(t *testing.T) {
	f, span, ctx := newFlow(t)

	require.NoError(t, f.ReadFrom(ctx, noHeaders))

	id, err := f.CurrentID(ctx)
	require.NoError(t, err)
	assert.Equal(t, span.TraceID(), id)
	assertNoFlowState(t, span)
}

func TestReadFrom_PreferBaggageOverHeader(t *testing.T) {
	f, span, ctx := newFlow(t)
	span.SetBaggageItem(xflow.DefaultBaggage, flowID)

	require.NoError(t, f.ReadFrom(ctx, xflow.MapLookup(map[string]string{xflow.DefaultHeader: otherFlowID})))

	id, err := f.CurrentID(ctx)
	require.NoError(t, err)
	assert.Equal(t, flowID, id)
	assertFlowState(t, span, flowID)
}

func TestReadFrom_HeaderEqualsTraceID(t *testing.T) {
	f, span, ctx := newFlow(t)

	require.NoError(t, f.ReadFrom(ctx, xflow.MapLookup(map[string]string{xflow.DefaultHeader: span.TraceID()})))

	id, err := f.CurrentID(ctx)
	require.NoError(t, err)
	assert.Equal(t, span.TraceID(), id)
	assertNoFlowState(t, span)
}

func TestReadFrom_HeaderEqualsBaggage(t *testing.T) {
	f, span, ctx := newFlow(t)
	span.SetBaggageItem(xflow.DefaultBaggage, flowID)

	require.NoError(t, f.ReadFrom(ctx, xflow.MapLookup(map[string]string{xflow.DefaultHeader: flowID})))

	id, err := f.CurrentID(ctx)
	require.NoError(t, err)
	assert.Equal(t, flowID, id)
	assertFlowState(t, span, flowID)
}

func TestReadFrom_EmptyValuesAreAbsent(t *testing.T) {
	tests := []struct {
		name    string
		baggage string
		lookup  xflow.LookupFunc
	}{
		{name: "空header", lookup: xflow.MapLookup(map[string]string{xflow.DefaultHeader: ""})},
		{name: "空baggage且无header", baggage: "", lookup: noHeaders},
		{name: "nil lookup", lookup: nil},
		{name: "nil map", lookup: xflow.MapLookup(nil)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, span, ctx := newFlow(t)
			span.SetBaggageItem(xflow.DefaultBaggage, tt.baggage)

			require.NoError(t, f.ReadFrom(ctx, tt.lookup))

			id, err := f.CurrentID(ctx)
			require.NoError(t, err)
			assert.Equal(t, span.TraceID(), id)
			_, ok := span.Tag(xflow.DefaultTag)
			assert.False(t, ok)
		})
	}
}

func TestReadFrom_EmptyBaggageFallsThroughToHeader(t *testing.T) {
	f, span, ctx := newFlow(t)
	span.SetBaggageItem(xflow.DefaultBaggage, "")

	require.NoError(t, f.ReadFrom(ctx, xflow.MapLookup(map[string]string{xflow.DefaultHeader: flowID})))

	assertFlowState(t, span, flowID)
}

func TestReadFrom_LookupUsesConfiguredHeader(t *testing.T) {
	f, _, ctx := newFlow(t)

	var asked []string
	lookup := func(name string) (string, bool) {
		asked = append(asked, name)
		return flowID, true
	}
	require.NoError(t, f.ReadFrom(ctx, lookup))
	assert.Equal(t, []string{xflow.DefaultHeader}, asked)
}

// =============================================================================
// CurrentID 测试
// =============================================================================

func TestCurrentID_Idempotent(t *testing.T) {
	f, span, ctx := newFlow(t)
	require.NoError(t, f.ReadFrom(ctx, xflow.MapLookup(map[string]string{xflow.DefaultHeader: flowID})))

	first, err := f.CurrentID(ctx)
	require.NoError(t, err)
	for range 3 {
		again, err := f.CurrentID(ctx)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
	assert.Equal(t, map[string]string{xflow.DefaultTag: flowID}, span.Tags())
}

func TestCurrentID_NoCrossSpanLeak(t *testing.T) {
	tracer := xflowtest.NewTracer()
	f, err := xflow.New(tracer)
	require.NoError(t, err)

	first := tracer.StartSpan()
	ctx1 := tracer.Activate(context.Background(), first)
	require.NoError(t, f.ReadFrom(ctx1, xflow.MapLookup(map[string]string{xflow.DefaultHeader: flowID})))

	second := tracer.StartSpan()
	ctx2 := tracer.Activate(context.Background(), second)
	require.NoError(t, f.ReadFrom(ctx2, noHeaders))

	id1, err := f.CurrentID(ctx1)
	require.NoError(t, err)
	id2, err := f.CurrentID(ctx2)
	require.NoError(t, err)
	assert.Equal(t, flowID, id1)
	assert.Equal(t, second.TraceID(), id2)
}

func TestCurrentID_ReflectsExternalBaggage(t *testing.T) {
	f, span, ctx := newFlow(t)

	id, err := f.CurrentID(ctx)
	require.NoError(t, err)
	assert.Equal(t, span.TraceID(), id)

	span.SetBaggageItem(xflow.DefaultBaggage, flowID)
	id, err = f.CurrentID(ctx)
	require.NoError(t, err)
	assert.Equal(t, flowID, id)
}

// =============================================================================
// WriteTo / Write 测试
// =============================================================================

func TestWriteTo(t *testing.T) {
	lookups := map[string]map[string]string{
		"header":   {xflow.DefaultHeader: flowID},
		"trace_id": nil,
	}
	for name, headers := range lookups {
		t.Run(name, func(t *testing.T) {
			f, _, ctx := newFlow(t)
			require.NoError(t, f.ReadFrom(ctx, xflow.MapLookup(headers)))

			target := make(map[string]string)
			require.NoError(t, f.WriteTo(ctx, xflow.MapSink(target)))

			id, err := f.CurrentID(ctx)
			require.NoError(t, err)
			assert.Equal(t, map[string]string{xflow.DefaultHeader: id}, target)
		})
	}
}

func TestWriteTo_CallsSinkOnce(t *testing.T) {
	f, _, ctx := newFlow(t)
	require.NoError(t, f.ReadFrom(ctx, noHeaders))

	calls := 0
	require.NoError(t, f.WriteTo(ctx, func(string, string) { calls++ }))
	assert.Equal(t, 1, calls)
}

func TestWrite(t *testing.T) {
	f, span, ctx := newFlow(t)
	span.SetBaggageItem(xflow.DefaultBaggage, flowID)
	require.NoError(t, f.ReadFrom(ctx, noHeaders))

	target, err := xflow.Write(ctx, f, func(name, value string) map[string]string {
		return map[string]string{name: value}
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{xflow.DefaultHeader: flowID}, target)
}

// =============================================================================
// 无活跃 span
// =============================================================================

func TestNoActiveSpan(t *testing.T) {
	f, err := xflow.New(xflowtest.NewTracer())
	require.NoError(t, err)

	for _, ctx := range []context.Context{context.Background(), nil} {
		assert.ErrorIs(t, f.ReadFrom(ctx, noHeaders), xflow.ErrNoActiveSpan)

		_, err = f.CurrentID(ctx)
		assert.ErrorIs(t, err, xflow.ErrNoActiveSpan)

		called := false
		assert.ErrorIs(t, f.WriteTo(ctx, func(string, string) { called = true }), xflow.ErrNoActiveSpan)
		assert.False(t, called)

		out, err := xflow.Write(ctx, f, func(name, value string) map[string]string {
			return map[string]string{name: value}
		})
		assert.ErrorIs(t, err, xflow.ErrNoActiveSpan)
		assert.Nil(t, out)
	}
}

// =============================================================================
// 构造与配置
// =============================================================================

func TestNew_Errors(t *testing.T) {
	_, err := xflow.New(nil)
	assert.ErrorIs(t, err, xflow.ErrNilTracer)

	_, err = xflow.New(xflowtest.NewTracer(), xflow.WithConfig(xflow.Config{Header: "X-Flow-ID"}))
	assert.ErrorIs(t, err, xflow.ErrInvalidConfig)

	assert.Panics(t, func() { xflow.MustNew(nil) })
	assert.NotPanics(t, func() { xflow.MustNew(xflowtest.NewTracer(), xflow.WithMeterProvider(nil)) })
}

func TestWithConfig_CustomKeys(t *testing.T) {
	tracer := xflowtest.NewTracer()
	f, err := xflow.New(tracer, xflow.WithConfig(xflow.Config{
		Header:  "X-Correlation-ID",
		Baggage: "correlation",
		Tag:     "correlation.id",
	}))
	require.NoError(t, err)

	span := tracer.StartSpan()
	ctx := tracer.Activate(context.Background(), span)
	require.NoError(t, f.ReadFrom(ctx, xflow.MapLookup(map[string]string{
		xflow.DefaultHeader: otherFlowID,
		"X-Correlation-ID":  flowID,
	})))

	assert.Equal(t, flowID, span.BaggageItem("correlation"))
	assert.Equal(t, map[string]string{"correlation.id": flowID}, span.Tags())

	out := map[string]string{}
	require.NoError(t, f.WriteTo(ctx, xflow.MapSink(out)))
	assert.Equal(t, map[string]string{"X-Correlation-ID": flowID}, out)
}

func TestTracerFunc_UntypedNil(t *testing.T) {
	f, err := xflow.New(xflow.TracerFunc(func(context.Context) xflow.Span { return nil }))
	require.NoError(t, err)

	_, err = f.CurrentID(context.Background())
	assert.ErrorIs(t, err, xflow.ErrNoActiveSpan)
}

func TestTracerFunc(t *testing.T) {
	span := xflowtest.NewSpan("trace-1")
	f, err := xflow.New(xflow.TracerFunc(func(context.Context) xflow.Span { return span }))
	require.NoError(t, err)

	id, err := f.CurrentID(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "trace-1", id)
}

func TestSource_String(t *testing.T) {
	assert.Equal(t, "trace_id", xflow.SourceTraceID.String())
	assert.Equal(t, "header", xflow.SourceHeader.String())
	assert.Equal(t, "baggage", xflow.SourceBaggage.String())
}

// =============================================================================
// 基于 gomock 的交互测试：精确校验对 span 的读写
// =============================================================================

func TestReadFrom_SpanInteractions(t *testing.T) {
	t.Run("baggage命中不写baggage", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		span := NewMockSpan(ctrl)
		tracer := NewMockTracer(ctrl)
		tracer.EXPECT().ActiveSpan(gomock.Any()).Return(span)

		span.EXPECT().BaggageItem(xflow.DefaultBaggage).Return(flowID)
		span.EXPECT().SetTag(xflow.DefaultTag, flowID)
		span.EXPECT().SetBaggageItem(gomock.Any(), gomock.Any()).Times(0)
		span.EXPECT().TraceID().Times(0)

		f, err := xflow.New(tracer)
		require.NoError(t, err)
		require.NoError(t, f.ReadFrom(context.Background(), xflow.MapLookup(map[string]string{xflow.DefaultHeader: otherFlowID})))
	})

	t.Run("header写入baggage和tag", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		span := NewMockSpan(ctrl)
		tracer := NewMockTracer(ctrl)
		tracer.EXPECT().ActiveSpan(gomock.Any()).Return(span)

		gomock.InOrder(
			span.EXPECT().BaggageItem(xflow.DefaultBaggage).Return(""),
			span.EXPECT().TraceID().Return("trace-1"),
			span.EXPECT().SetBaggageItem(xflow.DefaultBaggage, flowID),
			span.EXPECT().BaggageItem(xflow.DefaultBaggage).Return(flowID),
			span.EXPECT().SetTag(xflow.DefaultTag, flowID),
		)

		f, err := xflow.New(tracer)
		require.NoError(t, err)
		require.NoError(t, f.ReadFrom(context.Background(), xflow.MapLookup(map[string]string{xflow.DefaultHeader: flowID})))
	})

	t.Run("baggage写入被拒绝时回退trace id且不写tag", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		span := NewMockSpan(ctrl)
		tracer := NewMockTracer(ctrl)
		tracer.EXPECT().ActiveSpan(gomock.Any()).Return(span)

		gomock.InOrder(
			span.EXPECT().BaggageItem(xflow.DefaultBaggage).Return(""),
			span.EXPECT().TraceID().Return("trace-1"),
			span.EXPECT().SetBaggageItem(xflow.DefaultBaggage, flowID),
			span.EXPECT().BaggageItem(xflow.DefaultBaggage).Return(""),
		)
		span.EXPECT().SetTag(gomock.Any(), gomock.Any()).Times(0)

		f, err := xflow.New(tracer)
		require.NoError(t, err)
		require.NoError(t, f.ReadFrom(context.Background(), xflow.MapLookup(map[string]string{xflow.DefaultHeader: flowID})))
	})

	t.Run("trace id回退不写任何状态", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		span := NewMockSpan(ctrl)
		tracer := NewMockTracer(ctrl)
		tracer.EXPECT().ActiveSpan(gomock.Any()).Return(span)

		span.EXPECT().BaggageItem(xflow.DefaultBaggage).Return("")
		span.EXPECT().TraceID().Return("trace-1")
		span.EXPECT().SetBaggageItem(gomock.Any(), gomock.Any()).Times(0)
		span.EXPECT().SetTag(gomock.Any(), gomock.Any()).Times(0)

		f, err := xflow.New(tracer)
		require.NoError(t, err)
		require.NoError(t, f.ReadFrom(context.Background(), nil))
	})

	t.Run("CurrentID只读", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		span := NewMockSpan(ctrl)
		tracer := NewMockTracer(ctrl)
		tracer.EXPECT().ActiveSpan(gomock.Any()).Return(span).Times(2)

		span.EXPECT().BaggageItem(xflow.DefaultBaggage).Return(flowID).Times(2)

		f, err := xflow.New(tracer)
		require.NoError(t, err)
		for range 2 {
			id, err := f.CurrentID(context.Background())
			require.NoError(t, err)
			assert.Equal(t, flowID, id)
		}
	})

	t.Run("tracer返回nil", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		tracer := NewMockTracer(ctrl)
		tracer.EXPECT().ActiveSpan(gomock.Any()).Return(nil)

		f, err := xflow.New(tracer)
		require.NoError(t, err)
		assert.ErrorIs(t, f.ReadFrom(context.Background(), nil), xflow.ErrNoActiveSpan)
	})
}
