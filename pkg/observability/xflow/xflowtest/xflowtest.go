// Package xflowtest 提供 xflow.Tracer 的内存实现，用于测试。
//
// 与 OpenTracing MockTracer 类似：span 持有 baggage 与 tag，trace id 按创建顺序确定性生成，
// 活跃 span 通过 context 传递。
//
//	tracer := xflowtest.NewTracer()
//	span := tracer.StartSpan()
//	ctx := tracer.Activate(context.Background(), span)
//	f, _ := xflow.New(tracer)
//	_ = f.ReadFrom(ctx, xflow.MapLookup(headers))
package xflowtest

import (
	"context"
	"fmt"
	"maps"
	"sync"
	"sync/atomic"

	"github.com/omeyang/xflow/pkg/observability/xflow"
)

// Span 内存 span，并发安全
type Span struct {
	mu      sync.Mutex
	traceID string
	baggage map[string]string
	tags    map[string]string
}

var _ xflow.Span = (*Span)(nil)

// NewSpan 创建指定 trace id 的 span
func NewSpan(traceID string) *Span {
	return &Span{
		traceID: traceID,
		baggage: make(map[string]string),
		tags:    make(map[string]string),
	}
}

// TraceID 实现 xflow.Span
func (s *Span) TraceID() string {
	return s.traceID
}

// BaggageItem 实现 xflow.Span
func (s *Span) BaggageItem(key string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.baggage[key]
}

// SetBaggageItem 实现 xflow.Span
func (s *Span) SetBaggageItem(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.baggage[key] = value
}

// SetTag 实现 xflow.Span
func (s *Span) SetTag(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tags[key] = value
}

// Tag 返回 tag 值与是否存在
func (s *Span) Tag(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.tags[key]
	return v, ok
}

// Tags 返回 tag 快照
func (s *Span) Tags() map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return maps.Clone(s.tags)
}

// Baggage 返回 baggage 快照
func (s *Span) Baggage() map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return maps.Clone(s.baggage)
}

type activeSpanKey struct{}

// Tracer 内存 tracer，实现 xflow.Tracer
type Tracer struct {
	nextID atomic.Uint64
	mu     sync.Mutex
	spans  []*Span
}

var _ xflow.Tracer = (*Tracer)(nil)

// NewTracer 创建内存 tracer
func NewTracer() *Tracer {
	return &Tracer{}
}

// StartSpan 创建新 span，trace id 为 32 位十六进制的递增序号
func (t *Tracer) StartSpan() *Span {
	span := NewSpan(fmt.Sprintf("%032x", t.nextID.Add(1)))
	t.mu.Lock()
	t.spans = append(t.spans, span)
	t.mu.Unlock()
	return span
}

// Spans 返回已创建的 span
func (t *Tracer) Spans() []*Span {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]*Span(nil), t.spans...)
}

// Activate 返回以 span 为活跃 span 的 context。
// 离开该 context 的作用域即视为失活。
func (t *Tracer) Activate(ctx context.Context, span *Span) context.Context {
	return context.WithValue(ctx, activeSpanKey{}, span)
}

// ActiveSpan 实现 xflow.Tracer
func (t *Tracer) ActiveSpan(ctx context.Context) xflow.Span {
	if ctx == nil {
		return nil
	}
	if span, ok := ctx.Value(activeSpanKey{}).(*Span); ok && span != nil {
		return span
	}
	return nil
}
