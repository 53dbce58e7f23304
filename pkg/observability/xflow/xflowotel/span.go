package xflowotel

import (
	"context"
	"log/slog"
	"sync"

	"github.com/omeyang/xflow/pkg/observability/xflow"
	"github.com/omeyang/xflow/pkg/observability/xlog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/baggage"
	"go.opentelemetry.io/otel/trace"
)

// span 包装 OTel span，持有随 span 生命周期变化的 baggage
type span struct {
	otel trace.Span

	mu  sync.RWMutex
	bag baggage.Baggage
}

var _ xflow.Span = (*span)(nil)

func (s *span) TraceID() string {
	return s.otel.SpanContext().TraceID().String()
}

func (s *span) BaggageItem(key string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.bag.Member(key).Value()
}

// SetBaggageItem key 不符合 W3C baggage 规范或超出大小限制时丢弃并记录警告
func (s *span) SetBaggageItem(key, value string) {
	member, err := baggage.NewMemberRaw(key, value)
	if err != nil {
		xlog.Warn(context.Background(), "xflowotel: invalid baggage member",
			xlog.Err(err), slog.String("key", key))
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	bag, err := s.bag.SetMember(member)
	if err != nil {
		xlog.Warn(context.Background(), "xflowotel: set baggage failed",
			xlog.Err(err), slog.String("key", key))
		return
	}
	s.bag = bag
}

func (s *span) SetTag(key, value string) {
	s.otel.SetAttributes(attribute.String(key, value))
}

func (s *span) currentBaggage() baggage.Baggage {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.bag
}
