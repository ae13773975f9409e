// Package audit assembles the configured audit sink and the wrappers around it.
package audit

import (
	"context"

	"github.com/niallroche/data-engineering-mlops/internal/domain/entity"
	"github.com/niallroche/data-engineering-mlops/internal/domain/repository"
	"github.com/niallroche/data-engineering-mlops/internal/infrastructure/metrics"
)

// NoopSink discards every record. It is used when auditing is disabled.
type NoopSink struct{}

// Record always succeeds
func (NoopSink) Record(context.Context, *entity.AuditRecord) error { return nil }

// Ping always succeeds
func (NoopSink) Ping(context.Context) error { return nil }

// InstrumentedSink counts write results of the sink it wraps
type InstrumentedSink struct {
	next    repository.AuditSink
	metrics *metrics.Metrics
}

// NewInstrumentedSink wraps next
func NewInstrumentedSink(next repository.AuditSink, m *metrics.Metrics) *InstrumentedSink {
	return &InstrumentedSink{next: next, metrics: m}
}

func (s *InstrumentedSink) Record(ctx context.Context, entry *entity.AuditRecord) error {
	err := s.next.Record(ctx, entry)
	if err != nil {
		s.metrics.ObserveAudit(metrics.AuditError)
		return err
	}
	s.metrics.ObserveAudit(metrics.AuditOK)
	return nil
}

func (s *InstrumentedSink) Ping(ctx context.Context) error {
	return Ping(ctx, s.next)
}

// Ping checks sink if it supports it. Sinks without a Ping are assumed healthy.
func Ping(ctx context.Context, sink repository.AuditSink) error {
	if p, ok := sink.(repository.Pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}
