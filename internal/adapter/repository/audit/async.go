package audit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/niallroche/data-engineering-mlops/internal/domain/entity"
	"github.com/niallroche/data-engineering-mlops/internal/domain/repository"
	"github.com/niallroche/data-engineering-mlops/internal/infrastructure/metrics"
)

const asyncDriver = "async"

// AsyncSink hands records to a bounded queue drained by one background
// goroutine, so Record never waits on storage. When the queue is full the
// record is dropped and ErrQueueFull is returned.
type AsyncSink struct {
	next    repository.AuditSink
	queue   chan *entity.AuditRecord
	timeout time.Duration
	logger  *zap.Logger
	metrics *metrics.Metrics

	mu     sync.RWMutex
	closed bool
	done   chan struct{}
}

// NewAsyncSink starts draining into next. Each write is bounded by timeout.
func NewAsyncSink(next repository.AuditSink, size int, timeout time.Duration, logger *zap.Logger, m *metrics.Metrics) *AsyncSink {
	s := &AsyncSink{
		next:    next,
		queue:   make(chan *entity.AuditRecord, size),
		timeout: timeout,
		logger:  logger,
		metrics: m,
		done:    make(chan struct{}),
	}
	go s.drain()
	return s
}

// Record enqueues entry without blocking
func (s *AsyncSink) Record(_ context.Context, entry *entity.AuditRecord) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return repository.NewSinkError(asyncDriver, repository.ErrSinkClosed)
	}

	select {
	case s.queue <- entry:
		s.metrics.SetAuditQueueDepth(s.Len())
		return nil
	default:
		s.metrics.ObserveAudit(metrics.AuditDropped)
		return repository.NewSinkError(asyncDriver, repository.ErrQueueFull)
	}
}

// Ping checks the underlying sink
func (s *AsyncSink) Ping(ctx context.Context) error {
	return Ping(ctx, s.next)
}

// Len returns the number of queued records
func (s *AsyncSink) Len() int {
	return len(s.queue)
}

// Close stops accepting records and waits for the queue to drain or ctx to end
func (s *AsyncSink) Close(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	close(s.queue)
	s.mu.Unlock()

	select {
	case <-s.done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("audit queue not drained, %d records pending: %w", s.Len(), ctx.Err())
	}
}

func (s *AsyncSink) drain() {
	defer close(s.done)

	for entry := range s.queue {
		s.write(entry)
		s.metrics.SetAuditQueueDepth(s.Len())
	}
}

func (s *AsyncSink) write(entry *entity.AuditRecord) {
	defer func() {
		if r := recover(); r != nil {
			s.metrics.ObserveAudit(metrics.AuditError)
			s.logger.Error("Audit sink panicked",
				zap.String("request_id", entry.RequestID),
				zap.String("record_id", entry.ID.String()),
				zap.Any("panic", r),
			)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	if err := s.next.Record(ctx, entry); err != nil {
		s.logger.Warn("Failed to write audit record",
			zap.String("request_id", entry.RequestID),
			zap.String("record_id", entry.ID.String()),
			zap.Error(err),
		)
	}
}
