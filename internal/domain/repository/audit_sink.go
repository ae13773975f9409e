package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/niallroche/data-engineering-mlops/internal/domain/entity"
)

// Error definitions for audit sinks
var (
	ErrSinkClosed = errors.New("sink closed")
	ErrQueueFull  = errors.New("queue full")
)

// AuditSink persists audit records. A sink only receives and stores data.
type AuditSink interface {
	// Record makes a single best-effort attempt to store entry. Storage failures
	// are returned as *SinkError; implementations must not panic or retry.
	Record(ctx context.Context, entry *entity.AuditRecord) error
}

// Pinger is implemented by sinks that can report storage reachability
type Pinger interface {
	Ping(ctx context.Context) error
}

// AuditReader is implemented by sinks whose records can be read back
type AuditReader interface {
	// Recent returns up to limit records, newest first
	Recent(ctx context.Context, limit int) ([]*entity.AuditRecord, error)
	Count(ctx context.Context) (int64, error)
}

// SinkError wraps a storage failure with the driver that produced it
type SinkError struct {
	Driver string
	Err    error
}

func (e *SinkError) Error() string {
	return fmt.Sprintf("audit sink %s: %v", e.Driver, e.Err)
}

func (e *SinkError) Unwrap() error {
	return e.Err
}

// NewSinkError returns nil when err is nil, otherwise a *SinkError for driver
func NewSinkError(driver string, err error) error {
	if err == nil {
		return nil
	}
	var sinkErr *SinkError
	if errors.As(err, &sinkErr) {
		return err
	}
	return &SinkError{Driver: driver, Err: err}
}
