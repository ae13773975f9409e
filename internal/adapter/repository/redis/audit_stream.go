// Package redis provides an audit sink that appends records to a Redis stream.
package redis

import (
	"context"
	"strconv"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/niallroche/data-engineering-mlops/internal/domain/entity"
	"github.com/niallroche/data-engineering-mlops/internal/domain/repository"
	"github.com/niallroche/data-engineering-mlops/internal/infrastructure/config"
)

const driver = config.DriverRedis

// AuditStream writes each record as one stream entry. The stream is trimmed
// approximately to maxLen entries on every write.
type AuditStream struct {
	client goredis.UniversalClient
	stream string
	maxLen int64
}

// NewAuditStream creates a new stream sink on an existing client
func NewAuditStream(client goredis.UniversalClient, stream string, maxLen int64) *AuditStream {
	return &AuditStream{client: client, stream: stream, maxLen: maxLen}
}

// Record appends entry to the stream
func (s *AuditStream) Record(ctx context.Context, entry *entity.AuditRecord) error {
	args := &goredis.XAddArgs{
		Stream: s.stream,
		Values: recordFields(entry),
	}
	if s.maxLen > 0 {
		args.MaxLen = s.maxLen
		args.Approx = true
	}
	return repository.NewSinkError(driver, s.client.XAdd(ctx, args).Err())
}

// Ping checks the Redis connection
func (s *AuditStream) Ping(ctx context.Context) error {
	return repository.NewSinkError(driver, s.client.Ping(ctx).Err())
}

func recordFields(entry *entity.AuditRecord) map[string]interface{} {
	return map[string]interface{}{
		"id":                     entry.ID.String(),
		"request_id":             entry.RequestID,
		"input_data":             entry.RawInput,
		"prediction":             strconv.Itoa(entry.Label),
		"confidence":             strconv.FormatFloat(entry.Confidence, 'g', -1, 64),
		"processing_duration_ms": strconv.FormatFloat(entry.ProcessingDurationMs, 'g', -1, 64),
		"model_version":          entry.ModelVersion,
		"created_at":             entry.CreatedAt.Format(time.RFC3339Nano),
	}
}
