package entity

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestNewAuditRecord(t *testing.T) {
	at := time.Date(2026, 1, 18, 12, 0, 0, 0, time.FixedZone("KST", 9*3600))
	result := &PredictionResult{Label: 2, Confidence: 0.91, ModelVersion: "iris-v1"}

	record := NewAuditRecord("req-1", []byte(`{"features":[6.3,3.3,6.0,2.5]}`), result, 1500*time.Microsecond, at)

	assert.NotEqual(t, uuid.Nil, record.ID)
	assert.Equal(t, "req-1", record.RequestID)
	assert.Equal(t, `{"features":[6.3,3.3,6.0,2.5]}`, record.RawInput)
	assert.Equal(t, 2, record.Label)
	assert.Equal(t, 0.91, record.Confidence)
	assert.Equal(t, 1.5, record.ProcessingDurationMs)
	assert.Equal(t, "iris-v1", record.ModelVersion)
	assert.Equal(t, time.UTC, record.CreatedAt.Location())
	assert.True(t, at.Equal(record.CreatedAt))
}

func TestNewAuditRecord_UniqueIDs(t *testing.T) {
	result := &PredictionResult{Label: 0, Confidence: 0.5}
	a := NewAuditRecord("", nil, result, 0, time.Now())
	b := NewAuditRecord("", nil, result, 0, time.Now())

	assert.NotEqual(t, a.ID, b.ID)
}

func TestAuditRecord_TableName(t *testing.T) {
	record := AuditRecord{}
	assert.Equal(t, "api_logs", record.TableName())
}

func TestDurationMs(t *testing.T) {
	assert.Equal(t, float64(0), DurationMs(0))
	assert.Equal(t, 250.0, DurationMs(250*time.Millisecond))
	assert.Equal(t, 0.001, DurationMs(time.Microsecond))
}
