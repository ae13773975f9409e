package entity

import (
	"time"

	"github.com/google/uuid"
)

// AuditRecord represents one logged prediction request
type AuditRecord struct {
	ID                   uuid.UUID `json:"id" gorm:"type:uuid;primary_key"`
	RequestID            string    `json:"request_id" gorm:"type:varchar(64);index"`
	RawInput             string    `json:"input_data" gorm:"column:input_data;type:text;not null"`
	Label                int       `json:"prediction" gorm:"column:prediction;not null"`
	Confidence           float64   `json:"confidence"`
	ProcessingDurationMs float64   `json:"processing_duration_ms"`
	ModelVersion         string    `json:"model_version" gorm:"type:varchar(64)"`
	CreatedAt            time.Time `json:"created_at" gorm:"index"`
}

// TableName returns the table name for GORM
func (AuditRecord) TableName() string {
	return "api_logs"
}

// NewAuditRecord creates an AuditRecord for a completed prediction
func NewAuditRecord(requestID string, rawInput []byte, result *PredictionResult, elapsed time.Duration, at time.Time) *AuditRecord {
	return &AuditRecord{
		ID:                   uuid.New(),
		RequestID:            requestID,
		RawInput:             string(rawInput),
		Label:                result.Label,
		Confidence:           result.Confidence,
		ProcessingDurationMs: DurationMs(elapsed),
		ModelVersion:         result.ModelVersion,
		CreatedAt:            at.UTC(),
	}
}

// DurationMs converts d to fractional milliseconds
func DurationMs(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
