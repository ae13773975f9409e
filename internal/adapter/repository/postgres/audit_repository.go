package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/niallroche/data-engineering-mlops/internal/domain/entity"
	"github.com/niallroche/data-engineering-mlops/internal/domain/repository"
)

// AuditRepository stores audit records in the api_logs table through GORM.
// It serves both the postgres and sqlite drivers; driver only labels errors.
type AuditRepository struct {
	db     *gorm.DB
	driver string
}

// NewAuditRepository creates a new audit repository
func NewAuditRepository(db *gorm.DB, driver string) *AuditRepository {
	return &AuditRepository{db: db, driver: driver}
}

// Record inserts entry. Each call borrows its own connection from the pool.
func (r *AuditRepository) Record(ctx context.Context, entry *entity.AuditRecord) error {
	return repository.NewSinkError(r.driver, r.db.WithContext(ctx).Create(entry).Error)
}

// Ping checks that the database is reachable
func (r *AuditRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return repository.NewSinkError(r.driver, err)
	}
	return repository.NewSinkError(r.driver, sqlDB.PingContext(ctx))
}

// Recent returns up to limit records, newest first
func (r *AuditRepository) Recent(ctx context.Context, limit int) ([]*entity.AuditRecord, error) {
	var records []*entity.AuditRecord
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&records).Error
	if err != nil {
		return nil, repository.NewSinkError(r.driver, err)
	}
	return records, nil
}

// Count returns the number of stored records
func (r *AuditRepository) Count(ctx context.Context) (int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&entity.AuditRecord{}).Count(&total).Error; err != nil {
		return 0, repository.NewSinkError(r.driver, err)
	}
	return total, nil
}
