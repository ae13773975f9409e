// Package bolt provides an embedded audit sink on a bbolt file.
package bolt

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.etcd.io/bbolt"

	"github.com/niallroche/data-engineering-mlops/internal/domain/entity"
	"github.com/niallroche/data-engineering-mlops/internal/domain/repository"
	"github.com/niallroche/data-engineering-mlops/internal/infrastructure/config"
)

const (
	driver      = config.DriverBolt
	auditBucket = "api_logs"
)

// AuditStore appends audit records to a bucket keyed by creation time.
// Concurrent Record calls are coalesced into shared transactions with Batch.
type AuditStore struct {
	db *bbolt.DB
}

// Open opens (or creates) the bbolt file and its bucket
func Open(cfg *config.BoltConfig) (*AuditStore, error) {
	if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create bolt directory: %w", err)
	}

	db, err := bbolt.Open(cfg.Path, 0o600, &bbolt.Options{Timeout: cfg.OpenTimeout})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt database: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists([]byte(auditBucket)); err != nil {
			return fmt.Errorf("create %s bucket: %w", auditBucket, err)
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &AuditStore{db: db}, nil
}

// Close closes the database file
func (s *AuditStore) Close() error {
	return s.db.Close()
}

// Record stores entry under a time-ordered key
func (s *AuditStore) Record(ctx context.Context, entry *entity.AuditRecord) error {
	if err := ctx.Err(); err != nil {
		return repository.NewSinkError(driver, err)
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return repository.NewSinkError(driver, fmt.Errorf("marshal record: %w", err))
	}

	// Batch can't be cancelled; stop waiting on it when ctx ends
	done := make(chan error, 1)
	go func() {
		done <- s.db.Batch(func(tx *bbolt.Tx) error {
			return tx.Bucket([]byte(auditBucket)).Put(recordKey(entry), data)
		})
	}()

	select {
	case err := <-done:
		return repository.NewSinkError(driver, err)
	case <-ctx.Done():
		return repository.NewSinkError(driver, ctx.Err())
	}
}

// Ping reports whether the database is still open
func (s *AuditStore) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return repository.NewSinkError(driver, err)
	}
	err := s.db.View(func(tx *bbolt.Tx) error {
		if tx.Bucket([]byte(auditBucket)) == nil {
			return errors.New("bucket missing")
		}
		return nil
	})
	return repository.NewSinkError(driver, err)
}

// Recent returns up to limit records, newest first
func (s *AuditStore) Recent(ctx context.Context, limit int) ([]*entity.AuditRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, repository.NewSinkError(driver, err)
	}

	var records []*entity.AuditRecord

	err := s.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket([]byte(auditBucket)).Cursor()
		for k, v := c.Last(); k != nil && len(records) < limit; k, v = c.Prev() {
			var r entity.AuditRecord
			if err := json.Unmarshal(v, &r); err != nil {
				continue // Skip malformed records
			}
			records = append(records, &r)
		}
		return nil
	})
	if err != nil {
		return nil, repository.NewSinkError(driver, err)
	}
	return records, nil
}

// Count returns the number of stored records
func (s *AuditStore) Count(ctx context.Context) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, repository.NewSinkError(driver, err)
	}

	var n int
	err := s.db.View(func(tx *bbolt.Tx) error {
		n = tx.Bucket([]byte(auditBucket)).Stats().KeyN
		return nil
	})
	if err != nil {
		return 0, repository.NewSinkError(driver, err)
	}
	return int64(n), nil
}

// recordKey is the big-endian creation time followed by the record id,
// so keys sort chronologically and never collide.
func recordKey(entry *entity.AuditRecord) []byte {
	key := make([]byte, 8+len(entry.ID))
	binary.BigEndian.PutUint64(key, uint64(entry.CreatedAt.UnixNano()))
	copy(key[8:], entry.ID[:])
	return key
}
