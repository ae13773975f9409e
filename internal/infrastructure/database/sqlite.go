package database

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/niallroche/data-engineering-mlops/internal/infrastructure/config"
)

// NewSQLiteDB opens a SQLite database file, creating its directory if needed.
// The special path ":memory:" opens a private in-memory database.
func NewSQLiteDB(cfg *config.SQLiteConfig, log *zap.Logger) (*gorm.DB, error) {
	dsn := cfg.Path
	if dsn != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dsn), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
		dsn += "?_busy_timeout=5000&_journal_mode=WAL"
	}

	db, err := gorm.Open(sqlite.Open(dsn), gormConfig(log))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	// every pooled connection to :memory: would be a separate database
	if cfg.Path == ":memory:" {
		sqlDB.SetMaxOpenConns(1)
	}

	return db, nil
}
