package audit

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/niallroche/data-engineering-mlops/internal/adapter/repository/bolt"
	"github.com/niallroche/data-engineering-mlops/internal/adapter/repository/postgres"
	redissink "github.com/niallroche/data-engineering-mlops/internal/adapter/repository/redis"
	"github.com/niallroche/data-engineering-mlops/internal/domain/entity"
	"github.com/niallroche/data-engineering-mlops/internal/domain/repository"
	"github.com/niallroche/data-engineering-mlops/internal/infrastructure/cache"
	"github.com/niallroche/data-engineering-mlops/internal/infrastructure/config"
	"github.com/niallroche/data-engineering-mlops/internal/infrastructure/database"
	"github.com/niallroche/data-engineering-mlops/internal/infrastructure/metrics"
)

// Sink is the opened audit sink together with the resources it holds
type Sink struct {
	repository.AuditSink
	Driver  string
	reader  repository.AuditReader
	closers []func(context.Context) error
}

// Reader returns the query side of the underlying store, if it has one
func (s *Sink) Reader() (repository.AuditReader, bool) {
	return s.reader, s.reader != nil
}

// Ping checks the storage behind the sink
func (s *Sink) Ping(ctx context.Context) error {
	return Ping(ctx, s.AuditSink)
}

// Close drains pending records, then releases connections and files
func (s *Sink) Close(ctx context.Context) error {
	var errs []error
	for _, closeFn := range s.closers {
		if err := closeFn(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Unavailable stands in for a configured sink that failed to open. Every
// Record and Ping reports err, so health shows the store as down.
func Unavailable(driver string, err error, m *metrics.Metrics) *Sink {
	return &Sink{
		AuditSink: NewInstrumentedSink(unavailableSink{driver: driver, err: err}, m),
		Driver:    driver,
	}
}

type unavailableSink struct {
	driver string
	err    error
}

func (s unavailableSink) Record(context.Context, *entity.AuditRecord) error {
	return repository.NewSinkError(s.driver, fmt.Errorf("unavailable: %w", s.err))
}

func (s unavailableSink) Ping(context.Context) error {
	return repository.NewSinkError(s.driver, fmt.Errorf("unavailable: %w", s.err))
}

// Open builds the sink selected by cfg.AuditDriver. Storage that is down at
// startup is not fatal for postgres and redis: writes fail per request until it
// comes back.
func Open(cfg *config.Config, logger *zap.Logger, m *metrics.Metrics) (*Sink, error) {
	driver := cfg.AuditDriver()
	sink := &Sink{Driver: driver}

	var base repository.AuditSink
	switch driver {
	case config.DriverNone:
		sink.AuditSink = NoopSink{}
		return sink, nil

	case config.DriverPostgres:
		db, err := database.NewPostgresDB(&cfg.Database, logger)
		if err != nil {
			return nil, err
		}
		if err := database.AutoMigrate(db); err != nil {
			logger.Warn("Audit table migration failed, run the migrate command once the database is reachable",
				zap.Error(err),
			)
		}
		base = postgres.NewAuditRepository(db, driver)
		sink.closers = append(sink.closers, func(context.Context) error { return database.Close(db) })

	case config.DriverSQLite:
		db, err := database.NewSQLiteDB(&cfg.SQLite, logger)
		if err != nil {
			return nil, err
		}
		if err := database.AutoMigrate(db); err != nil {
			_ = database.Close(db)
			return nil, fmt.Errorf("failed to migrate sqlite audit table: %w", err)
		}
		base = postgres.NewAuditRepository(db, driver)
		sink.closers = append(sink.closers, func(context.Context) error { return database.Close(db) })

	case config.DriverBolt:
		store, err := bolt.Open(&cfg.Bolt)
		if err != nil {
			return nil, err
		}
		base = store
		sink.closers = append(sink.closers, func(context.Context) error { return store.Close() })

	case config.DriverRedis:
		client, err := cache.NewRedisClient(&cfg.Redis)
		if err != nil {
			logger.Warn("Redis unreachable at startup", zap.Error(err))
			client = cache.NewClient(&cfg.Redis)
		}
		base = redissink.NewAuditStream(client, cfg.Redis.Stream, cfg.Redis.MaxLen)
		sink.closers = append(sink.closers, func(context.Context) error { return client.Close() })

	default:
		return nil, fmt.Errorf("unsupported audit driver %q", driver)
	}

	if r, ok := base.(repository.AuditReader); ok {
		sink.reader = r
	}
	sink.AuditSink = NewInstrumentedSink(base, m)

	if cfg.Audit.Async {
		async := NewAsyncSink(sink.AuditSink, cfg.Audit.QueueSize, cfg.Audit.Timeout, logger, m)
		sink.AuditSink = async
		// drain before the storage underneath is closed
		sink.closers = append([]func(context.Context) error{async.Close}, sink.closers...)
	}

	return sink, nil
}
