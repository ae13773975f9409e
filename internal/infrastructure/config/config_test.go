package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("loads default configuration", func(t *testing.T) {
		cfg, err := Load()

		assert.NoError(t, err)
		assert.NotNil(t, cfg)

		// Check server defaults
		assert.Equal(t, "0.0.0.0", cfg.Server.Host)
		assert.Equal(t, 5000, cfg.Server.Port)
		assert.Equal(t, "debug", cfg.Server.Mode)
		assert.Equal(t, int64(1<<20), cfg.Server.MaxBodyBytes)

		// Check model defaults
		assert.Equal(t, BackendLocal, cfg.Model.Backend)
		assert.Equal(t, "model/logistic_model.json", cfg.Model.Path)
		assert.Equal(t, 4, cfg.Model.FeatureCount)
		assert.Equal(t, []int{0, 1, 2}, cfg.Model.Classes)
		assert.Equal(t, 5*time.Second, cfg.Model.Timeout)

		// Check audit defaults
		assert.True(t, cfg.Audit.Enabled)
		assert.Equal(t, DriverPostgres, cfg.Audit.Driver)
		assert.Equal(t, 2*time.Second, cfg.Audit.Timeout)
		assert.False(t, cfg.Audit.Async)

		// Check database defaults
		assert.Equal(t, "localhost", cfg.Database.Host)
		assert.Equal(t, 5432, cfg.Database.Port)
		assert.Equal(t, "postgres", cfg.Database.User)
		assert.Equal(t, "flask_logs", cfg.Database.DBName)
		assert.Equal(t, "disable", cfg.Database.SSLMode)

		// Check redis defaults
		assert.Equal(t, "localhost", cfg.Redis.Host)
		assert.Equal(t, 6379, cfg.Redis.Port)
		assert.Equal(t, "", cfg.Redis.Password)
		assert.Equal(t, "api_logs", cfg.Redis.Stream)

		// Check log defaults
		assert.Equal(t, "info", cfg.Log.Level)
		assert.Equal(t, "json", cfg.Log.Format)
		assert.Equal(t, "", cfg.Log.File)
	})

	t.Run("reads from environment variables", func(t *testing.T) {
		t.Setenv("MLOPS_SERVER_PORT", "9090")
		t.Setenv("MLOPS_DATABASE_HOST", "db.example.com")
		t.Setenv("MLOPS_LOG_LEVEL", "debug")
		t.Setenv("MLOPS_AUDIT_TIMEOUT", "750ms")
		t.Setenv("MLOPS_AUDIT_DRIVER", "bolt")

		cfg, err := Load()

		assert.NoError(t, err)
		assert.Equal(t, 9090, cfg.Server.Port)
		assert.Equal(t, "db.example.com", cfg.Database.Host)
		assert.Equal(t, "debug", cfg.Log.Level)
		assert.Equal(t, 750*time.Millisecond, cfg.Audit.Timeout)
		assert.Equal(t, DriverBolt, cfg.Audit.Driver)
	})

	t.Run("honours legacy deployment variables", func(t *testing.T) {
		t.Setenv("USE_DATABASE", "false")
		t.Setenv("POSTGRES_HOST", "db")
		t.Setenv("POSTGRES_PORT", "6543")
		t.Setenv("POSTGRES_DB", "legacy_logs")

		cfg, err := Load()

		require.NoError(t, err)
		assert.False(t, cfg.Audit.Enabled)
		assert.Equal(t, DriverNone, cfg.AuditDriver())
		assert.Equal(t, "db", cfg.Database.Host)
		assert.Equal(t, 6543, cfg.Database.Port)
		assert.Equal(t, "legacy_logs", cfg.Database.DBName)
	})

	t.Run("IS_DOCKER switches the default database host", func(t *testing.T) {
		t.Setenv("IS_DOCKER", "True")

		cfg, err := Load()

		require.NoError(t, err)
		assert.Equal(t, "db", cfg.Database.Host)
	})

	t.Run("explicit host wins over IS_DOCKER", func(t *testing.T) {
		t.Setenv("IS_DOCKER", "true")
		t.Setenv("POSTGRES_HOST", "pg.internal")

		cfg, err := Load()

		require.NoError(t, err)
		assert.Equal(t, "pg.internal", cfg.Database.Host)
	})

	t.Run("prefixed variable wins over legacy one", func(t *testing.T) {
		t.Setenv("POSTGRES_HOST", "legacy-host")
		t.Setenv("MLOPS_DATABASE_HOST", "new-host")

		cfg, err := Load()

		require.NoError(t, err)
		assert.Equal(t, "new-host", cfg.Database.Host)
	})

	t.Run("rejects unknown audit driver", func(t *testing.T) {
		t.Setenv("MLOPS_AUDIT_DRIVER", "kafka")

		_, err := Load()

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "audit.driver")
	})
}

func TestLoadFile(t *testing.T) {
	t.Run("reads YAML config file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		content := []byte(`
server:
  port: 8088
model:
  backend: remote
  remote_url: http://scorer:9000
  feature_count: 3
  classes: [1, 2]
audit:
  driver: sqlite
  async: true
  queue_size: 16
sqlite:
  path: /tmp/audit.db
`)
		require.NoError(t, os.WriteFile(path, content, 0o600))

		cfg, err := LoadFile(path)

		require.NoError(t, err)
		assert.Equal(t, 8088, cfg.Server.Port)
		assert.Equal(t, BackendRemote, cfg.Model.Backend)
		assert.Equal(t, "http://scorer:9000", cfg.Model.RemoteURL)
		assert.Equal(t, 3, cfg.Model.FeatureCount)
		assert.Equal(t, []int{1, 2}, cfg.Model.Classes)
		assert.Equal(t, DriverSQLite, cfg.Audit.Driver)
		assert.True(t, cfg.Audit.Async)
		assert.Equal(t, 16, cfg.Audit.QueueSize)
		assert.Equal(t, "/tmp/audit.db", cfg.SQLite.Path)
	})

	t.Run("missing file is an error", func(t *testing.T) {
		_, err := LoadFile(filepath.Join(t.TempDir(), "absent.yaml"))

		assert.Error(t, err)
	})
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		cfg, err := Load()
		require.NoError(t, err)
		return cfg
	}

	t.Run("defaults are valid", func(t *testing.T) {
		assert.NoError(t, base().Validate())
	})

	t.Run("bad port", func(t *testing.T) {
		cfg := base()
		cfg.Server.Port = 0
		assert.Error(t, cfg.Validate())
	})

	t.Run("unknown backend", func(t *testing.T) {
		cfg := base()
		cfg.Model.Backend = "onnx"
		assert.Error(t, cfg.Validate())
	})

	t.Run("remote backend needs classes", func(t *testing.T) {
		cfg := base()
		cfg.Model.Backend = BackendRemote
		cfg.Model.Classes = []int{0}
		assert.Error(t, cfg.Validate())
	})

	t.Run("disabled audit skips driver checks", func(t *testing.T) {
		cfg := base()
		cfg.Audit.Enabled = false
		cfg.Audit.Driver = "whatever"
		assert.NoError(t, cfg.Validate())
		assert.Equal(t, DriverNone, cfg.AuditDriver())
	})

	t.Run("async needs a queue", func(t *testing.T) {
		cfg := base()
		cfg.Audit.Async = true
		cfg.Audit.QueueSize = 0
		assert.Error(t, cfg.Validate())
	})
}
