package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable read by Load
const EnvPrefix = "MLOPS"

// Audit sink drivers
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverBolt     = "bolt"
	DriverRedis    = "redis"
	DriverNone     = "none"
)

// Model backends
const (
	BackendLocal  = "local"
	BackendRemote = "remote"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Model    ModelConfig    `mapstructure:"model"`
	Audit    AuditConfig    `mapstructure:"audit"`
	Database DatabaseConfig `mapstructure:"database"`
	SQLite   SQLiteConfig   `mapstructure:"sqlite"`
	Bolt     BoltConfig     `mapstructure:"bolt"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Log      LogConfig      `mapstructure:"log"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	Mode            string        `mapstructure:"mode"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	MaxBodyBytes    int64         `mapstructure:"max_body_bytes"`
}

// ModelConfig selects and parameterises the classifier
type ModelConfig struct {
	Backend string `mapstructure:"backend"`
	// Path is the artifact for the local backend (.json, .yaml or .yml)
	Path string `mapstructure:"path"`
	// RemoteURL, FeatureCount and Classes describe the remote backend
	RemoteURL    string        `mapstructure:"remote_url"`
	Timeout      time.Duration `mapstructure:"timeout"`
	FeatureCount int           `mapstructure:"feature_count"`
	Classes      []int         `mapstructure:"classes"`
	Version      string        `mapstructure:"version"`
	// CacheSize enables an LRU prediction cache when positive
	CacheSize int `mapstructure:"cache_size"`
}

// AuditConfig holds audit log configuration
type AuditConfig struct {
	Enabled   bool          `mapstructure:"enabled"`
	Driver    string        `mapstructure:"driver"`
	Timeout   time.Duration `mapstructure:"timeout"`
	Async     bool          `mapstructure:"async"`
	QueueSize int           `mapstructure:"queue_size"`
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	Host           string        `mapstructure:"host"`
	Port           int           `mapstructure:"port"`
	User           string        `mapstructure:"user"`
	Password       string        `mapstructure:"password"`
	DBName         string        `mapstructure:"dbname"`
	SSLMode        string        `mapstructure:"sslmode"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
	MaxIdleConns   int           `mapstructure:"max_idle_conns"`
	MaxOpenConns   int           `mapstructure:"max_open_conns"`
}

// SQLiteConfig holds SQLite configuration
type SQLiteConfig struct {
	Path string `mapstructure:"path"`
}

// BoltConfig holds bbolt configuration
type BoltConfig struct {
	Path        string        `mapstructure:"path"`
	OpenTimeout time.Duration `mapstructure:"open_timeout"`
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Stream   string `mapstructure:"stream"`
	MaxLen   int64  `mapstructure:"max_len"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

// Load reads configuration from defaults, a .env file and the environment
func Load() (*Config, error) {
	return LoadFile("")
}

// LoadFile is Load with an optional YAML config file layered under the environment
func LoadFile(path string) (*Config, error) {
	// a missing .env is the normal case outside local development
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := bindLegacyEnv(v); err != nil {
		return nil, err
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 5000)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.shutdown_timeout", 30*time.Second)
	v.SetDefault("server.max_body_bytes", 1<<20)

	v.SetDefault("model.backend", BackendLocal)
	v.SetDefault("model.path", "model/logistic_model.json")
	v.SetDefault("model.remote_url", "http://localhost:8000")
	v.SetDefault("model.timeout", 5*time.Second)
	v.SetDefault("model.feature_count", 4)
	v.SetDefault("model.classes", []int{0, 1, 2})
	v.SetDefault("model.version", "remote")
	v.SetDefault("model.cache_size", 0)

	v.SetDefault("audit.enabled", true)
	v.SetDefault("audit.driver", DriverPostgres)
	v.SetDefault("audit.timeout", 2*time.Second)
	v.SetDefault("audit.async", false)
	v.SetDefault("audit.queue_size", 1024)

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "")
	v.SetDefault("database.dbname", "flask_logs")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.connect_timeout", 5*time.Second)
	v.SetDefault("database.max_idle_conns", 10)
	v.SetDefault("database.max_open_conns", 100)

	v.SetDefault("sqlite.path", "data/audit.db")

	v.SetDefault("bolt.path", "data/audit.bolt")
	v.SetDefault("bolt.open_timeout", time.Second)

	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.stream", "api_logs")
	v.SetDefault("redis.max_len", 100000)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size_mb", 100)
	v.SetDefault("log.max_backups", 3)
	v.SetDefault("log.max_age_days", 28)
	v.SetDefault("log.compress", false)
}

// bindLegacyEnv keeps the pre-prefix deployment variable names working.
// Prefixed names win when both are set. IS_DOCKER=true only moves the default
// database host to the compose service name "db".
func bindLegacyEnv(v *viper.Viper) error {
	if strings.EqualFold(os.Getenv("IS_DOCKER"), "true") {
		v.SetDefault("database.host", "db")
	}

	legacy := map[string]string{
		"audit.enabled":     "USE_DATABASE",
		"database.dbname":   "POSTGRES_DB",
		"database.user":     "POSTGRES_USER",
		"database.password": "POSTGRES_PASSWORD",
		"database.host":     "POSTGRES_HOST",
		"database.port":     "POSTGRES_PORT",
	}
	for key, name := range legacy {
		prefixed := EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, prefixed, name); err != nil {
			return fmt.Errorf("failed to bind %s: %w", name, err)
		}
	}
	return nil
}

// Validate checks cross-field constraints
func (c *Config) Validate() error {
	var errs []error

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port %d out of range", c.Server.Port))
	}

	switch c.Model.Backend {
	case BackendLocal:
		if c.Model.Path == "" {
			errs = append(errs, errors.New("model.path is required for the local backend"))
		}
	case BackendRemote:
		if c.Model.RemoteURL == "" {
			errs = append(errs, errors.New("model.remote_url is required for the remote backend"))
		}
		if c.Model.FeatureCount <= 0 {
			errs = append(errs, errors.New("model.feature_count must be positive"))
		}
		if len(c.Model.Classes) < 2 {
			errs = append(errs, errors.New("model.classes needs at least two classes"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown model.backend %q", c.Model.Backend))
	}

	if c.Audit.Enabled {
		switch c.Audit.Driver {
		case DriverPostgres, DriverSQLite, DriverBolt, DriverRedis, DriverNone:
		default:
			errs = append(errs, fmt.Errorf("unknown audit.driver %q", c.Audit.Driver))
		}
		if c.Audit.Timeout <= 0 {
			errs = append(errs, errors.New("audit.timeout must be positive"))
		}
		if c.Audit.Async && c.Audit.QueueSize <= 0 {
			errs = append(errs, errors.New("audit.queue_size must be positive when audit.async is set"))
		}
	}

	return errors.Join(errs...)
}

// AuditDriver returns the effective sink driver, folding the enabled switch in
func (c *Config) AuditDriver() string {
	if !c.Audit.Enabled {
		return DriverNone
	}
	return c.Audit.Driver
}
