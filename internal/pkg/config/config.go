package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

const (
	BackendMongo = "mongo"
	BackendRedis = "redis"
)

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	// StoreBackend selects the durable store: "mongo" or "redis".
	StoreBackend string `env:"STORE_BACKEND, default=mongo"`

	// ShutdownTimeout bounds the graceful shutdown of the HTTP server.
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT, default=10s"`

	Log      LogConfig
	Mongo    MongoConfig
	Redis    RedisConfig
	Writes   WriteConfig
	Realtime RealtimeConfig
}

type LogConfig struct {
	File       string `env:"LOG_FILE"`
	MaxSizeMB  int    `env:"LOG_MAX_SIZE_MB,  default=100"`
	MaxBackups int    `env:"LOG_MAX_BACKUPS,  default=5"`
	MaxAgeDays int    `env:"LOG_MAX_AGE_DAYS, default=14"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=bus_tracking"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"REDIS_DB,   default=0"`
}

// WriteConfig tunes the write-through dispatcher.
type WriteConfig struct {
	Workers int `env:"WRITE_WORKERS, default=4"`
	Buffer  int `env:"WRITE_BUFFER,  default=256"`
}

// RealtimeConfig tunes the websocket channels.
type RealtimeConfig struct {
	SendBuffer   int           `env:"SEND_BUFFER,   default=32"`
	WriteTimeout time.Duration `env:"WRITE_TIMEOUT, default=5s"`
	PingInterval time.Duration `env:"PING_INTERVAL, default=30s"`
}

// IsDevelopment reports whether pretty console logging should be used.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// Validate rejects settings the process cannot run with.
func (c *Config) Validate() error {
	switch c.StoreBackend {
	case BackendMongo, BackendRedis:
	default:
		return fmt.Errorf("config: unknown STORE_BACKEND %q", c.StoreBackend)
	}
	if c.Writes.Workers <= 0 {
		return fmt.Errorf("config: WRITE_WORKERS must be positive, got %d", c.Writes.Workers)
	}
	if c.Realtime.SendBuffer <= 0 {
		return fmt.Errorf("config: SEND_BUFFER must be positive, got %d", c.Realtime.SendBuffer)
	}
	return nil
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	cfg, err := LoadFrom(context.Background(), envconfig.OsLookuper())
	if err != nil {
		panic(err.Error())
	}
	return cfg
}

// LoadFrom is Load with an explicit lookuper, so tests can supply a map.
func LoadFrom(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, fmt.Errorf("config: failed to load configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
