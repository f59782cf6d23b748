// Package cache provides the result cache behind the API layer. Analysis
// results are keyed by session id so clients can re-fetch a judgment without
// re-running the pipeline.
package cache

import (
	"context"
	"time"
)

// Cache is the backend-neutral interface. Values must be JSON-serializable
// when the redis backend is in use.
type Cache interface {
	Get(ctx context.Context, key string) (interface{}, bool)
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) bool
	Clear(ctx context.Context) error
	GetWithTTL(ctx context.Context, key string) (interface{}, time.Duration, bool)
	Close() error
}

// Config selects and tunes the backend.
type Config struct {
	// Type is "local" or "redis".
	Type  string      `mapstructure:"type"`
	Redis RedisConfig `mapstructure:"redis"`
	Local LocalConfig `mapstructure:"local"`
}

// RedisConfig tunes the redis backend.
type RedisConfig struct {
	Addr         string        `mapstructure:"addr"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	PoolSize     int           `mapstructure:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// LocalConfig tunes the in-process backend.
type LocalConfig struct {
	DefaultExpiration time.Duration `mapstructure:"default_expiration"`
	CleanupInterval   time.Duration `mapstructure:"cleanup_interval"`
}

// DefaultConfig returns a local cache with short result retention.
func DefaultConfig() Config {
	return Config{
		Type: TypeLocal,
		Redis: RedisConfig{
			Addr:         "localhost:6379",
			PoolSize:     10,
			MinIdleConns: 5,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		},
		Local: LocalConfig{
			DefaultExpiration: 10 * time.Minute,
			CleanupInterval:   15 * time.Minute,
		},
	}
}
