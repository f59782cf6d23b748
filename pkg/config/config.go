// Package config loads the service configuration from environment variables,
// with an optional .env file for local development. Component thresholds keep
// their in-code defaults; the environment overrides the deployment-level
// knobs.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/cast"

	"github.com/leon-madara/ResonaAI-sub003/pkg/baseline"
	"github.com/leon-madara/ResonaAI-sub003/pkg/cache"
	"github.com/leon-madara/ResonaAI-sub003/pkg/emotion"
	"github.com/leon-madara/ResonaAI-sub003/pkg/engine"
	"github.com/leon-madara/ResonaAI-sub003/pkg/features"
	"github.com/leon-madara/ResonaAI-sub003/pkg/logger"
	"github.com/leon-madara/ResonaAI-sub003/pkg/preprocess"
	"github.com/leon-madara/ResonaAI-sub003/pkg/sentiment"
	"github.com/leon-madara/ResonaAI-sub003/pkg/streaming"
)

// Config is the full service configuration.
type Config struct {
	Server    ServerConfig             `mapstructure:"server"`
	Database  DatabaseConfig           `mapstructure:"database"`
	Log       logger.LogConfig         `mapstructure:"log"`
	Cache     cache.Config             `mapstructure:"cache"`
	Engine    engine.Config            `mapstructure:"engine"`
	Audio     preprocess.Config        `mapstructure:"audio"`
	Features  features.Config          `mapstructure:"features"`
	Embedding features.EmbeddingConfig `mapstructure:"embedding"`
	Emotion   emotion.Config           `mapstructure:"emotion"`
	Sentiment SentimentConfig          `mapstructure:"sentiment"`
	Baseline  baseline.Config          `mapstructure:"baseline"`
	Streaming streaming.Config         `mapstructure:"streaming"`
}

// ServerConfig covers the HTTP surface.
type ServerConfig struct {
	Addr          string `mapstructure:"addr" validate:"required"`
	Mode          string `mapstructure:"mode"`
	APIPrefix     string `mapstructure:"api_prefix"`
	MonitorPrefix string `mapstructure:"monitor_prefix"`
}

// DatabaseConfig selects the baseline store backend.
type DatabaseConfig struct {
	Driver string `mapstructure:"driver" validate:"oneof=sqlite postgres memory"`
	DSN    string `mapstructure:"dsn"`
}

// SentimentConfig selects the sentiment model and its cache.
type SentimentConfig struct {
	// Provider is "remote" or "lexicon".
	Provider string                 `mapstructure:"provider" validate:"oneof=remote lexicon"`
	Analyzer sentiment.Config       `mapstructure:"analyzer"`
	Remote   sentiment.RemoteConfig `mapstructure:"remote"`
}

var GlobalConfig *Config

// Load reads the environment into GlobalConfig. A missing .env file is not
// an error; defaults cover local development.
func Load() error {
	if path := getStringOrDefault("ENV_FILE", ".env"); path != "" {
		if err := godotenv.Load(path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("load env file: %w", err)
		}
	}

	embedding := features.DefaultEmbeddingConfig()
	embedding.BaseURL = getStringOrDefault("EMBEDDING_BASE_URL", embedding.BaseURL)
	embedding.APIKey = getStringOrDefault("EMBEDDING_API_KEY", embedding.APIKey)
	embedding.Dimension = getIntOrDefault("EMBEDDING_DIMENSION", embedding.Dimension)
	embedding.Timeout = getDurationOrDefault("EMBEDDING_TIMEOUT", embedding.Timeout)

	emotionCfg := emotion.DefaultConfig()
	emotionCfg.ModelPath = getStringOrDefault("EMOTION_MODEL_PATH", emotionCfg.ModelPath)
	emotionCfg.MinConfidence = getFloatOrDefault("EMOTION_MIN_CONFIDENCE", emotionCfg.MinConfidence)

	remote := sentiment.DefaultRemoteConfig()
	remote.BaseURL = getStringOrDefault("SENTIMENT_BASE_URL", remote.BaseURL)
	remote.APIKey = getStringOrDefault("SENTIMENT_API_KEY", remote.APIKey)
	remote.Timeout = getDurationOrDefault("SENTIMENT_TIMEOUT", remote.Timeout)

	analyzerCfg := sentiment.DefaultConfig()
	analyzerCfg.CacheSize = getIntOrDefault("SENTIMENT_CACHE_SIZE", analyzerCfg.CacheSize)

	baselineCfg := baseline.DefaultConfig()
	baselineCfg.MinSessions = getIntOrDefault("BASELINE_MIN_SESSIONS", baselineCfg.MinSessions)

	engineCfg := engine.DefaultConfig()
	engineCfg.RequestTimeout = getDurationOrDefault("REQUEST_TIMEOUT", engineCfg.RequestTimeout)
	engineCfg.Workers = getIntOrDefault("ANALYSIS_WORKERS", engineCfg.Workers)

	streamCfg := streaming.DefaultConfig()
	streamCfg.MaxBufferSec = getFloatOrDefault("STREAM_MAX_BUFFER_SEC", streamCfg.MaxBufferSec)
	streamCfg.IdleTimeout = getDurationOrDefault("STREAM_IDLE_TIMEOUT", streamCfg.IdleTimeout)
	streamCfg.VAD.SpeechThreshold = getFloatOrDefault("VAD_SPEECH_THRESHOLD", streamCfg.VAD.SpeechThreshold)
	streamCfg.VAD.SilenceThreshold = getFloatOrDefault("VAD_SILENCE_THRESHOLD", streamCfg.VAD.SilenceThreshold)
	streamCfg.VAD.SilenceFrames = getIntOrDefault("VAD_SILENCE_FRAMES", streamCfg.VAD.SilenceFrames)

	GlobalConfig = &Config{
		Server: ServerConfig{
			Addr:          getStringOrDefault("ADDR", ":7080"),
			Mode:          getStringOrDefault("MODE", "development"),
			APIPrefix:     getStringOrDefault("API_PREFIX", "/api"),
			MonitorPrefix: getStringOrDefault("MONITOR_PREFIX", "/metrics"),
		},
		Database: DatabaseConfig{
			Driver: getStringOrDefault("DB_DRIVER", "sqlite"),
			DSN:    getStringOrDefault("DSN", "./resona.db"),
		},
		Log: logger.LogConfig{
			Level:      getStringOrDefault("LOG_LEVEL", "info"),
			Filename:   getStringOrDefault("LOG_FILENAME", "./logs/app.log"),
			MaxSize:    getIntOrDefault("LOG_MAX_SIZE", 100),
			MaxAge:     getIntOrDefault("LOG_MAX_AGE", 30),
			MaxBackups: getIntOrDefault("LOG_MAX_BACKUPS", 5),
			Daily:      getBoolOrDefault("LOG_DAILY", true),
		},
		Cache:     loadCacheConfig(),
		Engine:    engineCfg,
		Audio:     preprocess.DefaultConfig(),
		Features:  features.DefaultConfig(),
		Embedding: embedding,
		Emotion:   emotionCfg,
		Sentiment: SentimentConfig{
			Provider: getStringOrDefault("SENTIMENT_PROVIDER", "lexicon"),
			Analyzer: analyzerCfg,
			Remote:   remote,
		},
		Baseline:  baselineCfg,
		Streaming: streamCfg,
	}
	return nil
}

// Validate checks the loaded configuration.
func (c *Config) Validate() error {
	v := validator.New()
	if err := v.Struct(c); err != nil {
		return fmt.Errorf("config validation: %w", err)
	}
	if c.Database.Driver != "memory" && c.Database.DSN == "" {
		return fmt.Errorf("database DSN is required for driver %q", c.Database.Driver)
	}
	return nil
}

func loadCacheConfig() cache.Config {
	cfg := cache.DefaultConfig()
	cfg.Type = getStringOrDefault("CACHE_TYPE", cfg.Type)
	cfg.Redis.Addr = getStringOrDefault("REDIS_ADDR", cfg.Redis.Addr)
	cfg.Redis.Password = getStringOrDefault("REDIS_PASSWORD", cfg.Redis.Password)
	cfg.Redis.DB = getIntOrDefault("REDIS_DB", cfg.Redis.DB)
	cfg.Redis.PoolSize = getIntOrDefault("REDIS_POOL_SIZE", cfg.Redis.PoolSize)
	cfg.Redis.MinIdleConns = getIntOrDefault("REDIS_MIN_IDLE_CONNS", cfg.Redis.MinIdleConns)
	cfg.Local.DefaultExpiration = getDurationOrDefault("LOCAL_CACHE_DEFAULT_EXPIRATION", cfg.Local.DefaultExpiration)
	cfg.Local.CleanupInterval = getDurationOrDefault("LOCAL_CACHE_CLEANUP_INTERVAL", cfg.Local.CleanupInterval)
	return cfg
}

func getStringOrDefault(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getBoolOrDefault(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return cast.ToBool(value)
}

func getIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return cast.ToInt(value)
}

func getFloatOrDefault(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return cast.ToFloat64(value)
}

func getDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return d
}
