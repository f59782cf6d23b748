package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("ENV_FILE", "nonexistent.env")

	require.NoError(t, Load())
	require.NotNil(t, GlobalConfig)

	assert.Equal(t, ":7080", GlobalConfig.Server.Addr)
	assert.Equal(t, "/api", GlobalConfig.Server.APIPrefix)
	assert.Equal(t, "sqlite", GlobalConfig.Database.Driver)
	assert.Equal(t, "lexicon", GlobalConfig.Sentiment.Provider)
	assert.Equal(t, 3, GlobalConfig.Baseline.MinSessions)
	assert.Equal(t, 4, GlobalConfig.Engine.Workers)
	assert.Equal(t, 30*time.Second, GlobalConfig.Engine.RequestTimeout)
	assert.Equal(t, 16000, GlobalConfig.Streaming.SampleRate)
	assert.Equal(t, 0.015, GlobalConfig.Streaming.VAD.SpeechThreshold)
	assert.Equal(t, "local", GlobalConfig.Cache.Type)

	require.NoError(t, GlobalConfig.Validate())
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("ENV_FILE", "nonexistent.env")
	t.Setenv("ADDR", ":9090")
	t.Setenv("DB_DRIVER", "memory")
	t.Setenv("SENTIMENT_PROVIDER", "remote")
	t.Setenv("SENTIMENT_BASE_URL", "http://sentiment:8007")
	t.Setenv("BASELINE_MIN_SESSIONS", "5")
	t.Setenv("ANALYSIS_WORKERS", "8")
	t.Setenv("REQUEST_TIMEOUT", "45s")
	t.Setenv("VAD_SILENCE_FRAMES", "30")
	t.Setenv("CACHE_TYPE", "redis")
	t.Setenv("REDIS_ADDR", "redis:6379")

	require.NoError(t, Load())

	assert.Equal(t, ":9090", GlobalConfig.Server.Addr)
	assert.Equal(t, "memory", GlobalConfig.Database.Driver)
	assert.Equal(t, "remote", GlobalConfig.Sentiment.Provider)
	assert.Equal(t, "http://sentiment:8007", GlobalConfig.Sentiment.Remote.BaseURL)
	assert.Equal(t, 5, GlobalConfig.Baseline.MinSessions)
	assert.Equal(t, 8, GlobalConfig.Engine.Workers)
	assert.Equal(t, 45*time.Second, GlobalConfig.Engine.RequestTimeout)
	assert.Equal(t, 30, GlobalConfig.Streaming.VAD.SilenceFrames)
	assert.Equal(t, "redis", GlobalConfig.Cache.Type)
	assert.Equal(t, "redis:6379", GlobalConfig.Cache.Redis.Addr)

	require.NoError(t, GlobalConfig.Validate())
}

func TestValidate_RejectsBadValues(t *testing.T) {
	t.Setenv("ENV_FILE", "nonexistent.env")

	t.Setenv("DB_DRIVER", "oracle")
	require.NoError(t, Load())
	assert.Error(t, GlobalConfig.Validate())

	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("BASELINE_MIN_SESSIONS", "9")
	require.NoError(t, Load())
	assert.Error(t, GlobalConfig.Validate())

	t.Setenv("BASELINE_MIN_SESSIONS", "4")
	t.Setenv("SENTIMENT_PROVIDER", "none")
	require.NoError(t, Load())
	assert.Error(t, GlobalConfig.Validate())
}

func TestValidate_MemoryDriverNeedsNoDSN(t *testing.T) {
	t.Setenv("ENV_FILE", "nonexistent.env")
	t.Setenv("DB_DRIVER", "memory")
	t.Setenv("DSN", "")

	require.NoError(t, Load())
	// DSN falls back to its default, which memory ignores.
	require.NoError(t, GlobalConfig.Validate())
}
