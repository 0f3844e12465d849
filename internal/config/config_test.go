package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("", "")
	require.NoError(t, err)

	assert.Equal(t, StoreFile, cfg.Store.Kind)
	assert.Equal(t, 5*time.Second, cfg.AutosaveDelay)
	assert.Equal(t, time.Duration(0), cfg.Fetch.Timeout)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "emojiart.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
store:
  kind: redis
  redis_addr: cache:6379
  redis_db: 2
autosave_delay: 250ms
fetch:
  timeout: 10s
  breaker: true
log_level: debug
`), 0o644))

	cfg, err := Load(path, "")
	require.NoError(t, err)

	assert.Equal(t, StoreRedis, cfg.Store.Kind)
	assert.Equal(t, "cache:6379", cfg.Store.RedisAddr)
	assert.Equal(t, 2, cfg.Store.RedisDB)
	assert.Equal(t, "/emojiart/autosaved", cfg.Store.Key)
	assert.Equal(t, 250*time.Millisecond, cfg.AutosaveDelay)
	assert.Equal(t, 10*time.Second, cfg.Fetch.Timeout)
	assert.True(t, cfg.Fetch.Breaker)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("EMOJIART_STORE", "memory")
	t.Setenv("EMOJIART_AUTOSAVE_DELAY", "1s")

	envFile := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("EMOJIART_LOG_LEVEL=warn\n"), 0o644))
	t.Cleanup(func() { os.Unsetenv("EMOJIART_LOG_LEVEL") })

	cfg, err := Load("", envFile)
	require.NoError(t, err)

	assert.Equal(t, StoreMemory, cfg.Store.Kind)
	assert.Equal(t, time.Second, cfg.AutosaveDelay)
	assert.Equal(t, "warn", cfg.LogLevel)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"unknown store", map[string]string{"EMOJIART_STORE": "s3"}},
		{"zero delay", map[string]string{"EMOJIART_AUTOSAVE_DELAY": "0s"}},
		{"bad delay", map[string]string{"EMOJIART_AUTOSAVE_DELAY": "soon"}},
		{"bad level", map[string]string{"EMOJIART_LOG_LEVEL": "chatty"}},
		{"redis without addr", map[string]string{"EMOJIART_STORE": "redis", "EMOJIART_REDIS_ADDR": ""}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load("", "")
			assert.Error(t, err)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), "")
	assert.Error(t, err)
}
