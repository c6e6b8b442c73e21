package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadFromDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	c, err := LoadFrom(filepath.Join(t.TempDir(), "missing.json"))
	require.NoError(t, err)

	assert.Equal(t, "8080", c.AppPort)
	assert.Equal(t, "memory", c.StorageBackend)
	assert.Equal(t, []string{"*"}, c.AllowedOrigins)
	assert.Equal(t, 60, c.RateLimitPerMinute)
	assert.Equal(t, 10*time.Second, c.ScoreTimeout())
	assert.Equal(t, 24*time.Hour, c.QuestInterval())
	assert.Equal(t, time.Hour, c.CacheTTL())
	assert.False(t, c.AIEnabled())
}

func TestLoadFromRequiresSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	_, err := LoadFrom(filepath.Join(t.TempDir(), "missing.json"))
	assert.ErrorContains(t, err, "JWT_SECRET")
}

func TestLoadFromFileThenEnv(t *testing.T) {
	path := writeConfig(t, `{
		"app": {"AppPort": "9000", "JWTSecret": "from-file", "AllowedOrigins": ["https://a.example"], "Timezone": "Europe/Berlin"},
		"storage": {"Backend": "redis"},
		"redis": {"RedisHost": "cache", "RedisDB": 2},
		"log": {"Level": "debug", "Compress": true},
		"ai": {"GeminiAPIKey": "k", "ScoreTimeoutSec": 3}
	}`)
	t.Setenv("JWT_SECRET", "")
	t.Setenv("APP_PORT", "9100")
	t.Setenv("REDIS_DB", "0")
	t.Setenv("LOG_COMPRESS", "false")
	t.Setenv("CORS_ALLOWED_ORIGINS", " https://b.example , ,https://c.example")

	c, err := LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, "9100", c.AppPort)
	assert.Equal(t, "from-file", c.JWTSecret)
	assert.Equal(t, "redis", c.StorageBackend)
	assert.Equal(t, "cache", c.RedisHost)
	assert.Equal(t, 0, c.RedisDB)
	assert.False(t, c.LogCompress)
	assert.Equal(t, "debug", c.LogLevel)
	assert.Equal(t, []string{"https://b.example", "https://c.example"}, c.AllowedOrigins)
	assert.Equal(t, 3*time.Second, c.ScoreTimeout())
	assert.True(t, c.AIEnabled())

	loc, err := c.Location()
	require.NoError(t, err)
	assert.Equal(t, "Europe/Berlin", loc.String())
}

func TestLoadFromRejectsBadInput(t *testing.T) {
	t.Setenv("JWT_SECRET", "x")

	_, err := LoadFrom(writeConfig(t, `{"app": `))
	assert.Error(t, err)

	t.Setenv("RATE_LIMIT_PER_MINUTE", "lots")
	_, err = LoadFrom(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestLoadFromRejectsUnknownTimezone(t *testing.T) {
	t.Setenv("JWT_SECRET", "x")
	t.Setenv("APP_TIMEZONE", "Mars/Olympus")
	_, err := LoadFrom(filepath.Join(t.TempDir(), "missing.json"))
	assert.ErrorContains(t, err, "timezone")
}

func TestDSN(t *testing.T) {
	c := AppConfig{DBUser: "u", DBPassword: "p", DBHost: "h", DBPort: "3307", DBName: "game"}
	assert.Equal(t, "u:p@tcp(h:3307)/game?charset=utf8mb4&parseTime=True&loc=Local", c.DSN())
	c.DatabaseURI = "custom"
	assert.Equal(t, "custom", c.DSN())
}
