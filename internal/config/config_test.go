package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("MINIO_ACCESS_KEY_ID", "minio")
	t.Setenv("MINIO_SECRET_ACCESS_KEY", "minio-secret")
}

func TestLoadDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.API.Port)
	assert.Equal(t, []string{"http://localhost:5173"}, cfg.API.AllowedOrigins)
	assert.Equal(t, 15*time.Minute, cfg.Auth.AccessTokenTTL)
	assert.Equal(t, "gemini-2.5-pro", cfg.Gemini.Model)
	assert.Equal(t, int64(5*1024*1024), cfg.Import.MaxBytes)
	assert.Equal(t, 50, cfg.Editor.HistorySize)
	assert.Equal(t, 9091, cfg.Worker.MetricsPort)
	assert.Equal(t, 25, cfg.Database.MaxOpenConns)
	assert.Equal(t, 30*time.Minute, cfg.Database.ConnMaxLifetime)
	assert.Equal(t, "warn", cfg.Database.LogLevel)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr())
	assert.Equal(t,
		"host=localhost port=5432 user=resumeforge password=resumeforge dbname=resumeforge sslmode=disable",
		cfg.Database.DSN())
}

func TestLoadFromEnv(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("API_PORT", "9090")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("JWT_ACCESS_TTL", "5m")
	t.Setenv("EDITOR_HISTORY_SIZE", "20")
	t.Setenv("GEMINI_API_KEY", "key")
	t.Setenv("CLAMD_ADDR", "tcp://clamav:3310")
	t.Setenv("DATABASE_MAX_OPEN_CONNS", "8")
	t.Setenv("DATABASE_LOG_LEVEL", "info")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.API.Port)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.API.AllowedOrigins)
	assert.Equal(t, 5*time.Minute, cfg.Auth.AccessTokenTTL)
	assert.Equal(t, 20, cfg.Editor.HistorySize)
	assert.Equal(t, "key", cfg.Gemini.APIKey)
	assert.Equal(t, "tcp://clamav:3310", cfg.Import.ClamdAddr)
	assert.Equal(t, 8, cfg.Database.MaxOpenConns)
	assert.Equal(t, "info", cfg.Database.LogLevel)
}

func TestLoadRejectsInvalid(t *testing.T) {
	cases := map[string][2]string{
		"missing minio key":  {"MINIO_ACCESS_KEY_ID", ""},
		"zero history":       {"EDITOR_HISTORY_SIZE", "0"},
		"negative max":       {"MAX_RESUMES_PER_USER", "-1"},
		"zero import limit":  {"IMPORT_MAX_BYTES", "0"},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			setRequiredEnv(t)
			t.Setenv(env[0], env[1])

			_, err := Load()
			assert.Error(t, err)
		})
	}
}
