package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	t.Setenv("SERVER_PORT", "8080")
	t.Setenv("PUBLIC_BASE_URL", "https://blog.example.com/")
	t.Setenv("STORE_DRIVER", "Postgres")
	t.Setenv("DB_HOST", "db")
	t.Setenv("DB_USER", "testuser")
	t.Setenv("DB_PASSWORD", "testpass")
	t.Setenv("DB_NAME", "testdb")
	t.Setenv("REDIS_HOST", "cache")
	t.Setenv("REDIS_DB", "2")
	t.Setenv("CACHE_TTL", "1m")
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("AUTH_REQUIRED", "true")
	t.Setenv("MEDIA_DRIVER", "s3")
	t.Setenv("UPLOAD_MAX_BYTES", "2048")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example.com, https://b.example.com")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, "https://blog.example.com", cfg.PublicBaseURL)
	assert.Equal(t, StorePostgres, cfg.StoreDriver)
	assert.Equal(t, "db", cfg.DBHost)
	assert.Equal(t, "testuser", cfg.DBUser)
	assert.Equal(t, "testpass", cfg.DBPassword)
	assert.Equal(t, "testdb", cfg.DBName)
	assert.Equal(t, "cache", cfg.RedisHost)
	assert.Equal(t, 2, cfg.RedisDB)
	assert.Equal(t, time.Minute, cfg.CacheTTL)
	assert.Equal(t, "test-secret", cfg.JWTSecret)
	assert.True(t, cfg.AuthRequired)
	assert.Equal(t, MediaS3, cfg.MediaDriver)
	assert.Equal(t, int64(2048), cfg.UploadMaxBytes)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.CORSAllowedOrigins)
	assert.True(t, cfg.RedisEnabled())
}

func TestLoadConfig_Defaults(t *testing.T) {
	for _, key := range []string{"SERVER_PORT", "STORE_DRIVER", "MEDIA_DRIVER", "AUTH_REQUIRED", "RABBITMQ_HOST", "UPLOAD_MAX_BYTES", "REQUEST_TIMEOUT"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "5000", cfg.ServerPort)
	assert.Equal(t, StoreMongo, cfg.StoreDriver)
	assert.Equal(t, MediaLocal, cfg.MediaDriver)
	assert.Equal(t, int64(10<<20), cfg.UploadMaxBytes)
	assert.Equal(t, 15*time.Second, cfg.RequestTimeout)
	assert.False(t, cfg.QueueEnabled())
}

func TestLoadConfig_InvalidValues(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "unknown store", env: map[string]string{"STORE_DRIVER": "sqlite"}},
		{name: "unknown media", env: map[string]string{"MEDIA_DRIVER": "ftp"}},
		{name: "auth without secret", env: map[string]string{"AUTH_REQUIRED": "true", "JWT_SECRET": ""}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestGetEnvHelpers_FallBackOnGarbage(t *testing.T) {
	t.Setenv("TEST_INT", "twelve")
	t.Setenv("TEST_BOOL", "maybe")
	t.Setenv("TEST_DURATION", "soon")

	assert.Equal(t, 12, getEnvInt("TEST_INT", 12))
	assert.True(t, getEnvBool("TEST_BOOL", true))
	assert.Equal(t, time.Second, getEnvDuration("TEST_DURATION", time.Second))
}
