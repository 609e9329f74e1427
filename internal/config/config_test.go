package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "ALLOWED_ORIGINS", "DATABASE_URL", "ADMIN_PASSWORD_HASH", "JWT_SECRET", "WS_SEND_BUFFER"} {
		t.Setenv(key, "")
	}

	cfg := Load()

	assert.Equal(t, ":3000", cfg.Server.Port)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, int64(8192), cfg.WebSocket.MaxMessageSize)
	assert.Equal(t, 256, cfg.WebSocket.SendBuffer)
	assert.Equal(t, 54*time.Second, cfg.WebSocket.PingInterval)
	assert.Empty(t, cfg.Database.URL)
	assert.False(t, cfg.AdminEnabled())
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PORT", "8081")
	t.Setenv("ALLOWED_ORIGINS", " http://a.example , ,https://b.example")
	t.Setenv("WS_SEND_BUFFER", "16")
	t.Setenv("JWT_EXPIRES_IN", "30m")
	t.Setenv("ADMIN_PASSWORD_HASH", "$2a$10$abcdefghijklmnopqrstuv")
	t.Setenv("JWT_SECRET", "secret")

	cfg := Load()

	require.NotNil(t, cfg)
	assert.Equal(t, ":8081", cfg.Server.Port)
	assert.Equal(t, []string{"http://a.example", "https://b.example"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, 16, cfg.WebSocket.SendBuffer)
	assert.Equal(t, 30*time.Minute, cfg.JWT.ExpiresIn)
	assert.True(t, cfg.AdminEnabled())
}

func TestNormalizePort(t *testing.T) {
	assert.Equal(t, ":80", normalizePort("80"))
	assert.Equal(t, ":80", normalizePort(":80"))
	assert.Equal(t, "127.0.0.1:80", normalizePort("127.0.0.1:80"))
}
