package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", "test-secret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8083", cfg.Port)
	assert.Equal(t, "9093", cfg.GRPCPort)
	assert.Equal(t, "HS256", cfg.JWTAlgorithm)
	assert.Equal(t, time.Hour, cfg.JWTExpiration)
	assert.Equal(t, "social.events", cfg.AMQPExchange)
	assert.Equal(t, 5*time.Minute, cfg.ProfileCacheTTL)
	assert.Equal(t, []string{"http://localhost:5173"}, cfg.CORSAllowedOrigins)
	assert.False(t, cfg.DebugRoutes)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", "test-secret")
	t.Setenv("JWT_ALGORITHM", "hs512")
	t.Setenv("JWT_EXPIRATION_MINUTES", "15")
	t.Setenv("PORT", "9000")
	t.Setenv("DEBUG_ROUTES", "true")
	t.Setenv("PROFILE_CACHE_TTL", "30s")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://a.test, http://b.test")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "HS512", cfg.JWTAlgorithm)
	assert.Equal(t, 15*time.Minute, cfg.JWTExpiration)
	assert.Equal(t, "9000", cfg.Port)
	assert.True(t, cfg.DebugRoutes)
	assert.Equal(t, 30*time.Second, cfg.ProfileCacheTTL)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORSAllowedOrigins)
}

func TestLoadMissingRequired(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "missing secret", env: map[string]string{"JWT_SECRET_KEY": ""}},
		{name: "bad algorithm", env: map[string]string{"JWT_SECRET_KEY": "s", "JWT_ALGORITHM": "RS256"}},
		{name: "zero expiration", env: map[string]string{"JWT_SECRET_KEY": "s", "JWT_EXPIRATION_MINUTES": "0"}},
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
