package config

import (
	"context"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadAuth_Defaults(t *testing.T) {
	cfg, err := loadAuth(context.Background(), envconfig.MapLookuper(map[string]string{
		"JWT_SECRET": "s3cret",
	}))
	require.NoError(t, err)

	assert.Equal(t, "3001", cfg.Port)
	assert.Equal(t, 24*time.Hour, cfg.JWT.ExpiresIn)
	assert.Equal(t, "authdb", cfg.DB.Name)
	assert.Equal(t, 5432, cfg.DB.Port)
	assert.Equal(t, 5, cfg.DB.MaxOpenConns)
	assert.Equal(t, 30*time.Second, cfg.DB.AcquireTimeout)
	assert.Equal(t, 10*time.Second, cfg.DB.IdleTimeout)
	assert.Equal(t, 587, cfg.SMTP.Port)
	assert.Equal(t, "http://localhost:3002", cfg.SMTP.FrontendURL)
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
	assert.Empty(t, cfg.Mongo.URI)
	assert.Empty(t, cfg.Redis.Addr)
	assert.True(t, cfg.IsDevelopment())
}

func TestLoadAuth_Overrides(t *testing.T) {
	cfg, err := loadAuth(context.Background(), envconfig.MapLookuper(map[string]string{
		"JWT_SECRET":     "s3cret",
		"JWT_EXPIRES_IN": "1h30m",
		"CORS_ORIGINS":   "http://a.local,http://b.local",
		"REDIS_ADDR":     "redis:6379",
		"ENV":            "production",
	}))
	require.NoError(t, err)

	assert.Equal(t, 90*time.Minute, cfg.JWT.ExpiresIn)
	assert.Equal(t, []string{"http://a.local", "http://b.local"}, cfg.CORSOrigins)
	assert.Equal(t, "redis:6379", cfg.Redis.Addr)
	assert.False(t, cfg.IsDevelopment())
}

func TestLoadAuth_RequiresSecret(t *testing.T) {
	_, err := loadAuth(context.Background(), envconfig.MapLookuper(map[string]string{}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
}

func TestLoadGateway(t *testing.T) {
	cfg, err := loadGateway(context.Background(), envconfig.MapLookuper(map[string]string{}))
	require.NoError(t, err)
	assert.Equal(t, "http://auth-service:3001", cfg.AuthServiceURL)
	assert.Equal(t, "http://user-service:8080", cfg.UserServiceURL)
	assert.Equal(t, 30*time.Second, cfg.UpstreamTimeout)

	_, err = loadGateway(context.Background(), envconfig.MapLookuper(map[string]string{
		"USER_SERVICE_URL": "user-service:8080",
	}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "USER_SERVICE_URL")
}
