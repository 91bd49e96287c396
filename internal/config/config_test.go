package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("PERMUTATION_CACHE_SIZE", "")
	t.Setenv("PAYLOAD_CACHE_TTL_MINUTES", "")
	t.Setenv("ALLOWED_ORIGINS", "")
	t.Setenv("MAX_PREVIEW_ATTEMPTS", "")
	t.Setenv("MIGRATIONS_PATH", "")

	cfg := Load()
	assert.Equal(t, 4096, cfg.PermutationCacheSize)
	assert.Equal(t, 180*time.Minute, cfg.PayloadCacheTTL)
	assert.Nil(t, cfg.AllowedOrigins)
	assert.Equal(t, 50, cfg.MaxPreviewAttempts)
	assert.Equal(t, "migrations", cfg.MigrationsPath)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PERMUTATION_CACHE_SIZE", "0")
	t.Setenv("PAYLOAD_CACHE_TTL_MINUTES", "5")
	t.Setenv("MAX_DB_CONNS", "not-a-number")
	t.Setenv("ALLOWED_ORIGINS", " https://a.example , ,https://b.example")

	cfg := Load()
	assert.Equal(t, 0, cfg.PermutationCacheSize)
	assert.Equal(t, 5*time.Minute, cfg.PayloadCacheTTL)
	assert.Equal(t, int32(16), cfg.MaxDBConns)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
}

func TestLoad_Booleans(t *testing.T) {
	t.Setenv("AUTO_MIGRATE", "true")
	assert.True(t, Load().AutoMigrate)

	t.Setenv("AUTO_MIGRATE", "maybe")
	assert.False(t, Load().AutoMigrate)
}

func TestCacheKey_EscapesComponents(t *testing.T) {
	a := CacheKey.AttemptCounterKey("t1", "u:1", "r")
	b := CacheKey.AttemptCounterKey("t1", "u", "1:r")
	assert.NotEqual(t, a, b)
	assert.Equal(t, "test:t1:user:u%3A1:resource:r:attempt", a)
	assert.Equal(t, "test:t1:payload", CacheKey.TestPayloadKey("t1"))
}
