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
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.HTTPPort)
	assert.Equal(t, BackendInmem, cfg.StoreBackend)
	assert.Equal(t, BackendInmem, cfg.DispatchBackend)
	assert.Equal(t, "archiver.bulk", cfg.RabbitMQQueue)
	assert.Equal(t, 10*time.Minute, cfg.ClaimTTL)
	assert.Equal(t, "conservative", cfg.ClassifierMode)
}

func TestLoad_EnvFileAndOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("CLASSIFIER_MODE=selective\nADMIN_API_KEYS=a,b\n"), 0o600))
	t.Setenv("CLAIM_TTL", "30s")
	t.Cleanup(func() {
		os.Unsetenv("CLASSIFIER_MODE")
		os.Unsetenv("ADMIN_API_KEYS")
	})

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "selective", cfg.ClassifierMode)
	assert.Equal(t, []string{"a", "b"}, cfg.AdminAPIKeys)
	assert.Equal(t, 30*time.Second, cfg.ClaimTTL)
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			StoreBackend:    BackendInmem,
			DispatchBackend: BackendInmem,
			CatalogBackend:  BackendInmem,
			ClassifierMode:  "conservative",
			ClaimTTL:        time.Minute,
		}
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"postgres без DATABASE_URL", func(c *Config) { c.StoreBackend = BackendPostgres }},
		{"неизвестное хранилище", func(c *Config) { c.StoreBackend = "redis" }},
		{"неизвестная очередь", func(c *Config) { c.DispatchBackend = "kafka" }},
		{"неизвестный каталог", func(c *Config) { c.CatalogBackend = "dkan" }},
		{"неизвестный режим", func(c *Config) { c.ClassifierMode = "eager" }},
		{"нулевой TTL", func(c *Config) { c.ClaimTTL = 0 }},
	}

	base := valid()
	require.NoError(t, base.Validate())

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
		})
	}
}
