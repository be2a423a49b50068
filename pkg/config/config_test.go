package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromViper_Defaults(t *testing.T) {
	cfg := fromViper(viper.New())

	assert.Equal(t, "development", cfg.App.Env)
	assert.Equal(t, StoragePostgres, cfg.App.StorageDriver)
	assert.Equal(t, "LOT", cfg.Lots.CodePrefix)
	assert.Equal(t, int32(2), cfg.Lots.WeightScale)
	assert.True(t, cfg.DB.MigrateOnStart)
	assert.Equal(t, 5*time.Second, cfg.DB.LockTimeout)
	assert.False(t, cfg.DB.ForceIPv4)
	assert.Equal(t, "0.0.0.0:8080", cfg.HTTP.Addr())
	require.NoError(t, cfg.Validate())
}

func TestFromViper_Overrides(t *testing.T) {
	v := viper.New()
	v.Set("STORAGE_DRIVER", "MEMORY")
	v.Set("WEIGHT_SCALE", "3")
	v.Set("DB_PORT", "6543")
	v.Set("ALERTS_ENABLED", true)
	v.Set("REDIS_ADDR", "localhost:6379")
	v.Set("DB_LOCK_TIMEOUT_MS", "1500")
	v.Set("DB_FORCE_IPV4", "true")

	cfg := fromViper(v)
	assert.Equal(t, StorageMemory, cfg.App.StorageDriver)
	assert.Equal(t, int32(3), cfg.Lots.WeightScale)
	assert.Equal(t, 6543, cfg.DB.Port)
	assert.Equal(t, 1500*time.Millisecond, cfg.DB.LockTimeout)
	assert.True(t, cfg.DB.ForceIPv4)
	require.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		edit func(*Config)
	}{
		{"driver desconocido", func(c *Config) { c.App.StorageDriver = "sqlite" }},
		{"sin secreto en producción", func(c *Config) { c.App.Env = "production"; c.JWT.Secret = "" }},
		{"escala negativa", func(c *Config) { c.Lots.WeightScale = -1 }},
		{"escala excesiva", func(c *Config) { c.Lots.WeightScale = 7 }},
		{"alertas sin redis", func(c *Config) { c.Alerts.Enabled = true; c.Redis.Addr = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := fromViper(viper.New())
			tt.edit(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestDBConfig_DSN(t *testing.T) {
	c := DBConfig{Host: "db", Port: 5432, User: "app", Password: "p@ss:word", DBName: "traza", SSLMode: "disable"}
	assert.Equal(t, "postgres://app:p%40ss%3Aword@db:5432/traza?sslmode=disable", c.DSN())

	c.DatabaseURL = "postgres://x@y/z"
	assert.Equal(t, "postgres://x@y/z", c.ConnectionString())
}
