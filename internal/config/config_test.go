package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("VECTOR_ATTRIB_AUTH_ENABLED", "false")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "development", cfg.Server.Env)
	assert.True(t, cfg.IsDevelopment())
	assert.Equal(t, 10000, cfg.Pivot.FetchRowCap)
	assert.Equal(t, 3, cfg.Pivot.MinSampleDenominator)
	assert.Equal(t, 2*time.Minute, cfg.Pivot.CacheTTL)
	assert.Equal(t, []string{"/health", "/metrics"}, cfg.Auth.SkipPaths)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("VECTOR_ATTRIB_AUTH_ENABLED", "false")
	t.Setenv("VECTOR_ATTRIB_HTTP_ADDR", ":9999")
	t.Setenv("VECTOR_ATTRIB_PIVOT_ROW_CAP", "500")
	t.Setenv("VECTOR_ATTRIB_PIVOT_CACHE_TTL", "5m")
	t.Setenv("VECTOR_ATTRIB_AUTH_SKIP_PATHS", "/health, /ping")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9999", cfg.Server.Addr)
	assert.Equal(t, 500, cfg.Pivot.FetchRowCap)
	assert.Equal(t, 5*time.Minute, cfg.Pivot.CacheTTL)
	assert.Equal(t, []string{"/health", "/ping"}, cfg.Auth.SkipPaths)
}

func TestValidateRequiresMasterKeyWhenAuthEnabled(t *testing.T) {
	t.Setenv("VECTOR_ATTRIB_AUTH_ENABLED", "true")
	t.Setenv("VECTOR_ATTRIB_API_KEY_MASTER", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "VECTOR_ATTRIB_API_KEY_MASTER")

	t.Setenv("VECTOR_ATTRIB_API_KEY_MASTER", "secret")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "secret", cfg.Auth.MasterKey)
}

func TestValidateRowCap(t *testing.T) {
	t.Setenv("VECTOR_ATTRIB_AUTH_ENABLED", "false")
	t.Setenv("VECTOR_ATTRIB_PIVOT_ROW_CAP", "-1")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "VECTOR_ATTRIB_PIVOT_ROW_CAP")
}

func TestSpendDSN(t *testing.T) {
	d := SpendDBConfig{
		Host: "db", Port: 5432, User: "u", Password: "p", DBName: "spend", SSLMode: "disable",
	}
	assert.Equal(t, "postgres://u:p@db:5432/spend?sslmode=disable", d.DSN())
}
