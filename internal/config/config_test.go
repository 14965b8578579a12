package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("BOT_TOKEN", "123:abc")
	t.Setenv("DATABASE_URL", "postgres://localhost/taskearn")
	t.Setenv("ADMIN_ID", "42")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, int64(42), cfg.AdminID)
	assert.Equal(t, int64(500), cfg.MinWithdraw)
	assert.Equal(t, int64(500), cfg.ReferralBonus)
	assert.Equal(t, "opay", cfg.WalletPrefix)
	assert.Equal(t, SessionBackendPostgres, cfg.SessionBackend)
	assert.Equal(t, 72*time.Hour, cfg.SessionTTL)
	assert.Equal(t, 30, cfg.RateLimitPerMinute)
	assert.True(t, cfg.IsAdmin(42))
	assert.False(t, cfg.IsAdmin(43))
}

func TestLoadMissingRequired(t *testing.T) {
	t.Setenv("BOT_TOKEN", "123:abc")
	t.Setenv("DATABASE_URL", "postgres://localhost/taskearn")
	t.Setenv("ADMIN_ID", "")
	require.NoError(t, os.Unsetenv("ADMIN_ID"))

	_, err := Load()
	require.Error(t, err)
}

func TestLoadRejectsRedisWithoutAddr(t *testing.T) {
	setRequired(t)
	t.Setenv("SESSION_BACKEND", "redis")
	t.Setenv("REDIS_ADDR", "")

	_, err := Load()
	require.ErrorContains(t, err, "REDIS_ADDR")
}

func TestLoadRejectsUnknownBackend(t *testing.T) {
	setRequired(t)
	t.Setenv("SESSION_BACKEND", "etcd")

	_, err := Load()
	require.ErrorContains(t, err, "etcd")
}

func TestLoadOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("MIN_WITHDRAW", "1000")
	t.Setenv("REFERRAL_BONUS", "250")
	t.Setenv("SESSION_BACKEND", "memory")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, int64(1000), cfg.MinWithdraw)
	assert.Equal(t, int64(250), cfg.ReferralBonus)
	assert.Equal(t, SessionBackendMemory, cfg.SessionBackend)
}
