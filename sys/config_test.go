package sys

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	for _, k := range []string{
		"DISCORD_TOKEN", "GUILD_ID", "DATABASE_PATH", "OWNER_IDS", "SILENT",
		"LEDGER_BACKEND", "REDIS_URL", "ESCALATION_BASE", "ESCALATION_CAP",
		"ENFORCE_TIMEOUT", "VIOLATION_DECAY", "NOTIFY_RATE", "METRICS_ADDR",
	} {
		t.Setenv(k, "")
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("DISCORD_TOKEN", "token")
	t.Setenv("OWNER_IDS", " 1, 2 ")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert := assert.New(t)
	assert.Equal(LedgerSQLite, cfg.LedgerBackend)
	assert.Equal(10*time.Minute, cfg.EscalationBase)
	assert.Equal(24*time.Hour, cfg.EscalationCap)
	assert.Equal(8*time.Second, cfg.EnforceTimeout)
	assert.Equal(time.Duration(0), cfg.ViolationDecay)
	assert.Equal(20, cfg.NotifyRate)
	assert.Equal([]string{"1", "2"}, cfg.OwnerIDs)
	assert.NotEmpty(cfg.DatabasePath)
}

func TestLoadConfigOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("DISCORD_TOKEN", "token")
	t.Setenv("LEDGER_BACKEND", "Redis")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("ESCALATION_BASE", "5m")
	t.Setenv("ESCALATION_CAP", "2h")
	t.Setenv("VIOLATION_DECAY", "720h")
	t.Setenv("NOTIFY_RATE", "0")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert := assert.New(t)
	assert.Equal(LedgerRedis, cfg.LedgerBackend)
	assert.Equal(5*time.Minute, cfg.EscalationBase)
	assert.Equal(2*time.Hour, cfg.EscalationCap)
	assert.Equal(720*time.Hour, cfg.ViolationDecay)
	assert.Equal(0, cfg.NotifyRate)
}

func TestLoadConfigRejectsBadValues(t *testing.T) {
	cases := map[string]map[string]string{
		"missing token":     {},
		"short guild id":    {"DISCORD_TOKEN": "t", "GUILD_ID": "123"},
		"unknown backend":   {"DISCORD_TOKEN": "t", "LEDGER_BACKEND": "mongo"},
		"redis without url": {"DISCORD_TOKEN": "t", "LEDGER_BACKEND": "redis"},
		"bad duration":      {"DISCORD_TOKEN": "t", "ESCALATION_BASE": "ten minutes"},
		"cap below base":    {"DISCORD_TOKEN": "t", "ESCALATION_BASE": "1h", "ESCALATION_CAP": "30m"},
		"cap over 28 days":  {"DISCORD_TOKEN": "t", "ESCALATION_CAP": "700h"},
		"negative decay":    {"DISCORD_TOKEN": "t", "VIOLATION_DECAY": "-1h"},
		"bad rate":          {"DISCORD_TOKEN": "t", "NOTIFY_RATE": "lots"},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range env {
				t.Setenv(k, v)
			}
			_, err := LoadConfig()
			assert.Error(t, err)
		})
	}
}
