package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// unset remove as variáveis durante o teste (t.Setenv restaura no fim)
func unset(t *testing.T, keys ...string) {
	t.Helper()
	for _, k := range keys {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func TestLoad_Defaults(t *testing.T) {
	unset(t, "SERVICE_NAME", "MIN_STAKE", "STARTING_BALANCE", "MIN_ODDS", "MAX_ODDS",
		"DYNAMIC_BET_TYPES", "SETTLEMENT_LOCK_TTL", "SETTLE_RETRIES", "HTTP_PORT")
	t.Setenv("STORAGE_DRIVER", "sqlite")

	cfg, err := Load("ledgerctl")
	require.NoError(t, err)
	assert.Equal(t, "ledgerctl", cfg.ServiceName)
	assert.Equal(t, int64(100), cfg.MinStake)
	assert.Equal(t, int64(10000), cfg.StartingBalance)
	assert.Equal(t, 1.2, cfg.MinOdds)
	assert.Equal(t, 5.0, cfg.MaxOdds)
	assert.Equal(t, []string{"MATCH_WINNER", "TOSS_WINNER", "PLAYER_OF_MATCH"}, cfg.DynamicBetTypes)
	assert.Equal(t, 2*time.Minute, cfg.SettlementLockTTL)
	assert.Equal(t, 3, cfg.SettleRetries)
	assert.Equal(t, "8080", cfg.HTTPPort)
}

func TestLoad_ServicePorts(t *testing.T) {
	unset(t, "SERVICE_NAME", "HTTP_PORT_LEDGER", "METRICS_PORT_LEDGER", "HTTP_PORT_SETTLEMENT", "METRICS_PORT_SETTLEMENT")
	t.Setenv("STORAGE_DRIVER", "sqlite")

	cfg, err := Load("ledger-service")
	require.NoError(t, err)
	assert.Equal(t, "ledger-service", cfg.ServiceName)
	assert.Equal(t, "8083", cfg.HTTPPort)
	assert.Equal(t, "9099", cfg.MetricsPort)

	cfg, err = Load("settlement-worker")
	require.NoError(t, err)
	assert.Equal(t, "", cfg.HTTPPort)
	assert.Equal(t, "9097", cfg.MetricsPort)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "SQLite")
	t.Setenv("MIN_STAKE", "250")
	t.Setenv("DYNAMIC_BET_TYPES", "match_winner, ,player_of_match")
	t.Setenv("SETTLE_BACKOFF", "1s")
	t.Setenv("MAX_ODDS", "8")

	cfg, err := Load("ledger-service")
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.StorageDriver)
	assert.Equal(t, int64(250), cfg.MinStake)
	assert.Equal(t, []string{"match_winner", "player_of_match"}, cfg.DynamicBetTypes)
	assert.Equal(t, time.Second, cfg.SettleBackoff)
	assert.Equal(t, 8.0, cfg.MaxOdds)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"unknown driver", map[string]string{"STORAGE_DRIVER": "mysql"}},
		{"non numeric stake", map[string]string{"STORAGE_DRIVER": "sqlite", "MIN_STAKE": "ten"}},
		{"zero stake", map[string]string{"STORAGE_DRIVER": "sqlite", "MIN_STAKE": "0"}},
		{"inverted odds", map[string]string{"STORAGE_DRIVER": "sqlite", "MIN_ODDS": "3", "MAX_ODDS": "2"}},
		{"bad duration", map[string]string{"STORAGE_DRIVER": "sqlite", "SETTLEMENT_LOCK_TTL": "soon"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load("ledger-service")
			require.Error(t, err)
		})
	}
}
