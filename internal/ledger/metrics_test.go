package ledger_test

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/radieske/cricket-bet-ledger/internal/domain"
	"github.com/radieske/cricket-bet-ledger/internal/ledger"
	"github.com/radieske/cricket-bet-ledger/internal/shared/metrics"
)

// gathered soma os valores de cada família (counters e contagem de histogramas)
func gathered(t *testing.T, reg *prometheus.Registry) map[string]float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	out := make(map[string]float64, len(families))
	for _, f := range families {
		for _, m := range f.GetMetric() {
			if c := m.GetCounter(); c != nil {
				out[f.GetName()] += c.GetValue()
			}
			if h := m.GetHistogram(); h != nil {
				out[f.GetName()] += float64(h.GetSampleCount())
			}
		}
	}
	return out
}

func TestMetricsHooks(t *testing.T) {
	reg := prometheus.NewRegistry()
	env := newTestEnv(t, ledger.Options{Hooks: ledger.MetricsHooks(metrics.NewLedger(reg))})
	ctx := context.Background()
	env.participant(t, "alice")
	env.match(t, "m1")

	_, err := env.svc.PlaceBet(ctx, "alice", "m1", stake(winner("TeamA"), 500))
	require.NoError(t, err)
	_, err = env.svc.PlaceBet(ctx, "alice", "m1", stake(winner("TeamA"), 10))
	require.ErrorIs(t, err, domain.ErrInvalidStake)
	env.close(t, "m1")
	_, err = env.svc.SettleMatch(ctx, "m1", domain.Outcome{Winners: map[domain.BetType]string{domain.MatchWinner: "TeamA"}})
	require.NoError(t, err)

	got := gathered(t, reg)
	assert.Equal(t, 1.0, got["ledger_bets_placed_total"])
	assert.Equal(t, 500.0, got["ledger_stake_accepted_units_total"])
	assert.Equal(t, 1.0, got["ledger_bets_rejected_total"])
	assert.Equal(t, 1.0, got["ledger_bets_settled_total"])
	assert.Equal(t, 950.0, got["ledger_payout_credited_units_total"])
	assert.Equal(t, 1.0, got["ledger_settlement_duration_seconds"])
}
