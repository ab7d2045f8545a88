package ledger

import (
	"time"

	"github.com/radieske/cricket-bet-ledger/internal/domain"
	"github.com/radieske/cricket-bet-ledger/internal/shared/metrics"
)

// MetricsHooks liga os callbacks do ledger aos contadores Prometheus
func MetricsHooks(m *metrics.Ledger) Hooks {
	return Hooks{
		OnPlaced: func(b domain.Bet) {
			m.BetsPlaced.WithLabelValues(string(b.BetType)).Inc()
			m.StakeAccepted.Add(float64(b.Stake))
		},
		OnRejected: func(code string) { m.BetsRejected.WithLabelValues(code).Inc() },
		OnSettled: func(b domain.Bet) {
			m.BetsSettled.WithLabelValues(string(b.Result)).Inc()
			if b.Payout > 0 {
				m.PayoutCredited.Add(float64(b.Payout))
			}
		},
		OnFlagged:  func(_, reason string) { m.BetsFlagged.WithLabelValues(reason).Inc() },
		OnFinished: func(took time.Duration) { m.SettleDuration.Observe(took.Seconds()) },
		OnError:    func(stage string) { m.Errors.WithLabelValues(stage).Inc() },
	}
}
