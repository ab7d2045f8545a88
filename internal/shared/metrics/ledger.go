package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Ledger agrupa as métricas do ledger e da precificação.
// Os serviços ligam os callbacks (OnPlaced, OnSettled, ...) nesses contadores.
type Ledger struct {
	BetsPlaced     *prometheus.CounterVec
	BetsRejected   *prometheus.CounterVec
	StakeAccepted  prometheus.Counter
	BetsSettled    *prometheus.CounterVec
	BetsFlagged    *prometheus.CounterVec
	PayoutCredited prometheus.Counter
	Recomputes     *prometheus.CounterVec
	Errors         *prometheus.CounterVec
	SettleDuration prometheus.Histogram
}

// NewLedger cria e registra as métricas em reg (prometheus.DefaultRegisterer em produção,
// prometheus.NewRegistry() em testes).
func NewLedger(reg prometheus.Registerer) *Ledger {
	m := &Ledger{
		BetsPlaced:     prometheus.NewCounterVec(prometheus.CounterOpts{Name: "ledger_bets_placed_total", Help: "apostas aceitas"}, []string{"bet_type"}),
		BetsRejected:   prometheus.NewCounterVec(prometheus.CounterOpts{Name: "ledger_bets_rejected_total", Help: "apostas rejeitadas por motivo"}, []string{"reason"}),
		StakeAccepted:  prometheus.NewCounter(prometheus.CounterOpts{Name: "ledger_stake_accepted_units_total", Help: "soma dos stakes debitados"}),
		BetsSettled:    prometheus.NewCounterVec(prometheus.CounterOpts{Name: "ledger_bets_settled_total", Help: "apostas liquidadas por resultado"}, []string{"result"}),
		BetsFlagged:    prometheus.NewCounterVec(prometheus.CounterOpts{Name: "ledger_bets_flagged_total", Help: "apostas deixadas PENDING para revisão manual"}, []string{"reason"}),
		PayoutCredited: prometheus.NewCounter(prometheus.CounterOpts{Name: "ledger_payout_credited_units_total", Help: "soma dos pagamentos creditados"}),
		Recomputes:     prometheus.NewCounterVec(prometheus.CounterOpts{Name: "pricing_recomputes_total", Help: "recálculos de pool aplicados"}, []string{"bet_type"}),
		Errors:         prometheus.NewCounterVec(prometheus.CounterOpts{Name: "ledger_errors_total", Help: "erros por estágio"}, []string{"stage"}),
		SettleDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "ledger_settlement_duration_seconds",
			Help:    "duração de cada execução de liquidação",
			Buckets: prometheus.DefBuckets,
		}),
	}
	reg.MustRegister(m.BetsPlaced, m.BetsRejected, m.StakeAccepted, m.BetsSettled,
		m.BetsFlagged, m.PayoutCredited, m.Recomputes, m.Errors, m.SettleDuration)
	return m
}
