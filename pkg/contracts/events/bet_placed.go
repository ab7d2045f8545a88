package events

// Evento emitido pelo ledger-service quando uma aposta é aceita e debitada.
type BetPlaced struct {
	BetID         string  `json:"bet_id"`
	ParticipantID string  `json:"participant_id"`
	MatchID       string  `json:"match_id"`
	BetType       string  `json:"bet_type"`
	Selection     string  `json:"selection"`
	MinBound      *int64  `json:"min_bound,omitempty"`
	MaxBound      *int64  `json:"max_bound,omitempty"`
	Stake         int64   `json:"stake"`
	Odds          float64 `json:"odds"`
	Phase         string  `json:"phase,omitempty"`
	TsUnixMs      int64   `json:"ts_unix_ms"`
}
