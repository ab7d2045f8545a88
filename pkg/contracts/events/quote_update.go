package events

import "time"

// Odd de uma seleção dentro do pool.
type Quote struct {
	Selection string  `json:"selection"`
	Odds      float64 `json:"odds"`
}

// QuoteUpdate é publicado no Redis Pub/Sub a cada recálculo de um pool.
type QuoteUpdate struct {
	MatchID   string    `json:"match_id"`
	BetType   string    `json:"bet_type"`
	Quotes    []Quote   `json:"quotes"`
	Version   int64     `json:"version"` // número de apostas no snapshot
	UpdatedAt time.Time `json:"updated_at"`
}
