package events

import "time"

// Evento publicado no tópico "outcome_declared".
// BetType vazio liquida a partida inteira; preenchido liquida só aquele pool.
type OutcomeDeclared struct {
	MatchID  string                      `json:"match_id"`
	BetType  string                      `json:"bet_type,omitempty"`
	Winners  map[string]string           `json:"winners,omitempty"`
	Actuals  map[string]map[string]int64 `json:"actuals,omitempty"`
	Declared time.Time                   `json:"declared_at"`
	Source   string                      `json:"source"`
}
