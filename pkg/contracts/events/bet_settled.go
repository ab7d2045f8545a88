package events

import "time"

// Evento emitido por aposta liquidada. Alimenta auditoria e leaderboard.
type BetSettled struct {
	BetID         string    `json:"betId"`
	ParticipantID string    `json:"participantId"`
	MatchID       string    `json:"matchId"`
	BetType       string    `json:"betType"`
	Result        string    `json:"result"` // "WIN" | "LOSE"
	Stake         int64     `json:"stake"`
	Odds          float64   `json:"odds"`
	Payout        int64     `json:"payout"`
	Ts            time.Time `json:"ts"`
}
