package domain

import "time"

// Participant é o dono do saldo. Criado no cadastro (externo), nunca removido.
type Participant struct {
	ID          string    `json:"participantId"`
	Balance     int64     `json:"balance"`
	NetWinnings int64     `json:"netWinnings"`
	CreatedAt   time.Time `json:"createdAt"`
}

// MatchStatus controla se a partida aceita apostas.
type MatchStatus string

const (
	MatchOpen          MatchStatus = "OPEN"
	MatchBettingClosed MatchStatus = "BETTING_CLOSED"
	MatchCompleted     MatchStatus = "COMPLETED"
)

// Valid indica se o status é conhecido.
func (s MatchStatus) Valid() bool {
	switch s {
	case MatchOpen, MatchBettingClosed, MatchCompleted:
		return true
	}
	return false
}

type Match struct {
	ID        string      `json:"matchId"`
	TeamA     string      `json:"teamA"`
	TeamB     string      `json:"teamB"`
	Overs     int         `json:"overs,omitempty"`
	Status    MatchStatus `json:"status"`
	CreatedAt time.Time   `json:"createdAt"`
}
