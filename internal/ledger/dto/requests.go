package dto

import "github.com/radieske/cricket-bet-ledger/internal/domain"

type RegisterParticipantRequest struct {
	ParticipantID string `json:"participantId"`
}

type CreateMatchRequest struct {
	MatchID string `json:"matchId,omitempty"` // opcional; gerado se vazio
	TeamA   string `json:"teamA"`
	TeamB   string `json:"teamB"`
	Overs   int    `json:"overs,omitempty"`
}

type SetMatchStatusRequest struct {
	Status string `json:"status"` // OPEN | BETTING_CLOSED
}

type PlaceBetRequest struct {
	ParticipantID string `json:"participantId"`
	MatchID       string `json:"matchId"`
	BetType       string `json:"betType"`   // ex: "MATCH_WINNER", "PLAYER_RUNS"
	Selection     string `json:"selection"` // time, jogador...
	MinBound      *int64 `json:"minBound,omitempty"`
	MaxBound      *int64 `json:"maxBound,omitempty"`
	Stake         int64  `json:"stake"`
	Phase         string `json:"phase,omitempty"`
}

// Spec converte o payload na especificação de domínio
func (r PlaceBetRequest) Spec() domain.BetSpec {
	return domain.BetSpec{
		BetType:   domain.ParseBetType(r.BetType),
		Selection: r.Selection,
		MinBound:  r.MinBound,
		MaxBound:  r.MaxBound,
		Stake:     r.Stake,
		Phase:     r.Phase,
	}
}

// SettleRequest é o resultado declarado pelo administrador
type SettleRequest struct {
	Winners map[string]string           `json:"winners,omitempty"` // MATCH_WINNER -> "TeamA"
	Actuals map[string]map[string]int64 `json:"actuals,omitempty"` // PLAYER_RUNS -> {"Kohli": 54}
}

// Outcome normaliza as chaves de tipo (case-insensitive)
func (r SettleRequest) Outcome() domain.Outcome {
	return ToOutcome(r.Winners, r.Actuals)
}

// ToOutcome também é usado pelo worker e pela CLI
func ToOutcome(winners map[string]string, actuals map[string]map[string]int64) domain.Outcome {
	out := domain.Outcome{
		Winners: make(map[domain.BetType]string, len(winners)),
		Actuals: make(map[domain.BetType]map[string]int64, len(actuals)),
	}
	for k, v := range winners {
		out.Winners[domain.ParseBetType(k)] = v
	}
	for k, v := range actuals {
		out.Actuals[domain.ParseBetType(k)] = v
	}
	return out
}
