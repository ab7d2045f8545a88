package domain

import (
	"fmt"
	"strings"
	"time"
)

// BetType identifica a proposição apostada (vencedor, corridas de um jogador, ...)
type BetType string

const (
	MatchWinner   BetType = "MATCH_WINNER"
	TossWinner    BetType = "TOSS_WINNER"
	PlayerOfMatch BetType = "PLAYER_OF_MATCH"
	PlayerRuns    BetType = "PLAYER_RUNS"
	PlayerWickets BetType = "PLAYER_WICKETS"
	RunsConceded  BetType = "RUNS_CONCEDED"
	Extras        BetType = "EXTRAS"
)

// rangeTypes são avaliados por contenção em [min, max] sobre um valor numérico real.
var rangeTypes = map[BetType]struct{}{
	PlayerRuns:    {},
	PlayerWickets: {},
	RunsConceded:  {},
	Extras:        {},
}

// ParseBetType normaliza o texto recebido (ex: "match_winner") para BetType.
func ParseBetType(s string) BetType {
	return BetType(strings.ToUpper(strings.TrimSpace(s)))
}

// ParseBetTypes normaliza uma lista (ex: DYNAMIC_BET_TYPES), ignorando itens vazios.
func ParseBetTypes(names []string) []BetType {
	out := make([]BetType, 0, len(names))
	for _, n := range names {
		if t := ParseBetType(n); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// IsRange indica se o tipo é liquidado por faixa numérica.
// Tipos desconhecidos são tratados como categóricos.
func (t BetType) IsRange() bool {
	_, ok := rangeTypes[t]
	return ok
}

func (t BetType) String() string { return string(t) }

// Result é o estado terminal (ou não) de uma aposta.
type Result string

const (
	ResultPending Result = "PENDING"
	ResultWin     Result = "WIN"
	ResultLose    Result = "LOSE"
)

// Terminal indica se a aposta já foi liquidada.
func (r Result) Terminal() bool { return r == ResultWin || r == ResultLose }

// BetSpec é o que o participante pede ao apostar.
type BetSpec struct {
	BetType   BetType `json:"betType"`
	Selection string  `json:"selection"`
	MinBound  *int64  `json:"minBound,omitempty"`
	MaxBound  *int64  `json:"maxBound,omitempty"`
	Stake     int64   `json:"stake"`
	Phase     string  `json:"phase,omitempty"` // ex: PRE_MATCH, INNINGS_1
}

// HasRange indica se os dois limites foram informados.
func (s BetSpec) HasRange() bool { return s.MinBound != nil && s.MaxBound != nil }

// MaxRangeWidth limita max-min de uma faixa. Mantém a odd estática em base+100.
const MaxRangeWidth int64 = 1000

// ValidateRange exige os dois limites ou nenhum. Com limites, 0 <= min <= max
// e a largura não passa de MaxRangeWidth.
func ValidateRange(minBound, maxBound *int64) error {
	if (minBound == nil) != (maxBound == nil) {
		return fmt.Errorf("both bounds or none: %w", ErrInvalidBet)
	}
	if minBound == nil {
		return nil
	}
	lo, hi := *minBound, *maxBound
	if lo < 0 || lo > hi {
		return fmt.Errorf("invalid range [%d, %d]: %w", lo, hi, ErrInvalidBet)
	}
	if hi-lo > MaxRangeWidth {
		return fmt.Errorf("range [%d, %d] wider than %d: %w", lo, hi, MaxRangeWidth, ErrInvalidBet)
	}
	return nil
}

// Bet é o registro persistido. Só Result/Payout/SettledAt mudam, uma única vez, na liquidação.
type Bet struct {
	ID            string     `json:"betId"`
	ParticipantID string     `json:"participantId"`
	MatchID       string     `json:"matchId"`
	BetType       BetType    `json:"betType"`
	Selection     string     `json:"selection"`
	MinBound      *int64     `json:"minBound,omitempty"`
	MaxBound      *int64     `json:"maxBound,omitempty"`
	Stake         int64      `json:"stake"`
	Odds          float64    `json:"odds"`
	Phase         string     `json:"phase,omitempty"`
	Result        Result     `json:"result"`
	Payout        int64      `json:"payout"`
	PlacedAt      time.Time  `json:"placedAt"`
	SettledAt     *time.Time `json:"settledAt,omitempty"`
}

// OddsQuote é a odd dinâmica corrente de uma seleção dentro de um pool (match, betType).
type OddsQuote struct {
	MatchID   string    `json:"matchId"`
	BetType   BetType   `json:"betType"`
	Selection string    `json:"selection"`
	Odds      float64   `json:"odds"`
	Version   int64     `json:"version"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// PoolKey identifica um pool pari-mutuel.
type PoolKey struct {
	MatchID string
	BetType BetType
}

func (k PoolKey) String() string { return k.MatchID + ":" + string(k.BetType) }
