package dto

import "github.com/radieske/cricket-bet-ledger/internal/domain"

type PlaceBetResponse struct {
	BetID      string  `json:"betId"`
	Status     string  `json:"status"` // PENDING
	Odds       float64 `json:"odds"`
	NewBalance *int64  `json:"newBalance,omitempty"`
}

type PriceResponse struct {
	BetType string  `json:"betType"`
	Odds    float64 `json:"odds"`
}

type QuotesResponse struct {
	MatchID string             `json:"matchId"`
	BetType string             `json:"betType"`
	Quotes  []domain.OddsQuote `json:"quotes"`
}

type ErrorResponse struct {
	Code  string `json:"code"`
	Error string `json:"error"`
}
