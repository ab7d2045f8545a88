package domain

import "errors"

// Erros de domínio. A camada HTTP mapeia o código de cada um para status HTTP;
// nenhum deles deve derrubar o processo.
var (
	ErrInvalidStake        = errors.New("stake below minimum")
	ErrInvalidBet          = errors.New("invalid bet specification")
	ErrInsufficientFunds   = errors.New("insufficient funds")
	ErrMatchNotBettable    = errors.New("match is not accepting bets")
	ErrMatchStillOpen      = errors.New("betting is still open for match")
	ErrUnresolvableBet     = errors.New("outcome lacks data to evaluate bet")
	ErrDuplicateSettlement = errors.New("match already settled")
	ErrParticipantNotFound = errors.New("participant not found")
	ErrParticipantExists   = errors.New("participant already exists")
	ErrMatchNotFound       = errors.New("match not found")
	ErrBetNotFound         = errors.New("bet not found")

	ErrSettlementInProgress = errors.New("settlement already running for match")
	ErrInvalidInput         = errors.New("invalid input")
)

var codes = []struct {
	err  error
	code string
}{
	{ErrInvalidStake, "INVALID_STAKE"},
	{ErrInvalidBet, "INVALID_BET"},
	{ErrInsufficientFunds, "INSUFFICIENT_FUNDS"},
	{ErrMatchNotBettable, "MATCH_NOT_BETTABLE"},
	{ErrMatchStillOpen, "MATCH_STILL_OPEN"},
	{ErrUnresolvableBet, "UNRESOLVABLE_BET"},
	{ErrDuplicateSettlement, "DUPLICATE_SETTLEMENT"},
	{ErrParticipantNotFound, "PARTICIPANT_NOT_FOUND"},
	{ErrParticipantExists, "PARTICIPANT_EXISTS"},
	{ErrMatchNotFound, "MATCH_NOT_FOUND"},
	{ErrBetNotFound, "BET_NOT_FOUND"},
	{ErrSettlementInProgress, "SETTLEMENT_IN_PROGRESS"},
	{ErrInvalidInput, "INVALID_INPUT"},
}

// Code retorna o código estável do erro (ex: "INSUFFICIENT_FUNDS") ou "INTERNAL".
func Code(err error) string {
	for _, c := range codes {
		if errors.Is(err, c.err) {
			return c.code
		}
	}
	return "INTERNAL"
}
