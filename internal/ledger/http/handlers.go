package httpapi

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/radieske/cricket-bet-ledger/internal/domain"
	"github.com/radieske/cricket-bet-ledger/internal/ledger"
	"github.com/radieske/cricket-bet-ledger/internal/ledger/dto"
	"github.com/radieske/cricket-bet-ledger/internal/ledger/repo"
)

func (a *API) registerParticipant(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterParticipantRequest
	if err := decode(r, &req); err != nil {
		a.writeError(w, err)
		return
	}
	p, err := a.ledger.RegisterParticipant(r.Context(), req.ParticipantID)
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (a *API) getParticipant(w http.ResponseWriter, r *http.Request) {
	p, err := a.ledger.Participant(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (a *API) listBets(w http.ResponseWriter, r *http.Request) {
	bets, err := a.ledger.BetsForParticipant(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		a.writeError(w, err)
		return
	}
	if bets == nil {
		bets = []domain.Bet{}
	}
	writeJSON(w, http.StatusOK, bets)
}

func (a *API) createMatch(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateMatchRequest
	if err := decode(r, &req); err != nil {
		a.writeError(w, err)
		return
	}
	m, err := a.ledger.CreateMatch(r.Context(), domain.Match{
		ID:    req.MatchID,
		TeamA: req.TeamA,
		TeamB: req.TeamB,
		Overs: req.Overs,
	})
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, m)
}

func (a *API) getMatch(w http.ResponseWriter, r *http.Request) {
	m, err := a.ledger.Match(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (a *API) setMatchStatus(w http.ResponseWriter, r *http.Request) {
	var req dto.SetMatchStatusRequest
	if err := decode(r, &req); err != nil {
		a.writeError(w, err)
		return
	}
	id := chi.URLParam(r, "id")
	if err := a.ledger.SetMatchStatus(r.Context(), id, domain.MatchStatus(req.Status)); err != nil {
		a.writeError(w, err)
		return
	}
	m, err := a.ledger.Match(r.Context(), id)
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (a *API) placeBet(w http.ResponseWriter, r *http.Request) {
	var req dto.PlaceBetRequest
	if err := decode(r, &req); err != nil {
		a.writeError(w, err)
		return
	}
	if req.ParticipantID == "" || req.MatchID == "" {
		a.writeError(w, fmt.Errorf("participantId and matchId required: %w", domain.ErrInvalidInput))
		return
	}

	pl, err := a.ledger.PlaceBet(r.Context(), req.ParticipantID, req.MatchID, req.Spec())
	if err != nil {
		a.writeError(w, err)
		return
	}

	resp := dto.PlaceBetResponse{BetID: pl.Bet.ID, Status: string(pl.Bet.Result), Odds: pl.Odds}
	if p, err := a.ledger.Participant(r.Context(), req.ParticipantID); err == nil {
		resp.NewBalance = &p.Balance
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (a *API) getBet(w http.ResponseWriter, r *http.Request) {
	b, err := a.ledger.Bet(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (a *API) quotes(w http.ResponseWriter, r *http.Request) {
	key := domain.PoolKey{
		MatchID: chi.URLParam(r, "id"),
		BetType: domain.ParseBetType(chi.URLParam(r, "betType")),
	}
	q, err := a.pricing.Quotes(r.Context(), key)
	if err != nil {
		a.writeError(w, err)
		return
	}
	if q == nil {
		q = []domain.OddsQuote{}
	}
	writeJSON(w, http.StatusOK, dto.QuotesResponse{MatchID: key.MatchID, BetType: string(key.BetType), Quotes: q})
}

func (a *API) price(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	bt := domain.ParseBetType(q.Get("betType"))
	if bt == "" {
		a.writeError(w, fmt.Errorf("betType required: %w", domain.ErrInvalidInput))
		return
	}
	minBound, err := optInt(q.Get("min"))
	if err != nil {
		a.writeError(w, err)
		return
	}
	maxBound, err := optInt(q.Get("max"))
	if err != nil {
		a.writeError(w, err)
		return
	}
	if err := domain.ValidateRange(minBound, maxBound); err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.PriceResponse{
		BetType: string(bt),
		Odds:    a.pricing.PriceStatic(bt, minBound, maxBound),
	})
}

func (a *API) settle(w http.ResponseWriter, r *http.Request) {
	var req dto.SettleRequest
	if err := decode(r, &req); err != nil {
		a.writeError(w, err)
		return
	}
	matchID := chi.URLParam(r, "id")
	out := req.Outcome()

	var (
		rep ledger.Report
		err error
	)
	if bt := r.URL.Query().Get("betType"); bt != "" {
		rep, err = a.ledger.SettleBetTypePool(r.Context(), matchID, domain.ParseBetType(bt), out)
	} else {
		rep, err = a.ledger.SettleMatch(r.Context(), matchID, out)
	}
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

func (a *API) flags(w http.ResponseWriter, r *http.Request) {
	f, err := a.ledger.Flags(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		a.writeError(w, err)
		return
	}
	if f == nil {
		f = []repo.Flag{}
	}
	writeJSON(w, http.StatusOK, f)
}

func optInt(s string) (*int64, error) {
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid bound %q: %w", s, domain.ErrInvalidInput)
	}
	return &v, nil
}
