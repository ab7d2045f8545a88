package httpapi

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/radieske/cricket-bet-ledger/internal/domain"
	"github.com/radieske/cricket-bet-ledger/internal/ledger"
	"github.com/radieske/cricket-bet-ledger/internal/ledger/dto"
	"github.com/radieske/cricket-bet-ledger/internal/pricing"
)

// Options configura o API
type Options struct {
	AdminToken string           // vazio desliga as rotas administrativas
	BetRate    float64          // POST /v1/bets por segundo (0 = sem limite)
	BetBurst   int              // rajada do limitador
	WS         http.HandlerFunc // stream de cotações (opcional)
}

// API expõe o ledger e as cotações via REST
type API struct {
	log     *zap.Logger
	ledger  *ledger.Service
	pricing *pricing.Engine
	opts    Options
	limiter *rate.Limiter
}

func NewAPI(log *zap.Logger, l *ledger.Service, p *pricing.Engine, opts Options) *API {
	a := &API{log: log, ledger: l, pricing: p, opts: opts}
	if opts.BetRate > 0 {
		burst := opts.BetBurst
		if burst <= 0 {
			burst = 1
		}
		a.limiter = rate.NewLimiter(rate.Limit(opts.BetRate), burst)
	}
	return a
}

// Router retorna o roteador HTTP com os endpoints REST
func (a *API) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(a.requestLogging)

	r.Post("/v1/participants", a.registerParticipant)     // Cadastra participante com saldo inicial
	r.Get("/v1/participants/{id}", a.getParticipant)      // Saldo e ganhos acumulados
	r.Get("/v1/participants/{id}/bets", a.listBets)       // Apostas do participante
	r.Get("/v1/matches/{id}", a.getMatch)                 // Status da partida
	r.Get("/v1/matches/{id}/quotes/{betType}", a.quotes)  // Cotações dinâmicas do pool
	r.Get("/v1/price", a.price)                           // Preço estático ?betType=&min=&max=
	r.With(a.rateLimit).Post("/v1/bets", a.placeBet)      // Aposta
	r.Get("/v1/bets/{id}", a.getBet)                      // Status da aposta

	r.Group(func(r chi.Router) {
		r.Use(a.adminOnly)
		r.Post("/v1/matches", a.createMatch)
		r.Post("/v1/matches/{id}/status", a.setMatchStatus) // OPEN <-> BETTING_CLOSED
		r.Post("/v1/matches/{id}/settle", a.settle)         // ?betType= liquida só o pool
		r.Get("/v1/matches/{id}/flags", a.flags)            // apostas aguardando revisão
	})

	if a.opts.WS != nil {
		r.Get("/ws", a.opts.WS)
	}
	return r
}

// writeJSON serializa a resposta em JSON e define o status HTTP
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError converte erros de domínio em resposta estruturada
func (a *API) writeError(w http.ResponseWriter, err error) {
	code := domain.Code(err)
	status := statusFor(code)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		a.log.Error("request failed", zap.Error(err))
		msg = "internal error"
	}
	writeJSON(w, status, dto.ErrorResponse{Code: code, Error: msg})
}

func statusFor(code string) int {
	switch code {
	case "INVALID_STAKE", "INVALID_BET", "INVALID_INPUT":
		return http.StatusBadRequest
	case "PARTICIPANT_NOT_FOUND", "MATCH_NOT_FOUND", "BET_NOT_FOUND":
		return http.StatusNotFound
	case "INSUFFICIENT_FUNDS", "MATCH_NOT_BETTABLE", "MATCH_STILL_OPEN",
		"DUPLICATE_SETTLEMENT", "SETTLEMENT_IN_PROGRESS", "PARTICIPANT_EXISTS":
		return http.StatusConflict
	case "UNRESOLVABLE_BET":
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

func decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return errors.Join(domain.ErrInvalidInput, err)
	}
	return nil
}

// adminOnly exige X-Admin-Token igual ao ADMIN_TOKEN configurado
func (a *API) adminOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if a.opts.AdminToken == "" {
			writeJSON(w, http.StatusForbidden, dto.ErrorResponse{Code: "FORBIDDEN", Error: "admin access disabled"})
			return
		}
		got := r.Header.Get("X-Admin-Token")
		if subtle.ConstantTimeCompare([]byte(got), []byte(a.opts.AdminToken)) != 1 {
			writeJSON(w, http.StatusUnauthorized, dto.ErrorResponse{Code: "UNAUTHORIZED", Error: "invalid admin token"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (a *API) rateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if a.limiter != nil && !a.limiter.Allow() {
			writeJSON(w, http.StatusTooManyRequests, dto.ErrorResponse{Code: "RATE_LIMITED", Error: "too many requests"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// statusWriter captura o status para o log de acesso
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (a *API) requestLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// /ws precisa do Hijacker original
		if r.URL.Path == "/ws" {
			next.ServeHTTP(w, r)
			return
		}
		start := time.Now()
		ww := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(ww, r)
		a.log.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.status),
			zap.Duration("took", time.Since(start)),
		)
	})
}
