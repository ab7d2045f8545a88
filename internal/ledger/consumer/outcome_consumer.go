package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/radieske/cricket-bet-ledger/internal/domain"
	"github.com/radieske/cricket-bet-ledger/internal/ledger"
	"github.com/radieske/cricket-bet-ledger/internal/ledger/dto"
	"github.com/radieske/cricket-bet-ledger/internal/shared/kafka"
	"github.com/radieske/cricket-bet-ledger/pkg/contracts/events"
)

// Settler é o que o consumer usa do ledger
type Settler interface {
	SettleMatch(ctx context.Context, matchID string, out domain.Outcome) (ledger.Report, error)
	SettleBetTypePool(ctx context.Context, matchID string, bt domain.BetType, out domain.Outcome) (ledger.Report, error)
}

// Processor consome outcome_declared do Kafka e liquida a partida (ou o pool).
// Commit só depois do processamento: at-least-once, a liquidação é idempotente.
// Callbacks de métricas podem ser usadas para monitoramento de cada etapa
type Processor struct {
	Log     *zap.Logger
	Reader  kafka.MessageReader
	Settler Settler
	DLQ     kafka.MessageWriter // opcional

	Retries int           // tentativas extras para erros transitórios
	Backoff time.Duration // espera base entre tentativas

	OnConsumed func()              // métricas (counter++)
	OnSettled  func(ledger.Report) // métricas
	OnDLQ      func()              // métricas
	OnError    func(string)        // métricas por fase
}

// Run inicia o loop principal de consumo; retorna quando ctx é cancelado
func (p *Processor) Run(ctx context.Context) error {
	for {
		m, err := kafka.FetchNext(ctx, p.Reader)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err() // encerra se o contexto for cancelado
			}
			p.Log.Warn("kafka fetch failed", zap.Error(err))
			p.fail("fetch")
			time.Sleep(500 * time.Millisecond)
			continue
		}
		if p.OnConsumed != nil {
			p.OnConsumed()
		}

		p.Handle(ctx, m)

		if err := kafka.Commit(ctx, p.Reader, m); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			p.Log.Warn("kafka commit failed", zap.Error(err))
			p.fail("commit")
		}
	}
}

// Handle processa uma mensagem. Nunca retorna erro: o que não pode ser
// liquidado vai para a DLQ.
func (p *Processor) Handle(ctx context.Context, m kafka.Message) {
	var ev events.OutcomeDeclared
	if err := json.Unmarshal(m.Value, &ev); err != nil || ev.MatchID == "" {
		p.Log.Warn("invalid outcome message", zap.Error(err))
		p.fail("decode")
		p.toDLQ(ctx, m)
		return
	}

	out := dto.ToOutcome(ev.Winners, ev.Actuals)
	log := p.Log.With(zap.String("matchId", ev.MatchID), zap.String("betType", ev.BetType), zap.String("source", ev.Source))

	var (
		rep ledger.Report
		err error
	)
	for attempt := 0; ; attempt++ {
		if ev.BetType != "" {
			rep, err = p.Settler.SettleBetTypePool(ctx, ev.MatchID, domain.BetType(ev.BetType), out)
		} else {
			rep, err = p.Settler.SettleMatch(ctx, ev.MatchID, out)
		}
		if err == nil || !transient(err) || attempt >= p.Retries || ctx.Err() != nil {
			break
		}
		log.Warn("settlement retry", zap.Int("attempt", attempt+1), zap.Error(err))
		time.Sleep(p.Backoff * time.Duration(attempt+1))
	}

	switch {
	case err == nil:
		log.Info("outcome settled", zap.Int("won", rep.Won), zap.Int("lost", rep.Lost),
			zap.Int("flagged", rep.Flagged), zap.Bool("completed", rep.Completed))
		if p.OnSettled != nil {
			p.OnSettled(rep)
		}
	case errors.Is(err, domain.ErrDuplicateSettlement):
		// reentrega de uma partida já liquidada: nada a fazer
		log.Info("outcome already settled")
	case ctx.Err() != nil:
		// encerrando: sem commit, a mensagem é reentregue
		log.Warn("settlement interrupted", zap.Error(err))
	default:
		log.Error("outcome settlement failed", zap.Error(err))
		p.fail("settle")
		p.toDLQ(ctx, m)
	}
}

// transient indica erros que valem nova tentativa
func transient(err error) bool {
	switch domain.Code(err) {
	case "SETTLEMENT_IN_PROGRESS", "INTERNAL":
		return true
	}
	return false
}

func (p *Processor) toDLQ(ctx context.Context, m kafka.Message) {
	if p.DLQ == nil {
		return
	}
	if err := kafka.WriteJSON(ctx, p.DLQ, string(m.Key), m.Value); err != nil {
		p.Log.Error("dlq write failed", zap.Error(err))
		p.fail("dlq")
		return
	}
	if p.OnDLQ != nil {
		p.OnDLQ()
	}
}

func (p *Processor) fail(stage string) {
	if p.OnError != nil {
		p.OnError(stage)
	}
}
