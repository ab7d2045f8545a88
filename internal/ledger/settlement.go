package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/radieske/cricket-bet-ledger/internal/domain"
	"github.com/radieske/cricket-bet-ledger/internal/ledger/repo"
	"github.com/radieske/cricket-bet-ledger/internal/shared/lock"
	"github.com/radieske/cricket-bet-ledger/pkg/contracts/events"
)

// BetOutcome é o resultado da liquidação de uma aposta
type BetOutcome struct {
	BetID         string         `json:"betId"`
	ParticipantID string         `json:"participantId"`
	BetType       domain.BetType `json:"betType"`
	Selection     string         `json:"selection"`
	Result        domain.Result  `json:"result"`
	Payout        int64          `json:"payout"`
	Flagged       bool           `json:"flagged,omitempty"`
	Skipped       bool           `json:"skipped,omitempty"` // já liquidada por outra execução
	Error         string         `json:"error,omitempty"`
}

// Report resume uma execução de liquidação
type Report struct {
	MatchID     string         `json:"matchId"`
	BetType     domain.BetType `json:"betType,omitempty"`
	Bets        []BetOutcome   `json:"bets"`
	Won         int            `json:"won"`
	Lost        int            `json:"lost"`
	Flagged     int            `json:"flagged"`
	Failed      int            `json:"failed"`
	Skipped     int            `json:"skipped"`
	TotalPayout int64          `json:"totalPayout"`
	Completed   bool           `json:"completed"`
}

// ReasonUnresolvable marca apostas sem dados suficientes no resultado declarado
const ReasonUnresolvable = "UNRESOLVABLE_BET"

// ErrPayoutOverflow indica um prêmio que não cabe em int64; a aposta fica PENDING.
var ErrPayoutOverflow = errors.New("payout does not fit in int64")

var maxPayout = decimal.NewFromInt(math.MaxInt64)

// Payout = floor(stake * odds), em aritmética decimal
func Payout(stake int64, odds float64) (int64, error) {
	p := decimal.NewFromInt(stake).Mul(decimal.NewFromFloat(odds)).Floor()
	if p.GreaterThan(maxPayout) {
		return 0, fmt.Errorf("stake %d at odds %v: %w", stake, odds, ErrPayoutOverflow)
	}
	return p.IntPart(), nil
}

// SettleMatch liquida todas as apostas PENDING da partida
func (s *Service) SettleMatch(ctx context.Context, matchID string, out domain.Outcome) (Report, error) {
	return s.settle(ctx, matchID, "", out)
}

// SettleBetTypePool liquida só o pool (matchID, betType)
func (s *Service) SettleBetTypePool(ctx context.Context, matchID string, bt domain.BetType, out domain.Outcome) (Report, error) {
	bt = domain.ParseBetType(string(bt))
	if bt == "" {
		return Report{}, fmt.Errorf("bet type required: %w", domain.ErrInvalidInput)
	}
	return s.settle(ctx, matchID, bt, out)
}

func (s *Service) settle(ctx context.Context, matchID string, bt domain.BetType, out domain.Outcome) (Report, error) {
	key, err := flightKey(matchID, bt, out)
	if err != nil {
		return Report{}, err
	}
	// só chamadas com a mesma declaração compartilham a execução, que não
	// herda o cancelamento de quem chegou primeiro
	run := context.WithoutCancel(ctx)
	ch := s.flight.DoChan(key, func() (any, error) {
		mu := s.matchLock(matchID)
		mu.Lock()
		defer mu.Unlock()
		return s.settleOnce(run, matchID, bt, out)
	})
	select {
	case res := <-ch:
		if res.Err != nil {
			return Report{}, res.Err
		}
		return res.Val.(Report), nil
	case <-ctx.Done():
		return Report{}, ctx.Err()
	}
}

// flightKey identifica (partida, escopo, declaração). json ordena as chaves dos mapas.
func flightKey(matchID string, bt domain.BetType, out domain.Outcome) (string, error) {
	b, err := json.Marshal(out)
	if err != nil {
		return "", fmt.Errorf("encode outcome: %w", err)
	}
	return matchID + "|" + string(bt) + "|" + string(b), nil
}

func (s *Service) settleOnce(ctx context.Context, matchID string, bt domain.BetType, out domain.Outcome) (Report, error) {
	start := time.Now()

	m, err := s.store.Match(ctx, matchID)
	if err != nil {
		return Report{}, err
	}
	switch m.Status {
	case domain.MatchCompleted:
		return Report{}, domain.ErrDuplicateSettlement
	case domain.MatchOpen:
		return Report{}, domain.ErrMatchStillOpen
	}

	if s.opts.Locker != nil {
		release, err := s.opts.Locker.Acquire(ctx, "settle:"+matchID, s.opts.LockTTL)
		if errors.Is(err, lock.ErrNotAcquired) {
			return Report{}, domain.ErrSettlementInProgress
		}
		if err != nil {
			s.fail("lock")
			return Report{}, fmt.Errorf("acquire settlement lock: %w", err)
		}
		defer release()
	}

	bets, err := s.store.PendingBets(ctx, matchID, bt)
	if err != nil {
		s.fail("settle")
		return Report{}, fmt.Errorf("list pending bets: %w", err)
	}

	rep := Report{MatchID: matchID, BetType: bt, Bets: make([]BetOutcome, 0, len(bets))}
	now := time.Now().UTC()
	for _, b := range bets {
		o := s.settleBet(ctx, b, out, now)
		switch {
		case o.Error != "" && !o.Flagged:
			rep.Failed++
		case o.Flagged:
			rep.Flagged++
		case o.Skipped:
			rep.Skipped++
		case o.Result == domain.ResultWin:
			rep.Won++
			rep.TotalPayout += o.Payout
		default:
			rep.Lost++
		}
		rep.Bets = append(rep.Bets, o)
	}

	// a partida só fecha quando nada ficou pendente (inclui apostas marcadas)
	pending, err := s.store.CountPending(ctx, matchID)
	if err != nil {
		s.fail("settle")
		s.log.Warn("count pending failed", zap.String("matchId", matchID), zap.Error(err))
	} else if pending == 0 {
		if rep.Completed, err = s.store.MarkCompleted(ctx, matchID, now); err != nil {
			s.fail("settle")
			s.log.Warn("mark match completed failed", zap.String("matchId", matchID), zap.Error(err))
		}
	}

	s.log.Info("settlement finished",
		zap.String("matchId", matchID),
		zap.String("betType", string(bt)),
		zap.Int("won", rep.Won),
		zap.Int("lost", rep.Lost),
		zap.Int("flagged", rep.Flagged),
		zap.Int("failed", rep.Failed),
		zap.Int64("totalPayout", rep.TotalPayout),
		zap.Bool("completed", rep.Completed),
		zap.Duration("took", time.Since(start)),
	)
	if s.opts.Hooks.OnFinished != nil {
		s.opts.Hooks.OnFinished(time.Since(start))
	}
	return rep, nil
}

// settleBet avalia e liquida uma aposta. Cada aposta tem sua própria transação:
// falha numa não interrompe as demais.
func (s *Service) settleBet(ctx context.Context, b domain.Bet, out domain.Outcome, now time.Time) BetOutcome {
	o := BetOutcome{
		BetID:         b.ID,
		ParticipantID: b.ParticipantID,
		BetType:       b.BetType,
		Selection:     b.Selection,
		Result:        domain.ResultPending,
	}

	won, ok := out.Evaluate(b)
	if !ok {
		o.Flagged = true
		o.Error = domain.ErrUnresolvableBet.Error()
		if err := s.store.FlagBet(ctx, b.ID, ReasonUnresolvable, now); err != nil {
			s.log.Error("flag bet failed", zap.String("betId", b.ID), zap.Error(err))
			s.fail("flag")
		}
		s.log.Warn("bet left pending for manual review",
			zap.String("betId", b.ID), zap.String("betType", string(b.BetType)), zap.String("selection", b.Selection))
		if s.opts.Hooks.OnFlagged != nil {
			s.opts.Hooks.OnFlagged(b.ID, ReasonUnresolvable)
		}
		return o
	}

	result, payout := domain.ResultLose, int64(0)
	if won {
		p, err := Payout(b.Stake, b.Odds)
		if err != nil {
			s.log.Error("settle bet failed", zap.String("betId", b.ID), zap.Error(err))
			s.fail("settle_bet")
			o.Error = err.Error()
			return o
		}
		result, payout = domain.ResultWin, p
	}

	applied := false
	err := s.store.InTx(ctx, func(tx *repo.Tx) error {
		ok, err := tx.MarkSettled(ctx, b.ID, result, payout, now)
		if err != nil || !ok {
			return err
		}
		if won {
			if err := tx.Credit(ctx, b.ParticipantID, payout, payout-b.Stake); err != nil {
				return err
			}
			if err := tx.InsertEntry(ctx, repo.Entry{
				ID:            uuid.NewString(),
				ParticipantID: b.ParticipantID,
				BetID:         b.ID,
				Kind:          repo.EntryPayout,
				Amount:        payout,
				CreatedAt:     now,
			}); err != nil {
				return err
			}
		}
		if err := tx.ClearFlag(ctx, b.ID); err != nil {
			return err
		}
		applied = true
		return nil
	})
	if err != nil {
		s.log.Error("settle bet failed", zap.String("betId", b.ID), zap.Error(err))
		s.fail("settle_bet")
		o.Error = err.Error()
		return o
	}
	if !applied {
		o.Skipped = true
		return o
	}

	o.Result, o.Payout = result, payout
	b.Result, b.Payout, b.SettledAt = result, payout, &now
	if s.opts.Hooks.OnSettled != nil {
		s.opts.Hooks.OnSettled(b)
	}
	if s.opts.Publisher != nil {
		if err := s.opts.Publisher.PublishBetSettled(context.WithoutCancel(ctx), toBetSettled(b)); err != nil {
			s.log.Warn("publish bet_settled failed", zap.String("betId", b.ID), zap.Error(err))
			s.fail("publish")
		}
	}
	return o
}

func toBetSettled(b domain.Bet) events.BetSettled {
	ts := time.Now().UTC()
	if b.SettledAt != nil {
		ts = *b.SettledAt
	}
	return events.BetSettled{
		BetID:         b.ID,
		ParticipantID: b.ParticipantID,
		MatchID:       b.MatchID,
		BetType:       string(b.BetType),
		Result:        string(b.Result),
		Stake:         b.Stake,
		Odds:          b.Odds,
		Payout:        b.Payout,
		Ts:            ts,
	}
}
