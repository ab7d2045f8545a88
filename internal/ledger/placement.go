package ledger

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/radieske/cricket-bet-ledger/internal/domain"
	"github.com/radieske/cricket-bet-ledger/internal/ledger/repo"
	"github.com/radieske/cricket-bet-ledger/pkg/contracts/events"
)

// Placement é a confirmação devolvida ao participante
type Placement struct {
	Bet  domain.Bet `json:"bet"`
	Odds float64    `json:"odds"`
}

// PlaceBet valida, precifica, debita e grava a aposta numa única transação.
// Depois do commit dispara o recálculo do pool (tipos dinâmicos) e publica bet_placed.
func (s *Service) PlaceBet(ctx context.Context, participantID, matchID string, spec domain.BetSpec) (Placement, error) {
	spec.BetType = domain.ParseBetType(string(spec.BetType))
	spec.Selection = strings.TrimSpace(spec.Selection)

	if err := s.validate(spec); err != nil {
		s.rejected(err)
		return Placement{}, err
	}

	key := domain.PoolKey{MatchID: matchID, BetType: spec.BetType}
	bet := domain.Bet{
		ID:            uuid.NewString(),
		ParticipantID: participantID,
		MatchID:       matchID,
		BetType:       spec.BetType,
		Selection:     spec.Selection,
		MinBound:      spec.MinBound,
		MaxBound:      spec.MaxBound,
		Stake:         spec.Stake,
		Phase:         spec.Phase,
		Result:        domain.ResultPending,
		PlacedAt:      time.Now().UTC(),
	}

	err := s.store.InTx(ctx, func(tx *repo.Tx) error {
		status, err := tx.MatchStatus(ctx, matchID)
		if err != nil {
			return err
		}
		if status != domain.MatchOpen {
			return domain.ErrMatchNotBettable
		}

		// odd travada: cotação dinâmica corrente ou preço estático
		odds, ok, err := tx.QuoteOdds(ctx, key, bet.Selection)
		if err != nil {
			return err
		}
		if !ok {
			odds = s.pricer.PriceStatic(bet.BetType, bet.MinBound, bet.MaxBound)
		}
		bet.Odds = odds

		if err := tx.Debit(ctx, participantID, bet.Stake); err != nil {
			return err
		}
		if err := tx.InsertBet(ctx, bet); err != nil {
			return err
		}
		return tx.InsertEntry(ctx, repo.Entry{
			ID:            uuid.NewString(),
			ParticipantID: participantID,
			BetID:         bet.ID,
			Kind:          repo.EntryStake,
			Amount:        -bet.Stake,
			CreatedAt:     bet.PlacedAt,
		})
	})
	if err != nil {
		s.rejected(err)
		if domain.Code(err) == "INTERNAL" {
			s.fail("place")
			return Placement{}, fmt.Errorf("place bet: %w", err)
		}
		return Placement{}, err
	}

	s.log.Info("bet placed",
		zap.String("betId", bet.ID),
		zap.String("participantId", participantID),
		zap.String("matchId", matchID),
		zap.String("betType", string(bet.BetType)),
		zap.String("selection", bet.Selection),
		zap.Int64("stake", bet.Stake),
		zap.Float64("odds", bet.Odds),
	)
	if s.opts.Hooks.OnPlaced != nil {
		s.opts.Hooks.OnPlaced(bet)
	}

	// a aposta já está durável; falhas daqui em diante não a desfazem
	bg := context.WithoutCancel(ctx)
	if s.pricer.IsDynamic(bet.BetType) {
		if _, err := s.pricer.Recompute(bg, key); err != nil {
			s.log.Warn("pool recompute failed", zap.String("pool", key.String()), zap.Error(err))
			s.fail("recompute")
		}
	}
	if s.opts.Publisher != nil {
		if err := s.opts.Publisher.PublishBetPlaced(bg, toBetPlaced(bet)); err != nil {
			s.log.Warn("publish bet_placed failed", zap.String("betId", bet.ID), zap.Error(err))
			s.fail("publish")
		}
	}

	return Placement{Bet: bet, Odds: bet.Odds}, nil
}

func (s *Service) validate(spec domain.BetSpec) error {
	if spec.Stake < s.opts.MinStake {
		return fmt.Errorf("stake %d below minimum %d: %w", spec.Stake, s.opts.MinStake, domain.ErrInvalidStake)
	}
	if spec.BetType == "" || spec.Selection == "" {
		return fmt.Errorf("bet type and selection required: %w", domain.ErrInvalidBet)
	}
	if err := domain.ValidateRange(spec.MinBound, spec.MaxBound); err != nil {
		return err
	}
	if spec.BetType.IsRange() && !spec.HasRange() {
		return fmt.Errorf("%s requires min and max bounds: %w", spec.BetType, domain.ErrInvalidBet)
	}
	return nil
}

func (s *Service) rejected(err error) {
	if s.opts.Hooks.OnRejected != nil {
		s.opts.Hooks.OnRejected(domain.Code(err))
	}
}

func toBetPlaced(b domain.Bet) events.BetPlaced {
	return events.BetPlaced{
		BetID:         b.ID,
		ParticipantID: b.ParticipantID,
		MatchID:       b.MatchID,
		BetType:       string(b.BetType),
		Selection:     b.Selection,
		MinBound:      b.MinBound,
		MaxBound:      b.MaxBound,
		Stake:         b.Stake,
		Odds:          b.Odds,
		Phase:         b.Phase,
	}
}
