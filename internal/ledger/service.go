package ledger

import (
	"context"
	"fmt"
	"hash/fnv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/radieske/cricket-bet-ledger/internal/domain"
	"github.com/radieske/cricket-bet-ledger/internal/ledger/repo"
	"github.com/radieske/cricket-bet-ledger/pkg/contracts/events"
)

// Pricer é o que o ledger usa da precificação (pricing.Engine em produção).
type Pricer interface {
	PriceStatic(bt domain.BetType, minBound, maxBound *int64) float64
	IsDynamic(bt domain.BetType) bool
	Recompute(ctx context.Context, key domain.PoolKey) ([]domain.OddsQuote, error)
}

// Publisher envia os eventos do ledger (Kafka em produção)
type Publisher interface {
	PublishBetPlaced(ctx context.Context, e events.BetPlaced) error
	PublishBetSettled(ctx context.Context, e events.BetSettled) error
}

// Locker é a trava distribuída da liquidação (Redis SET NX PX em produção)
type Locker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (func(), error)
}

// Hooks são callbacks opcionais para métricas
type Hooks struct {
	OnPlaced   func(b domain.Bet)
	OnRejected func(code string)
	OnSettled  func(b domain.Bet)
	OnFlagged  func(betID, reason string)
	OnFinished func(took time.Duration) // uma execução de liquidação
	OnError    func(stage string)
}

type Options struct {
	MinStake        int64
	StartingBalance int64
	Publisher       Publisher // opcional
	Locker          Locker    // opcional
	LockTTL         time.Duration
	Hooks           Hooks
}

const matchStripes = 64

// Service é o ledger: aceita apostas (debitando o saldo) e liquida partidas.
type Service struct {
	log    *zap.Logger
	store  *repo.Store
	pricer Pricer
	opts   Options

	// liquidação: uma execução por partida
	flight  singleflight.Group
	matches [matchStripes]sync.Mutex
}

func New(log *zap.Logger, store *repo.Store, pricer Pricer, opts Options) *Service {
	if opts.MinStake <= 0 {
		opts.MinStake = 100
	}
	if opts.LockTTL <= 0 {
		opts.LockTTL = 2 * time.Minute
	}
	return &Service{log: log, store: store, pricer: pricer, opts: opts}
}

// MinStake retorna o stake mínimo aceito
func (s *Service) MinStake() int64 { return s.opts.MinStake }

func (s *Service) matchLock(matchID string) *sync.Mutex {
	h := fnv.New32a()
	_, _ = h.Write([]byte(matchID))
	return &s.matches[h.Sum32()%matchStripes]
}

// RegisterParticipant cria o participante com o saldo inicial configurado
func (s *Service) RegisterParticipant(ctx context.Context, id string) (domain.Participant, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return domain.Participant{}, fmt.Errorf("participant id required: %w", domain.ErrInvalidInput)
	}
	p, err := s.store.RegisterParticipant(ctx, id, s.opts.StartingBalance)
	if err != nil {
		return domain.Participant{}, err
	}
	s.log.Info("participant registered", zap.String("participantId", id), zap.Int64("balance", p.Balance))
	return p, nil
}

func (s *Service) Participant(ctx context.Context, id string) (domain.Participant, error) {
	return s.store.Participant(ctx, id)
}

// CreateMatch registra uma partida aberta para apostas. Sem id, gera um uuid.
func (s *Service) CreateMatch(ctx context.Context, m domain.Match) (domain.Match, error) {
	if strings.TrimSpace(m.TeamA) == "" || strings.TrimSpace(m.TeamB) == "" {
		return domain.Match{}, fmt.Errorf("both teams required: %w", domain.ErrInvalidInput)
	}
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	created, err := s.store.CreateMatch(ctx, m)
	if err != nil {
		return domain.Match{}, err
	}
	s.log.Info("match created", zap.String("matchId", created.ID),
		zap.String("teamA", created.TeamA), zap.String("teamB", created.TeamB))
	return created, nil
}

func (s *Service) Match(ctx context.Context, id string) (domain.Match, error) {
	return s.store.Match(ctx, id)
}

// SetMatchStatus abre ou fecha as apostas. COMPLETED só é atingido pela liquidação.
func (s *Service) SetMatchStatus(ctx context.Context, id string, status domain.MatchStatus) error {
	if status != domain.MatchOpen && status != domain.MatchBettingClosed {
		return fmt.Errorf("status %q not settable: %w", status, domain.ErrInvalidInput)
	}
	if err := s.store.SetMatchStatus(ctx, id, status); err != nil {
		return err
	}
	s.log.Info("match status changed", zap.String("matchId", id), zap.String("status", string(status)))
	return nil
}

func (s *Service) Bet(ctx context.Context, id string) (domain.Bet, error) {
	return s.store.Bet(ctx, id)
}

func (s *Service) BetsForParticipant(ctx context.Context, participantID string) ([]domain.Bet, error) {
	if _, err := s.store.Participant(ctx, participantID); err != nil {
		return nil, err
	}
	return s.store.BetsForParticipant(ctx, participantID)
}

// Flags lista as apostas aguardando resolução manual
func (s *Service) Flags(ctx context.Context, matchID string) ([]repo.Flag, error) {
	return s.store.Flags(ctx, matchID)
}

func (s *Service) fail(stage string) {
	if s.opts.Hooks.OnError != nil {
		s.opts.Hooks.OnError(stage)
	}
}
