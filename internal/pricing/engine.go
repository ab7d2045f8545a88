package pricing

import (
	"context"
	"fmt"
	"hash/fnv"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/radieske/cricket-bet-ledger/internal/domain"
)

// PoolStore é o acesso persistente aos pools e cotações.
type PoolStore interface {
	// PoolSnapshot lê, numa única consulta, o stake por seleção e a versão do pool
	// (número de apostas aceitas nele).
	PoolSnapshot(ctx context.Context, key domain.PoolKey) (stakes map[string]int64, version int64, err error)
	// ReplaceQuotes substitui as cotações do pool por inteiro; retorna false se uma
	// versão igual ou mais nova já estiver gravada.
	ReplaceQuotes(ctx context.Context, key domain.PoolKey, version int64, odds map[string]float64, at time.Time) (bool, error)
	Quotes(ctx context.Context, key domain.PoolKey) ([]domain.OddsQuote, error)
}

// QuoteCache é o cache de leitura das cotações (Redis em produção).
type QuoteCache interface {
	GetQuotes(ctx context.Context, key domain.PoolKey) ([]domain.OddsQuote, bool, error)
	// SetQuotes só substitui o conjunto em cache por uma versão mais nova.
	SetQuotes(ctx context.Context, key domain.PoolKey, quotes []domain.OddsQuote) (bool, error)
}

// QuoteSink recebe cada novo conjunto de cotações (broadcast para o WebSocket).
type QuoteSink interface {
	PublishQuotes(ctx context.Context, key domain.PoolKey, quotes []domain.OddsQuote) error
}

// Options configura o Engine.
type Options struct {
	Table   Table
	Bounds  Bounds
	Dynamic []domain.BetType // tipos com precificação pari-mutuel
	Cache   QuoteCache       // opcional
	Sink    QuoteSink        // opcional

	OnRecompute func(betType string) // métricas
	OnError     func(stage string)   // métricas por fase
}

const lockStripes = 64

// Engine precifica apostas. Nunca altera saldos.
type Engine struct {
	log     *zap.Logger
	store   PoolStore
	table   Table
	bounds  Bounds
	dynamic map[domain.BetType]struct{}
	cache   QuoteCache
	sink    QuoteSink

	onRecompute func(string)
	onError     func(string)

	// recálculo serializado por pool
	stripes [lockStripes]sync.Mutex
}

// NewEngine cria o motor de precificação.
func NewEngine(log *zap.Logger, store PoolStore, opts Options) *Engine {
	if opts.Table == nil {
		opts.Table = DefaultTable()
	}
	if opts.Bounds == (Bounds{}) {
		opts.Bounds = DefaultBounds()
	}
	dyn := make(map[domain.BetType]struct{}, len(opts.Dynamic))
	for _, t := range opts.Dynamic {
		dyn[t] = struct{}{}
	}
	return &Engine{
		log:         log,
		store:       store,
		table:       opts.Table,
		bounds:      opts.Bounds,
		dynamic:     dyn,
		cache:       opts.Cache,
		sink:        opts.Sink,
		onRecompute: opts.OnRecompute,
		onError:     opts.OnError,
	}
}

// PriceStatic delega para a tabela configurada.
func (e *Engine) PriceStatic(bt domain.BetType, minBound, maxBound *int64) float64 {
	return e.table.PriceStatic(bt, minBound, maxBound)
}

// IsDynamic indica se o tipo usa precificação pari-mutuel.
func (e *Engine) IsDynamic(bt domain.BetType) bool {
	_, ok := e.dynamic[bt]
	return ok
}

func (e *Engine) stripe(key domain.PoolKey) *sync.Mutex {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key.String()))
	return &e.stripes[h.Sum32()%lockStripes]
}

// Recompute recalcula as cotações do pool a partir de um snapshot consistente
// e substitui as gravadas. Deve rodar depois que a aposta que disparou o recálculo
// estiver durável, assim o snapshot sempre a inclui.
func (e *Engine) Recompute(ctx context.Context, key domain.PoolKey) ([]domain.OddsQuote, error) {
	mu := e.stripe(key)
	mu.Lock()
	defer mu.Unlock()

	stakes, version, err := e.store.PoolSnapshot(ctx, key)
	if err != nil {
		e.fail("snapshot")
		return nil, fmt.Errorf("pool snapshot %s: %w", key, err)
	}

	odds := PriceDynamic(stakes, e.bounds)
	now := time.Now().UTC()

	applied, err := e.store.ReplaceQuotes(ctx, key, version, odds, now)
	if err != nil {
		e.fail("replace")
		return nil, fmt.Errorf("replace quotes %s: %w", key, err)
	}
	if !applied {
		// outro processo já gravou uma versão mais nova
		e.log.Debug("stale recompute skipped", zap.String("pool", key.String()), zap.Int64("version", version))
		return nil, nil
	}

	quotes := toQuotes(key, version, odds, now)
	if e.onRecompute != nil {
		e.onRecompute(string(key.BetType))
	}

	if e.cache != nil {
		if _, err := e.cache.SetQuotes(ctx, key, quotes); err != nil {
			e.log.Warn("quote cache set failed", zap.String("pool", key.String()), zap.Error(err))
			e.fail("cache")
		}
	}
	if e.sink != nil {
		if err := e.sink.PublishQuotes(ctx, key, quotes); err != nil {
			e.log.Warn("quote broadcast failed", zap.String("pool", key.String()), zap.Error(err))
			e.fail("broadcast")
		}
	}
	return quotes, nil
}

// Quotes retorna a visão somente-leitura do pool, preferencialmente do cache.
func (e *Engine) Quotes(ctx context.Context, key domain.PoolKey) ([]domain.OddsQuote, error) {
	if e.cache != nil {
		if q, ok, err := e.cache.GetQuotes(ctx, key); err == nil && ok {
			return q, nil
		}
	}
	q, err := e.store.Quotes(ctx, key)
	if err != nil {
		return nil, err
	}
	if e.cache != nil && len(q) > 0 {
		_, _ = e.cache.SetQuotes(ctx, key, q)
	}
	return q, nil
}

func (e *Engine) fail(stage string) {
	if e.onError != nil {
		e.onError(stage)
	}
}

func toQuotes(key domain.PoolKey, version int64, odds map[string]float64, at time.Time) []domain.OddsQuote {
	out := make([]domain.OddsQuote, 0, len(odds))
	for sel, o := range odds {
		out = append(out, domain.OddsQuote{
			MatchID:   key.MatchID,
			BetType:   key.BetType,
			Selection: sel,
			Odds:      o,
			Version:   version,
			UpdatedAt: at,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Selection < out[j].Selection })
	return out
}
