package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	segkafka "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/radieske/cricket-bet-ledger/internal/domain"
	"github.com/radieske/cricket-bet-ledger/internal/ledger"
	"github.com/radieske/cricket-bet-ledger/internal/shared/kafka"
	"github.com/radieske/cricket-bet-ledger/pkg/contracts/events"
)

type call struct {
	matchID string
	betType domain.BetType
	outcome domain.Outcome
}

type fakeSettler struct {
	mu    sync.Mutex
	calls []call
	errs  []error // devolvidos em ordem; depois nil
}

func (f *fakeSettler) next(c call) (ledger.Report, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, c)
	if len(f.errs) > 0 {
		err := f.errs[0]
		f.errs = f.errs[1:]
		if err != nil {
			return ledger.Report{}, err
		}
	}
	return ledger.Report{MatchID: c.matchID, Won: 1, Completed: true}, nil
}

func (f *fakeSettler) SettleMatch(_ context.Context, matchID string, out domain.Outcome) (ledger.Report, error) {
	return f.next(call{matchID: matchID, outcome: out})
}

func (f *fakeSettler) SettleBetTypePool(_ context.Context, matchID string, bt domain.BetType, out domain.Outcome) (ledger.Report, error) {
	return f.next(call{matchID: matchID, betType: bt, outcome: out})
}

type fakeWriter struct {
	mu   sync.Mutex
	msgs []kafka.Message
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...segkafka.Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.msgs = append(w.msgs, msgs...)
	return nil
}

type fakeReader struct {
	mu        sync.Mutex
	queue     []kafka.Message
	committed []kafka.Message
}

func (r *fakeReader) FetchMessage(ctx context.Context) (segkafka.Message, error) {
	r.mu.Lock()
	if len(r.queue) > 0 {
		m := r.queue[0]
		r.queue = r.queue[1:]
		r.mu.Unlock()
		return m, nil
	}
	r.mu.Unlock()
	<-ctx.Done()
	return segkafka.Message{}, ctx.Err()
}

func (r *fakeReader) CommitMessages(_ context.Context, msgs ...segkafka.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.committed = append(r.committed, msgs...)
	return nil
}

func message(t *testing.T, ev events.OutcomeDeclared) kafka.Message {
	t.Helper()
	b, err := json.Marshal(ev)
	require.NoError(t, err)
	return kafka.Message{Key: []byte(ev.MatchID), Value: b}
}

func newProcessor(s *fakeSettler, dlq *fakeWriter) *Processor {
	p := &Processor{
		Log:     zap.NewNop(),
		Settler: s,
		Retries: 2,
		Backoff: time.Millisecond,
	}
	if dlq != nil {
		p.DLQ = dlq
	}
	return p
}

func TestHandle_SettlesMatch(t *testing.T) {
	s := &fakeSettler{}
	dlq := &fakeWriter{}
	var reports []ledger.Report
	p := newProcessor(s, dlq)
	p.OnSettled = func(r ledger.Report) { reports = append(reports, r) }

	p.Handle(context.Background(), message(t, events.OutcomeDeclared{
		MatchID: "m1",
		Winners: map[string]string{"match_winner": "TeamA"},
		Actuals: map[string]map[string]int64{"PLAYER_RUNS": {"Kohli": 54}},
		Source:  "admin",
	}))

	require.Len(t, s.calls, 1)
	assert.Equal(t, "m1", s.calls[0].matchID)
	assert.Equal(t, domain.BetType(""), s.calls[0].betType)
	assert.Equal(t, "TeamA", s.calls[0].outcome.Winners[domain.MatchWinner])
	assert.Equal(t, int64(54), s.calls[0].outcome.Actuals[domain.PlayerRuns]["Kohli"])
	assert.Len(t, reports, 1)
	assert.Empty(t, dlq.msgs)
}

func TestHandle_SettlesSinglePool(t *testing.T) {
	s := &fakeSettler{}
	p := newProcessor(s, nil)

	p.Handle(context.Background(), message(t, events.OutcomeDeclared{
		MatchID: "m1", BetType: "TOSS_WINNER", Winners: map[string]string{"TOSS_WINNER": "TeamB"},
	}))

	require.Len(t, s.calls, 1)
	assert.Equal(t, domain.TossWinner, s.calls[0].betType)
}

func TestHandle_InvalidMessagesGoToDLQ(t *testing.T) {
	s := &fakeSettler{}
	dlq := &fakeWriter{}
	dlqCount := 0
	p := newProcessor(s, dlq)
	p.OnDLQ = func() { dlqCount++ }

	p.Handle(context.Background(), kafka.Message{Key: []byte("k"), Value: []byte("{broken")})
	p.Handle(context.Background(), message(t, events.OutcomeDeclared{Winners: map[string]string{"MATCH_WINNER": "TeamA"}}))

	assert.Empty(t, s.calls)
	require.Len(t, dlq.msgs, 2)
	assert.Equal(t, []byte("{broken"), dlq.msgs[0].Value)
	assert.Equal(t, 2, dlqCount)
}

func TestHandle_DuplicateSettlementIsNotAnError(t *testing.T) {
	s := &fakeSettler{errs: []error{domain.ErrDuplicateSettlement}}
	dlq := &fakeWriter{}
	p := newProcessor(s, dlq)

	p.Handle(context.Background(), message(t, events.OutcomeDeclared{MatchID: "m1"}))

	assert.Len(t, s.calls, 1)
	assert.Empty(t, dlq.msgs)
}

func TestHandle_RetriesTransientErrors(t *testing.T) {
	s := &fakeSettler{errs: []error{domain.ErrSettlementInProgress, errors.New("db timeout")}}
	dlq := &fakeWriter{}
	p := newProcessor(s, dlq)

	p.Handle(context.Background(), message(t, events.OutcomeDeclared{MatchID: "m1"}))

	assert.Len(t, s.calls, 3)
	assert.Empty(t, dlq.msgs)
}

func TestHandle_GivesUpAfterRetries(t *testing.T) {
	busy := domain.ErrSettlementInProgress
	s := &fakeSettler{errs: []error{busy, busy, busy, busy}}
	dlq := &fakeWriter{}
	p := newProcessor(s, dlq)

	p.Handle(context.Background(), message(t, events.OutcomeDeclared{MatchID: "m1"}))

	assert.Len(t, s.calls, 3)
	assert.Len(t, dlq.msgs, 1)
}

func TestHandle_PermanentErrorSkipsRetry(t *testing.T) {
	s := &fakeSettler{errs: []error{domain.ErrMatchStillOpen}}
	dlq := &fakeWriter{}
	p := newProcessor(s, dlq)

	p.Handle(context.Background(), message(t, events.OutcomeDeclared{MatchID: "m1"}))

	assert.Len(t, s.calls, 1)
	assert.Len(t, dlq.msgs, 1)
}

func TestRun_CommitsAfterHandling(t *testing.T) {
	s := &fakeSettler{}
	r := &fakeReader{queue: []kafka.Message{
		message(t, events.OutcomeDeclared{MatchID: "m1"}),
		message(t, events.OutcomeDeclared{MatchID: "m2"}),
	}}
	consumed := 0
	p := newProcessor(s, nil)
	p.Reader = r
	p.OnConsumed = func() { consumed++ }

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()

	require.Eventually(t, func() bool {
		r.mu.Lock()
		defer r.mu.Unlock()
		return len(r.committed) == 2
	}, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("Run did not stop after cancel")
	}
	assert.Equal(t, 2, consumed)
	s.mu.Lock()
	defer s.mu.Unlock()
	assert.Len(t, s.calls, 2)
}
