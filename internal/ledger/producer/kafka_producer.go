package producer

import (
	"context"
	"encoding/json"
	"time"

	"github.com/radieske/cricket-bet-ledger/internal/shared/kafka"
	"github.com/radieske/cricket-bet-ledger/pkg/contracts/events"
)

// KafkaPublisher publica os eventos do ledger. A chave é o matchId,
// então os eventos de uma partida ficam ordenados na mesma partição.
type KafkaPublisher struct {
	Placed  kafka.MessageWriter
	Settled kafka.MessageWriter
}

func NewKafkaPublisher(placed, settled kafka.MessageWriter) *KafkaPublisher {
	return &KafkaPublisher{Placed: placed, Settled: settled}
}

func (p *KafkaPublisher) PublishBetPlaced(ctx context.Context, e events.BetPlaced) error {
	if p.Placed == nil {
		return nil
	}
	e.TsUnixMs = time.Now().UnixMilli()
	b, err := json.Marshal(e)
	if err != nil {
		return err
	}
	return kafka.WriteJSON(ctx, p.Placed, e.MatchID, b)
}

func (p *KafkaPublisher) PublishBetSettled(ctx context.Context, e events.BetSettled) error {
	if p.Settled == nil {
		return nil
	}
	b, err := json.Marshal(e)
	if err != nil {
		return err
	}
	return kafka.WriteJSON(ctx, p.Settled, e.MatchID, b)
}
