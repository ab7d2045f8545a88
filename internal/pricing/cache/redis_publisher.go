package cache

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"

	"github.com/radieske/cricket-bet-ledger/internal/domain"
	"github.com/radieske/cricket-bet-ledger/pkg/contracts/events"
)

const ChannelQuoteBroadcast = "quote_updates_broadcast"

type RedisBroadcaster struct {
	r       *redis.Client
	channel string
}

func NewRedisBroadcaster(r *redis.Client, channel string) *RedisBroadcaster {
	if channel == "" {
		channel = ChannelQuoteBroadcast
	}
	return &RedisBroadcaster{r: r, channel: channel}
}

// PublishQuotes envia o novo conjunto de cotações para o WS via Redis Pub/Sub
func (b *RedisBroadcaster) PublishQuotes(ctx context.Context, key domain.PoolKey, quotes []domain.OddsQuote) error {
	payload, err := json.Marshal(ToUpdate(key, quotes))
	if err != nil {
		return err
	}
	return b.r.Publish(ctx, b.channel, payload).Err()
}

// ToUpdate converte as cotações do pool no contrato publicado
func ToUpdate(key domain.PoolKey, quotes []domain.OddsQuote) events.QuoteUpdate {
	upd := events.QuoteUpdate{
		MatchID: key.MatchID,
		BetType: string(key.BetType),
		Quotes:  make([]events.Quote, 0, len(quotes)),
	}
	for _, q := range quotes {
		upd.Quotes = append(upd.Quotes, events.Quote{Selection: q.Selection, Odds: q.Odds})
		if q.Version > upd.Version {
			upd.Version = q.Version
		}
		if q.UpdatedAt.After(upd.UpdatedAt) {
			upd.UpdatedAt = q.UpdatedAt
		}
	}
	return upd
}
