package ws

import (
	"context"

	"github.com/radieske/cricket-bet-ledger/internal/domain"
	"github.com/radieske/cricket-bet-ledger/internal/pricing/cache"
)

// HubSink entrega as cotações direto no Hub local, sem passar pelo Redis.
// Usado quando o serviço roda sem Redis (uma única instância).
type HubSink struct {
	Hub *Hub
}

func (s HubSink) PublishQuotes(_ context.Context, key domain.PoolKey, quotes []domain.OddsQuote) error {
	s.Hub.Broadcast(cache.ToUpdate(key, quotes))
	return nil
}
