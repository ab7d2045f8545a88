package ws

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/radieske/cricket-bet-ledger/internal/domain"
	"github.com/radieske/cricket-bet-ledger/pkg/contracts/events"
)

func dial(t *testing.T, hub *Hub) *websocket.Conn {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(hub.HandleWS))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestHub_SubscribeAndBroadcast(t *testing.T) {
	hub := NewHub(zap.NewNop(), func(*http.Request) bool { return true })
	conn := dial(t, hub)

	require.NoError(t, conn.WriteJSON(ClientMsg{Type: "subscribe", MatchID: "m1"}))
	require.Eventually(t, func() bool { return hub.Subscribers("m1") == 1 }, time.Second, 5*time.Millisecond)

	now := time.Now().UTC()
	err := HubSink{Hub: hub}.PublishQuotes(context.Background(), domain.PoolKey{MatchID: "m1", BetType: domain.MatchWinner},
		[]domain.OddsQuote{
			{Selection: "TeamA", Odds: 5.0, Version: 2, UpdatedAt: now},
			{Selection: "TeamB", Odds: 2.67, Version: 2, UpdatedAt: now},
		})
	require.NoError(t, err)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var upd events.QuoteUpdate
	require.NoError(t, conn.ReadJSON(&upd))
	assert.Equal(t, "m1", upd.MatchID)
	assert.Equal(t, "MATCH_WINNER", upd.BetType)
	assert.Equal(t, int64(2), upd.Version)
	require.Len(t, upd.Quotes, 2)
	assert.Equal(t, 2.67, upd.Quotes[1].Odds)
}

func TestHub_PingAndUnsubscribe(t *testing.T) {
	hub := NewHub(zap.NewNop(), func(*http.Request) bool { return true })
	conn := dial(t, hub)

	require.NoError(t, conn.WriteJSON(ClientMsg{Type: "ping"}))
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var pong map[string]string
	require.NoError(t, conn.ReadJSON(&pong))
	assert.Equal(t, "pong", pong["type"])

	require.NoError(t, conn.WriteJSON(ClientMsg{Type: "subscribe", MatchID: "m1"}))
	require.Eventually(t, func() bool { return hub.Subscribers("m1") == 1 }, time.Second, 5*time.Millisecond)
	require.NoError(t, conn.WriteJSON(ClientMsg{Type: "unsubscribe", MatchID: "m1"}))
	require.Eventually(t, func() bool { return hub.Subscribers("m1") == 0 }, time.Second, 5*time.Millisecond)

	// sem inscritos: broadcast não faz nada
	hub.Broadcast(events.QuoteUpdate{MatchID: "m1"})
}
