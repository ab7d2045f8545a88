package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/radieske/cricket-bet-ledger/internal/domain"
)

func newTestCache(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return NewRedisCache(rdb, time.Minute), mr
}

func quotesAt(version int64, odds ...float64) []domain.OddsQuote {
	sels := []string{"TeamA", "TeamB"}
	out := make([]domain.OddsQuote, 0, len(odds))
	for i, o := range odds {
		out = append(out, domain.OddsQuote{MatchID: "m1", BetType: domain.MatchWinner, Selection: sels[i], Odds: o, Version: version})
	}
	return out
}

func TestRedisCache_KeepsNewestVersion(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()
	key := domain.PoolKey{MatchID: "m1", BetType: domain.MatchWinner}

	_, ok, err := c.GetQuotes(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)

	set, err := c.SetQuotes(ctx, key, quotesAt(2, 5.0, 2.67))
	require.NoError(t, err)
	assert.True(t, set)

	// leitura atrasada com v1 não volta o cache para trás
	set, err = c.SetQuotes(ctx, key, quotesAt(1, 2.0))
	require.NoError(t, err)
	assert.False(t, set)
	set, err = c.SetQuotes(ctx, key, quotesAt(2, 1.5, 1.5))
	require.NoError(t, err)
	assert.False(t, set)

	q, ok, err := c.GetQuotes(ctx, key)
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, q, 2)
	assert.Equal(t, int64(2), q[0].Version)
	assert.Equal(t, 5.0, q[0].Odds)

	set, err = c.SetQuotes(ctx, key, quotesAt(3, 4.0))
	require.NoError(t, err)
	assert.True(t, set)
	q, _, err = c.GetQuotes(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, int64(3), Version(q))

	assert.True(t, mr.TTL(Key(key)) > 0)
	mr.FastForward(2 * time.Minute)
	_, ok, err = c.GetQuotes(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVersion(t *testing.T) {
	assert.Equal(t, int64(0), Version(nil))
	q := quotesAt(4, 2.0, 3.0)
	q[1].Version = 7
	assert.Equal(t, int64(7), Version(q))
}
