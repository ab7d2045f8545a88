package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/radieske/cricket-bet-ledger/internal/domain"
)

// RedisCache encapsula o cache das cotações de cada pool no Redis
// Client: cliente Redis
// TTL: tempo de expiração dos registros
type RedisCache struct {
	Client *redis.Client
	TTL    time.Duration
}

// NewRedisCache cria uma instância de cache Redis com TTL configurável
func NewRedisCache(c *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{Client: c, TTL: ttl}
}

// Key gera a chave Redis das cotações de um pool
func Key(key domain.PoolKey) string {
	return "quotes:" + key.MatchID + ":" + string(key.BetType)
}

// só grava se a versão recebida for mais nova que a do cache
var setIfNewerScript = redis.NewScript(`
local cur = redis.call("HGET", KEYS[1], "version")
if cur and tonumber(cur) >= tonumber(ARGV[1]) then
	return 0
end
redis.call("HSET", KEYS[1], "version", ARGV[1], "quotes", ARGV[2])
if tonumber(ARGV[3]) > 0 then
	redis.call("PEXPIRE", KEYS[1], ARGV[3])
end
return 1`)

// SetQuotes grava o conjunto completo de cotações do pool, se for mais novo
// que o do cache. Retorna false quando uma versão igual ou maior já está lá.
func (r *RedisCache) SetQuotes(ctx context.Context, key domain.PoolKey, quotes []domain.OddsQuote) (bool, error) {
	b, err := json.Marshal(quotes)
	if err != nil {
		return false, err
	}
	n, err := setIfNewerScript.Run(ctx, r.Client, []string{Key(key)},
		Version(quotes), b, r.TTL.Milliseconds()).Int()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// GetQuotes retorna (cotações, true) em caso de hit
func (r *RedisCache) GetQuotes(ctx context.Context, key domain.PoolKey) ([]domain.OddsQuote, bool, error) {
	b, err := r.Client.HGet(ctx, Key(key), "quotes").Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var out []domain.OddsQuote
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, false, err
	}
	return out, true, nil
}

// Version é a maior versão do conjunto
func Version(quotes []domain.OddsQuote) int64 {
	var v int64
	for _, q := range quotes {
		if q.Version > v {
			v = q.Version
		}
	}
	return v
}
