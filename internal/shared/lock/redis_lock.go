package lock

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrNotAcquired indica que outro processo já segura a trava.
var ErrNotAcquired = errors.New("lock held by another owner")

// só apaga a chave se o token ainda for o nosso
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`)

// RedisLocker implementa trava distribuída simples com SET NX PX.
type RedisLocker struct {
	Client *redis.Client
	Prefix string
}

func NewRedisLocker(c *redis.Client, prefix string) *RedisLocker {
	return &RedisLocker{Client: c, Prefix: prefix}
}

// Acquire tenta obter a trava por ttl. Retorna a função de liberação.
func (l *RedisLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (func(), error) {
	token := uuid.NewString()
	k := l.Prefix + key
	ok, err := l.Client.SetNX(ctx, k, token, ttl).Result()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotAcquired
	}
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = releaseScript.Run(ctx, l.Client, []string{k}, token).Err()
	}, nil
}
