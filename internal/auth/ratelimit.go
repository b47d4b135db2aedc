package auth

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisLimiter is a fixed-window counter backed by Redis. The first hit in
// a window creates the key with an expiry; once the count passes the limit
// the key simply has to age out.
type RedisLimiter struct {
	rdb    *redis.Client
	limit  int64
	window time.Duration
}

func NewRedisLimiter(rdb *redis.Client, limit int64, window time.Duration) *RedisLimiter {
	return &RedisLimiter{rdb: rdb, limit: limit, window: window}
}

// Allow increments the counter for key and reports whether the caller is
// still under the limit.
func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	n, err := l.rdb.Incr(ctx, "rl:"+key).Result()
	if err != nil {
		return false, err
	}
	if n == 1 {
		if err := l.rdb.Expire(ctx, "rl:"+key, l.window).Err(); err != nil {
			return false, err
		}
	}
	return n <= l.limit, nil
}
