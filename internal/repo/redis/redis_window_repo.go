package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisWindowRepo stores rate-limit windows in a sorted set per
// identity, scored by the request instant in microseconds. It lets
// every replica of the service share one set of counters; the key
// expires one window after the last write, so idle identities cost
// nothing.
type RedisWindowRepo struct {
	client *redis.Client
}

func NewRedisWindowRepo(client *redis.Client) *RedisWindowRepo {
	return &RedisWindowRepo{client: client}
}

func (r *RedisWindowRepo) key(identity string) string {
	return "ratelimit:" + identity
}

func (r *RedisWindowRepo) Window(ctx context.Context, identity string) ([]time.Time, error) {
	entries, err := r.client.ZRangeWithScores(ctx, r.key(identity), 0, -1).Result()
	if err != nil {
		return nil, err
	}
	window := make([]time.Time, 0, len(entries))
	for _, entry := range entries {
		window = append(window, time.UnixMicro(int64(entry.Score)))
	}
	return window, nil
}

func (r *RedisWindowRepo) Put(ctx context.Context, identity string, window []time.Time, ttl time.Duration) error {
	key := r.key(identity)
	pipe := r.client.TxPipeline()
	pipe.Del(ctx, key)
	if len(window) > 0 {
		members := make([]redis.Z, 0, len(window))
		for i, t := range window {
			members = append(members, redis.Z{
				Score: float64(t.UnixMicro()),
				// index prefix keeps members unique when two requests
				// share an instant
				Member: fmt.Sprintf("%d:%d", i, t.UnixMicro()),
			})
		}
		pipe.ZAdd(ctx, key, members...)
		pipe.Expire(ctx, key, ttl)
	}
	_, err := pipe.Exec(ctx)
	return err
}
