package redisx

import (
	"context"
	"github.com/redis/go-redis/v9"
	"time"
)

// Dedup remembers processed event ids for TTL.
type Dedup struct {
	R   redis.Cmdable
	TTL time.Duration
}

// MarkOnce returns true only for the first caller of a key.
func (d *Dedup) MarkOnce(ctx context.Context, key string) (bool, error) {
	ttl := d.TTL
	if ttl == 0 {
		ttl = TTLDedup
	}
	return d.R.SetNX(ctx, key, "1", ttl).Result()
}

func (d *Dedup) Release(ctx context.Context, key string) error {
	return d.R.Del(ctx, key).Err()
}
