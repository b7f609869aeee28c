package redisx

import (
	"context"
	"errors"
	"fmt"
	"github.com/redis/go-redis/v9"
)

const pendingMarker = "pending"

// ErrInFlight means another request with the same key has not finished yet.
var ErrInFlight = errors.New("request with this idempotency key is in progress")

// Idempotency maps a client supplied key to the order it produced.
type Idempotency struct {
	R redis.Cmdable
}

// Claim reserves the key. If it was already used, the stored order id is
// returned with claimed=false.
func (i *Idempotency) Claim(ctx context.Context, userID, key string) (orderID string, claimed bool, err error) {
	k := fmt.Sprintf(KeyIdemCheckout, userID, key)
	ok, err := i.R.SetNX(ctx, k, pendingMarker, TTLIdempotency).Result()
	if err != nil {
		return "", false, err
	}
	if ok {
		return "", true, nil
	}
	v, err := i.R.Get(ctx, k).Result()
	if errors.Is(err, redis.Nil) {
		// expired between SETNX and GET; coba sekali lagi
		return i.Claim(ctx, userID, key)
	}
	if err != nil {
		return "", false, err
	}
	if v == pendingMarker {
		return "", false, ErrInFlight
	}
	return v, false, nil
}

func (i *Idempotency) Complete(ctx context.Context, userID, key, orderID string) error {
	return i.R.Set(ctx, fmt.Sprintf(KeyIdemCheckout, userID, key), orderID, TTLIdempotency).Err()
}

// Release drops a claim after a failed checkout so the client may retry.
func (i *Idempotency) Release(ctx context.Context, userID, key string) error {
	return i.R.Del(ctx, fmt.Sprintf(KeyIdemCheckout, userID, key)).Err()
}
