package redisx

import "time"

const (
	// Idempotency checkout: idem:checkout:{user_id}:{idempotency_key} -> order_id | "pending"
	KeyIdemCheckout = "idem:checkout:%s:%s"

	// Dedup event processing: dedup:{service}:{event_id}
	KeyDedup = "dedup:%s:%s"
)

var (
	TTLIdempotency = 24 * time.Hour
	TTLDedup       = 48 * time.Hour
)
