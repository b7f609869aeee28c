package orders

import (
	"encoding/json"
	"time"
)

const (
	EventOrderPlaced        = "OrderPlaced"
	EventOrderStatusChanged = "OrderStatusChanged"
	EventStockRejected      = "StockRejected"
	EventBackInStock        = "BackInStock"
)

type Envelope struct {
	EventID       string          `json:"event_id"`      // uuid
	EventType     string          `json:"event_type"`    // salah satu const di atas
	EventVersion  int             `json:"event_version"` // 1
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"` // e.g., "storefront-api"
	TraceID       string          `json:"trace_id,omitempty"`
	CorrelationID string          `json:"correlation_id,omitempty"` // order_id / product_id
	Payload       json.RawMessage `json:"payload"`
}

// ---- Payload tipe per event ----

type OrderPlacedPayload struct {
	OrderID       string        `json:"order_id"`
	UserID        string        `json:"user_id"`
	Lines         []Line        `json:"lines"`
	Allocations   []Allocation  `json:"allocations"`
	TotalUSD      string        `json:"total_usd"`
	PaymentMethod PaymentMethod `json:"payment_method"`
	PaymentStatus PaymentStatus `json:"payment_status"`
}

type OrderStatusChangedPayload struct {
	OrderID       string        `json:"order_id"`
	Status        Status        `json:"status"`
	PaymentStatus PaymentStatus `json:"payment_status"`
}

type StockRejectedDetail struct {
	ProductID string `json:"product_id"`
	Required  int    `json:"required"`
	Available int    `json:"available"`
}

type StockRejectedPayload struct {
	UserID  string                `json:"user_id"`
	Reason  string                `json:"reason"` // OUT_OF_STOCK
	Details []StockRejectedDetail `json:"details,omitempty"`
}

type BackInStockPayload struct {
	ProductID string `json:"product_id"`
	Email     string `json:"email"`
}

func PlacedPayload(o Order) OrderPlacedPayload {
	return OrderPlacedPayload{
		OrderID:       o.ID,
		UserID:        o.UserID,
		Lines:         o.Lines,
		Allocations:   o.Allocations,
		TotalUSD:      o.TotalUSD.StringFixed(2),
		PaymentMethod: o.PaymentMethod,
		PaymentStatus: o.PaymentStatus,
	}
}
