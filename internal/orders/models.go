package orders

import (
	"github.com/shopspring/decimal"
	"slices"
	"time"
)

// Line is the priced snapshot of a cart line at checkout time.
type Line struct {
	ProductID    string          `json:"product_id"`
	Name         string          `json:"name"`
	Quantity     int             `json:"quantity"`
	UnitPriceUSD decimal.Decimal `json:"unit_price_usd"`
}

type Shipping struct {
	Address    string `json:"address"`
	City       string `json:"city"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
	Phone      string `json:"phone"`
}

// Allocation records which warehouse shipped how many units of a product.
type Allocation struct {
	WarehouseID string `json:"warehouse_id"`
	ProductID   string `json:"product_id"`
	Quantity    int    `json:"quantity"`
}

type Order struct {
	ID            string          `json:"id"`
	CreatedAt     time.Time       `json:"created_at"`
	UserID        string          `json:"user_id"`
	UserName      string          `json:"user_name,omitempty"`
	Lines         []Line          `json:"lines"`
	SubtotalUSD   decimal.Decimal `json:"subtotal_usd"`
	TaxUSD        decimal.Decimal `json:"tax_usd"`
	TotalUSD      decimal.Decimal `json:"total_usd"`
	Status        Status          `json:"status"`
	PaymentStatus PaymentStatus   `json:"payment_status"`
	PaymentMethod PaymentMethod   `json:"payment_method"`
	Shipping      Shipping        `json:"shipping"`
	Allocations   []Allocation    `json:"allocations,omitempty"`
}

func (o Order) clone() Order {
	o.Lines = slices.Clone(o.Lines)
	o.Allocations = slices.Clone(o.Allocations)
	return o
}
