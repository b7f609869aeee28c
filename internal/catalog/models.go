package catalog

import (
	"errors"
	"github.com/shopspring/decimal"
	"maps"
	"slices"
)

var (
	ErrProductNotFound   = errors.New("product not found")
	ErrWarehouseNotFound = errors.New("warehouse not found")
	ErrWarehouseExists   = errors.New("warehouse already exists")
	ErrInvalidQuantity   = errors.New("invalid quantity")
	ErrInvalidPrice      = errors.New("invalid price")
	ErrStockExhausted    = errors.New("stock exhausted")
)

// MaxQuantity bounds a single warehouse level. Totals over warehouses stay
// far below math.MaxInt.
const MaxQuantity = 1_000_000_000

type Product struct {
	ID           string            `json:"id"`
	Name         string            `json:"name"`
	Description  string            `json:"description,omitempty"`
	PriceUSD     decimal.Decimal   `json:"price_usd"`
	ImageURL     string            `json:"image_url,omitempty"`
	Features     []string          `json:"features,omitempty"`
	Specs        map[string]string `json:"specs,omitempty"`
	Rating       float64           `json:"average_rating"`
	ReviewsCount int               `json:"reviews_count"`
}

func (p Product) clone() Product {
	p.Features = slices.Clone(p.Features)
	p.Specs = maps.Clone(p.Specs)
	return p
}

type Warehouse struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Location string `json:"location"`
	Country  string `json:"country"`
}

// Level is the quantity of one product held by one warehouse.
type Level struct {
	WarehouseID string `json:"warehouse_id"`
	Quantity    int    `json:"quantity"`
}

type stockKey struct {
	warehouseID string
	productID   string
}
