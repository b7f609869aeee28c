package catalog

import (
	"context"
	"fmt"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"sync"
)

// RestockFunc runs when a product's total stock goes from zero to positive.
type RestockFunc func(ctx context.Context, productID string)

// Store holds products and per-warehouse stock. All stock mutation goes through
// SetStock (admin) or Apply (checkout); both take the write lock.
type Store struct {
	mu         sync.RWMutex
	products   map[string]Product
	productIDs []string
	warehouses []Warehouse
	stock      map[stockKey]int
	onRestock  RestockFunc
	log        zerolog.Logger
}

func NewStore(log zerolog.Logger) *Store {
	return &Store{
		products: make(map[string]Product),
		stock:    make(map[stockKey]int),
		log:      log.With().Str("component", "catalog").Logger(),
	}
}

// OnRestock registers the zero-to-positive hook. Call before serving traffic.
func (s *Store) OnRestock(fn RestockFunc) {
	s.mu.Lock()
	s.onRestock = fn
	s.mu.Unlock()
}

func (s *Store) AddWarehouse(w Warehouse) error {
	if w.ID == "" {
		return fmt.Errorf("warehouse id required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.warehouseIndex(w.ID) >= 0 {
		return fmt.Errorf("%w: %s", ErrWarehouseExists, w.ID)
	}
	s.warehouses = append(s.warehouses, w)
	return nil
}

func (s *Store) Warehouses() []Warehouse {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Warehouse, len(s.warehouses))
	copy(out, s.warehouses)
	return out
}

// UpsertProduct creates a product or replaces its price and metadata.
// Products are never removed, so orders can always resolve them.
func (s *Store) UpsertProduct(p Product) error {
	if p.ID == "" {
		return fmt.Errorf("product id required")
	}
	if p.PriceUSD.IsNegative() {
		return fmt.Errorf("%w: %s", ErrInvalidPrice, p.PriceUSD)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.products[p.ID]; !ok {
		s.productIDs = append(s.productIDs, p.ID)
	}
	s.products[p.ID] = p.clone()
	return nil
}

func (s *Store) GetProduct(id string) (Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.products[id]
	if !ok {
		return Product{}, fmt.Errorf("%w: %s", ErrProductNotFound, id)
	}
	return p.clone(), nil
}

// Price implements cart.PriceLookup.
func (s *Store) Price(productID string) (decimal.Decimal, error) {
	p, err := s.GetProduct(productID)
	if err != nil {
		return decimal.Zero, err
	}
	return p.PriceUSD, nil
}

func (s *Store) ListProducts() []Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Product, 0, len(s.productIDs))
	for _, id := range s.productIDs {
		out = append(out, s.products[id].clone())
	}
	return out
}

// GetStock returns the product's quantity summed over all warehouses.
func (s *Store) GetStock(productID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.totalLocked(productID)
}

// Levels returns per-warehouse stock in warehouse insertion order.
func (s *Store) Levels(productID string) []Level {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.levelsLocked(productID, nil)
}

func (s *Store) SetStock(ctx context.Context, warehouseID, productID string, qty int) error {
	if qty < 0 || qty > MaxQuantity {
		return fmt.Errorf("%w: %d", ErrInvalidQuantity, qty)
	}

	s.mu.Lock()
	if _, ok := s.products[productID]; !ok {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrProductNotFound, productID)
	}
	if s.warehouseIndex(warehouseID) < 0 {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrWarehouseNotFound, warehouseID)
	}
	before := s.totalLocked(productID)
	s.stock[stockKey{warehouseID, productID}] = qty
	after := s.totalLocked(productID)
	hook := s.onRestock
	s.mu.Unlock()

	s.log.Info().
		Str("warehouse_id", warehouseID).
		Str("product_id", productID).
		Int("quantity", qty).
		Int("total_before", before).
		Int("total_after", after).
		Msg("stock updated")

	// hook jalan di luar lock supaya subscriber boleh baca catalog lagi
	if before == 0 && after > 0 && hook != nil {
		hook(ctx, productID)
	}
	return nil
}

// Apply runs fn as one transaction under the write lock. Decrements staged
// through tx.Take are committed only when fn returns nil.
func (s *Store) Apply(fn func(tx *Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &Tx{s: s, taken: make(map[stockKey]int)}
	if err := fn(tx); err != nil {
		return err
	}
	for k, n := range tx.taken {
		s.stock[k] -= n
		if s.stock[k] < 0 {
			// Take guards against this; reaching here is a bug.
			panic(fmt.Sprintf("catalog: negative stock for %s/%s", k.warehouseID, k.productID))
		}
	}
	return nil
}

func (s *Store) warehouseIndex(id string) int {
	for i, w := range s.warehouses {
		if w.ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) totalLocked(productID string) int {
	total := 0
	for _, w := range s.warehouses {
		total += s.stock[stockKey{w.ID, productID}]
	}
	return total
}

func (s *Store) levelsLocked(productID string, taken map[stockKey]int) []Level {
	out := make([]Level, 0, len(s.warehouses))
	for _, w := range s.warehouses {
		k := stockKey{w.ID, productID}
		out = append(out, Level{WarehouseID: w.ID, Quantity: s.stock[k] - taken[k]})
	}
	return out
}
