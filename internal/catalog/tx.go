package catalog

import (
	"fmt"
	"github.com/shopspring/decimal"
)

// Tx is the view handed to Store.Apply. It must not escape the callback.
type Tx struct {
	s     *Store
	taken map[stockKey]int
}

func (tx *Tx) Product(id string) (Product, error) {
	p, ok := tx.s.products[id]
	if !ok {
		return Product{}, fmt.Errorf("%w: %s", ErrProductNotFound, id)
	}
	return p.clone(), nil
}

func (tx *Tx) Price(productID string) (decimal.Decimal, error) {
	p, ok := tx.s.products[productID]
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: %s", ErrProductNotFound, productID)
	}
	return p.PriceUSD, nil
}

// Levels reflects quantities already taken in this transaction.
func (tx *Tx) Levels(productID string) []Level {
	return tx.s.levelsLocked(productID, tx.taken)
}

func (tx *Tx) Available(productID string) int {
	total := 0
	for _, l := range tx.Levels(productID) {
		total += l.Quantity
	}
	return total
}

// Take stages a decrement of n units from one warehouse.
func (tx *Tx) Take(warehouseID, productID string, n int) error {
	if n < 1 {
		return fmt.Errorf("%w: %d", ErrInvalidQuantity, n)
	}
	if tx.s.warehouseIndex(warehouseID) < 0 {
		return fmt.Errorf("%w: %s", ErrWarehouseNotFound, warehouseID)
	}
	k := stockKey{warehouseID, productID}
	if left := tx.s.stock[k] - tx.taken[k]; left < n {
		return fmt.Errorf("%w: %s/%s has %d, need %d", ErrStockExhausted, warehouseID, productID, left, n)
	}
	tx.taken[k] += n
	return nil
}
