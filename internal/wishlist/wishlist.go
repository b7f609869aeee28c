// Package wishlist keeps the products each signed-in user has saved for later.
package wishlist

import (
	"errors"
	"fmt"
	"github.com/ariefcatur/freshpodd-orders/internal/catalog"
	"slices"
	"sync"
)

var ErrNotAuthenticated = errors.New("wishlist requires a signed-in user")

// ProductLookup resolves catalog products; *catalog.Store implements it.
type ProductLookup interface {
	GetProduct(id string) (catalog.Product, error)
}

// Registry holds one ordered product set per user.
type Registry struct {
	mu       sync.Mutex
	items    map[string][]string
	products ProductLookup
}

func NewRegistry(products ProductLookup) *Registry {
	return &Registry{items: make(map[string][]string), products: products}
}

// Toggle adds the product when absent and removes it when present.
// Returns whether it is on the list afterwards.
func (r *Registry) Toggle(userID, productID string) (bool, error) {
	if err := r.check(userID, productID); err != nil {
		return false, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	list := r.items[userID]
	if i := slices.Index(list, productID); i >= 0 {
		r.items[userID] = slices.Delete(list, i, i+1)
		return false, nil
	}
	r.items[userID] = append(list, productID)
	return true, nil
}

// Add is Toggle without the remove half; adding twice keeps one entry.
func (r *Registry) Add(userID, productID string) error {
	if err := r.check(userID, productID); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if !slices.Contains(r.items[userID], productID) {
		r.items[userID] = append(r.items[userID], productID)
	}
	return nil
}

// Remove reports whether the product was on the list.
func (r *Registry) Remove(userID, productID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	list := r.items[userID]
	i := slices.Index(list, productID)
	if i < 0 {
		return false
	}
	r.items[userID] = slices.Delete(list, i, i+1)
	return true
}

func (r *Registry) Has(userID, productID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Contains(r.items[userID], productID)
}

// List returns product ids in the order they were added.
func (r *Registry) List(userID string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.items[userID])
}

func (r *Registry) check(userID, productID string) error {
	if userID == "" {
		return ErrNotAuthenticated
	}
	if _, err := r.products.GetProduct(productID); err != nil {
		return fmt.Errorf("wishlist %s: %w", productID, err)
	}
	return nil
}
