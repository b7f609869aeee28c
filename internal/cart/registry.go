package cart

import "sync"

// Registry hands out one cart per user.
type Registry struct {
	mu    sync.Mutex
	carts map[string]*Cart
}

func NewRegistry() *Registry {
	return &Registry{carts: make(map[string]*Cart)}
}

func (r *Registry) For(userID string) *Cart {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.carts[userID]
	if !ok {
		c = New()
		r.carts[userID] = c
	}
	return c
}

// Drop forgets a user's cart, e.g. on logout.
func (r *Registry) Drop(userID string) {
	r.mu.Lock()
	delete(r.carts, userID)
	r.mu.Unlock()
}
