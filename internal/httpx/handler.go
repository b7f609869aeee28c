package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"github.com/ariefcatur/freshpodd-orders/internal/cart"
	"github.com/ariefcatur/freshpodd-orders/internal/catalog"
	"github.com/ariefcatur/freshpodd-orders/internal/checkout"
	"github.com/ariefcatur/freshpodd-orders/internal/currency"
	"github.com/ariefcatur/freshpodd-orders/internal/metrics"
	"github.com/ariefcatur/freshpodd-orders/internal/notify"
	"github.com/ariefcatur/freshpodd-orders/internal/orders"
	"github.com/ariefcatur/freshpodd-orders/internal/quotes"
	"github.com/ariefcatur/freshpodd-orders/internal/wishlist"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"io"
	"net/http"
)

// IdempotencyStore remembers which order a checkout key produced;
// *redisx.Idempotency implements it.
type IdempotencyStore interface {
	Claim(ctx context.Context, userID, key string) (orderID string, claimed bool, err error)
	Complete(ctx context.Context, userID, key, orderID string) error
	Release(ctx context.Context, userID, key string) error
}

type Handler struct {
	Catalog  *catalog.Store
	Carts    *cart.Registry
	Checkout *checkout.Service
	Ledger   *orders.Ledger
	Notify   *notify.Registry
	Quotes   *quotes.Book
	Wishlist *wishlist.Registry
	Idem     IdempotencyStore        // optional
	Events   checkout.EventPublisher // optional
	Metrics  *metrics.Metrics
	Log      zerolog.Logger
}

func (h *Handler) Register(r chi.Router) {
	r.Get("/products", h.listProducts)
	r.Get("/products/{id}", h.getProduct)
	r.Get("/warehouses", h.listWarehouses)
	r.Post("/notifications", h.subscribe)
	r.Post("/quotes", h.submitQuote)

	r.Group(func(r chi.Router) {
		r.Use(requireUser)
		r.Get("/cart", h.getCart)
		r.Delete("/cart", h.clearCart)
		r.Post("/cart/lines", h.addLine)
		r.Put("/cart/lines/{productID}", h.setLine)
		r.Delete("/cart/lines/{productID}", h.removeLine)
		r.Get("/checkout/preview", h.previewCheckout)
		r.Post("/checkout", h.checkout)
		r.Get("/orders", h.listOrders)
		r.Get("/orders/{id}", h.getOrder)
		r.Get("/wishlist", h.listWishlist)
		r.Post("/wishlist", h.addWishlist)
		r.Delete("/wishlist/{productID}", h.removeWishlist)
		r.Post("/wishlist/{productID}/toggle", h.toggleWishlist)
		r.Post("/wishlist/{productID}/cart", h.moveWishlistToCart)
	})

	r.Route("/admin", func(r chi.Router) {
		r.Use(requireAdmin)
		r.Put("/stock", h.setStock)
		r.Put("/products/{id}", h.upsertProduct)
		r.Get("/notifications/{productID}", h.pendingNotifications)
		r.Patch("/orders/{id}", h.updateOrder)
		r.Get("/quotes", h.listQuotes)
		r.Patch("/quotes/{id}", h.updateQuote)
	})
}

var validate = validator.New()

type errorBody struct {
	Error      string               `json:"error"`
	Shortfalls []checkout.Shortfall `json:"shortfalls,omitempty"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// decode reads a JSON body into dst and runs its validate tags.
func decode(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, 1<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%w: invalid json: %v", errBadRequest, err)
	}
	if err := validate.Struct(dst); err != nil {
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return nil
}

var (
	errBadRequest = errors.New("bad request")
	errInStock    = errors.New("product is in stock")
)

// writeError maps domain errors onto status codes.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var short *checkout.InsufficientStockError
	switch {
	case errors.As(err, &short):
		writeJSON(w, http.StatusConflict, errorBody{Error: "insufficient stock", Shortfalls: short.Shortfalls})
	case errors.Is(err, checkout.ErrEmptyCart):
		writeJSON(w, http.StatusUnprocessableEntity, errorBody{Error: err.Error()})
	case errors.Is(err, checkout.ErrNotAuthenticated),
		errors.Is(err, wishlist.ErrNotAuthenticated):
		writeJSON(w, http.StatusUnauthorized, errorBody{Error: err.Error()})
	case errors.Is(err, catalog.ErrProductNotFound),
		errors.Is(err, catalog.ErrWarehouseNotFound),
		errors.Is(err, orders.ErrOrderNotFound),
		errors.Is(err, quotes.ErrQuoteNotFound),
		errors.Is(err, cart.ErrLineNotFound):
		writeJSON(w, http.StatusNotFound, errorBody{Error: err.Error()})
	case errors.Is(err, orders.ErrInvalidTransition),
		errors.Is(err, errInStock):
		writeJSON(w, http.StatusConflict, errorBody{Error: err.Error()})
	case errors.Is(err, errBadRequest),
		errors.Is(err, cart.ErrInvalidQuantity),
		errors.Is(err, catalog.ErrInvalidQuantity),
		errors.Is(err, catalog.ErrInvalidPrice),
		errors.Is(err, orders.ErrInvalidStatus),
		errors.Is(err, orders.ErrUnknownPaymentMethod),
		errors.Is(err, notify.ErrInvalidSubscription),
		errors.Is(err, quotes.ErrInvalidQuote),
		errors.Is(err, quotes.ErrInvalidStatus),
		errors.Is(err, currency.ErrUnsupportedCurrency):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
	default:
		h.Log.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "internal error"})
	}
}
