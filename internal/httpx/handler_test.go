package httpx

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/ariefcatur/freshpodd-orders/internal/cart"
	"github.com/ariefcatur/freshpodd-orders/internal/catalog"
	"github.com/ariefcatur/freshpodd-orders/internal/checkout"
	"github.com/ariefcatur/freshpodd-orders/internal/metrics"
	"github.com/ariefcatur/freshpodd-orders/internal/notify"
	"github.com/ariefcatur/freshpodd-orders/internal/orders"
	"github.com/ariefcatur/freshpodd-orders/internal/quotes"
	"github.com/ariefcatur/freshpodd-orders/internal/redisx"
	"github.com/ariefcatur/freshpodd-orders/internal/wishlist"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type memIdem struct {
	mu   sync.Mutex
	keys map[string]string
}

func (m *memIdem) Claim(_ context.Context, userID, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.keys[userID+"/"+key]
	if !ok {
		m.keys[userID+"/"+key] = "pending"
		return "", true, nil
	}
	if v == "pending" {
		return "", false, redisx.ErrInFlight
	}
	return v, false, nil
}

func (m *memIdem) Complete(_ context.Context, userID, key, orderID string) error {
	m.mu.Lock()
	m.keys[userID+"/"+key] = orderID
	m.mu.Unlock()
	return nil
}

func (m *memIdem) Release(_ context.Context, userID, key string) error {
	m.mu.Lock()
	delete(m.keys, userID+"/"+key)
	m.mu.Unlock()
	return nil
}

type recordEvents struct {
	mu    sync.Mutex
	types []string
}

func (e *recordEvents) Publish(_ context.Context, _, eventType, _ string, _ any) error {
	e.mu.Lock()
	e.types = append(e.types, eventType)
	e.mu.Unlock()
	return nil
}

type recordEmitter struct {
	got []notify.Notification
}

func (e *recordEmitter) Emit(_ context.Context, n notify.Notification) error {
	e.got = append(e.got, n)
	return nil
}

type env struct {
	router  *chi.Mux
	store   *catalog.Store
	ledger  *orders.Ledger
	events  *recordEvents
	emitter *recordEmitter
}

func newEnv(t *testing.T) *env {
	t.Helper()
	log := zerolog.Nop()
	store := catalog.NewStore(log)
	require.NoError(t, catalog.Seed(context.Background(), store))

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	e := &env{store: store, ledger: orders.NewLedger(), events: &recordEvents{}, emitter: &recordEmitter{}}
	registry := notify.NewRegistry(e.emitter, m, log)
	store.OnRestock(func(ctx context.Context, productID string) { registry.Flush(ctx, productID) })

	h := &Handler{
		Catalog: store,
		Carts:   cart.NewRegistry(),
		Checkout: &checkout.Service{
			Catalog: store,
			Ledger:  e.ledger,
			Policy:  orders.DefaultPaymentPolicy(),
			TaxRate: decimal.RequireFromString("0.08"),
			Events:  e.events,
			Metrics: m,
			Log:     log,
		},
		Ledger:   e.ledger,
		Notify:   registry,
		Quotes:   quotes.NewBook(nil),
		Wishlist: wishlist.NewRegistry(store),
		Idem:     &memIdem{keys: map[string]string{}},
		Events:   e.events,
		Metrics:  m,
		Log:      log,
	}
	e.router = NewRouter(log, m, reg)
	h.Register(e.router)
	return e
}

type call struct {
	method, path string
	body         any
	user, role   string
	headers      map[string]string
}

func (e *env) do(t *testing.T, c call) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if c.body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(c.body))
	}
	req := httptest.NewRequest(c.method, c.path, &buf)
	if c.user != "" {
		req.Header.Set(HeaderUserID, c.user)
	}
	if c.role != "" {
		req.Header.Set(HeaderUserRole, c.role)
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

var shipping = map[string]string{"address": "1 Main St", "city": "Pune", "postal_code": "411001", "country": "India"}

func TestHealthAndMetrics(t *testing.T) {
	e := newEnv(t)
	assert.Equal(t, http.StatusOK, e.do(t, call{method: http.MethodGet, path: "/healthz"}).Code)

	e.do(t, call{method: http.MethodGet, path: "/products"})
	rec := e.do(t, call{method: http.MethodGet, path: "/metrics"})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `storefront_http_requests_total{method="GET",route="/products",status="200"} 1`)
}

func TestListProductsInINR(t *testing.T) {
	e := newEnv(t)
	rec := e.do(t, call{method: http.MethodGet, path: "/products?currency=inr"})
	require.Equal(t, http.StatusOK, rec.Code)

	ps := decodeBody[[]productView](t, rec)
	require.Len(t, ps, 4)
	assert.Equal(t, "FP001", ps[1].ID)
	assert.Equal(t, "₹1,08,549.17", ps[1].DisplayPrice)
	assert.Equal(t, 50, ps[1].Stock)
	assert.Equal(t, 0, ps[0].Stock)

	assert.Equal(t, http.StatusBadRequest, e.do(t, call{method: http.MethodGet, path: "/products?currency=XYZ"}).Code)
	assert.Equal(t, http.StatusNotFound, e.do(t, call{method: http.MethodGet, path: "/products/NOPE"}).Code)
}

func TestCartRequiresUser(t *testing.T) {
	e := newEnv(t)
	rec := e.do(t, call{method: http.MethodGet, path: "/cart"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCartLifecycle(t *testing.T) {
	e := newEnv(t)
	add := call{method: http.MethodPost, path: "/cart/lines", user: "u1", body: map[string]any{"product_id": "FP001", "quantity": 1}}

	require.Equal(t, http.StatusOK, e.do(t, add).Code)
	rec := e.do(t, add)
	require.Equal(t, http.StatusOK, rec.Code)
	cv := decodeBody[cartView](t, rec)
	require.Len(t, cv.Lines, 1)
	assert.Equal(t, 2, cv.Lines[0].Quantity)
	assert.Equal(t, "2599.98", cv.SubtotalUSD.StringFixed(2))

	rec = e.do(t, call{method: http.MethodPut, path: "/cart/lines/FP001", user: "u1", body: map[string]any{"quantity": 0}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = e.do(t, call{method: http.MethodPut, path: "/cart/lines/FP009", user: "u1", body: map[string]any{"quantity": 2}})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = e.do(t, call{method: http.MethodPost, path: "/cart/lines", user: "u1", body: map[string]any{"product_id": "FP999", "quantity": 1}})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = e.do(t, call{method: http.MethodPost, path: "/cart/lines", user: "u1", body: map[string]any{"product_id": "FP001", "quantity": 1_000_000_001}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = e.do(t, call{method: http.MethodDelete, path: "/cart/lines/FP001", user: "u1"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decodeBody[cartView](t, rec).Lines)
}

func TestCheckoutFlow(t *testing.T) {
	e := newEnv(t)
	e.do(t, call{method: http.MethodPost, path: "/cart/lines", user: "u1", body: map[string]any{"product_id": "FP001", "quantity": 1}})

	rec := e.do(t, call{method: http.MethodPost, path: "/checkout", user: "u1",
		body: map[string]any{"payment_method": "Cash on Delivery", "shipping": shipping}})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	o := decodeBody[CheckoutResp](t, rec)
	assert.Equal(t, "FP1025", o.ID)
	assert.Equal(t, "1403.99", o.TotalUSD.StringFixed(2))
	assert.Equal(t, orders.PaymentPending, o.PaymentStatus)
	assert.Equal(t, 49, e.store.GetStock("FP001"))

	// cart was cleared
	rec = e.do(t, call{method: http.MethodPost, path: "/checkout", user: "u1",
		body: map[string]any{"payment_method": "UPI", "shipping": shipping}})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, []string{orders.EventOrderPlaced}, e.events.types)
}

func TestCheckoutInsufficientStock(t *testing.T) {
	e := newEnv(t)
	e.do(t, call{method: http.MethodPost, path: "/cart/lines", user: "u1", body: map[string]any{"product_id": "FP004", "quantity": 1}})
	e.do(t, call{method: http.MethodPost, path: "/cart/lines", user: "u1", body: map[string]any{"product_id": "FP003", "quantity": 2}})

	rec := e.do(t, call{method: http.MethodPost, path: "/checkout", user: "u1",
		body: map[string]any{"payment_method": "UPI", "shipping": shipping}})
	require.Equal(t, http.StatusConflict, rec.Code)
	body := decodeBody[errorBody](t, rec)
	assert.Equal(t, []checkout.Shortfall{{ProductID: "FP004", Requested: 1, Available: 0}}, body.Shortfalls)
	assert.Equal(t, 25, e.store.GetStock("FP003"))
	assert.Equal(t, 0, e.ledger.Len())
}

func TestCheckoutValidation(t *testing.T) {
	e := newEnv(t)
	e.do(t, call{method: http.MethodPost, path: "/cart/lines", user: "u1", body: map[string]any{"product_id": "FP001", "quantity": 1}})

	rec := e.do(t, call{method: http.MethodPost, path: "/checkout", user: "u1",
		body: map[string]any{"payment_method": "Bitcoin", "shipping": shipping}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = e.do(t, call{method: http.MethodPost, path: "/checkout", user: "u1",
		body: map[string]any{"payment_method": "UPI", "shipping": map[string]string{"city": "Pune"}}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, 50, e.store.GetStock("FP001"))
}

func TestCheckoutIdempotencyKey(t *testing.T) {
	e := newEnv(t)
	e.do(t, call{method: http.MethodPost, path: "/cart/lines", user: "u1", body: map[string]any{"product_id": "FP002", "quantity": 2}})
	c := call{method: http.MethodPost, path: "/checkout", user: "u1",
		body:    map[string]any{"payment_method": "UPI", "shipping": shipping},
		headers: map[string]string{HeaderIdempotencyKey: "abc"}}

	first := e.do(t, c)
	require.Equal(t, http.StatusCreated, first.Code)
	again := e.do(t, c)
	require.Equal(t, http.StatusOK, again.Code)

	o1, o2 := decodeBody[CheckoutResp](t, first), decodeBody[CheckoutResp](t, again)
	assert.Equal(t, o1.ID, o2.ID)
	assert.True(t, o2.Idempotent)
	assert.Equal(t, 1, e.ledger.Len())
	assert.Equal(t, 38, e.store.GetStock("FP002"))
}

func TestOrdersOwnership(t *testing.T) {
	e := newEnv(t)
	for _, u := range []string{"u1", "u2"} {
		e.do(t, call{method: http.MethodPost, path: "/cart/lines", user: u, body: map[string]any{"product_id": "FP001", "quantity": 1}})
		rec := e.do(t, call{method: http.MethodPost, path: "/checkout", user: u,
			body: map[string]any{"payment_method": "UPI", "shipping": shipping}})
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	mine := decodeBody[[]orders.Order](t, e.do(t, call{method: http.MethodGet, path: "/orders", user: "u1"}))
	require.Len(t, mine, 1)
	assert.Equal(t, "u1", mine[0].UserID)

	all := decodeBody[[]orders.Order](t, e.do(t, call{method: http.MethodGet, path: "/orders", user: "boss", role: "admin"}))
	require.Len(t, all, 2)
	assert.Equal(t, "FP1026", all[0].ID)

	assert.Equal(t, http.StatusNotFound, e.do(t, call{method: http.MethodGet, path: "/orders/FP1026", user: "u1"}).Code)
	assert.Equal(t, http.StatusOK, e.do(t, call{method: http.MethodGet, path: "/orders/FP1025", user: "u1"}).Code)
}

func TestAdminUpdateOrder(t *testing.T) {
	e := newEnv(t)
	e.do(t, call{method: http.MethodPost, path: "/cart/lines", user: "u1", body: map[string]any{"product_id": "FP001", "quantity": 1}})
	e.do(t, call{method: http.MethodPost, path: "/checkout", user: "u1", body: map[string]any{"payment_method": "COD", "shipping": shipping}})

	patch := call{method: http.MethodPatch, path: "/admin/orders/FP1025", user: "u1", body: map[string]any{"payment_status": "Paid"}}
	assert.Equal(t, http.StatusForbidden, e.do(t, patch).Code)

	patch.user, patch.role = "boss", "admin"
	rec := e.do(t, patch)
	require.Equal(t, http.StatusOK, rec.Code)
	o := decodeBody[orders.Order](t, rec)
	assert.Equal(t, orders.PaymentPaid, o.PaymentStatus)
	assert.Equal(t, orders.StatusProcessing, o.Status)

	patch.body = map[string]any{"status": "Lost"}
	assert.Equal(t, http.StatusBadRequest, e.do(t, patch).Code)
	patch.path = "/admin/orders/FP9999"
	patch.body = map[string]any{"status": "Shipped"}
	assert.Equal(t, http.StatusNotFound, e.do(t, patch).Code)

	assert.Contains(t, e.events.types, orders.EventOrderStatusChanged)
}

func TestRestockFiresNotifications(t *testing.T) {
	e := newEnv(t)
	rec := e.do(t, call{method: http.MethodPost, path: "/notifications", body: map[string]any{"product_id": "FP004", "email": "a@x.io"}})
	require.Equal(t, http.StatusAccepted, rec.Code)
	rec = e.do(t, call{method: http.MethodPost, path: "/notifications", body: map[string]any{"product_id": "FP004", "email": "bad"}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = e.do(t, call{method: http.MethodPost, path: "/notifications", body: map[string]any{"product_id": "FP001", "email": "a@x.io"}})
	assert.Equal(t, http.StatusConflict, rec.Code)
	rec = e.do(t, call{method: http.MethodPost, path: "/notifications", body: map[string]any{"product_id": "FP404", "email": "a@x.io"}})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = e.do(t, call{method: http.MethodPut, path: "/admin/stock", user: "boss", role: "admin",
		body: map[string]any{"warehouse_id": "WH-CHI", "product_id": "FP004", "quantity": 5}})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []notify.Notification{{ProductID: "FP004", Email: "a@x.io"}}, e.emitter.got)

	// already in stock: a further restock is not a 0 -> positive move
	rec = e.do(t, call{method: http.MethodPut, path: "/admin/stock", user: "boss", role: "admin",
		body: map[string]any{"warehouse_id": "WH-BLR", "product_id": "FP004", "quantity": 10}})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, e.emitter.got, 1)
	rec = e.do(t, call{method: http.MethodPost, path: "/notifications", body: map[string]any{"product_id": "FP004", "email": "b@x.io"}})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = e.do(t, call{method: http.MethodPut, path: "/admin/stock", user: "boss", role: "admin",
		body: map[string]any{"warehouse_id": "WH-CHI", "product_id": "FP004", "quantity": -1}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = e.do(t, call{method: http.MethodPut, path: "/admin/stock", user: "boss", role: "admin",
		body: map[string]any{"warehouse_id": "WH-CHI", "product_id": "FP004", "quantity": 1_000_000_001}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestWishlist(t *testing.T) {
	e := newEnv(t)
	assert.Equal(t, http.StatusUnauthorized, e.do(t, call{method: http.MethodGet, path: "/wishlist"}).Code)

	rec := e.do(t, call{method: http.MethodPost, path: "/wishlist", user: "u1", body: map[string]any{"product_id": "FP999"}})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = e.do(t, call{method: http.MethodPost, path: "/wishlist", user: "u1", body: map[string]any{}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	for _, id := range []string{"FP002", "FP004", "FP002"} {
		rec = e.do(t, call{method: http.MethodPost, path: "/wishlist", user: "u1", body: map[string]any{"product_id": id}})
		require.Equal(t, http.StatusOK, rec.Code)
	}
	list := decodeBody[[]productView](t, rec)
	require.Len(t, list, 2)
	assert.Equal(t, "FP002", list[0].ID)
	assert.Equal(t, 40, list[0].Stock)
	assert.Equal(t, 0, list[1].Stock)

	toggle := call{method: http.MethodPost, path: "/wishlist/FP004/toggle", user: "u1"}
	assert.Equal(t, false, decodeBody[map[string]any](t, e.do(t, toggle))["wishlisted"])
	assert.Equal(t, true, decodeBody[map[string]any](t, e.do(t, toggle))["wishlisted"])

	// other users keep their own list
	rec = e.do(t, call{method: http.MethodGet, path: "/wishlist", user: "u2"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decodeBody[[]productView](t, rec))

	rec = e.do(t, call{method: http.MethodPost, path: "/wishlist/FP002/cart", user: "u1"})
	require.Equal(t, http.StatusOK, rec.Code)
	cv := decodeBody[cartView](t, rec)
	require.Len(t, cv.Lines, 1)
	assert.Equal(t, cart.Line{ProductID: "FP002", Quantity: 1}, cv.Lines[0])
	assert.Equal(t, http.StatusNotFound, e.do(t, call{method: http.MethodPost, path: "/wishlist/FP002/cart", user: "u1"}).Code)

	rec = e.do(t, call{method: http.MethodDelete, path: "/wishlist/FP004", user: "u1"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decodeBody[[]productView](t, rec))
}

func TestQuotes(t *testing.T) {
	e := newEnv(t)
	rec := e.do(t, call{method: http.MethodPost, path: "/quotes", body: map[string]any{
		"name": "Jane Doe", "email": "jane@acme.com", "capacity": 500, "quantity": 15, "details": "medical supplies",
	}})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "QR001", decodeBody[quotes.Quote](t, rec).ID)

	assert.Equal(t, http.StatusUnauthorized, e.do(t, call{method: http.MethodGet, path: "/admin/quotes"}).Code)

	rec = e.do(t, call{method: http.MethodPatch, path: "/admin/quotes/QR001", user: "boss", role: "admin", body: map[string]any{"status": "Quoted"}})
	require.Equal(t, http.StatusOK, rec.Code)
	list := decodeBody[[]quotes.Quote](t, e.do(t, call{method: http.MethodGet, path: "/admin/quotes", user: "boss", role: "admin"}))
	require.Len(t, list, 1)
	assert.Equal(t, quotes.StatusQuoted, list[0].Status)
}
