package checkout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ariefcatur/freshpodd-orders/internal/cart"
	"github.com/ariefcatur/freshpodd-orders/internal/catalog"
	"github.com/ariefcatur/freshpodd-orders/internal/metrics"
	"github.com/ariefcatur/freshpodd-orders/internal/orders"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// EventPublisher hands domain events to the messaging layer (*orders.EventBus).
type EventPublisher interface {
	Publish(ctx context.Context, topic, eventType, correlationID string, payload any) error
}

type Service struct {
	Catalog *catalog.Store
	Ledger  *orders.Ledger
	Policy  orders.PaymentPolicy
	TaxRate decimal.Decimal
	Events  EventPublisher // optional
	Metrics *metrics.Metrics
	Log     zerolog.Logger
	Now     func() time.Time
}

type Request struct {
	UserID   string
	UserName string
	Cart     *cart.Cart
	Method   orders.PaymentMethod
	Shipping orders.Shipping
}

// Execute turns the cart into an order. Stock check, warehouse decrement and
// ledger append happen in one catalog transaction while the cart is held, so
// one cart yields at most one order. On any error nothing is changed and the
// cart is left as it was.
func (s *Service) Execute(ctx context.Context, req Request) (orders.Order, error) {
	if req.UserID == "" {
		return orders.Order{}, ErrNotAuthenticated
	}
	if req.Cart == nil || req.Cart.Len() == 0 {
		return orders.Order{}, ErrEmptyCart
	}
	payStatus, err := s.Policy.StatusFor(req.Method)
	if err != nil {
		return orders.Order{}, err
	}

	// cart tetap terkunci sampai transaksi catalog selesai
	var placed orders.Order
	err = req.Cart.Checkout(func(lines []cart.Line) error {
		if len(lines) == 0 {
			return ErrEmptyCart
		}
		o, err := s.commit(req, payStatus, lines)
		placed = o
		return err
	})
	if errors.Is(err, ErrEmptyCart) {
		return orders.Order{}, err
	}
	if err != nil {
		s.reject(ctx, req.UserID, err)
		return orders.Order{}, err
	}

	s.Metrics.Checkout("ok", placed.TotalUSD)
	s.Log.Info().
		Str("order_id", placed.ID).
		Str("user_id", placed.UserID).
		Str("total_usd", placed.TotalUSD.StringFixed(2)).
		Str("payment_status", string(placed.PaymentStatus)).
		Msg("order placed")

	if s.Events != nil {
		if err := s.Events.Publish(ctx, orders.TopicOrderPlaced, orders.EventOrderPlaced, placed.ID, orders.PlacedPayload(placed)); err != nil {
			s.Log.Warn().Err(err).Str("order_id", placed.ID).Msg("publish order placed")
		}
	}
	return placed, nil
}

// commit checks, takes and records the order in one catalog transaction.
// The caller holds the cart.
func (s *Service) commit(req Request, payStatus orders.PaymentStatus, lines []cart.Line) (orders.Order, error) {
	var placed orders.Order
	err := s.Catalog.Apply(func(tx *catalog.Tx) error {
		plan, err := BuildPlan(tx, lines)
		if err != nil {
			return err
		}
		for _, a := range plan.Allocations() {
			if err := tx.Take(a.WarehouseID, a.ProductID, a.Quantity); err != nil {
				return fmt.Errorf("allocate %s: %w", a.ProductID, err)
			}
		}

		priced := make([]orders.Line, 0, len(lines))
		for _, l := range lines {
			p, err := tx.Product(l.ProductID)
			if err != nil {
				return err
			}
			priced = append(priced, orders.Line{
				ProductID:    p.ID,
				Name:         p.Name,
				Quantity:     l.Quantity,
				UnitPriceUSD: p.PriceUSD,
			})
		}
		subtotal, err := cart.Subtotal(lines, tx)
		if err != nil {
			return err
		}
		subtotal, tax, totalUSD := s.totals(subtotal)

		placed, err = s.Ledger.Append(orders.Order{
			CreatedAt:     s.now(),
			UserID:        req.UserID,
			UserName:      req.UserName,
			Lines:         priced,
			SubtotalUSD:   subtotal,
			TaxUSD:        tax,
			TotalUSD:      totalUSD,
			Status:        orders.StatusProcessing,
			PaymentStatus: payStatus,
			PaymentMethod: req.Method,
			Shipping:      req.Shipping,
			Allocations:   plan.Allocations(),
		})
		return err
	})
	return placed, err
}

// Preview plans against the live catalog without taking stock.
func (s *Service) Preview(c *cart.Cart) (Plan, error) {
	if c == nil || c.Len() == 0 {
		return Plan{}, ErrEmptyCart
	}
	return BuildPlan(s.Catalog, c.Lines())
}

// totals rounds subtotal and tax to cents; total = subtotal * (1 + taxRate).
func (s *Service) totals(subtotal decimal.Decimal) (sub, tax, total decimal.Decimal) {
	sub = subtotal.Round(2)
	total = subtotal.Mul(decimal.NewFromInt(1).Add(s.TaxRate)).Round(2)
	tax = total.Sub(sub)
	return sub, tax, total
}

func (s *Service) reject(ctx context.Context, userID string, err error) {
	var short *InsufficientStockError
	if !errors.As(err, &short) {
		s.Metrics.Checkout("error", decimal.Zero)
		s.Log.Error().Err(err).Str("user_id", userID).Msg("checkout failed")
		return
	}

	s.Metrics.Checkout("insufficient_stock", decimal.Zero)
	s.Log.Info().Err(err).Str("user_id", userID).Msg("checkout rejected")
	if s.Events == nil {
		return
	}
	details := make([]orders.StockRejectedDetail, 0, len(short.Shortfalls))
	for _, sf := range short.Shortfalls {
		details = append(details, orders.StockRejectedDetail{ProductID: sf.ProductID, Required: sf.Requested, Available: sf.Available})
	}
	payload := orders.StockRejectedPayload{UserID: userID, Reason: "OUT_OF_STOCK", Details: details}
	if err := s.Events.Publish(ctx, orders.TopicStockRejected, orders.EventStockRejected, userID, payload); err != nil {
		s.Log.Warn().Err(err).Msg("publish stock rejected")
	}
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}
