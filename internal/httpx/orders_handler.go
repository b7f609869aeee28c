package httpx

import (
	"errors"
	"github.com/ariefcatur/freshpodd-orders/internal/checkout"
	"github.com/ariefcatur/freshpodd-orders/internal/orders"
	"github.com/ariefcatur/freshpodd-orders/internal/redisx"
	"github.com/go-chi/chi/v5"
	"net/http"
	"strings"
)

const HeaderIdempotencyKey = "Idempotency-Key"

type ShippingReq struct {
	Address    string `json:"address" validate:"required"`
	City       string `json:"city" validate:"required"`
	PostalCode string `json:"postal_code" validate:"required"`
	Country    string `json:"country" validate:"required"`
	Phone      string `json:"phone"`
}

type CheckoutReq struct {
	PaymentMethod string      `json:"payment_method" validate:"required"`
	Shipping      ShippingReq `json:"shipping"`
}

type CheckoutResp struct {
	orders.Order
	Idempotent bool `json:"idempotent"`
}

func (h *Handler) checkout(w http.ResponseWriter, r *http.Request) {
	var req CheckoutReq
	if err := decode(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	method, err := orders.ParsePaymentMethod(req.PaymentMethod)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	ctx := r.Context()
	id := IdentityFrom(ctx)

	// Fast-path idempotency via Redis
	key := strings.TrimSpace(r.Header.Get(HeaderIdempotencyKey))
	claimed := false
	if key != "" && h.Idem != nil {
		orderID, ok, err := h.Idem.Claim(ctx, id.UserID, key)
		switch {
		case errors.Is(err, redisx.ErrInFlight):
			writeJSON(w, http.StatusConflict, errorBody{Error: "checkout with this key is in progress"})
			return
		case err != nil:
			// redis down: checkout tetap jalan tanpa idempotency
			h.Log.Warn().Err(err).Str("user_id", id.UserID).Msg("idempotency unavailable")
		case !ok:
			o, err := h.Ledger.Get(orderID)
			if err != nil {
				h.writeError(w, r, err)
				return
			}
			writeJSON(w, http.StatusOK, CheckoutResp{Order: o, Idempotent: true})
			return
		default:
			claimed = true
		}
	}

	o, err := h.Checkout.Execute(ctx, checkout.Request{
		UserID:   id.UserID,
		UserName: id.Name,
		Cart:     h.Carts.For(id.UserID),
		Method:   method,
		Shipping: orders.Shipping(req.Shipping),
	})
	if err != nil {
		if claimed {
			if rerr := h.Idem.Release(ctx, id.UserID, key); rerr != nil {
				h.Log.Warn().Err(rerr).Msg("release idempotency key")
			}
		}
		h.writeError(w, r, err)
		return
	}
	if claimed {
		if err := h.Idem.Complete(ctx, id.UserID, key, o.ID); err != nil {
			h.Log.Warn().Err(err).Str("order_id", o.ID).Msg("store idempotency key")
		}
	}
	writeJSON(w, http.StatusCreated, CheckoutResp{Order: o})
}

func (h *Handler) previewCheckout(w http.ResponseWriter, r *http.Request) {
	plan, err := h.Checkout.Preview(h.cartFor(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"allocations": plan.Allocations()})
}

func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	id := IdentityFrom(r.Context())
	writeJSON(w, http.StatusOK, h.Ledger.List(orders.Filter{UserID: id.UserID, Admin: id.Admin}))
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	id := IdentityFrom(r.Context())
	o, err := h.Ledger.Get(chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	// pesanan orang lain diperlakukan seperti tidak ada
	if !id.Admin && o.UserID != id.UserID {
		h.writeError(w, r, orders.ErrOrderNotFound)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

type UpdateOrderReq struct {
	Status        *string `json:"status"`
	PaymentStatus *string `json:"payment_status"`
}

func (h *Handler) updateOrder(w http.ResponseWriter, r *http.Request) {
	var req UpdateOrderReq
	if err := decode(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	if req.Status == nil && req.PaymentStatus == nil {
		h.writeError(w, r, errBadRequest)
		return
	}
	var u orders.Update
	if req.Status != nil {
		s, err := orders.ParseStatus(*req.Status)
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		u.Status = &s
	}
	if req.PaymentStatus != nil {
		ps, err := orders.ParsePaymentStatus(*req.PaymentStatus)
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		u.PaymentStatus = &ps
	}

	o, err := h.Ledger.UpdateStatus(chi.URLParam(r, "id"), u)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.Log.Info().
		Str("order_id", o.ID).
		Str("status", string(o.Status)).
		Str("payment_status", string(o.PaymentStatus)).
		Msg("order status updated")
	if h.Events != nil {
		payload := orders.OrderStatusChangedPayload{OrderID: o.ID, Status: o.Status, PaymentStatus: o.PaymentStatus}
		if err := h.Events.Publish(r.Context(), orders.TopicOrderStatusChanged, orders.EventOrderStatusChanged, o.ID, payload); err != nil {
			h.Log.Warn().Err(err).Str("order_id", o.ID).Msg("publish status changed")
		}
	}
	writeJSON(w, http.StatusOK, o)
}
