package httpx

import (
	"github.com/ariefcatur/freshpodd-orders/internal/cart"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"net/http"
)

type cartView struct {
	Lines       []cart.Line     `json:"lines"`
	ItemCount   int             `json:"item_count"`
	SubtotalUSD decimal.Decimal `json:"subtotal_usd"`
}

func (h *Handler) cartFor(r *http.Request) *cart.Cart {
	return h.Carts.For(IdentityFrom(r.Context()).UserID)
}

func (h *Handler) writeCart(w http.ResponseWriter, r *http.Request, c *cart.Cart) {
	sub, err := c.Subtotal(h.Catalog)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	lines := c.Lines()
	if lines == nil {
		lines = []cart.Line{}
	}
	writeJSON(w, http.StatusOK, cartView{Lines: lines, ItemCount: c.ItemCount(), SubtotalUSD: sub.Round(2)})
}

func (h *Handler) getCart(w http.ResponseWriter, r *http.Request) {
	h.writeCart(w, r, h.cartFor(r))
}

func (h *Handler) clearCart(w http.ResponseWriter, r *http.Request) {
	c := h.cartFor(r)
	c.Clear()
	h.writeCart(w, r, c)
}

type AddLineReq struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity" validate:"gte=1,lte=1000000000"`
}

func (h *Handler) addLine(w http.ResponseWriter, r *http.Request) {
	var req AddLineReq
	if err := decode(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	if _, err := h.Catalog.GetProduct(req.ProductID); err != nil {
		h.writeError(w, r, err)
		return
	}
	c := h.cartFor(r)
	if err := c.AddLine(req.ProductID, req.Quantity); err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeCart(w, r, c)
}

type SetLineReq struct {
	Quantity int `json:"quantity" validate:"gte=1,lte=1000000000"`
}

func (h *Handler) setLine(w http.ResponseWriter, r *http.Request) {
	var req SetLineReq
	if err := decode(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	c := h.cartFor(r)
	if err := c.SetQuantity(chi.URLParam(r, "productID"), req.Quantity); err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeCart(w, r, c)
}

func (h *Handler) removeLine(w http.ResponseWriter, r *http.Request) {
	c := h.cartFor(r)
	c.RemoveLine(chi.URLParam(r, "productID"))
	h.writeCart(w, r, c)
}
