package httpx

import (
	"fmt"
	"github.com/ariefcatur/freshpodd-orders/internal/catalog"
	"github.com/ariefcatur/freshpodd-orders/internal/currency"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"net/http"
)

type productView struct {
	catalog.Product
	Stock        int             `json:"stock"`
	Levels       []catalog.Level `json:"levels,omitempty"`
	Currency     currency.Code   `json:"currency"`
	DisplayPrice string          `json:"display_price"`
}

func (h *Handler) productView(p catalog.Product, c currency.Code, withLevels bool) (productView, error) {
	price, err := currency.Format(p.PriceUSD, c)
	if err != nil {
		return productView{}, err
	}
	v := productView{Product: p, Stock: h.Catalog.GetStock(p.ID), Currency: c, DisplayPrice: price}
	if withLevels {
		v.Levels = h.Catalog.Levels(p.ID)
	}
	return v, nil
}

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	c, err := currency.Parse(r.URL.Query().Get("currency"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	ps := h.Catalog.ListProducts()
	out := make([]productView, 0, len(ps))
	for _, p := range ps {
		v, err := h.productView(p, c, false)
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		out = append(out, v)
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	c, err := currency.Parse(r.URL.Query().Get("currency"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	p, err := h.Catalog.GetProduct(chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	v, err := h.productView(p, c, true)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (h *Handler) listWarehouses(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Catalog.Warehouses())
}

type SetStockReq struct {
	WarehouseID string `json:"warehouse_id" validate:"required"`
	ProductID   string `json:"product_id" validate:"required"`
	Quantity    *int   `json:"quantity" validate:"required,gte=0,lte=1000000000"`
}

func (h *Handler) setStock(w http.ResponseWriter, r *http.Request) {
	var req SetStockReq
	if err := decode(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := h.Catalog.SetStock(r.Context(), req.WarehouseID, req.ProductID, *req.Quantity); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"product_id": req.ProductID,
		"stock":      h.Catalog.GetStock(req.ProductID),
		"levels":     h.Catalog.Levels(req.ProductID),
	})
}

type UpsertProductReq struct {
	Name         string            `json:"name" validate:"required"`
	Description  string            `json:"description"`
	PriceUSD     decimal.Decimal   `json:"price_usd"`
	ImageURL     string            `json:"image_url" validate:"omitempty,url"`
	Features     []string          `json:"features"`
	Specs        map[string]string `json:"specs"`
	Rating       float64           `json:"average_rating" validate:"gte=0,lte=5"`
	ReviewsCount int               `json:"reviews_count" validate:"gte=0"`
}

func (h *Handler) upsertProduct(w http.ResponseWriter, r *http.Request) {
	var req UpsertProductReq
	if err := decode(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	p := catalog.Product{
		ID:           chi.URLParam(r, "id"),
		Name:         req.Name,
		Description:  req.Description,
		PriceUSD:     req.PriceUSD,
		ImageURL:     req.ImageURL,
		Features:     req.Features,
		Specs:        req.Specs,
		Rating:       req.Rating,
		ReviewsCount: req.ReviewsCount,
	}
	if err := h.Catalog.UpsertProduct(p); err != nil {
		h.writeError(w, r, err)
		return
	}
	got, err := h.Catalog.GetProduct(p.ID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, got)
}

type SubscribeReq struct {
	ProductID string `json:"product_id" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
}

func (h *Handler) subscribe(w http.ResponseWriter, r *http.Request) {
	var req SubscribeReq
	if err := decode(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	if _, err := h.Catalog.GetProduct(req.ProductID); err != nil {
		h.writeError(w, r, err)
		return
	}
	// hanya untuk produk yang sedang habis; notifikasi jalan saat stok 0 -> >0
	if h.Catalog.GetStock(req.ProductID) > 0 {
		h.writeError(w, r, fmt.Errorf("%w: %s", errInStock, req.ProductID))
		return
	}
	if err := h.Notify.Subscribe(req.ProductID, req.Email); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "subscribed"})
}

func (h *Handler) pendingNotifications(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "productID")
	writeJSON(w, http.StatusOK, map[string]any{"product_id": id, "pending": h.Notify.Pending(id)})
}
