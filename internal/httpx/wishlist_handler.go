package httpx

import (
	"github.com/ariefcatur/freshpodd-orders/internal/currency"
	"github.com/go-chi/chi/v5"
	"net/http"
)

func (h *Handler) listWishlist(w http.ResponseWriter, r *http.Request) {
	c, err := currency.Parse(r.URL.Query().Get("currency"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	ids := h.Wishlist.List(IdentityFrom(r.Context()).UserID)
	out := make([]productView, 0, len(ids))
	for _, id := range ids {
		p, err := h.Catalog.GetProduct(id)
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		v, err := h.productView(p, c, false)
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		out = append(out, v)
	}
	writeJSON(w, http.StatusOK, out)
}

type WishlistReq struct {
	ProductID string `json:"product_id" validate:"required"`
}

func (h *Handler) addWishlist(w http.ResponseWriter, r *http.Request) {
	var req WishlistReq
	if err := decode(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := h.Wishlist.Add(IdentityFrom(r.Context()).UserID, req.ProductID); err != nil {
		h.writeError(w, r, err)
		return
	}
	h.listWishlist(w, r)
}

func (h *Handler) toggleWishlist(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "productID")
	on, err := h.Wishlist.Toggle(IdentityFrom(r.Context()).UserID, id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"product_id": id, "wishlisted": on})
}

func (h *Handler) removeWishlist(w http.ResponseWriter, r *http.Request) {
	h.Wishlist.Remove(IdentityFrom(r.Context()).UserID, chi.URLParam(r, "productID"))
	h.listWishlist(w, r)
}

// moveWishlistToCart puts one unit in the cart and drops the product from the wishlist.
func (h *Handler) moveWishlistToCart(w http.ResponseWriter, r *http.Request) {
	userID := IdentityFrom(r.Context()).UserID
	id := chi.URLParam(r, "productID")
	if !h.Wishlist.Has(userID, id) {
		writeJSON(w, http.StatusNotFound, errorBody{Error: "product not on wishlist"})
		return
	}
	c := h.Carts.For(userID)
	if err := c.AddLine(id, 1); err != nil {
		h.writeError(w, r, err)
		return
	}
	h.Wishlist.Remove(userID, id)
	h.writeCart(w, r, c)
}
