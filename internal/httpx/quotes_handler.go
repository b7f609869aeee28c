package httpx

import (
	"github.com/ariefcatur/freshpodd-orders/internal/quotes"
	"github.com/go-chi/chi/v5"
	"net/http"
)

func (h *Handler) submitQuote(w http.ResponseWriter, r *http.Request) {
	var req quotes.Request
	if err := decode(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	q, err := h.Quotes.Submit(req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.Log.Info().Str("quote_id", q.ID).Int("quantity", q.Quantity).Msg("quote requested")
	writeJSON(w, http.StatusCreated, q)
}

func (h *Handler) listQuotes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Quotes.List())
}

type UpdateQuoteReq struct {
	Status string `json:"status" validate:"required,oneof=New Quoted Closed"`
}

func (h *Handler) updateQuote(w http.ResponseWriter, r *http.Request) {
	var req UpdateQuoteReq
	if err := decode(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	q, err := h.Quotes.UpdateStatus(chi.URLParam(r, "id"), quotes.Status(req.Status))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, q)
}
