package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all ledger routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/stocks", h.HandleGetStocks)
	r.Get("/user_balance", h.HandleGetUserBalance)
}
