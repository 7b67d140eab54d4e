package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all trading routes
func (h *TradingHandlers) RegisterRoutes(r chi.Router) {
	r.Post("/buy/{ticker}/{price}/{date}/{quantity}", h.HandleBuyStock)
	r.Post("/sell/{ticker}/{price}/{date}/{quantity}", h.HandleSellStock)
}
