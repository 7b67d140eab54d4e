package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all market data routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/stock_history/{ticker}", h.HandleGetStockHistory)
	r.Get("/sp500_history", h.HandleGetSP500History)
	r.Get("/stock_metrics/{ticker}", h.HandleGetStockMetrics)
	r.Get("/key_insights/{ticker}", h.HandleGetKeyInsights)
}
