// Package handlers provides HTTP handlers for market data.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/sellscalehood/backend/internal/modules/market"
)

// Handler handles market data HTTP requests
type Handler struct {
	service *market.Service
	log     zerolog.Logger
}

// NewHandler creates a new market data handler
func NewHandler(service *market.Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "market").Logger(),
	}
}

// HandleGetStockHistory handles GET /stock_history/{ticker}
func (h *Handler) HandleGetStockHistory(w http.ResponseWriter, r *http.Request) {
	ticker := chi.URLParam(r, "ticker")

	history, err := h.service.History(r.Context(), ticker)
	if err != nil {
		h.writeMarketError(w, err, "Stock data not found", "Error fetching stock history")
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{"history": history})
}

// HandleGetSP500History handles GET /sp500_history
func (h *Handler) HandleGetSP500History(w http.ResponseWriter, r *http.Request) {
	history, err := h.service.SP500History(r.Context())
	if err != nil {
		h.writeMarketError(w, err, "S&P 500 data not found", "Error fetching S&P 500 history")
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{"history": history})
}

// HandleGetStockMetrics handles GET /stock_metrics/{ticker}
func (h *Handler) HandleGetStockMetrics(w http.ResponseWriter, r *http.Request) {
	ticker := chi.URLParam(r, "ticker")

	metrics, err := h.service.Metrics(r.Context(), ticker)
	if err != nil {
		h.writeMarketError(w, err, "Stock data not found", "Error fetching stock metrics")
		return
	}

	h.writeJSON(w, http.StatusOK, metrics)
}

// HandleGetKeyInsights handles GET /key_insights/{ticker}
func (h *Handler) HandleGetKeyInsights(w http.ResponseWriter, r *http.Request) {
	ticker := chi.URLParam(r, "ticker")

	insights, err := h.service.KeyInsights(r.Context(), ticker)
	if err != nil {
		h.writeMarketError(w, err, "Unable to fetch current price or previous close", "Error fetching key insights")
		return
	}

	h.writeJSON(w, http.StatusOK, insights)
}

// writeMarketError sends 404 for missing data and 500 for source failures
func (h *Handler) writeMarketError(w http.ResponseWriter, err error, notFound, failed string) {
	if errors.Is(err, market.ErrNoData) {
		h.writeError(w, http.StatusNotFound, notFound)
		return
	}
	h.log.Error().Err(err).Msg(failed)
	h.writeError(w, http.StatusInternalServerError, failed)
}

// writeJSON writes a JSON response
func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

// writeError writes an error response
func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"detail": message})
}
