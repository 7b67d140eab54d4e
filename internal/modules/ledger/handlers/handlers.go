// Package handlers provides HTTP handlers for ledger reads.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/sellscalehood/backend/internal/domain"
	"github.com/sellscalehood/backend/internal/modules/ledger"
)

// LedgerReader is the read side of the ledger store
type LedgerReader interface {
	GetAccountBalance(ctx context.Context, accountID int64) (decimal.Decimal, error)
	ListPositions(ctx context.Context, accountID int64) ([]ledger.Position, error)
}

// Handler handles ledger HTTP requests
type Handler struct {
	store     LedgerReader
	accountID int64
	log       zerolog.Logger
}

// NewHandler creates a new ledger handler
func NewHandler(
	store LedgerReader,
	accountID int64,
	log zerolog.Logger,
) *Handler {
	return &Handler{
		store:     store,
		accountID: accountID,
		log:       log.With().Str("handler", "ledger").Logger(),
	}
}

// StockResponse is one held position as the frontend reads it
type StockResponse struct {
	ID             int64   `json:"id"`
	OwnerID        int64   `json:"owner_id"`
	Ticker         string  `json:"ticker"`
	PriceBoughtAt  float64 `json:"price_bought_at"`
	DateBoughtAt   string  `json:"date_bought_at"`
	QuantityBought int64   `json:"quantity_bought"`
}

// HandleGetStocks handles GET /stocks
func (h *Handler) HandleGetStocks(w http.ResponseWriter, r *http.Request) {
	positions, err := h.store.ListPositions(r.Context(), h.accountID)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list positions")
		h.writeError(w, http.StatusInternalServerError, "Failed to list stocks")
		return
	}

	stocks := make([]StockResponse, 0, len(positions))
	for _, pos := range positions {
		stocks = append(stocks, StockResponse{
			ID:             pos.ID,
			OwnerID:        pos.OwnerID,
			Ticker:         pos.Ticker,
			PriceBoughtAt:  pos.AverageCost.InexactFloat64(),
			DateBoughtAt:   pos.DateBought,
			QuantityBought: pos.Quantity,
		})
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{"stocks": stocks})
}

// HandleGetUserBalance handles GET /user_balance
func (h *Handler) HandleGetUserBalance(w http.ResponseWriter, r *http.Request) {
	balance, err := h.store.GetAccountBalance(r.Context(), h.accountID)
	if errors.Is(err, domain.ErrAccountNotFound) {
		h.writeError(w, http.StatusNotFound, "User not found")
		return
	}
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to get balance")
		h.writeError(w, http.StatusInternalServerError, "Failed to get balance")
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{"balance": balance.InexactFloat64()})
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
