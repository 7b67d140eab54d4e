// Package handlers provides HTTP handlers for trade execution.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/sellscalehood/backend/internal/domain"
	"github.com/sellscalehood/backend/internal/modules/trading"
)

// Trader executes trades against the ledger
type Trader interface {
	BuyStock(ctx context.Context, req trading.TradeRequest) (int64, error)
	SellStock(ctx context.Context, req trading.TradeRequest) (int64, error)
}

// TradingHandlers contains HTTP handlers for the trading API
type TradingHandlers struct {
	trader    Trader
	accountID int64
	log       zerolog.Logger
}

// NewTradingHandlers creates a new trading handlers instance.
// accountID is the account every request trades on.
func NewTradingHandlers(trader Trader, accountID int64, log zerolog.Logger) *TradingHandlers {
	return &TradingHandlers{
		trader:    trader,
		accountID: accountID,
		log:       log.With().Str("handler", "trading").Logger(),
	}
}

// HandleBuyStock handles POST /buy/{ticker}/{price}/{date}/{quantity}
func (h *TradingHandlers) HandleBuyStock(w http.ResponseWriter, r *http.Request) {
	req, err := h.parseTrade(r)
	if err != nil {
		h.writeTradeError(w, err)
		return
	}

	stockID, err := h.trader.BuyStock(r.Context(), req)
	if err != nil {
		h.writeTradeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"message":  "Stock purchased successfully",
		"stock_id": stockID,
	})
}

// HandleSellStock handles POST /sell/{ticker}/{price}/{date}/{quantity}
func (h *TradingHandlers) HandleSellStock(w http.ResponseWriter, r *http.Request) {
	req, err := h.parseTrade(r)
	if err != nil {
		h.writeTradeError(w, err)
		return
	}

	stockID, err := h.trader.SellStock(r.Context(), req)
	if err != nil {
		h.writeTradeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"message":  "Stock sold successfully",
		"stock_id": stockID,
	})
}

func (h *TradingHandlers) parseTrade(r *http.Request) (trading.TradeRequest, error) {
	price, err := decimal.NewFromString(chi.URLParam(r, "price"))
	if err != nil {
		return trading.TradeRequest{}, fmt.Errorf("%w: price is not a number", domain.ErrInvalidTrade)
	}

	quantity, err := strconv.ParseInt(chi.URLParam(r, "quantity"), 10, 64)
	if err != nil {
		return trading.TradeRequest{}, fmt.Errorf("%w: quantity is not an integer", domain.ErrInvalidTrade)
	}

	return trading.TradeRequest{
		AccountID:    h.accountID,
		Ticker:       chi.URLParam(r, "ticker"),
		PricePerUnit: price,
		TradeDate:    chi.URLParam(r, "date"),
		Quantity:     quantity,
	}, nil
}

// writeTradeError maps a trade error to its status code.
// Storage details never reach the client.
func (h *TradingHandlers) writeTradeError(w http.ResponseWriter, err error) {
	switch {
	case domain.IsClientError(err):
		h.writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrAccountNotFound):
		h.writeError(w, http.StatusNotFound, "User not found")
	default:
		h.log.Error().Err(err).Msg("Trade failed")
		h.writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}

// writeJSON writes a JSON response
func (h *TradingHandlers) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

// writeError writes an error response
func (h *TradingHandlers) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"detail": message})
}
