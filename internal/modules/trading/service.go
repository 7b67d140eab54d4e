// Package trading enforces the buy/sell accounting rules on top of the ledger.
package trading

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/sellscalehood/backend/internal/domain"
	"github.com/sellscalehood/backend/internal/modules/ledger"
)

// TradeDateLayout is the accepted trade date format
const TradeDateLayout = "2006-01-02"

// Price bounds. Prices carry at most MaxPriceScale fractional digits and never
// exceed MaxPricePerUnit, which keeps every stored amount short.
const (
	MaxPriceScale = 8
	// exponents outside this window are rejected before any arithmetic
	minPriceExponent = -18
	maxPriceExponent = 12
)

// MaxPricePerUnit is the largest accepted unit price
var MaxPricePerUnit = decimal.New(1, maxPriceExponent)

// LedgerStore is the transactional store the service trades against
type LedgerStore interface {
	WithTx(ctx context.Context, fn func(q *ledger.Queries) error) error
}

// Compile-time check that ledger.Store implements LedgerStore
var _ LedgerStore = (*ledger.Store)(nil)

// TradeRequest describes one buy or sell
type TradeRequest struct {
	AccountID    int64
	Ticker       string
	PricePerUnit decimal.Decimal
	TradeDate    string // YYYY-MM-DD
	Quantity     int64
}

// TradingService executes buys and sells as all-or-nothing ledger transactions.
//
// Each operation runs inside one ledger transaction. Concurrency control is
// delegated to the store (immediate transactions); the service itself holds
// no state between calls and never retries.
type TradingService struct {
	store LedgerStore
	log   zerolog.Logger
}

// NewTradingService creates a new trading service
func NewTradingService(store LedgerStore, log zerolog.Logger) *TradingService {
	return &TradingService{
		store: store,
		log:   log.With().Str("service", "trading").Logger(),
	}
}

// BuyStock debits price*quantity from the account and adds quantity to the
// ticker's position, re-averaging its cost. It returns the position id.
func (s *TradingService) BuyStock(ctx context.Context, req TradeRequest) (int64, error) {
	if err := validate(req); err != nil {
		return 0, err
	}

	totalCost := req.PricePerUnit.Mul(decimal.NewFromInt(req.Quantity))

	var positionID int64
	err := s.store.WithTx(ctx, func(q *ledger.Queries) error {
		balance, err := q.GetAccountBalance(ctx, req.AccountID)
		if err != nil {
			return err
		}

		if balance.LessThan(totalCost) {
			return fmt.Errorf("%w: buying %d %s", domain.ErrInsufficientFunds, req.Quantity, req.Ticker)
		}

		if err := q.SetAccountBalance(ctx, req.AccountID, balance.Sub(totalCost)); err != nil {
			return err
		}

		existing, err := q.GetPosition(ctx, req.AccountID, req.Ticker)
		if err != nil {
			return err
		}

		quantity, averageCost := req.Quantity, req.PricePerUnit
		if existing != nil {
			quantity, averageCost, err = blend(*existing, req.PricePerUnit, req.Quantity)
			if err != nil {
				return err
			}
		}

		positionID, err = q.UpsertPosition(ctx, req.AccountID, req.Ticker, quantity, averageCost, req.TradeDate)
		return err
	})
	if err != nil {
		s.logRejected("buy", req, err)
		return 0, err
	}

	s.log.Info().
		Int64("account_id", req.AccountID).
		Str("ticker", req.Ticker).
		Int64("quantity", req.Quantity).
		Str("price", req.PricePerUnit.String()).
		Str("total", totalCost.String()).
		Int64("position_id", positionID).
		Msg("Bought stock")

	return positionID, nil
}

// SellStock removes quantity from the ticker's position, deleting it when it
// reaches zero, and credits price*quantity to the account. The average cost of
// any remainder is unchanged. It returns the position id (the id the position
// had before deletion when it was closed).
func (s *TradingService) SellStock(ctx context.Context, req TradeRequest) (int64, error) {
	if err := validate(req); err != nil {
		return 0, err
	}

	proceeds := req.PricePerUnit.Mul(decimal.NewFromInt(req.Quantity))

	var positionID int64
	var closed bool
	err := s.store.WithTx(ctx, func(q *ledger.Queries) error {
		pos, err := q.GetPosition(ctx, req.AccountID, req.Ticker)
		if err != nil {
			return err
		}
		if pos == nil {
			return fmt.Errorf("%w: %s", domain.ErrPositionNotFound, req.Ticker)
		}
		positionID = pos.ID

		if pos.Quantity < req.Quantity {
			return fmt.Errorf("%w: holding %d %s, selling %d",
				domain.ErrInsufficientQuantity, pos.Quantity, req.Ticker, req.Quantity)
		}

		remaining := pos.Quantity - req.Quantity
		if remaining == 0 {
			closed = true
			if err := q.DeletePosition(ctx, pos.ID); err != nil {
				return err
			}
		} else {
			if _, err := q.UpsertPosition(ctx, req.AccountID, req.Ticker, remaining, pos.AverageCost, pos.DateBought); err != nil {
				return err
			}
		}

		balance, err := q.GetAccountBalance(ctx, req.AccountID)
		if err != nil {
			return err
		}
		return q.SetAccountBalance(ctx, req.AccountID, balance.Add(proceeds))
	})
	if err != nil {
		s.logRejected("sell", req, err)
		return 0, err
	}

	s.log.Info().
		Int64("account_id", req.AccountID).
		Str("ticker", req.Ticker).
		Int64("quantity", req.Quantity).
		Str("price", req.PricePerUnit.String()).
		Str("proceeds", proceeds.String()).
		Int64("position_id", positionID).
		Bool("closed", closed).
		Msg("Sold stock")

	return positionID, nil
}

// blend returns the quantity and quantity-weighted average cost after adding
// quantity units bought at price to pos. A total that does not fit in an int64
// is ErrInvalidTrade.
func blend(pos ledger.Position, price decimal.Decimal, quantity int64) (int64, decimal.Decimal, error) {
	if pos.Quantity > math.MaxInt64-quantity {
		return 0, decimal.Zero, fmt.Errorf("%w: position %s would exceed the maximum quantity", domain.ErrInvalidTrade, pos.Ticker)
	}
	newQuantity := pos.Quantity + quantity
	totalCost := pos.CostBasis().Add(price.Mul(decimal.NewFromInt(quantity)))
	return newQuantity, totalCost.Div(decimal.NewFromInt(newQuantity)), nil
}

func validate(req TradeRequest) error {
	if strings.TrimSpace(req.Ticker) == "" {
		return fmt.Errorf("%w: ticker is required", domain.ErrInvalidTrade)
	}
	if err := validatePrice(req.PricePerUnit); err != nil {
		return err
	}
	if req.Quantity <= 0 {
		return fmt.Errorf("%w: quantity must be positive, got %d", domain.ErrInvalidTrade, req.Quantity)
	}
	if _, err := time.Parse(TradeDateLayout, req.TradeDate); err != nil {
		return fmt.Errorf("%w: trade date %q is not YYYY-MM-DD", domain.ErrInvalidTrade, req.TradeDate)
	}
	return nil
}

// validatePrice bounds the price before it is multiplied or stored.
// Error messages never echo the price itself.
func validatePrice(price decimal.Decimal) error {
	// Checked first: comparisons rescale, which is unbounded for extreme exponents
	if exp := price.Exponent(); exp < minPriceExponent || exp > maxPriceExponent {
		return fmt.Errorf("%w: price is out of range", domain.ErrInvalidTrade)
	}
	if !price.IsPositive() {
		return fmt.Errorf("%w: price must be positive", domain.ErrInvalidTrade)
	}
	if price.GreaterThan(MaxPricePerUnit) {
		return fmt.Errorf("%w: price must not exceed %s", domain.ErrInvalidTrade, MaxPricePerUnit)
	}
	if !price.Truncate(MaxPriceScale).Equal(price) {
		return fmt.Errorf("%w: price has more than %d decimal places", domain.ErrInvalidTrade, MaxPriceScale)
	}
	return nil
}

func (s *TradingService) logRejected(side string, req TradeRequest, err error) {
	event := s.log.Error()
	if domain.IsClientError(err) {
		event = s.log.Warn()
	}
	event.Err(err).
		Str("side", side).
		Int64("account_id", req.AccountID).
		Str("ticker", req.Ticker).
		Int64("quantity", req.Quantity).
		Str("price", req.PricePerUnit.String()).
		Msg("Trade rejected")
}
