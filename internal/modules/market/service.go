// Package market serves price history, quote metrics and daily gain figures.
package market

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/sellscalehood/backend/internal/clients/yahoo"
)

// SP500Symbol is the S&P 500 index symbol
const SP500Symbol = "^GSPC"

// HistoryPeriod is the window returned by History
const HistoryPeriod = "1mo"

// NotAvailable marks a metric the data source did not report
const NotAvailable = "N/A"

// ErrNoData is returned when the source has nothing for a ticker
var ErrNoData = errors.New("no market data")

// QuoteSource provides raw market data
type QuoteSource interface {
	GetHistoricalPrices(ctx context.Context, symbol, period string) ([]yahoo.HistoricalPrice, error)
	GetQuote(ctx context.Context, symbol string) (*yahoo.Quote, error)
}

// Compile-time check that the Yahoo client implements QuoteSource
var _ QuoteSource = (*yahoo.Client)(nil)

// ClosePoint is one day of closing prices
type ClosePoint struct {
	Date  string  `json:"Date"`
	Close float64 `json:"Close"`
}

// Metric is one labelled quote value. Value is a number or a display string.
type Metric struct {
	Label string      `json:"label"`
	Value interface{} `json:"value"`
}

// KeyInsights summarises today's move against the previous close
type KeyInsights struct {
	CurrentPrice   float64 `json:"currentPrice"`
	DollarGain     float64 `json:"dollarGain"`
	PercentageGain float64 `json:"percentageGain"`
}

// Service reads market data for display. It never touches the ledger.
type Service struct {
	source QuoteSource
	log    zerolog.Logger
}

// NewService creates a new market data service
func NewService(source QuoteSource, log zerolog.Logger) *Service {
	return &Service{
		source: source,
		log:    log.With().Str("service", "market").Logger(),
	}
}

// History returns one month of daily closes for ticker
func (s *Service) History(ctx context.Context, ticker string) ([]ClosePoint, error) {
	prices, err := s.source.GetHistoricalPrices(ctx, ticker, HistoryPeriod)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch history for %s: %w", ticker, err)
	}
	if len(prices) == 0 {
		return nil, fmt.Errorf("%s: %w", ticker, ErrNoData)
	}

	points := make([]ClosePoint, 0, len(prices))
	for _, p := range prices {
		points = append(points, ClosePoint{
			Date:  p.Date.Format("2006-01-02"),
			Close: p.Close,
		})
	}
	return points, nil
}

// SP500History returns one month of daily S&P 500 closes
func (s *Service) SP500History(ctx context.Context) ([]ClosePoint, error) {
	return s.History(ctx, SP500Symbol)
}

// Metrics returns the quote metrics for ticker in display order
func (s *Service) Metrics(ctx context.Context, ticker string) ([]Metric, error) {
	quote, err := s.quote(ctx, ticker)
	if err != nil {
		return nil, err
	}

	return []Metric{
		{Label: "Previous Close", Value: floatOrNA(quote.PreviousClose)},
		{Label: "Open", Value: floatOrNA(quote.Open)},
		{Label: "Bid", Value: floatOrNA(quote.Bid)},
		{Label: "Ask", Value: floatOrNA(quote.Ask)},
		{Label: "Day's Range", Value: formatRange(quote.DayLow, quote.DayHigh)},
		{Label: "52 Week Range", Value: formatRange(quote.FiftyTwoWeekLow, quote.FiftyTwoWeekHigh)},
		{Label: "Volume", Value: intOrNA(quote.Volume)},
		{Label: "Avg. Volume", Value: intOrNA(quote.AverageVolume)},
		{Label: "Market Cap", Value: intOrNA(quote.MarketCap)},
	}, nil
}

// KeyInsights compares the latest close with the previous close.
// Percentage gain is 0 when the previous close is 0.
func (s *Service) KeyInsights(ctx context.Context, ticker string) (*KeyInsights, error) {
	prices, err := s.source.GetHistoricalPrices(ctx, ticker, "1d")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch current price for %s: %w", ticker, err)
	}
	quote, err := s.quote(ctx, ticker)
	if err != nil {
		return nil, err
	}

	if len(prices) == 0 || quote.PreviousClose == nil {
		return nil, fmt.Errorf("%s: unable to fetch current price or previous close: %w", ticker, ErrNoData)
	}

	current := decimal.NewFromFloat(prices[len(prices)-1].Close)
	previous := decimal.NewFromFloat(*quote.PreviousClose)
	gain := current.Sub(previous)

	percentage := decimal.Zero
	if !previous.IsZero() {
		percentage = gain.Div(previous).Mul(decimal.NewFromInt(100))
	}

	return &KeyInsights{
		CurrentPrice:   current.InexactFloat64(),
		DollarGain:     gain.InexactFloat64(),
		PercentageGain: percentage.InexactFloat64(),
	}, nil
}

func (s *Service) quote(ctx context.Context, ticker string) (*yahoo.Quote, error) {
	quote, err := s.source.GetQuote(ctx, ticker)
	if errors.Is(err, yahoo.ErrNotFound) {
		return nil, fmt.Errorf("%s: %w", ticker, ErrNoData)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch quote for %s: %w", ticker, err)
	}
	return quote, nil
}

func floatOrNA(v *float64) interface{} {
	if v == nil {
		return NotAvailable
	}
	return *v
}

func intOrNA(v *int64) interface{} {
	if v == nil {
		return NotAvailable
	}
	return *v
}

func formatRange(low, high *float64) string {
	return formatFloat(low) + " - " + formatFloat(high)
}

func formatFloat(v *float64) string {
	if v == nil {
		return NotAvailable
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
