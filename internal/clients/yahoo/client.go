// Package yahoo provides a Yahoo Finance market data client.
package yahoo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
)

// DefaultBaseURL is the public Yahoo Finance query host
const DefaultBaseURL = "https://query1.finance.yahoo.com"

// quoteFields are the fields requested from the quote API
const quoteFields = "symbol,regularMarketPrice,regularMarketPreviousClose,previousClose," +
	"regularMarketOpen,open,bid,ask,regularMarketDayLow,regularMarketDayHigh,dayLow,dayHigh," +
	"fiftyTwoWeekLow,fiftyTwoWeekHigh,regularMarketVolume,volume,averageDailyVolume3Month," +
	"averageVolume,marketCap"

// ErrNotFound is returned when Yahoo has no data for a symbol
var ErrNotFound = errors.New("no data for symbol")

// Config holds client settings
type Config struct {
	BaseURL    string
	Timeout    time.Duration
	RetryCount int
}

// Client is a Yahoo Finance API client
type Client struct {
	client *resty.Client
	log    zerolog.Logger
}

// NewClient creates a new Yahoo Finance client
func NewClient(cfg Config, log zerolog.Logger) *Client {
	baseURL := strings.TrimSuffix(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}

	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(cfg.Timeout).
		SetRetryCount(cfg.RetryCount).
		SetRetryWaitTime(500 * time.Millisecond).
		SetRetryMaxWaitTime(5 * time.Second).
		AddRetryCondition(func(resp *resty.Response, err error) bool {
			// Rate limits and server errors are transient
			return resp != nil && (resp.StatusCode() == 429 || resp.StatusCode() >= 500)
		}).
		SetHeader("User-Agent", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36").
		SetHeader("Accept", "application/json")

	return &Client{
		client: client,
		log:    log.With().Str("client", "yahoo").Logger(),
	}
}

// GetHistoricalPrices fetches daily OHLCV data for symbol.
//
// Supports periods: 1d, 5d, 1mo, 3mo, 6mo, 1y, 2y, 5y, 10y, ytd, max.
// An unknown symbol or an empty series yields an empty slice.
func (c *Client) GetHistoricalPrices(ctx context.Context, symbol, period string) ([]HistoricalPrice, error) {
	var result chartResponse

	resp, err := c.client.R().
		SetContext(ctx).
		SetPathParam("symbol", symbol).
		SetQueryParams(map[string]string{
			"interval": "1d",
			"range":    period,
		}).
		SetResult(&result).
		Get("/v8/finance/chart/{symbol}")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch historical data: %w", err)
	}

	// Unknown symbols come back as 404 with a chart error body
	if resp.StatusCode() == 404 {
		c.log.Warn().Str("symbol", symbol).Msg("Symbol not found")
		return []HistoricalPrice{}, nil
	}
	if resp.IsError() {
		return nil, fmt.Errorf("Yahoo Finance API returned status %d: %s", resp.StatusCode(), resp.String())
	}

	if result.Chart.Error != nil {
		return nil, fmt.Errorf("Yahoo Finance API error: %v", result.Chart.Error)
	}

	if len(result.Chart.Result) == 0 {
		c.log.Warn().Str("symbol", symbol).Msg("No historical data returned")
		return []HistoricalPrice{}, nil
	}

	chartData := result.Chart.Result[0]
	if len(chartData.Indicators.Quote) == 0 {
		c.log.Warn().Str("symbol", symbol).Msg("No quote data in response")
		return []HistoricalPrice{}, nil
	}

	quote := chartData.Indicators.Quote[0]

	var adjCloseData []float64
	if len(chartData.Indicators.AdjClose) > 0 {
		adjCloseData = chartData.Indicators.AdjClose[0].AdjClose
	}

	prices := make([]HistoricalPrice, 0, len(chartData.Timestamp))
	for i, ts := range chartData.Timestamp {
		if i >= len(quote.Open) || i >= len(quote.High) || i >= len(quote.Low) || i >= len(quote.Close) {
			continue
		}

		// Yahoo reports halted sessions as nulls
		if quote.Open[i] == 0 && quote.High[i] == 0 && quote.Low[i] == 0 && quote.Close[i] == 0 {
			continue
		}

		adjClose := quote.Close[i]
		if i < len(adjCloseData) && adjCloseData[i] != 0 {
			adjClose = adjCloseData[i]
		}

		var volume int64
		if i < len(quote.Volume) {
			volume = quote.Volume[i]
		}

		prices = append(prices, HistoricalPrice{
			Date:     time.Unix(ts, 0).UTC(),
			Open:     quote.Open[i],
			High:     quote.High[i],
			Low:      quote.Low[i],
			Close:    quote.Close[i],
			Volume:   volume,
			AdjClose: adjClose,
		})
	}

	c.log.Debug().
		Str("symbol", symbol).
		Str("period", period).
		Int("count", len(prices)).
		Msg("Fetched historical prices")

	return prices, nil
}

// GetQuote fetches the current quote for symbol.
// Returns ErrNotFound when Yahoo knows nothing about it.
func (c *Client) GetQuote(ctx context.Context, symbol string) (*Quote, error) {
	var result quoteResponse

	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"symbols": symbol,
			"fields":  quoteFields,
		}).
		SetResult(&result).
		Get("/v7/finance/quote")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch quote: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("Yahoo Finance API returned status %d: %s", resp.StatusCode(), resp.String())
	}

	if result.QuoteResponse.Error != nil {
		return nil, fmt.Errorf("Yahoo Finance API error: %v", result.QuoteResponse.Error)
	}

	if len(result.QuoteResponse.Result) == 0 {
		return nil, fmt.Errorf("%s: %w", symbol, ErrNotFound)
	}

	info := result.QuoteResponse.Result[0]

	return &Quote{
		Symbol:             getString(info, "symbol", symbol),
		RegularMarketPrice: getFloat64(info, "regularMarketPrice"),
		PreviousClose:      firstFloat64(info, "previousClose", "regularMarketPreviousClose"),
		Open:               firstFloat64(info, "open", "regularMarketOpen"),
		Bid:                getFloat64(info, "bid"),
		Ask:                getFloat64(info, "ask"),
		DayLow:             firstFloat64(info, "dayLow", "regularMarketDayLow"),
		DayHigh:            firstFloat64(info, "dayHigh", "regularMarketDayHigh"),
		FiftyTwoWeekLow:    getFloat64(info, "fiftyTwoWeekLow"),
		FiftyTwoWeekHigh:   getFloat64(info, "fiftyTwoWeekHigh"),
		Volume:             firstInt64(info, "volume", "regularMarketVolume"),
		AverageVolume:      firstInt64(info, "averageVolume", "averageDailyVolume3Month"),
		MarketCap:          getInt64(info, "marketCap"),
	}, nil
}

// Helper functions to safely extract values from map

func getFloat64(m map[string]interface{}, key string) *float64 {
	if val, ok := m[key]; ok && val != nil {
		switch v := val.(type) {
		case float64:
			return &v
		case int64:
			f := float64(v)
			return &f
		}
	}
	return nil
}

func firstFloat64(m map[string]interface{}, keys ...string) *float64 {
	for _, key := range keys {
		if v := getFloat64(m, key); v != nil {
			return v
		}
	}
	return nil
}

func getInt64(m map[string]interface{}, key string) *int64 {
	if f := getFloat64(m, key); f != nil {
		i := int64(*f)
		return &i
	}
	return nil
}

func firstInt64(m map[string]interface{}, keys ...string) *int64 {
	for _, key := range keys {
		if v := getInt64(m, key); v != nil {
			return v
		}
	}
	return nil
}

func getString(m map[string]interface{}, key string, defaultVal string) string {
	if val, ok := m[key]; ok && val != nil {
		if s, ok := val.(string); ok {
			return s
		}
	}
	return defaultVal
}
