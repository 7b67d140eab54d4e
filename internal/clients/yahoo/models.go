package yahoo

import "time"

// HistoricalPrice represents a single OHLCV data point
type HistoricalPrice struct {
	Date     time.Time `json:"date"`
	Open     float64   `json:"open"`
	High     float64   `json:"high"`
	Low      float64   `json:"low"`
	Close    float64   `json:"close"`
	Volume   int64     `json:"volume"`
	AdjClose float64   `json:"adj_close"`
}

// Quote holds the quote fields shown on a stock's detail page.
// A nil field was not reported by Yahoo.
type Quote struct {
	Symbol             string   `json:"symbol"`
	RegularMarketPrice *float64 `json:"regularMarketPrice,omitempty"`
	PreviousClose      *float64 `json:"previousClose,omitempty"`
	Open               *float64 `json:"open,omitempty"`
	Bid                *float64 `json:"bid,omitempty"`
	Ask                *float64 `json:"ask,omitempty"`
	DayLow             *float64 `json:"dayLow,omitempty"`
	DayHigh            *float64 `json:"dayHigh,omitempty"`
	FiftyTwoWeekLow    *float64 `json:"fiftyTwoWeekLow,omitempty"`
	FiftyTwoWeekHigh   *float64 `json:"fiftyTwoWeekHigh,omitempty"`
	Volume             *int64   `json:"volume,omitempty"`
	AverageVolume      *int64   `json:"averageVolume,omitempty"`
	MarketCap          *int64   `json:"marketCap,omitempty"`
}

// chartResponse is the v8 chart API payload
type chartResponse struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []float64 `json:"open"`
					High   []float64 `json:"high"`
					Low    []float64 `json:"low"`
					Close  []float64 `json:"close"`
					Volume []int64   `json:"volume"`
				} `json:"quote"`
				AdjClose []struct {
					AdjClose []float64 `json:"adjclose"`
				} `json:"adjclose"`
			} `json:"indicators"`
		} `json:"result"`
		Error interface{} `json:"error"`
	} `json:"chart"`
}

// quoteResponse is the v7 quote API payload
type quoteResponse struct {
	QuoteResponse struct {
		Result []map[string]interface{} `json:"result"`
		Error  interface{}              `json:"error"`
	} `json:"quoteResponse"`
}
