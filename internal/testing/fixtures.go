package testing

import (
	"time"

	"github.com/sellscalehood/backend/internal/clients/yahoo"
)

// NewPriceFixtures returns one daily price per close, starting at start
func NewPriceFixtures(start time.Time, closes ...float64) []yahoo.HistoricalPrice {
	prices := make([]yahoo.HistoricalPrice, 0, len(closes))
	for i, c := range closes {
		prices = append(prices, yahoo.HistoricalPrice{
			Date:     start.AddDate(0, 0, i),
			Open:     c,
			High:     c,
			Low:      c,
			Close:    c,
			Volume:   1000000,
			AdjClose: c,
		})
	}
	return prices
}

// NewQuoteFixture returns a fully populated quote for symbol
func NewQuoteFixture(symbol string) *yahoo.Quote {
	f := func(v float64) *float64 { return &v }
	i := func(v int64) *int64 { return &v }

	return &yahoo.Quote{
		Symbol:             symbol,
		RegularMarketPrice: f(181.91),
		PreviousClose:      f(184.25),
		Open:               f(182.15),
		Bid:                f(181.9),
		Ask:                f(181.95),
		DayLow:             f(180.88),
		DayHigh:            f(183.09),
		FiftyTwoWeekLow:    f(124.17),
		FiftyTwoWeekHigh:   f(199.62),
		Volume:             i(71983600),
		AverageVolume:      i(53350000),
		MarketCap:          i(2829000000000),
	}
}
