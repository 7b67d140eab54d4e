package testing

import (
	"context"
	"fmt"
	"sync"

	"github.com/sellscalehood/backend/internal/clients/yahoo"
)

// MockQuoteSource is an in-memory market data source for testing
type MockQuoteSource struct {
	mu      sync.RWMutex
	history map[string][]yahoo.HistoricalPrice
	quotes  map[string]*yahoo.Quote
	err     error
	calls   []string
}

// NewMockQuoteSource creates a new mock quote source
func NewMockQuoteSource() *MockQuoteSource {
	return &MockQuoteSource{
		history: make(map[string][]yahoo.HistoricalPrice),
		quotes:  make(map[string]*yahoo.Quote),
	}
}

// SetHistory sets the prices returned for symbol
func (m *MockQuoteSource) SetHistory(symbol string, prices []yahoo.HistoricalPrice) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.history[symbol] = prices
}

// SetQuote sets the quote returned for symbol
func (m *MockQuoteSource) SetQuote(symbol string, quote *yahoo.Quote) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.quotes[symbol] = quote
}

// SetError makes every call fail with err
func (m *MockQuoteSource) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Calls returns the recorded calls as "method:symbol:period"
func (m *MockQuoteSource) Calls() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]string(nil), m.calls...)
}

// GetHistoricalPrices returns the configured prices; unknown symbols are empty
func (m *MockQuoteSource) GetHistoricalPrices(ctx context.Context, symbol, period string) ([]yahoo.HistoricalPrice, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, fmt.Sprintf("history:%s:%s", symbol, period))
	if m.err != nil {
		return nil, m.err
	}
	return m.history[symbol], nil
}

// GetQuote returns the configured quote or yahoo.ErrNotFound
func (m *MockQuoteSource) GetQuote(ctx context.Context, symbol string) (*yahoo.Quote, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, "quote:"+symbol)
	if m.err != nil {
		return nil, m.err
	}
	quote, ok := m.quotes[symbol]
	if !ok {
		return nil, fmt.Errorf("%s: %w", symbol, yahoo.ErrNotFound)
	}
	return quote, nil
}
