package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sellscalehood/backend/internal/domain"
	"github.com/sellscalehood/backend/internal/modules/ledger"
	"github.com/sellscalehood/backend/internal/modules/trading"
	testingpkg "github.com/sellscalehood/backend/internal/testing"
)

func setupRouter(t *testing.T, seed int64) (chi.Router, *ledger.Store, int64) {
	t.Helper()
	logger := zerolog.New(nil).Level(zerolog.Disabled)
	db := testingpkg.NewTestDB(t)

	store := ledger.NewStore(db.Conn(), ledger.AccountDefaults{SeedBalance: decimal.NewFromInt(seed)}, logger)
	acc, err := store.GetOrCreateDefaultAccount(context.Background())
	require.NoError(t, err)

	handler := NewTradingHandlers(trading.NewTradingService(store, logger), acc.ID, logger)
	router := chi.NewRouter()
	handler.RegisterRoutes(router)

	return router, store, acc.ID
}

func do(router http.Handler, method, path string) (*httptest.ResponseRecorder, map[string]interface{}) {
	req := httptest.NewRequest(method, path, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var body map[string]interface{}
	_ = json.NewDecoder(w.Body).Decode(&body)
	return w, body
}

func TestHandleBuyStock(t *testing.T) {
	router, store, accountID := setupRouter(t, 100000)

	w, body := do(router, "POST", "/buy/AAPL/150.5/2024-01-02/10")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.Equal(t, "Stock purchased successfully", body["message"])
	assert.NotZero(t, body["stock_id"])

	balance, err := store.GetAccountBalance(context.Background(), accountID)
	require.NoError(t, err)
	assert.Equal(t, "98495", balance.String())
}

func TestHandleSellStock(t *testing.T) {
	router, store, accountID := setupRouter(t, 100000)

	w, buy := do(router, "POST", "/buy/AAPL/150/2024-01-02/10")
	require.Equal(t, http.StatusOK, w.Code)

	w, sell := do(router, "POST", "/sell/AAPL/200/2024-01-03/10")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Stock sold successfully", sell["message"])
	assert.Equal(t, buy["stock_id"], sell["stock_id"])

	positions, err := store.ListPositions(context.Background(), accountID)
	require.NoError(t, err)
	assert.Empty(t, positions)
}

func TestHandleTrade_ClientErrors(t *testing.T) {
	router, _, _ := setupRouter(t, 100)

	tests := []struct {
		name string
		path string
	}{
		{"insufficient funds", "/buy/AAPL/150/2024-01-02/1"},
		{"position not found", "/sell/AAPL/150/2024-01-02/1"},
		{"non-numeric price", "/buy/AAPL/abc/2024-01-02/1"},
		{"fractional quantity", "/buy/AAPL/1/2024-01-02/1.5"},
		{"negative quantity", "/buy/AAPL/1/2024-01-02/-1"},
		{"bad date", "/buy/AAPL/1/yesterday/1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, body := do(router, "POST", tt.path)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.NotEmpty(t, body["detail"])
		})
	}
}

func TestHandleTrade_OutOfRangePriceHasShortDetail(t *testing.T) {
	router, store, accountID := setupRouter(t, 100000)

	paths := []string{
		"/buy/AAPL/1e-20000/2024-01-02/1",
		"/buy/AAPL/1e20000/2024-01-02/1",
		"/sell/AAPL/1e20000/2024-01-02/1",
		"/buy/AAPL/0.000000001/2024-01-02/1",
	}

	for _, path := range paths {
		t.Run(path, func(t *testing.T) {
			w, body := do(router, "POST", path)
			assert.Equal(t, http.StatusBadRequest, w.Code)

			detail, ok := body["detail"].(string)
			require.True(t, ok)
			assert.NotEmpty(t, detail)
			assert.Less(t, len(detail), 100)
		})
	}

	balance, err := store.GetAccountBalance(context.Background(), accountID)
	require.NoError(t, err)
	assert.Equal(t, "100000", balance.String())
}

func TestHandleBuyStock_QuantityOverflow(t *testing.T) {
	router, store, accountID := setupRouter(t, 1000000000000)

	w, _ := do(router, "POST", "/buy/PENNY/0.00000001/2024-01-02/9000000000000000000")
	require.Equal(t, http.StatusOK, w.Code)

	w, body := do(router, "POST", "/buy/PENNY/0.00000001/2024-01-02/9000000000000000000")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.NotEmpty(t, body["detail"])

	pos, err := store.GetPosition(context.Background(), accountID, "PENNY")
	require.NoError(t, err)
	require.NotNil(t, pos)
	assert.Equal(t, int64(9000000000000000000), pos.Quantity)
}

func TestHandleTrade_MethodNotAllowed(t *testing.T) {
	router, _, _ := setupRouter(t, 100)

	w, _ := do(router, "GET", "/buy/AAPL/1/2024-01-02/1")
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

type stubTrader struct {
	err error
}

func (s stubTrader) BuyStock(ctx context.Context, req trading.TradeRequest) (int64, error) {
	return 0, s.err
}

func (s stubTrader) SellStock(ctx context.Context, req trading.TradeRequest) (int64, error) {
	return 0, s.err
}

func TestHandleTrade_ErrorStatusMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		detail string
	}{
		{"account missing", domain.ErrAccountNotFound, http.StatusNotFound, "User not found"},
		{"storage failure", domain.NewStorageError("commit", errors.New("disk I/O error")), http.StatusInternalServerError, "Internal server error"},
		{"insufficient quantity", domain.ErrInsufficientQuantity, http.StatusBadRequest, "insufficient quantity"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewTradingHandlers(stubTrader{err: tt.err}, 1, zerolog.Nop())
			router := chi.NewRouter()
			handler.RegisterRoutes(router)

			w, body := do(router, "POST", "/sell/AAPL/1/2024-01-02/1")
			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.detail, body["detail"])
		})
	}
}
