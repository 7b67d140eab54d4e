package ledger

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sellscalehood/backend/internal/database"
	"github.com/sellscalehood/backend/internal/domain"
	testingpkg "github.com/sellscalehood/backend/internal/testing"
)

func newTestStore(t *testing.T, driver string) *Store {
	t.Helper()
	db := testingpkg.NewTestDBWithDriver(t, driver)
	log := zerolog.New(nil).Level(zerolog.Disabled)
	return NewStore(db.Conn(), AccountDefaults{Name: "Tester", SeedBalance: decimal.NewFromInt(100000)}, log)
}

func TestGetOrCreateDefaultAccount(t *testing.T) {
	for _, driver := range []string{database.DriverModernc, database.DriverMattn} {
		t.Run(driver, func(t *testing.T) {
			store := newTestStore(t, driver)
			ctx := context.Background()

			first, err := store.GetOrCreateDefaultAccount(ctx)
			require.NoError(t, err)
			assert.Equal(t, "Tester", first.Name)
			assert.True(t, first.Balance.Equal(decimal.NewFromInt(100000)))

			second, err := store.GetOrCreateDefaultAccount(ctx)
			require.NoError(t, err)
			assert.Equal(t, first.ID, second.ID, "account must be created only once")

			balance, err := store.GetAccountBalance(ctx, first.ID)
			require.NoError(t, err)
			assert.Equal(t, "100000", balance.String())
		})
	}
}

func TestNewStore_DefaultName(t *testing.T) {
	db := testingpkg.NewTestDB(t)
	store := NewStore(db.Conn(), AccountDefaults{SeedBalance: decimal.NewFromInt(5)}, zerolog.Nop())

	acc, err := store.GetOrCreateDefaultAccount(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Default User", acc.Name)
}

func TestGetAccountBalance_NotFound(t *testing.T) {
	store := newTestStore(t, database.DriverModernc)

	_, err := store.GetAccountBalance(context.Background(), 42)
	assert.ErrorIs(t, err, domain.ErrAccountNotFound)
}

func TestGetPosition_AbsentIsNotAnError(t *testing.T) {
	store := newTestStore(t, database.DriverModernc)
	ctx := context.Background()
	acc, err := store.GetOrCreateDefaultAccount(ctx)
	require.NoError(t, err)

	pos, err := store.GetPosition(ctx, acc.ID, "AAPL")
	assert.NoError(t, err)
	assert.Nil(t, pos)
}

func TestUpsertPosition_InsertThenOverwrite(t *testing.T) {
	store := newTestStore(t, database.DriverModernc)
	ctx := context.Background()
	acc, err := store.GetOrCreateDefaultAccount(ctx)
	require.NoError(t, err)

	var firstID, secondID int64
	err = store.WithTx(ctx, func(q *Queries) error {
		var err error
		firstID, err = q.UpsertPosition(ctx, acc.ID, "AAPL", 10, decimal.NewFromInt(150), "2024-01-02")
		return err
	})
	require.NoError(t, err)

	err = store.WithTx(ctx, func(q *Queries) error {
		var err error
		secondID, err = q.UpsertPosition(ctx, acc.ID, "AAPL", 15, decimal.NewFromInt(160), "2024-02-03")
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, firstID, secondID, "upsert must overwrite the existing row")

	pos, err := store.GetPosition(ctx, acc.ID, "AAPL")
	require.NoError(t, err)
	require.NotNil(t, pos)
	assert.Equal(t, int64(15), pos.Quantity)
	assert.Equal(t, "160", pos.AverageCost.String())
	assert.Equal(t, "2024-01-02", pos.DateBought, "opening date is kept")
	assert.Equal(t, "2400", pos.CostBasis().String())

	positions, err := store.ListPositions(ctx, acc.ID)
	require.NoError(t, err)
	assert.Len(t, positions, 1)
}

func TestUpsertPosition_TickerIsCaseSensitive(t *testing.T) {
	store := newTestStore(t, database.DriverModernc)
	ctx := context.Background()
	acc, err := store.GetOrCreateDefaultAccount(ctx)
	require.NoError(t, err)

	err = store.WithTx(ctx, func(q *Queries) error {
		if _, err := q.UpsertPosition(ctx, acc.ID, "AAPL", 1, decimal.NewFromInt(1), "2024-01-02"); err != nil {
			return err
		}
		_, err := q.UpsertPosition(ctx, acc.ID, "aapl", 2, decimal.NewFromInt(2), "2024-01-02")
		return err
	})
	require.NoError(t, err)

	positions, err := store.ListPositions(ctx, acc.ID)
	require.NoError(t, err)
	require.Len(t, positions, 2)
	assert.Equal(t, "AAPL", positions[0].Ticker)
	assert.Equal(t, "aapl", positions[1].Ticker)
}

func TestUpsertPosition_RejectsNonPositiveQuantity(t *testing.T) {
	store := newTestStore(t, database.DriverModernc)
	ctx := context.Background()
	acc, err := store.GetOrCreateDefaultAccount(ctx)
	require.NoError(t, err)

	err = store.WithTx(ctx, func(q *Queries) error {
		_, err := q.UpsertPosition(ctx, acc.ID, "AAPL", 0, decimal.NewFromInt(1), "2024-01-02")
		return err
	})
	assert.ErrorIs(t, err, domain.ErrInvalidTrade)
}

func TestDeletePosition(t *testing.T) {
	store := newTestStore(t, database.DriverModernc)
	ctx := context.Background()
	acc, err := store.GetOrCreateDefaultAccount(ctx)
	require.NoError(t, err)

	var id int64
	require.NoError(t, store.WithTx(ctx, func(q *Queries) error {
		var err error
		id, err = q.UpsertPosition(ctx, acc.ID, "MSFT", 3, decimal.NewFromInt(300), "2024-01-02")
		return err
	}))

	require.NoError(t, store.WithTx(ctx, func(q *Queries) error {
		return q.DeletePosition(ctx, id)
	}))

	pos, err := store.GetPosition(ctx, acc.ID, "MSFT")
	require.NoError(t, err)
	assert.Nil(t, pos)

	err = store.WithTx(ctx, func(q *Queries) error {
		return q.DeletePosition(ctx, id)
	})
	assert.ErrorIs(t, err, domain.ErrPositionNotFound)
}

func TestSetAccountBalance(t *testing.T) {
	store := newTestStore(t, database.DriverModernc)
	ctx := context.Background()
	acc, err := store.GetOrCreateDefaultAccount(ctx)
	require.NoError(t, err)

	// 0.1 + 0.2 must stay exact
	sum := decimal.RequireFromString("0.1").Add(decimal.RequireFromString("0.2"))
	require.NoError(t, store.WithTx(ctx, func(q *Queries) error {
		return q.SetAccountBalance(ctx, acc.ID, sum)
	}))

	balance, err := store.GetAccountBalance(ctx, acc.ID)
	require.NoError(t, err)
	assert.Equal(t, "0.3", balance.String())

	err = store.WithTx(ctx, func(q *Queries) error {
		return q.SetAccountBalance(ctx, acc.ID, decimal.NewFromInt(-1))
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientFunds)
	assert.True(t, domain.IsClientError(err))

	balance, err = store.GetAccountBalance(ctx, acc.ID)
	require.NoError(t, err)
	assert.Equal(t, "0.3", balance.String())

	err = store.WithTx(ctx, func(q *Queries) error {
		return q.SetAccountBalance(ctx, acc.ID+100, decimal.NewFromInt(1))
	})
	assert.ErrorIs(t, err, domain.ErrAccountNotFound)
}

func TestWithTx_RollsBackEveryStatement(t *testing.T) {
	store := newTestStore(t, database.DriverModernc)
	ctx := context.Background()
	acc, err := store.GetOrCreateDefaultAccount(ctx)
	require.NoError(t, err)

	errAbort := errors.New("abort")
	err = store.WithTx(ctx, func(q *Queries) error {
		if err := q.SetAccountBalance(ctx, acc.ID, decimal.NewFromInt(1)); err != nil {
			return err
		}
		if _, err := q.UpsertPosition(ctx, acc.ID, "AAPL", 1, decimal.NewFromInt(1), "2024-01-02"); err != nil {
			return err
		}
		return errAbort
	})
	assert.ErrorIs(t, err, errAbort)

	balance, err := store.GetAccountBalance(ctx, acc.ID)
	require.NoError(t, err)
	assert.Equal(t, "100000", balance.String())

	positions, err := store.ListPositions(ctx, acc.ID)
	require.NoError(t, err)
	assert.Empty(t, positions)
}

func TestListPositions_StorageFailure(t *testing.T) {
	db := testingpkg.NewTestDB(t)
	store := NewStore(db.Conn(), AccountDefaults{}, zerolog.Nop())
	require.NoError(t, db.Close())

	_, err := store.ListPositions(context.Background(), 1)
	assert.ErrorIs(t, err, domain.ErrStorage)
}
