package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/sellscalehood/backend/internal/domain"
)

// querier is satisfied by both *sql.DB and *sql.Tx
type querier interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// Queries runs ledger statements against an open transaction.
// A Queries value is only valid inside the Store.WithTx callback that created it.
type Queries struct {
	q   querier
	log zerolog.Logger
}

// GetAccount returns the account row or domain.ErrAccountNotFound
func (q *Queries) GetAccount(ctx context.Context, accountID int64) (*Account, error) {
	var acc Account
	err := q.q.QueryRowContext(ctx,
		"SELECT id, name, balance FROM user_data WHERE id = ?", accountID,
	).Scan(&acc.ID, &acc.Name, &acc.Balance)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("account %d: %w", accountID, domain.ErrAccountNotFound)
	}
	if err != nil {
		return nil, domain.NewStorageError("get account", err)
	}
	return &acc, nil
}

// GetAccountBalance returns the current balance or domain.ErrAccountNotFound
func (q *Queries) GetAccountBalance(ctx context.Context, accountID int64) (decimal.Decimal, error) {
	acc, err := q.GetAccount(ctx, accountID)
	if err != nil {
		return decimal.Zero, err
	}
	return acc.Balance, nil
}

// SetAccountBalance overwrites the account balance.
// Negative balances are refused so the non-negative invariant holds for every commit.
func (q *Queries) SetAccountBalance(ctx context.Context, accountID int64, balance decimal.Decimal) error {
	if balance.IsNegative() {
		return fmt.Errorf("%w: balance of account %d would go negative", domain.ErrInsufficientFunds, accountID)
	}

	res, err := q.q.ExecContext(ctx,
		"UPDATE user_data SET balance = ? WHERE id = ?", balance.String(), accountID)
	if err != nil {
		return domain.NewStorageError("set balance", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return domain.NewStorageError("set balance", err)
	}
	if affected == 0 {
		return fmt.Errorf("account %d: %w", accountID, domain.ErrAccountNotFound)
	}

	q.log.Debug().
		Int64("account_id", accountID).
		Str("balance", balance.String()).
		Msg("Set account balance")

	return nil
}

// GetPosition returns the position for (accountID, ticker).
// A missing position is not an error: it returns nil, nil.
func (q *Queries) GetPosition(ctx context.Context, accountID int64, ticker string) (*Position, error) {
	row := q.q.QueryRowContext(ctx, `
		SELECT id, owner_id, ticker, price_bought_at, date_bought_at, quantity_bought
		FROM stocks WHERE owner_id = ? AND ticker = ?`, accountID, ticker)

	pos, err := scanPosition(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, domain.NewStorageError("get position", err)
	}
	return &pos, nil
}

// ListPositions returns every position of the account, ordered by ticker
func (q *Queries) ListPositions(ctx context.Context, accountID int64) ([]Position, error) {
	rows, err := q.q.QueryContext(ctx, `
		SELECT id, owner_id, ticker, price_bought_at, date_bought_at, quantity_bought
		FROM stocks WHERE owner_id = ? ORDER BY ticker`, accountID)
	if err != nil {
		return nil, domain.NewStorageError("list positions", err)
	}
	defer rows.Close()

	positions := make([]Position, 0)
	for rows.Next() {
		pos, err := scanPosition(rows)
		if err != nil {
			return nil, domain.NewStorageError("scan position", err)
		}
		positions = append(positions, pos)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.NewStorageError("list positions", err)
	}

	return positions, nil
}

// UpsertPosition inserts or overwrites the row for (accountID, ticker) and returns its id.
// dateBought is only written when the row is created; an existing position keeps
// the date it was opened on.
func (q *Queries) UpsertPosition(
	ctx context.Context,
	accountID int64,
	ticker string,
	quantity int64,
	averageCost decimal.Decimal,
	dateBought string,
) (int64, error) {
	if quantity <= 0 {
		return 0, fmt.Errorf("%w: position quantity must be positive, got %d", domain.ErrInvalidTrade, quantity)
	}

	var id int64
	err := q.q.QueryRowContext(ctx,
		"SELECT id FROM stocks WHERE owner_id = ? AND ticker = ?", accountID, ticker,
	).Scan(&id)

	switch {
	case errors.Is(err, sql.ErrNoRows):
		res, err := q.q.ExecContext(ctx, `
			INSERT INTO stocks (owner_id, ticker, price_bought_at, date_bought_at, quantity_bought)
			VALUES (?, ?, ?, ?, ?)`,
			accountID, ticker, averageCost.String(), dateBought, quantity)
		if err != nil {
			return 0, domain.NewStorageError("insert position", err)
		}
		id, err = res.LastInsertId()
		if err != nil {
			return 0, domain.NewStorageError("insert position", err)
		}

	case err != nil:
		return 0, domain.NewStorageError("find position", err)

	default:
		_, err := q.q.ExecContext(ctx,
			"UPDATE stocks SET quantity_bought = ?, price_bought_at = ? WHERE id = ?",
			quantity, averageCost.String(), id)
		if err != nil {
			return 0, domain.NewStorageError("update position", err)
		}
	}

	q.log.Debug().
		Int64("position_id", id).
		Str("ticker", ticker).
		Int64("quantity", quantity).
		Str("average_cost", averageCost.String()).
		Msg("Upserted position")

	return id, nil
}

// DeletePosition removes a position row
func (q *Queries) DeletePosition(ctx context.Context, positionID int64) error {
	res, err := q.q.ExecContext(ctx, "DELETE FROM stocks WHERE id = ?", positionID)
	if err != nil {
		return domain.NewStorageError("delete position", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return domain.NewStorageError("delete position", err)
	}
	if affected == 0 {
		return fmt.Errorf("position %d: %w", positionID, domain.ErrPositionNotFound)
	}

	q.log.Debug().Int64("position_id", positionID).Msg("Deleted position")
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanPosition(row rowScanner) (Position, error) {
	var pos Position
	err := row.Scan(
		&pos.ID,
		&pos.OwnerID,
		&pos.Ticker,
		&pos.AverageCost,
		&pos.DateBought,
		&pos.Quantity,
	)
	return pos, err
}
