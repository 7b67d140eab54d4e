package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/sellscalehood/backend/internal/database"
	"github.com/sellscalehood/backend/internal/domain"
)

// AccountDefaults describes the account created on first access
type AccountDefaults struct {
	Name        string
	SeedBalance decimal.Decimal
}

// Store gives durable, transactional access to accounts and positions.
//
// Reads are available directly; every mutation goes through WithTx so that
// several operations commit or roll back as one unit.
type Store struct {
	db       *sql.DB
	defaults AccountDefaults
	log      zerolog.Logger
}

// NewStore creates a new ledger store over portfolio.db
func NewStore(db *sql.DB, defaults AccountDefaults, log zerolog.Logger) *Store {
	if strings.TrimSpace(defaults.Name) == "" {
		defaults.Name = "Default User"
	}
	return &Store{
		db:       db,
		defaults: defaults,
		log:      log.With().Str("repo", "ledger").Logger(),
	}
}

// WithTx runs fn inside one atomic transaction.
// fn's error is returned unchanged after rollback; a nil return commits.
func (s *Store) WithTx(ctx context.Context, fn func(q *Queries) error) error {
	return database.WithTransaction(ctx, s.db, func(tx *sql.Tx) error {
		return fn(&Queries{q: tx, log: s.log})
	})
}

// GetOrCreateDefaultAccount returns the first account, creating it with the
// seed balance when the table is empty.
func (s *Store) GetOrCreateDefaultAccount(ctx context.Context) (*Account, error) {
	var acc Account

	err := s.WithTx(ctx, func(q *Queries) error {
		err := q.q.QueryRowContext(ctx,
			"SELECT id, name, balance FROM user_data ORDER BY id LIMIT 1",
		).Scan(&acc.ID, &acc.Name, &acc.Balance)
		if err == nil {
			return nil
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return domain.NewStorageError("get default account", err)
		}

		res, err := q.q.ExecContext(ctx,
			"INSERT INTO user_data (name, balance) VALUES (?, ?)",
			s.defaults.Name, s.defaults.SeedBalance.String())
		if err != nil {
			return domain.NewStorageError("create default account", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return domain.NewStorageError("create default account", err)
		}

		acc = Account{ID: id, Name: s.defaults.Name, Balance: s.defaults.SeedBalance}
		s.log.Info().
			Int64("account_id", id).
			Str("name", acc.Name).
			Str("balance", acc.Balance.String()).
			Msg("Created default account")
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &acc, nil
}

// GetAccountBalance returns the account balance or domain.ErrAccountNotFound
func (s *Store) GetAccountBalance(ctx context.Context, accountID int64) (decimal.Decimal, error) {
	return s.reader().GetAccountBalance(ctx, accountID)
}

// GetPosition returns the position for (accountID, ticker), or nil when none is held
func (s *Store) GetPosition(ctx context.Context, accountID int64, ticker string) (*Position, error) {
	return s.reader().GetPosition(ctx, accountID, ticker)
}

// ListPositions returns every position of the account
func (s *Store) ListPositions(ctx context.Context, accountID int64) ([]Position, error) {
	positions, err := s.reader().ListPositions(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to list positions for account %d: %w", accountID, err)
	}
	return positions, nil
}

// reader runs single read statements outside a transaction.
// Its results are for display only and must not drive a later write.
func (s *Store) reader() *Queries {
	return &Queries{q: s.db, log: s.log}
}
