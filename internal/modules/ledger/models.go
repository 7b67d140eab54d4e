// Package ledger persists the account balance and the blended stock positions.
//
// The account row lives in user_data, positions in stocks. There is at most one
// position per (owner, ticker); a position whose quantity would reach zero is
// deleted instead of kept as an empty row.
package ledger

import "github.com/shopspring/decimal"

// Account is the single cash ledger owner
type Account struct {
	ID      int64
	Name    string
	Balance decimal.Decimal
}

// Position is a blended holding of one ticker for one account
type Position struct {
	ID          int64
	OwnerID     int64
	Ticker      string
	AverageCost decimal.Decimal // Quantity-weighted mean purchase price
	DateBought  string          // YYYY-MM-DD of the buy that opened the position
	Quantity    int64
}

// CostBasis returns the total amount paid for the held quantity
func (p Position) CostBasis() decimal.Decimal {
	return p.AverageCost.Mul(decimal.NewFromInt(p.Quantity))
}
