package di

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/sellscalehood/backend/internal/config"
	"github.com/sellscalehood/backend/internal/modules/ledger"
)

// InitializeRepositories creates the ledger store and makes sure the default
// account exists
func InitializeRepositories(ctx context.Context, container *Container, cfg *config.Config, log zerolog.Logger) error {
	if container.PortfolioDB == nil {
		return fmt.Errorf("portfolio database not initialized")
	}

	container.LedgerStore = ledger.NewStore(container.PortfolioDB.Conn(), ledger.AccountDefaults{
		Name:        cfg.AccountName,
		SeedBalance: cfg.SeedBalance,
	}, log)

	account, err := container.LedgerStore.GetOrCreateDefaultAccount(ctx)
	if err != nil {
		return fmt.Errorf("failed to get default account: %w", err)
	}
	container.DefaultAccount = account

	return nil
}
