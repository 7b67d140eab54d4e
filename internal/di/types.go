/**
 * Package di provides dependency injection type definitions.
 *
 * This package defines the Container type which holds all application dependencies.
 * The Container is the single source of truth for all service instances and is
 * passed to the server for access to services.
 */
package di

import (
	"github.com/sellscalehood/backend/internal/clients/yahoo"
	"github.com/sellscalehood/backend/internal/database"
	"github.com/sellscalehood/backend/internal/modules/ledger"
	"github.com/sellscalehood/backend/internal/modules/market"
	"github.com/sellscalehood/backend/internal/modules/trading"
)

// Container holds all application dependencies
type Container struct {
	// Databases
	PortfolioDB *database.DB // accounts and positions

	// Repositories
	LedgerStore *ledger.Store

	// The account every request operates on, created on first start
	DefaultAccount *ledger.Account

	// Clients
	YahooClient *yahoo.Client

	// Services
	TradingService *trading.TradingService
	MarketService  *market.Service
}

// Close releases every resource held by the container
func (c *Container) Close() error {
	if c.PortfolioDB != nil {
		return c.PortfolioDB.Close()
	}
	return nil
}
