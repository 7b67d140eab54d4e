package di

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/sellscalehood/backend/internal/clients/yahoo"
	"github.com/sellscalehood/backend/internal/config"
	"github.com/sellscalehood/backend/internal/modules/market"
	"github.com/sellscalehood/backend/internal/modules/trading"
)

// InitializeServices creates clients and services on top of the repositories
func InitializeServices(container *Container, cfg *config.Config, log zerolog.Logger) error {
	if container.LedgerStore == nil {
		return fmt.Errorf("ledger store not initialized")
	}

	container.YahooClient = yahoo.NewClient(yahoo.Config{
		BaseURL:    cfg.Yahoo.BaseURL,
		Timeout:    cfg.Yahoo.Timeout,
		RetryCount: 3,
	}, log)

	container.TradingService = trading.NewTradingService(container.LedgerStore, log)
	container.MarketService = market.NewService(container.YahooClient, log)

	return nil
}
