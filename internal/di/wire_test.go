package di

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sellscalehood/backend/internal/config"
)

func testConfig(t *testing.T) *config.Config {
	return &config.Config{
		DataDir:     t.TempDir(),
		DBDriver:    config.DriverModernc,
		BusyTimeout: time.Second,
		Port:        8000,
		AccountName: "Wired",
		SeedBalance: decimal.NewFromInt(2500),
		Yahoo: config.YahooConfig{
			BaseURL: "http://127.0.0.1:1",
			Timeout: time.Second,
		},
	}
}

func TestWire(t *testing.T) {
	log := zerolog.New(nil).Level(zerolog.Disabled)
	cfg := testConfig(t)

	container, err := Wire(context.Background(), cfg, log)
	require.NoError(t, err)
	defer container.Close()

	assert.NotNil(t, container.PortfolioDB)
	assert.NotNil(t, container.LedgerStore)
	assert.NotNil(t, container.YahooClient)
	assert.NotNil(t, container.TradingService)
	assert.NotNil(t, container.MarketService)

	require.NotNil(t, container.DefaultAccount)
	assert.Equal(t, "Wired", container.DefaultAccount.Name)
	assert.Equal(t, "2500", container.DefaultAccount.Balance.String())
}

func TestWire_ReusesAccountAcrossRestarts(t *testing.T) {
	log := zerolog.Nop()
	cfg := testConfig(t)

	first, err := Wire(context.Background(), cfg, log)
	require.NoError(t, err)
	firstID := first.DefaultAccount.ID
	require.NoError(t, first.Close())

	cfg.SeedBalance = decimal.NewFromInt(1)
	second, err := Wire(context.Background(), cfg, log)
	require.NoError(t, err)
	defer second.Close()

	assert.Equal(t, firstID, second.DefaultAccount.ID)
	assert.Equal(t, "2500", second.DefaultAccount.Balance.String(), "seed applies only on creation")
}

func TestInitializeDatabases_InvalidDriver(t *testing.T) {
	cfg := testConfig(t)
	cfg.DBDriver = "postgres"

	_, err := InitializeDatabases(cfg, zerolog.Nop())
	assert.Error(t, err)
}

func TestInitializeRepositories_RequiresDatabase(t *testing.T) {
	err := InitializeRepositories(context.Background(), &Container{}, testConfig(t), zerolog.Nop())
	assert.Error(t, err)
}

func TestInitializeServices_RequiresStore(t *testing.T) {
	err := InitializeServices(&Container{}, testConfig(t), zerolog.Nop())
	assert.Error(t, err)
}
