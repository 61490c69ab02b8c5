package cmd

import (
	"context"
	"testing"
	"time"

	"github.com/MinterTeam/incentives-engine/config"
	"github.com/MinterTeam/incentives-engine/core/code"
	"github.com/MinterTeam/incentives-engine/core/transaction"
	"github.com/MinterTeam/incentives-engine/core/types"
	"github.com/MinterTeam/incentives-engine/genesis"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"
	"github.com/tendermint/tendermint/libs/log"
)

func setupConfig(t *testing.T) {
	t.Helper()

	root := t.TempDir()
	config.EnsureRoot(root)

	cfg = config.DefaultConfig()
	cfg.SetRoot(root)
	cfg.DBBackend = "memdb"

	appState := genesis.DefaultAppState(time.Now().Add(-time.Hour), types.NameToAddress("admin"), types.NameToAddress("root"))
	require.NoError(t, genesis.Save(cfg.GenesisFile(), appState))
}

func TestOpenAppLoadsGenesis(t *testing.T) {
	setupConfig(t)

	a, err := openApp(log.NewNopLogger(), nil)
	require.NoError(t, err)
	defer a.Close()

	require.Equal(t, int64(1), a.engine.Version())
	require.Len(t, a.engine.Packages(), 10)

	alice := types.NameToAddress("alice")
	price := types.Units(30)
	require.NoError(t, a.ledger.Mint(types.ReferenceCoin, alice, price))
	require.NoError(t, a.ledger.Approve(context.Background(), types.ReferenceCoin, alice, cfg.TreasuryAddress(), price))

	tx, err := transaction.NewTransaction(alice, 2, &transaction.RegisterData{
		Sponsor:      types.NameToAddress("root"),
		PackageLevel: 1,
		Coin:         types.ReferenceCoin,
		Amount:       price,
	})
	require.NoError(t, err)

	response := a.engine.Deliver(context.Background(), tx)
	require.Equal(t, code.OK, response.Code, response.Log)

	treasury, err := a.ledger.BalanceOf(context.Background(), types.ReferenceCoin, cfg.TreasuryAddress())
	require.NoError(t, err)
	require.Equal(t, price.String(), treasury.String())
}

func TestOpenAppWithoutGenesis(t *testing.T) {
	root := t.TempDir()
	config.EnsureRoot(root)
	cfg = config.DefaultConfig()
	cfg.SetRoot(root)
	cfg.DBBackend = "memdb"

	_, err := openApp(log.NewNopLogger(), nil)
	require.Error(t, err)
}

func TestParseAddress(t *testing.T) {
	address, err := parseAddress("@keeper")
	require.NoError(t, err)
	require.Equal(t, types.NameToAddress("keeper"), address)

	address, err = parseAddress(types.NameToAddress("bob").String())
	require.NoError(t, err)
	require.Equal(t, types.NameToAddress("bob"), address)

	_, err = parseAddress("bob")
	require.Error(t, err)
	_, err = parseAddress("@")
	require.Error(t, err)
}

func TestParseAmountAndCoin(t *testing.T) {
	amount, err := parseAmount("1500")
	require.NoError(t, err)
	require.Equal(t, "1500", amount.String())

	_, err = parseAmount("-1")
	require.Error(t, err)
	_, err = parseAmount("1.5")
	require.Error(t, err)

	coin, err := parseCoin("NATIVE")
	require.NoError(t, err)
	require.Equal(t, types.NativeCoin, coin)
	_, err = parseCoin("btc")
	require.Error(t, err)
}

func TestNewOracle(t *testing.T) {
	setupConfig(t)
	clock := clockwork.NewFakeClock()
	require.Nil(t, newOracle(clock))

	cfg.Oracle.Rate = types.Units(2).String()
	source := newOracle(clock)
	require.NotNil(t, source)

	price, err := source.Price(context.Background())
	require.NoError(t, err)
	require.Equal(t, types.Units(2).String(), price.Rate.String())
}
