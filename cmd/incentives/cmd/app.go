package cmd

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/MinterTeam/incentives-engine/core/engine"
	"github.com/MinterTeam/incentives-engine/core/events"
	"github.com/MinterTeam/incentives-engine/core/oracle"
	"github.com/MinterTeam/incentives-engine/core/state"
	"github.com/MinterTeam/incentives-engine/core/statistics"
	"github.com/MinterTeam/incentives-engine/core/types"
	"github.com/MinterTeam/incentives-engine/core/vault"
	"github.com/MinterTeam/incentives-engine/genesis"
	"github.com/jonboulle/clockwork"
	"github.com/pkg/errors"
	"github.com/syndtr/goleveldb/leveldb/filter"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/tendermint/tendermint/libs/log"
	db "github.com/tendermint/tm-db"
	"golang.org/x/time/rate"
)

// app is the engine opened over the stores under the home directory.
type app struct {
	engine *engine.Engine
	ledger *vault.Ledger
	clock  clockwork.Clock
	dbs    []db.DB
}

func getDbOpts() *opt.Options {
	return &opt.Options{
		OpenFilesCacheCapacity: 64,
		BlockCacheCapacity:     cfg.DBCacheSize * opt.MiB,
		WriteBuffer:            cfg.DBWriteBufferSize * opt.MiB,
		Filter:                 filter.NewBloomFilter(10),
	}
}

func (a *app) openDB(name string) (db.DB, error) {
	var (
		ldb db.DB
		err error
	)
	switch cfg.DBBackend {
	case "memdb":
		ldb = db.NewMemDB()
	case "goleveldb":
		ldb, err = db.NewGoLevelDBWithOpts(name, cfg.DBDir(), getDbOpts())
	default:
		return nil, fmt.Errorf("unsupported db_backend %q", cfg.DBBackend)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "open %s db", name)
	}

	a.dbs = append(a.dbs, ldb)
	return ldb, nil
}

func newOracle(clock clockwork.Clock) oracle.Source {
	if !cfg.Oracle.Enabled() {
		return nil
	}

	guard := oracle.Config{
		MinRate:     mustAmount(cfg.Oracle.MinRate),
		MaxRate:     mustAmount(cfg.Oracle.MaxRate),
		MaxAge:      cfg.Oracle.MaxAge,
		RefreshRate: rate.Limit(cfg.Oracle.RefreshRate),
	}

	if path := cfg.PriceFile(); path != "" {
		return oracle.NewGuarded(oracle.NewFile(path), clock, guard)
	}

	// a fixed rate never goes stale
	guard.MaxAge = 0
	return oracle.NewGuarded(oracle.NewStatic(mustAmount(cfg.Oracle.Rate), clock.Now()), clock, guard)
}

// openApp opens the engine, loading the genesis file into a fresh state.
func openApp(logger log.Logger, stats *statistics.Data) (*app, error) {
	a := &app{clock: clockwork.NewRealClock()}

	params, err := cfg.Engine.Params()
	if err != nil {
		return nil, err
	}

	stateDB, err := a.openDB("state")
	if err != nil {
		return nil, a.closeWith(err)
	}
	eventsDB, err := a.openDB("events")
	if err != nil {
		return nil, a.closeWith(err)
	}
	ledgerDB, err := a.openDB("ledger")
	if err != nil {
		return nil, a.closeWith(err)
	}
	a.ledger = vault.NewLedger(ledgerDB)

	st, err := state.NewState(0, stateDB, events.NewEventsStore(eventsDB), cfg.StateCacheSize, cfg.KeepLastStates)
	if err != nil {
		return nil, a.closeWith(err)
	}

	a.engine, err = engine.NewEngine(st, engine.Options{
		Params:   params,
		Clock:    a.clock,
		Logger:   logger,
		Stats:    stats,
		Oracle:   newOracle(a.clock),
		Vault:    a.ledger,
		Treasury: cfg.TreasuryAddress(),
	})
	if err != nil {
		return nil, a.closeWith(err)
	}

	if a.engine.Version() == 0 {
		appState, err := genesis.Load(cfg.GenesisFile())
		if err != nil {
			return nil, a.closeWith(err)
		}
		if err := a.engine.InitGenesis(appState); err != nil {
			return nil, a.closeWith(err)
		}
	}

	return a, nil
}

func (a *app) closeWith(err error) error {
	if closeErr := a.Close(); closeErr != nil {
		return errors.Wrap(err, closeErr.Error())
	}
	return err
}

func (a *app) Close() error {
	var first error
	for _, d := range a.dbs {
		if err := d.Close(); err != nil && first == nil {
			first = err
		}
	}
	a.dbs = nil
	return first
}

// parseAddress accepts a hex address or @name for a derived system address.
func parseAddress(s string) (types.Address, error) {
	if strings.HasPrefix(s, "@") && len(s) > 1 {
		return types.NameToAddress(s[1:]), nil
	}
	if !types.IsHexAddress(s) {
		return types.Address{}, fmt.Errorf("%q is not an address", s)
	}
	return types.HexToAddress(s), nil
}

func parseAmount(s string) (*big.Int, error) {
	amount, ok := big.NewInt(0).SetString(s, 10)
	if !ok || amount.Sign() < 0 {
		return nil, fmt.Errorf("%q is not a non-negative amount", s)
	}
	return amount, nil
}

// mustAmount parses amounts already checked by config validation.
func mustAmount(s string) *big.Int {
	amount, err := parseAmount(s)
	if err != nil {
		panic(err)
	}
	return amount
}

func parseCoin(s string) (types.CoinID, error) {
	switch strings.ToLower(s) {
	case "ref", "reference":
		return types.ReferenceCoin, nil
	case "native":
		return types.NativeCoin, nil
	}
	return 0, fmt.Errorf("unknown coin %q", s)
}
