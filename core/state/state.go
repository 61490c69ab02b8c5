package state

import (
	"fmt"
	"math/big"
	"sync"

	"github.com/MinterTeam/incentives-engine/core/events"
	"github.com/MinterTeam/incentives-engine/core/state/accounts"
	"github.com/MinterTeam/incentives-engine/core/state/app"
	"github.com/MinterTeam/incentives-engine/core/state/bus"
	"github.com/MinterTeam/incentives-engine/core/state/checker"
	"github.com/MinterTeam/incentives-engine/core/state/guard"
	"github.com/MinterTeam/incentives-engine/core/state/packages"
	"github.com/MinterTeam/incentives-engine/core/state/pools"
	"github.com/MinterTeam/incentives-engine/core/types"
	"github.com/MinterTeam/incentives-engine/helpers"
	"github.com/MinterTeam/incentives-engine/tree"
	"github.com/cosmos/iavl"
	"github.com/pkg/errors"
	db "github.com/tendermint/tm-db"
)

type Interface interface {
	isValue_State()
}

type CheckState struct {
	state *State
}

func NewCheckState(state *State) *CheckState {
	return &CheckState{state: state}
}

func (cs *CheckState) isValue_State() {}

func (cs *CheckState) Export() types.AppState {
	appState := new(types.AppState)
	cs.App().Export(appState)
	cs.Packages().Export(appState)
	cs.Guard().Export(appState)
	cs.Accounts().Export(appState)
	cs.Pools().Export(appState)

	if len(appState.Accounts) != 0 {
		appState.Root = appState.Accounts[0].Address
		appState.RootLevel = appState.Accounts[0].PackageLevel
	}

	return *appState
}

func (cs *CheckState) App() app.RApp {
	return cs.state.App
}

func (cs *CheckState) Accounts() accounts.RAccounts {
	return cs.state.Accounts
}

func (cs *CheckState) Packages() packages.RPackages {
	return cs.state.Packages
}

func (cs *CheckState) Pools() pools.RPools {
	return cs.state.Pools
}

func (cs *CheckState) Guard() guard.RGuard {
	return cs.state.Guard
}

// State is the engine storage: one iavl version per delivered operation.
type State struct {
	App      *app.App
	Accounts *accounts.Accounts
	Packages *packages.Packages
	Pools    *pools.Pools
	Guard    *guard.Guard
	Checker  *checker.Checker

	db             db.DB
	events         events.IEventsDB
	tree           tree.MTree
	keepLastStates int64

	bus  *bus.Bus
	lock sync.RWMutex
}

func (s *State) isValue_State() {}

// NewState opens the state at height, or at the latest saved version when
// height is zero.
func NewState(height uint64, db db.DB, events events.IEventsDB, cacheSize int, keepLastStates int64) (*State, error) {
	iavlTree, err := tree.NewMutableTree(height, db, cacheSize)
	if err != nil {
		return nil, err
	}

	state := newStateForTree(iavlTree.GetLastImmutable(), events, db, keepLastStates)
	state.tree = iavlTree

	return state, nil
}

// NewCheckStateAtHeight opens a read-only view of a saved version.
func NewCheckStateAtHeight(height uint64, db db.DB) (*CheckState, error) {
	iavlTree, err := tree.NewMutableTree(0, db, 1024)
	if err != nil {
		return nil, err
	}

	immutableTree, err := iavlTree.GetImmutableAtHeight(int64(height))
	if err != nil {
		return nil, errors.Wrapf(err, "load version %d", height)
	}

	return NewCheckState(newStateForTree(immutableTree, nil, db, 0)), nil
}

func newStateForTree(immutableTree *iavl.ImmutableTree, events events.IEventsDB, db db.DB, keepLastStates int64) *State {
	stateBus := bus.NewBus()
	stateBus.SetEvents(events)

	state := &State{
		Checker:        checker.NewChecker(stateBus),
		db:             db,
		events:         events,
		keepLastStates: keepLastStates,
		bus:            stateBus,
	}
	state.loadModules(immutableTree)

	return state
}

func (s *State) loadModules(immutableTree *iavl.ImmutableTree) {
	s.App = app.NewApp(s.bus, immutableTree)
	s.Accounts = accounts.NewAccounts(s.bus, immutableTree)
	s.Packages = packages.NewPackages(immutableTree)
	s.Pools = pools.NewPools(s.bus, immutableTree)
	s.Guard = guard.NewGuard(immutableTree)
}

func (s *State) Tree() tree.MTree {
	return s.tree
}

func (s *State) Events() events.IEventsDB {
	return s.events
}

func (s *State) Lock() {
	s.lock.Lock()
}

func (s *State) Unlock() {
	s.lock.Unlock()
}

func (s *State) RLock() {
	s.lock.RLock()
}

func (s *State) RUnlock() {
	s.lock.RUnlock()
}

// Check verifies the value ledger of the operation in progress.
func (s *State) Check() error {
	return s.Checker.Check()
}

// Commit saves every dirty module as a new version together with the
// pending events.
func (s *State) Commit() ([]byte, int64, error) {
	s.Checker.Reset()

	hash, version, err := s.tree.Commit(
		s.App,
		s.Accounts,
		s.Packages,
		s.Pools,
		s.Guard,
	)
	if err != nil {
		return hash, version, err
	}

	if s.events != nil {
		if err := s.events.CommitEvents(uint64(version)); err != nil {
			return hash, version, errors.Wrap(err, "commit events")
		}
	}

	if s.keepLastStates > 0 {
		if versionToDelete := version - s.keepLastStates - 1; versionToDelete > 0 {
			if err := s.tree.DeleteVersion(versionToDelete); err != nil {
				return hash, version, errors.Wrapf(err, "delete version %d", versionToDelete)
			}
		}
	}

	return hash, version, nil
}

// Rollback drops every uncommitted change and reloads the modules from the
// last saved version.
func (s *State) Rollback() {
	s.Checker.Reset()
	if s.events != nil {
		s.events.Reset()
	}
	s.loadModules(s.tree.GetLastImmutable())
}

// Import loads a genesis document. A document without accounts creates the
// root account with the cap of its package level.
func (s *State) Import(state types.AppState, params types.Params) error {
	if err := state.Verify(); err != nil {
		return err
	}

	s.App.SetAdmins(state.Admins)
	s.App.SetPlatformRecipient(state.PlatformRecipient)
	s.App.SetLastTime(state.GenesisTime)

	for _, p := range state.Packages {
		if err := s.Packages.Create(&packages.Model{
			Level:    p.Level,
			Price:    helpers.StringToBigInt(p.Price),
			DirectBP: p.DirectBP,
			LevelBP:  p.LevelBP,
			UplineBP: p.UplineBP,
			LeaderBP: p.LeaderBP,
			HelpBP:   p.HelpBP,
			ClubBP:   p.ClubBP,
		}); err != nil {
			return err
		}
	}

	s.Guard.SetPaused(state.Guard.Paused)
	s.Guard.SetBreakerTriggered(state.Guard.BreakerTriggered)
	s.Guard.SetBreakerThreshold(helpers.StringToBigIntOrZero(state.Guard.BreakerThreshold))
	s.Guard.SetWithdrawalLimits(
		helpers.StringToBigIntOrZero(state.Guard.DailyWithdrawalLimit),
		helpers.StringToBigIntOrZero(state.Guard.GlobalDailyWithdrawalLimit),
	)
	if withdrawn := helpers.StringToBigIntOrZero(state.Guard.GlobalDailyWithdrawn); withdrawn.Sign() == 1 {
		s.Guard.AddGlobalDailyWithdrawn(state.Guard.GlobalLastResetDay, withdrawn)
	}

	if len(state.Accounts) == 0 {
		price := s.Packages.Get(state.RootLevel).Price
		s.Accounts.Create(state.Root, 1, types.Address{}, state.RootLevel, state.GenesisTime)
		s.Accounts.AddInvestment(state.Root, price, big.NewInt(0).Mul(price, big.NewInt(0).SetUint64(params.CapMultiplier)))
		s.Accounts.SetWithdrawalRate(state.Root, params.WithdrawalRateFor(0))
		s.App.SetAccountsCount(1)
	} else {
		var maxID uint32
		for _, a := range state.Accounts {
			s.Accounts.Import(a,
				helpers.StringToBigIntOrZero(a.Balance),
				helpers.StringToBigIntOrZero(a.TotalInvestment),
				helpers.StringToBigIntOrZero(a.TotalEarnings),
				helpers.StringToBigIntOrZero(a.EarningsCap),
				helpers.StringToBigIntOrZero(a.DailyWithdrawn),
			)
			if a.ID > maxID {
				maxID = a.ID
			}
		}
		s.App.SetAccountsCount(maxID)
	}

	for _, p := range state.Pools {
		if err := s.Pools.Import(p); err != nil {
			return err
		}
	}

	if state.Totals != nil {
		s.App.SetTotals(app.Totals{
			Inflow:    helpers.StringToBigIntOrZero(state.Totals.Inflow),
			Withdrawn: helpers.StringToBigIntOrZero(state.Totals.Withdrawn),
			Retained:  helpers.StringToBigIntOrZero(state.Totals.Retained),
			Discarded: helpers.StringToBigIntOrZero(state.Totals.Discarded),
		})
	}

	s.Checker.Reset()

	return s.Audit()
}

// Export returns the genesis document of the last saved version.
func (s *State) Export() (types.AppState, error) {
	state, err := NewCheckStateAtHeight(uint64(s.tree.Version()), s.db)
	if err != nil {
		return types.AppState{}, err
	}

	return state.Export(), nil
}

// Audit checks the global invariants of the current state: value held by
// accounts, pools, escrow and the retained/discarded totals plus everything
// withdrawn equals everything that came in; no account earned above its cap;
// every sponsor chain ends at the root.
func (s *State) Audit() error {
	holdings := big.NewInt(0)
	count := s.App.GetAccountsCount()
	for id := uint32(1); id <= count; id++ {
		address, ok := s.Accounts.GetAddressByID(id)
		if !ok {
			return fmt.Errorf("account id %d is missing", id)
		}
		account := s.Accounts.GetAccount(address)
		if account == nil {
			return fmt.Errorf("account %s is missing", address.String())
		}

		if account.GetTotalEarnings().Cmp(account.GetEarningsCap()) > 0 {
			return fmt.Errorf("account %s earned %s above cap %s", address.String(), account.GetTotalEarnings(), account.GetEarningsCap())
		}

		depth := uint32(0)
		for sponsor := account.GetSponsor(); !sponsor.IsZero(); {
			depth++
			if depth > count {
				return fmt.Errorf("sponsor chain of %s has a cycle", address.String())
			}
			parent := s.Accounts.GetAccount(sponsor)
			if parent == nil {
				return fmt.Errorf("sponsor %s of %s is not registered", sponsor.String(), address.String())
			}
			sponsor = parent.GetSponsor()
		}

		holdings.Add(holdings, account.GetBalance())
	}

	for _, pool := range types.PoolTypes {
		holdings.Add(holdings, s.Pools.Get(pool).Balance)
	}
	holdings.Add(holdings, s.Pools.TotalEscrow())

	totals := s.App.Totals()
	holdings.Add(holdings, totals.Retained)
	holdings.Add(holdings, totals.Discarded)
	holdings.Add(holdings, totals.Withdrawn)

	if holdings.Cmp(totals.Inflow) != 0 {
		return fmt.Errorf("conservation broken: holdings %s, inflow %s", holdings, totals.Inflow)
	}

	return nil
}
