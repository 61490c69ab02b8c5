package app

import (
	"fmt"
	"math/big"
	"sync"
	"sync/atomic"

	"github.com/MinterTeam/incentives-engine/core/state/bus"
	"github.com/MinterTeam/incentives-engine/core/types"
	"github.com/cosmos/iavl"
	"github.com/ethereum/go-ethereum/rlp"
)

const mainPrefix = 'd'

type RApp interface {
	Export(state *types.AppState)
	GetAccountsCount() uint32
	IsAdmin(address types.Address) bool
	GetAdmins() []types.Address
	GetPlatformRecipient() types.Address
	GetLastTime() uint64
	Totals() Totals
}

// Totals are the global counters of the conservation audit.
type Totals struct {
	Inflow    *big.Int
	Withdrawn *big.Int
	Retained  *big.Int
	Discarded *big.Int
}

type App struct {
	model   *Model
	isDirty bool

	db atomic.Value

	bus *bus.Bus
	mx  sync.Mutex
}

func NewApp(stateBus *bus.Bus, db *iavl.ImmutableTree) *App {
	immutableTree := atomic.Value{}
	if db != nil {
		immutableTree.Store(db)
	}
	return &App{bus: stateBus, db: immutableTree}
}

func (a *App) immutableTree() *iavl.ImmutableTree {
	db := a.db.Load()
	if db == nil {
		return nil
	}
	return db.(*iavl.ImmutableTree)
}

func (a *App) SetImmutableTree(immutableTree *iavl.ImmutableTree) {
	a.db.Store(immutableTree)
}

func (a *App) Commit(db *iavl.MutableTree, version int64) error {
	a.mx.Lock()
	defer a.mx.Unlock()

	if !a.isDirty {
		return nil
	}

	a.isDirty = false

	data, err := rlp.EncodeToBytes(a.model)
	if err != nil {
		return fmt.Errorf("can't encode app model: %s", err)
	}

	db.Set([]byte{mainPrefix}, data)

	return nil
}

func (a *App) get() *Model {
	a.mx.Lock()
	defer a.mx.Unlock()

	if a.model != nil {
		return a.model
	}

	tree := a.immutableTree()
	if tree == nil {
		return nil
	}

	_, enc := tree.Get([]byte{mainPrefix})
	if len(enc) == 0 {
		return nil
	}

	model := &Model{}
	if err := rlp.DecodeBytes(enc, model); err != nil {
		panic(fmt.Sprintf("failed to decode app model: %s", err))
	}

	a.model = model
	a.model.markDirty = a.markDirty
	return a.model
}

func (a *App) getOrNew() *Model {
	model := a.get()
	if model == nil {
		model = &Model{
			Inflow:    big.NewInt(0),
			Withdrawn: big.NewInt(0),
			Retained:  big.NewInt(0),
			Discarded: big.NewInt(0),
			markDirty: a.markDirty,
		}
		a.mx.Lock()
		a.model = model
		a.mx.Unlock()
	}

	return model
}

func (a *App) markDirty() {
	a.mx.Lock()
	defer a.mx.Unlock()

	a.isDirty = true
}

func (a *App) GetAccountsCount() uint32 {
	return a.getOrNew().getAccountsCount()
}

// GetNextAccountID returns the id the next registered account receives.
func (a *App) GetNextAccountID() uint32 {
	return a.GetAccountsCount() + 1
}

func (a *App) SetAccountsCount(count uint32) {
	a.getOrNew().setAccountsCount(count)
}

func (a *App) GetAdmins() []types.Address {
	return a.getOrNew().getAdmins()
}

func (a *App) SetAdmins(admins []types.Address) {
	a.getOrNew().setAdmins(admins)
}

func (a *App) IsAdmin(address types.Address) bool {
	for _, admin := range a.GetAdmins() {
		if admin == address {
			return true
		}
	}

	return false
}

func (a *App) GetPlatformRecipient() types.Address {
	return a.getOrNew().getPlatformRecipient()
}

func (a *App) SetPlatformRecipient(address types.Address) {
	a.getOrNew().setPlatformRecipient(address)
}

func (a *App) GetLastTime() uint64 {
	return a.getOrNew().getLastTime()
}

func (a *App) SetLastTime(t uint64) {
	a.getOrNew().setLastTime(t)
}

// AddInflow records value that entered the engine from outside.
func (a *App) AddInflow(amount *big.Int) {
	if amount.Sign() == 0 {
		return
	}

	model := a.getOrNew()
	model.add(&model.Inflow, amount)
	a.bus.Checker().AddInflow(amount)
}

// AddWithdrawn records value paid out of the engine.
func (a *App) AddWithdrawn(amount *big.Int) {
	if amount.Sign() == 0 {
		return
	}

	model := a.getOrNew()
	model.add(&model.Withdrawn, amount)
	a.bus.Checker().AddOutflow(amount)
}

// AddRetained records value the engine keeps without an owner: skipped
// level shares, distribution dust, shares of blacklisted recipients.
func (a *App) AddRetained(amount *big.Int) {
	if amount.Sign() == 0 {
		return
	}

	model := a.getOrNew()
	model.add(&model.Retained, amount)
	a.bus.Checker().AddCredit(amount)
}

// AddDiscarded records credits cut off by the earnings cap.
func (a *App) AddDiscarded(amount *big.Int) {
	if amount.Sign() == 0 {
		return
	}

	model := a.getOrNew()
	model.add(&model.Discarded, amount)
	a.bus.Checker().AddCredit(amount)
}

func (a *App) Totals() Totals {
	model := a.getOrNew()

	return Totals{
		Inflow:    model.get(&model.Inflow),
		Withdrawn: model.get(&model.Withdrawn),
		Retained:  model.get(&model.Retained),
		Discarded: model.get(&model.Discarded),
	}
}

// SetTotals restores the audit counters from genesis without touching the checker.
func (a *App) SetTotals(totals Totals) {
	model := a.getOrNew()
	model.mx.Lock()
	model.Inflow = big.NewInt(0).Set(totals.Inflow)
	model.Withdrawn = big.NewInt(0).Set(totals.Withdrawn)
	model.Retained = big.NewInt(0).Set(totals.Retained)
	model.Discarded = big.NewInt(0).Set(totals.Discarded)
	model.mx.Unlock()

	a.markDirty()
}

func (a *App) Export(state *types.AppState) {
	state.Admins = a.GetAdmins()
	state.PlatformRecipient = a.GetPlatformRecipient()
	state.GenesisTime = a.GetLastTime()

	totals := a.Totals()
	state.Totals = &types.Totals{
		Inflow:    totals.Inflow.String(),
		Withdrawn: totals.Withdrawn.String(),
		Retained:  totals.Retained.String(),
		Discarded: totals.Discarded.String(),
	}
}
