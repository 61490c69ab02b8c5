package engine

import (
	"errors"
	"math/big"

	"github.com/MinterTeam/incentives-engine/core/events"
	"github.com/MinterTeam/incentives-engine/core/state"
	"github.com/MinterTeam/incentives-engine/core/types"
	"github.com/MinterTeam/incentives-engine/core/withdrawal"
)

var (
	ErrAccountNotFound = errors.New("account not found")
	ErrPackageNotFound = errors.New("package not found")
	ErrUnknownPool     = errors.New("unknown pool")
	ErrEventsDisabled  = errors.New("events store is not configured")
)

// PoolStatus is the public view of a pool and its running cycle.
type PoolStatus struct {
	Type                 string        `json:"type"`
	Balance              string        `json:"balance"`
	LastDistributionTime uint64        `json:"last_distribution_time"`
	NextDistributionTime uint64        `json:"next_distribution_time"`
	TotalDistributed     string        `json:"total_distributed"`
	EligibleCount        int           `json:"eligible_count"`
	Cursor               *types.Cursor `json:"cursor,omitempty"`
}

// Totals is the public view of the value ledger.
type Totals struct {
	Inflow    string `json:"inflow"`
	Withdrawn string `json:"withdrawn"`
	Retained  string `json:"retained"`
	Discarded string `json:"discarded"`
	Escrow    string `json:"escrow"`
}

// Account returns the record of a registered address.
func (e *Engine) Account(address types.Address) (*types.Account, error) {
	e.state.RLock()
	defer e.state.RUnlock()

	model := e.state.Accounts.GetAccount(address)
	if model == nil {
		return nil, ErrAccountNotFound
	}

	parent, left, right := model.GetMatrix()
	account := &types.Account{
		ID:                  model.GetID(),
		Address:             address,
		Sponsor:             model.GetSponsor(),
		PackageLevel:        model.GetPackageLevel(),
		Balance:             model.GetBalance().String(),
		TotalInvestment:     model.GetTotalInvestment().String(),
		TotalEarnings:       model.GetTotalEarnings().String(),
		EarningsCap:         model.GetEarningsCap().String(),
		DirectReferralCount: model.GetDirectReferralCount(),
		TeamSize:            model.GetTeamSize(),
		RegistrationTime:    model.GetRegistrationTime(),
		WithdrawalRate:      model.GetWithdrawalRate(),
		Blacklisted:         model.IsBlacklisted(),
		Active:              model.IsActive(),
		DirectReferrals:     model.GetDirectReferrals(),
	}
	if !parent.IsZero() {
		account.MatrixParent = &parent
	}
	if !left.IsZero() {
		account.MatrixLeft = &left
	}
	if !right.IsZero() {
		account.MatrixRight = &right
	}

	return account, nil
}

// AccountByID resolves a registration number to an address.
func (e *Engine) AccountByID(id uint32) (types.Address, error) {
	e.state.RLock()
	defer e.state.RUnlock()

	address, ok := e.state.Accounts.GetAddressByID(id)
	if !ok {
		return types.Address{}, ErrAccountNotFound
	}

	return address, nil
}

func (e *Engine) Package(level uint32) (*types.Package, error) {
	e.state.RLock()
	defer e.state.RUnlock()

	model := e.state.Packages.Get(level)
	if model == nil {
		return nil, ErrPackageNotFound
	}

	return &types.Package{
		Level:    model.Level,
		Price:    model.Price.String(),
		DirectBP: model.DirectBP,
		LevelBP:  model.LevelBP,
		UplineBP: model.UplineBP,
		LeaderBP: model.LeaderBP,
		HelpBP:   model.HelpBP,
		ClubBP:   model.ClubBP,
	}, nil
}

func (e *Engine) Packages() []types.Package {
	e.state.RLock()
	defer e.state.RUnlock()

	appState := new(types.AppState)
	e.state.Packages.Export(appState)

	return appState.Packages
}

func (e *Engine) Pool(pool types.PoolType) (*PoolStatus, error) {
	if !pool.IsValid() {
		return nil, ErrUnknownPool
	}

	e.state.RLock()
	defer e.state.RUnlock()

	model := e.state.Pools.Get(pool)
	recipients, _ := e.distributor.Eligible(pool)
	status := &PoolStatus{
		Type:                 pool.String(),
		Balance:              model.Balance.String(),
		LastDistributionTime: model.LastDistributionTime,
		NextDistributionTime: e.distributor.NextTime(pool),
		TotalDistributed:     model.TotalDistributed.String(),
		EligibleCount:        len(recipients),
	}

	if cursor := e.state.Pools.GetCursor(pool); cursor.InProgress {
		status.Cursor = &types.Cursor{
			Index:         cursor.Index,
			BatchSize:     cursor.BatchSize,
			SnapshotTotal: cursor.SnapshotTotal.String(),
			Recipients:    cursor.Recipients,
			Ranks:         cursor.Ranks,
			Escrow:        cursor.Escrow.String(),
			StartedAt:     cursor.StartedAt,
		}
		for _, share := range cursor.Shares {
			status.Cursor.Shares = append(status.Cursor.Shares, share.String())
		}
	}

	return status, nil
}

// NetworkSize returns the bounded count of accounts reachable through direct
// referral links.
func (e *Engine) NetworkSize(address types.Address) uint64 {
	e.state.RLock()
	defer e.state.RUnlock()

	return e.placement.NetworkSize(e.state.Accounts, address)
}

// TeamSize returns the number of descendants within the team-size depth.
func (e *Engine) TeamSize(address types.Address) (uint64, error) {
	e.state.RLock()
	defer e.state.RUnlock()

	account := e.state.Accounts.GetAccount(address)
	if account == nil {
		return 0, ErrAccountNotFound
	}

	return account.GetTeamSize(), nil
}

func (e *Engine) WithdrawalRate(address types.Address) uint64 {
	e.state.RLock()
	defer e.state.RUnlock()

	return e.withdrawals.RateFor(address)
}

// PreviewWithdrawal returns the split a withdrawal of amount would produce.
func (e *Engine) PreviewWithdrawal(address types.Address, amount *big.Int) *withdrawal.Split {
	e.state.RLock()
	defer e.state.RUnlock()

	return withdrawal.Calculate(amount, e.withdrawals.RateFor(address), e.params.PlatformFeeBP)
}

func (e *Engine) Guard() types.Guard {
	e.state.RLock()
	defer e.state.RUnlock()

	appState := new(types.AppState)
	e.state.Guard.Export(appState)

	return appState.Guard
}

func (e *Engine) Totals() Totals {
	e.state.RLock()
	defer e.state.RUnlock()

	totals := e.state.App.Totals()
	return Totals{
		Inflow:    totals.Inflow.String(),
		Withdrawn: totals.Withdrawn.String(),
		Retained:  totals.Retained.String(),
		Discarded: totals.Discarded.String(),
		Escrow:    e.state.Pools.TotalEscrow().String(),
	}
}

// Events returns the events committed with version.
func (e *Engine) Events(version uint64) (events.Events, error) {
	store := e.state.Events()
	if store == nil {
		return nil, ErrEventsDisabled
	}

	return store.LoadEvents(version)
}

// Audit checks the global invariants of the last committed state.
func (e *Engine) Audit() error {
	e.state.RLock()
	defer e.state.RUnlock()

	return e.state.Audit()
}

func (e *Engine) Export() (types.AppState, error) {
	e.state.RLock()
	defer e.state.RUnlock()

	return e.state.Export()
}

func (e *Engine) Version() int64 {
	e.state.RLock()
	defer e.state.RUnlock()

	return e.state.Tree().Version()
}

// State exposes the underlying storage for embedding hosts.
func (e *Engine) State() *state.State {
	return e.state
}
