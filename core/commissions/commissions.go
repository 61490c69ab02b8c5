package commissions

import (
	"fmt"
	"math/big"

	"github.com/MinterTeam/incentives-engine/core/events"
	"github.com/MinterTeam/incentives-engine/core/placement"
	"github.com/MinterTeam/incentives-engine/core/state"
	"github.com/MinterTeam/incentives-engine/core/statistics"
	"github.com/MinterTeam/incentives-engine/core/types"
	"github.com/MinterTeam/incentives-engine/helpers"
)

// Engine pays commissions of funding events and reinvestments. It reads the
// state modules on every call, so it stays valid across rollbacks.
type Engine struct {
	state     *state.State
	placement *placement.Engine
	params    types.Params
	stats     *statistics.Data
}

func NewEngine(st *state.State, placement *placement.Engine, params types.Params, stats *statistics.Data) *Engine {
	return &Engine{state: st, placement: placement, params: params, stats: stats}
}

// Allocation is the split of one funding event.
type Allocation struct {
	Direct   *big.Int
	Upline   *big.Int
	Level    *big.Int
	Leader   *big.Int
	Help     *big.Int
	Club     *big.Int
	Retained *big.Int
}

// Total sums every part of the allocation.
func (a *Allocation) Total() *big.Int {
	return helpers.Sum(a.Direct, a.Upline, a.Level, a.Leader, a.Help, a.Club, a.Retained)
}

// Fund runs the commissions and pool accruals of amount paid by from at the
// given package level. The caller records amount as inflow.
func (e *Engine) Fund(from types.Address, level uint32, amount *big.Int) (*Allocation, error) {
	tier := e.state.Packages.Get(level)
	if tier == nil {
		return nil, fmt.Errorf("package %d does not exist", level)
	}
	account := e.state.Accounts.GetAccount(from)
	if account == nil {
		return nil, fmt.Errorf("account %s is not registered", from.String())
	}

	alloc := &Allocation{
		Direct: helpers.MulBP(amount, tier.DirectBP),
		Upline: helpers.MulBP(amount, tier.UplineBP),
		Level:  helpers.MulBP(amount, tier.LevelBP),
		Leader: helpers.MulBP(amount, tier.LeaderBP),
		Help:   helpers.MulBP(amount, tier.HelpBP),
		Club:   helpers.MulBP(amount, tier.ClubBP),
	}
	alloc.Retained = big.NewInt(0).Sub(amount, helpers.Sum(alloc.Direct, alloc.Upline, alloc.Level, alloc.Leader, alloc.Help, alloc.Club))

	e.Direct(from, account.GetSponsor(), alloc.Direct)
	e.Upline(from, alloc.Upline)
	e.Level(from, level, alloc.Level)
	e.AccruePools(alloc.Leader, alloc.Help, alloc.Club)
	e.state.App.AddRetained(alloc.Retained)

	return alloc, nil
}

// Credit pays amount to address up to its remaining earnings cap and returns
// the credited part. The rest is discarded.
func (e *Engine) Credit(kind string, from types.Address, to types.Address, amount *big.Int) *big.Int {
	if amount.Sign() == 0 {
		return big.NewInt(0)
	}

	account := e.state.Accounts.GetAccount(to)
	if account == nil {
		panic(fmt.Sprintf("credit to unregistered account %s", to.String()))
	}

	credited := helpers.Min(amount, account.RemainingCap())
	discarded := big.NewInt(0).Sub(amount, credited)

	if credited.Sign() == 1 {
		e.state.Accounts.AddBalance(to, credited)
		e.state.Accounts.AddEarnings(to, credited)
		e.addEvent(&events.CommissionEvent{
			Kind:    kind,
			From:    from,
			Address: to,
			Amount:  credited.String(),
		})
		e.stats.Commission(kind, credited)
	}

	if discarded.Sign() == 1 {
		e.state.App.AddDiscarded(discarded)
		e.addEvent(&events.EarningsCapReachedEvent{
			Address:   to,
			Discarded: discarded.String(),
		})
		e.stats.CapHit(discarded)
	}

	return credited
}

// Direct pays the sponsor's share. An ineligible or missing sponsor leaves the
// share retained.
func (e *Engine) Direct(from types.Address, sponsor types.Address, amount *big.Int) {
	if amount.Sign() == 0 {
		return
	}

	if account := e.state.Accounts.GetAccount(sponsor); sponsor.IsZero() || account == nil || !account.IsEligible() {
		e.state.App.AddRetained(amount)
		return
	}

	e.Credit(events.KindDirect, from, sponsor, amount)
}

// UplineResult lists what an upline walk paid.
type UplineResult struct {
	Paid       map[types.Address]*big.Int
	Leftover   *big.Int
	LeftoverTo types.Address // zero when the leftover went to the community pool
}

// Upline spreads amount over the sponsor chain of from. The i-th ancestor
// (1-based) takes remaining/(depth-i+1) when eligible; ineligible ancestors
// are skipped but still count. The leftover goes to the last eligible
// ancestor, or to the community pool if none was eligible.
func (e *Engine) Upline(from types.Address, amount *big.Int) *UplineResult {
	result := &UplineResult{Paid: map[types.Address]*big.Int{}, Leftover: big.NewInt(0)}
	if amount.Sign() == 0 {
		return result
	}

	depth := e.params.UplineDepth
	remaining := big.NewInt(0).Set(amount)
	var lastEligible types.Address

	for i, ancestor := range e.placement.SponsorChain(e.state.Accounts, from, depth) {
		account := e.state.Accounts.GetAccount(ancestor)
		if !account.IsEligible() {
			continue
		}

		share := big.NewInt(0).Quo(remaining, big.NewInt(int64(depth-i)))
		remaining.Sub(remaining, share)
		lastEligible = ancestor

		if share.Sign() == 1 {
			e.Credit(events.KindUpline, from, ancestor, share)
			result.Paid[ancestor] = share
		}
	}

	result.Leftover.Set(remaining)
	if remaining.Sign() == 0 {
		return result
	}

	if !lastEligible.IsZero() {
		e.Credit(events.KindUplineLeftover, from, lastEligible, remaining)
		result.LeftoverTo = lastEligible
		if paid, ok := result.Paid[lastEligible]; ok {
			paid.Add(paid, remaining)
		} else {
			result.Paid[lastEligible] = big.NewInt(0).Set(remaining)
		}
		return result
	}

	e.accrue(types.PoolCommunity, remaining)
	return result
}

// Level pays a flat share of amount to each of the nearest ancestors holding
// at least the given package level. Shares of missing or ineligible
// ancestors and the rounding remainder are retained.
func (e *Engine) Level(from types.Address, level uint32, amount *big.Int) {
	if amount.Sign() == 0 {
		return
	}

	depth := e.params.LevelDepth
	share := big.NewInt(0).Quo(amount, big.NewInt(int64(depth)))
	paid := big.NewInt(0)

	if share.Sign() == 1 {
		for _, ancestor := range e.placement.SponsorChain(e.state.Accounts, from, depth) {
			account := e.state.Accounts.GetAccount(ancestor)
			if !account.IsEligible() || account.GetPackageLevel() < level {
				continue
			}

			e.Credit(events.KindLevel, from, ancestor, share)
			paid.Add(paid, share)
		}
	}

	e.state.App.AddRetained(big.NewInt(0).Sub(amount, paid))
}

// ReinvestResult is the split of a reinvested amount.
type ReinvestResult struct {
	Level  *big.Int
	Upline *big.Int
	Pool   *big.Int
}

// Reinvest routes the non-withdrawable part of a withdrawal back into the
// network: one part level-style over the ancestors, one part upline-style,
// the remainder to the community pool.
func (e *Engine) Reinvest(from types.Address, amount *big.Int) (*ReinvestResult, error) {
	account := e.state.Accounts.GetAccount(from)
	if account == nil {
		return nil, fmt.Errorf("account %s is not registered", from.String())
	}

	result := &ReinvestResult{
		Level:  helpers.MulBP(amount, e.params.ReinvestLevelBP),
		Upline: helpers.MulBP(amount, e.params.ReinvestUplineBP),
	}
	result.Pool = big.NewInt(0).Sub(amount, big.NewInt(0).Add(result.Level, result.Upline))

	e.Level(from, account.GetPackageLevel(), result.Level)
	e.Upline(from, result.Upline)
	e.accrue(types.PoolCommunity, result.Pool)

	return result, nil
}

func (e *Engine) addEvent(event events.Event) {
	if store := e.state.Events(); store != nil {
		store.AddEvent(event)
	}
}
