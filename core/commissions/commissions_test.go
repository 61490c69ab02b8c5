package commissions

import (
	"math/big"
	"testing"

	"github.com/MinterTeam/incentives-engine/core/events"
	"github.com/MinterTeam/incentives-engine/core/placement"
	"github.com/MinterTeam/incentives-engine/core/state"
	"github.com/MinterTeam/incentives-engine/core/types"
	"github.com/MinterTeam/incentives-engine/helpers"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"
	db "github.com/tendermint/tm-db"
)

type fixture struct {
	state  *state.State
	engine *Engine
	nextID uint32
}

func addr(name string) types.Address {
	return types.NameToAddress(name)
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	params := types.DefaultParams()

	st, err := state.NewState(0, db.NewMemDB(), events.NewEventsStore(db.NewMemDB()), 1024, 0)
	require.NoError(t, err)
	require.NoError(t, st.Import(types.AppState{
		GenesisTime:       1000,
		Admins:            []types.Address{addr("admin")},
		PlatformRecipient: addr("platform"),
		Root:              addr("root"),
		RootLevel:         2,
		Packages: []types.Package{
			{Level: 1, Price: types.Units(30).String(), DirectBP: 4000, LevelBP: 1000, UplineBP: 1000, LeaderBP: 1000, HelpBP: 3000},
			{Level: 2, Price: types.Units(60).String(), DirectBP: 4000, LevelBP: 1000, UplineBP: 1000, LeaderBP: 1000, HelpBP: 2000, ClubBP: 1000},
		},
	}, params))
	_, _, err = st.Commit()
	require.NoError(t, err)

	pl, err := placement.NewEngine(params, clockwork.NewFakeClock())
	require.NoError(t, err)

	return &fixture{state: st, engine: NewEngine(st, pl, params, nil), nextID: 1}
}

func (f *fixture) join(name string, sponsor string, level uint32) {
	f.nextID++
	price := f.state.Packages.Get(level).Price
	f.state.Accounts.Create(addr(name), f.nextID, addr(sponsor), level, 1000)
	f.state.Accounts.AddInvestment(addr(name), price, big.NewInt(0).Mul(price, big.NewInt(4)))
	f.state.Accounts.AddDirectReferral(addr(sponsor), addr(name))
	f.state.App.SetAccountsCount(f.nextID)
}

func (f *fixture) balance(name string) string {
	return f.state.Accounts.GetBalance(addr(name)).String()
}

func (f *fixture) pending(eventType string) []events.Event {
	var list []events.Event
	for _, event := range f.state.Events().Pending() {
		if event.Type() == eventType {
			list = append(list, event)
		}
	}
	return list
}

func tenths(n int64) *big.Int {
	return big.NewInt(0).Quo(types.Units(n), big.NewInt(10))
}

func TestFundConservesTierAmount(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.join("a", "root", 2)
	f.join("b", "a", 1)

	amount := types.Units(30)
	f.state.App.AddInflow(amount)
	alloc, err := f.engine.Fund(addr("b"), 1, amount)
	require.NoError(t, err)
	require.Equal(t, amount.String(), alloc.Total().String())

	// direct 12 + upline 3/30 + level 3/10
	require.Equal(t, tenths(124).String(), f.balance("a"))
	// upline 2.9/29 + leftover 2.8 + level 0.3
	require.Equal(t, tenths(32).String(), f.balance("root"))
	require.Equal(t, types.Units(3).String(), f.state.Pools.Get(types.PoolLeadership).Balance.String())
	require.Equal(t, types.Units(9).String(), f.state.Pools.Get(types.PoolCommunity).Balance.String())
	require.Equal(t, "0", f.state.Pools.Get(types.PoolClub).Balance.String())
	require.Equal(t, tenths(24).String(), f.state.App.Totals().Retained.String())

	require.NoError(t, f.state.Check())
	require.NoError(t, f.state.Audit())
	require.Len(t, f.pending(events.TypePoolAccruedEvent), 2)
}

func TestFundUnknownPackage(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	_, err := f.engine.Fund(addr("root"), 9, types.Units(1))
	require.Error(t, err)
}

func TestDirectToIneligibleSponsorIsRetained(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.join("a", "root", 1)
	f.state.Accounts.SetBlacklisted(addr("root"), true)

	f.state.App.AddInflow(types.Units(5))
	f.engine.Direct(addr("a"), addr("root"), types.Units(5))

	require.Equal(t, "0", f.balance("root"))
	require.Equal(t, types.Units(5).String(), f.state.App.Totals().Retained.String())
	require.NoError(t, f.state.Check())
}

func TestUplineWalkConservesAmount(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.join("x1", "root", 1)
	f.join("x2", "x1", 1)
	f.join("x3", "x2", 1)
	f.join("u", "x3", 1)
	f.state.Accounts.SetBlacklisted(addr("x2"), true)

	amount := types.Units(30)
	f.state.App.AddInflow(amount)
	result := f.engine.Upline(addr("u"), amount)

	paid := big.NewInt(0)
	for _, v := range result.Paid {
		paid.Add(paid, v)
	}
	require.Equal(t, amount.String(), paid.String())

	require.NotContains(t, result.Paid, addr("x2"))
	require.Equal(t, "0", f.balance("x2"))
	require.Equal(t, types.Units(1).String(), f.balance("x3"))
	require.Equal(t, addr("root"), result.LeftoverTo)

	// x1 is the third ancestor: 29 / 28
	x1 := big.NewInt(0).Quo(types.Units(29), big.NewInt(28))
	require.Equal(t, x1.String(), f.balance("x1"))
	require.Equal(t, big.NewInt(0).Sub(types.Units(29), x1).String(), f.balance("root"))

	require.NoError(t, f.state.Check())
}

func TestUplineWithoutEligibleAncestorsFeedsCommunityPool(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.join("y", "root", 1)
	f.join("u", "y", 1)
	f.state.Accounts.SetBlacklisted(addr("y"), true)
	f.state.Accounts.SetBlacklisted(addr("root"), true)

	amount := types.Units(7)
	f.state.App.AddInflow(amount)
	result := f.engine.Upline(addr("u"), amount)

	require.Empty(t, result.Paid)
	require.True(t, result.LeftoverTo.IsZero())
	require.Equal(t, amount.String(), result.Leftover.String())
	require.Equal(t, amount.String(), f.state.Pools.Get(types.PoolCommunity).Balance.String())
	require.NoError(t, f.state.Check())
}

func TestLevelSkipsLowerTiers(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.join("p", "root", 1)
	f.join("q", "p", 2)

	amount := types.Units(10)
	f.state.App.AddInflow(amount)
	f.engine.Level(addr("q"), 2, amount)

	require.Equal(t, "0", f.balance("p"))
	require.Equal(t, types.Units(1).String(), f.balance("root"))
	require.Equal(t, types.Units(9).String(), f.state.App.Totals().Retained.String())
	require.NoError(t, f.state.Check())
}

func TestCreditRespectsEarningsCap(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.join("c", "root", 1)

	f.state.App.AddInflow(types.Units(151))
	credited := f.engine.Credit(events.KindDirect, addr("root"), addr("c"), types.Units(150))
	require.Equal(t, types.Units(120).String(), credited.String())

	again := f.engine.Credit(events.KindDirect, addr("root"), addr("c"), types.Units(1))
	require.Equal(t, "0", again.String())

	account := f.state.Accounts.GetAccount(addr("c"))
	require.Equal(t, account.GetEarningsCap().String(), account.GetTotalEarnings().String())
	require.Equal(t, types.Units(31).String(), f.state.App.Totals().Discarded.String())

	capEvents := f.pending(events.TypeEarningsCapReachedEvent)
	require.Len(t, capEvents, 2)
	require.Equal(t, types.Units(30).String(), capEvents[0].(*events.EarningsCapReachedEvent).Discarded)

	require.NoError(t, f.state.Check())
	require.NoError(t, f.state.Audit())
}

func TestReinvestSplit(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.join("u", "root", 1)

	amount := types.Units(30)
	f.state.App.AddInflow(amount)
	result, err := f.engine.Reinvest(addr("u"), amount)
	require.NoError(t, err)

	require.Equal(t, types.Units(15).String(), result.Level.String())
	require.Equal(t, tenths(75).String(), result.Upline.String())
	require.Equal(t, tenths(75).String(), result.Pool.String())

	// level share 1.5 plus the whole upline part
	require.Equal(t, helpers.Sum(tenths(15), tenths(75)).String(), f.balance("root"))
	require.Equal(t, tenths(75).String(), f.state.Pools.Get(types.PoolCommunity).Balance.String())
	require.NoError(t, f.state.Check())
}
