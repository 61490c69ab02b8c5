package withdrawal

import (
	"math/big"
	"testing"

	"github.com/MinterTeam/incentives-engine/core/commissions"
	"github.com/MinterTeam/incentives-engine/core/events"
	"github.com/MinterTeam/incentives-engine/core/placement"
	"github.com/MinterTeam/incentives-engine/core/state"
	"github.com/MinterTeam/incentives-engine/core/types"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"
	db "github.com/tendermint/tm-db"
)

func tenths(n int64) *big.Int {
	return big.NewInt(0).Quo(types.Units(n), big.NewInt(10))
}

func TestCalculate(t *testing.T) {
	t.Parallel()
	split := Calculate(types.Units(100), 7000, 500)

	require.Equal(t, types.Units(70).String(), split.Withdrawable.String())
	require.Equal(t, types.Units(30).String(), split.Reinvest.String())
	require.Equal(t, tenths(35).String(), split.Fee.String())
	require.Equal(t, tenths(665).String(), split.Net.String())
}

func TestProcessorWithdraw(t *testing.T) {
	t.Parallel()
	params := types.DefaultParams()
	root := types.NameToAddress("root")
	platform := types.NameToAddress("platform")

	st, err := state.NewState(0, db.NewMemDB(), events.NewEventsStore(db.NewMemDB()), 1024, 0)
	require.NoError(t, err)
	require.NoError(t, st.Import(types.AppState{
		GenesisTime:       1000,
		Admins:            []types.Address{types.NameToAddress("admin")},
		PlatformRecipient: platform,
		Root:              root,
		RootLevel:         1,
		Packages: []types.Package{
			{Level: 1, Price: types.Units(100).String(), DirectBP: 4000, LevelBP: 1000, UplineBP: 1000, LeaderBP: 1000, HelpBP: 3000},
		},
	}, params))
	_, _, err = st.Commit()
	require.NoError(t, err)

	pl, err := placement.NewEngine(params, clockwork.NewFakeClock())
	require.NoError(t, err)
	engine := commissions.NewEngine(st, pl, params, nil)
	processor := NewProcessor(st, engine, params, nil)

	st.Accounts.Create(types.NameToAddress("u"), 2, root, 1, 1000)
	st.Accounts.AddInvestment(types.NameToAddress("u"), types.Units(100), types.Units(400))
	st.App.SetAccountsCount(2)
	st.App.AddInflow(types.Units(100))
	st.Accounts.AddBalance(types.NameToAddress("u"), types.Units(100))
	_, _, err = st.Commit()
	require.NoError(t, err)

	split, payouts, err := processor.Withdraw(types.NameToAddress("u"), types.Units(100), 3)
	require.NoError(t, err)
	require.Equal(t, uint64(7000), split.RateBP)

	require.Len(t, payouts, 2)
	require.Equal(t, types.NameToAddress("u"), payouts[0].To)
	require.Equal(t, tenths(665).String(), payouts[0].Amount.String())
	require.Equal(t, platform, payouts[1].To)
	require.Equal(t, tenths(35).String(), payouts[1].Amount.String())

	require.Equal(t, "0", st.Accounts.GetBalance(types.NameToAddress("u")).String())
	require.Equal(t, types.Units(100).String(), st.Accounts.GetAccount(types.NameToAddress("u")).DailyWithdrawnOn(3).String())
	require.Equal(t, types.Units(100).String(), st.Guard.GetGlobalDailyWithdrawn(3).String())

	// level 15 / 10 to root, upline 7.5 to root, 7.5 to the community pool
	require.Equal(t, tenths(90).String(), st.Accounts.GetBalance(root).String())
	require.Equal(t, tenths(75).String(), st.Pools.Get(types.PoolCommunity).Balance.String())
	require.Equal(t, tenths(135).String(), st.App.Totals().Retained.String())
	require.Equal(t, types.Units(70).String(), st.App.Totals().Withdrawn.String())

	require.NoError(t, st.Check())
	require.NoError(t, st.Audit())
}
