package state

import (
	"testing"

	"github.com/MinterTeam/incentives-engine/core/events"
	"github.com/MinterTeam/incentives-engine/core/types"
	"github.com/stretchr/testify/require"
	db "github.com/tendermint/tm-db"
)

func testAppState() types.AppState {
	return types.AppState{
		GenesisTime:       1000,
		Admins:            []types.Address{types.NameToAddress("admin")},
		PlatformRecipient: types.NameToAddress("platform"),
		Root:              types.NameToAddress("root"),
		RootLevel:         2,
		Packages: []types.Package{
			{Level: 1, Price: types.Units(30).String(), DirectBP: 4000, LevelBP: 1000, UplineBP: 1000, LeaderBP: 1000, HelpBP: 3000},
			{Level: 2, Price: types.Units(60).String(), DirectBP: 4000, LevelBP: 1000, UplineBP: 1000, LeaderBP: 1000, HelpBP: 2000, ClubBP: 1000},
		},
		Guard: types.Guard{BreakerThreshold: types.Units(1000).String()},
	}
}

func newTestState(t *testing.T) (*State, db.DB) {
	t.Helper()
	memDB := db.NewMemDB()
	s, err := NewState(0, memDB, events.NewEventsStore(db.NewMemDB()), 1024, 0)
	require.NoError(t, err)
	require.NoError(t, s.Import(testAppState(), types.DefaultParams()))
	_, _, err = s.Commit()
	require.NoError(t, err)

	return s, memDB
}

func TestStateImportCreatesRoot(t *testing.T) {
	t.Parallel()
	s, _ := newTestState(t)

	root := s.Accounts.GetAccount(types.NameToAddress("root"))
	require.NotNil(t, root)
	require.Equal(t, uint32(1), root.GetID())
	require.Equal(t, uint32(2), root.GetPackageLevel())
	require.Equal(t, types.Units(240).String(), root.GetEarningsCap().String())
	require.Equal(t, uint64(7000), root.GetWithdrawalRate())
	require.True(t, s.App.IsAdmin(types.NameToAddress("admin")))
	require.False(t, s.App.IsAdmin(types.NameToAddress("root")))
	require.Equal(t, uint32(2), s.Packages.Count())
	require.Equal(t, types.Units(1000).String(), s.Guard.GetBreakerThreshold().String())
	require.NoError(t, s.Audit())
}

func TestStateRejectsBrokenTierTable(t *testing.T) {
	t.Parallel()
	s, err := NewState(0, db.NewMemDB(), nil, 1024, 0)
	require.NoError(t, err)

	genesis := testAppState()
	genesis.Packages[1].ClubBP = 999
	require.Error(t, s.Import(genesis, types.DefaultParams()))
}

func TestStateRollback(t *testing.T) {
	t.Parallel()
	s, _ := newTestState(t)
	root := types.NameToAddress("root")

	s.App.AddInflow(types.Units(5))
	s.Accounts.AddBalance(root, types.Units(5))
	s.Pools.AddBalance(types.PoolClub, types.Units(1))
	s.Guard.SetPaused(true)
	s.events.AddEvent(&events.PoolAccruedEvent{Pool: types.PoolClub.String(), Amount: "1"})
	require.Error(t, s.Check())

	s.Rollback()

	require.Equal(t, "0", s.Accounts.GetBalance(root).String())
	require.Equal(t, "0", s.Pools.Get(types.PoolClub).Balance.String())
	require.False(t, s.Guard.IsPaused())
	require.Equal(t, "0", s.App.Totals().Inflow.String())
	require.Empty(t, s.events.Pending())
	require.NoError(t, s.Check())
	require.NoError(t, s.Audit())
}

func TestStateCommitAndExport(t *testing.T) {
	t.Parallel()
	s, memDB := newTestState(t)
	root := types.NameToAddress("root")

	s.App.AddInflow(types.Units(10))
	s.Accounts.AddBalance(root, types.Units(6))
	s.Pools.AddBalance(types.PoolCommunity, types.Units(4))
	require.NoError(t, s.Check())
	_, version, err := s.Commit()
	require.NoError(t, err)
	require.Equal(t, int64(2), version)
	require.NoError(t, s.Audit())

	reopened, err := NewState(0, memDB, nil, 1024, 0)
	require.NoError(t, err)
	require.Equal(t, types.Units(6).String(), reopened.Accounts.GetBalance(root).String())

	exported, err := s.Export()
	require.NoError(t, err)
	require.Len(t, exported.Accounts, 1)
	require.Equal(t, types.Units(10).String(), exported.Totals.Inflow)

	imported, err := NewState(0, db.NewMemDB(), nil, 1024, 0)
	require.NoError(t, err)
	require.NoError(t, imported.Import(exported, types.DefaultParams()))
	require.Equal(t, types.Units(4).String(), imported.Pools.Get(types.PoolCommunity).Balance.String())
}

func TestStateAuditDetectsLeak(t *testing.T) {
	t.Parallel()
	s, _ := newTestState(t)

	s.Accounts.AddBalance(types.NameToAddress("root"), types.Units(1))
	require.Error(t, s.Audit())
}
