package pools

import (
	"math/big"
	"testing"

	"github.com/MinterTeam/incentives-engine/core/state/bus"
	"github.com/MinterTeam/incentives-engine/core/state/checker"
	"github.com/MinterTeam/incentives-engine/core/types"
	"github.com/MinterTeam/incentives-engine/tree"
	"github.com/stretchr/testify/require"
	db "github.com/tendermint/tm-db"
)

func TestPoolsCycle(t *testing.T) {
	t.Parallel()
	mutableTree, err := tree.NewMutableTree(0, db.NewMemDB(), 1024)
	require.NoError(t, err)

	b := bus.NewBus()
	c := checker.NewChecker(b)
	pools := NewPools(b, mutableTree.GetLastImmutable())

	pools.AddBalance(types.PoolCommunity, big.NewInt(100))
	require.Equal(t, "100", pools.Get(types.PoolCommunity).Balance.String())

	recipients := []types.Address{types.NameToAddress("a"), types.NameToAddress("b"), types.NameToAddress("c")}
	pools.StartCycle(types.PoolCommunity, &Cursor{
		BatchSize:             2,
		SnapshotTotal:         big.NewInt(100),
		SnapshotEligibleCount: 3,
		Recipients:            recipients,
		Shares:                []*big.Int{big.NewInt(33)},
		Escrow:                big.NewInt(0),
		StartedAt:             10,
	})

	require.Equal(t, "0", pools.Get(types.PoolCommunity).Balance.String())
	require.Equal(t, "100", pools.TotalEscrow().String())

	pools.AddBalance(types.PoolCommunity, big.NewInt(7))
	pools.PayFromEscrow(types.PoolCommunity, big.NewInt(66))
	pools.SetCursorIndex(types.PoolCommunity, 2)

	_, _, err = mutableTree.Commit(pools)
	require.NoError(t, err)

	reloaded := NewPools(b, mutableTree.GetLastImmutable())
	cursor := reloaded.GetCursor(types.PoolCommunity)
	require.True(t, cursor.InProgress)
	require.Equal(t, uint64(2), cursor.Index)
	require.Equal(t, recipients, cursor.Recipients)
	require.Equal(t, "34", cursor.Escrow.String())
	require.Equal(t, "33", cursor.Share(2).String())
	require.Equal(t, "7", reloaded.Get(types.PoolCommunity).Balance.String())

	reloaded.PayFromEscrow(types.PoolCommunity, big.NewInt(33))
	rest := reloaded.FinishCycle(types.PoolCommunity, 99)
	require.Equal(t, "1", rest.String())

	model := reloaded.Get(types.PoolCommunity)
	require.Equal(t, uint64(99), model.LastDistributionTime)
	require.Equal(t, "100", model.TotalDistributed.String())
	require.False(t, reloaded.GetCursor(types.PoolCommunity).InProgress)
	require.Equal(t, "0", reloaded.TotalEscrow().String())

	// credits: 100 + 7; debits: 66 + 33 + 1
	require.Equal(t, "100", c.Moved().String())
}

func TestPoolsExportImport(t *testing.T) {
	t.Parallel()
	b := bus.NewBus()
	checker.NewChecker(b)
	pools := NewPools(b, nil)

	pools.AddBalance(types.PoolLeadership, big.NewInt(50))
	pools.StartCycle(types.PoolLeadership, &Cursor{
		BatchSize:     1,
		SnapshotTotal: big.NewInt(50),
		Recipients:    []types.Address{types.NameToAddress("gold"), types.NameToAddress("silver")},
		Ranks:         []uint32{1, 0},
		Shares:        []*big.Int{big.NewInt(20), big.NewInt(30)},
	})
	pools.PayFromEscrow(types.PoolLeadership, big.NewInt(30))
	pools.SetCursorIndex(types.PoolLeadership, 1)
	pools.AddBalance(types.PoolLeadership, big.NewInt(5))

	state := new(types.AppState)
	pools.Export(state)
	require.Len(t, state.Pools, len(types.PoolTypes))

	imported := NewPools(b, nil)
	for _, pool := range state.Pools {
		require.NoError(t, imported.Import(pool))
	}

	cursor := imported.GetCursor(types.PoolLeadership)
	require.True(t, cursor.InProgress)
	require.Equal(t, uint64(1), cursor.Index)
	require.Equal(t, "50", cursor.SnapshotTotal.String())
	require.Equal(t, "20", cursor.Escrow.String())
	require.Equal(t, "20", cursor.Share(1).String())
	require.Equal(t, "5", imported.Get(types.PoolLeadership).Balance.String())
}

func TestStartCycleWithoutEscrow(t *testing.T) {
	t.Parallel()
	b := bus.NewBus()
	checker.NewChecker(b)
	pools := NewPools(b, nil)

	pools.AddBalance(types.PoolClub, big.NewInt(40))
	pools.StartCycle(types.PoolClub, &Cursor{
		BatchSize:     10,
		SnapshotTotal: big.NewInt(40),
		Recipients:    []types.Address{types.NameToAddress("club")},
		Shares:        []*big.Int{big.NewInt(40)},
	})
	require.Equal(t, "40", pools.GetCursor(types.PoolClub).Escrow.String())
	require.Equal(t, "0", pools.Get(types.PoolClub).Balance.String())

	pools.StartCycle(types.PoolAlgorithmic, &Cursor{BatchSize: 10})
	cursor := pools.GetCursor(types.PoolAlgorithmic)
	require.True(t, cursor.InProgress)
	require.Equal(t, "0", cursor.SnapshotTotal.String())
	require.Equal(t, "0", cursor.Escrow.String())
}
