package guard

import (
	"math/big"
	"testing"

	"github.com/MinterTeam/incentives-engine/core/types"
	"github.com/MinterTeam/incentives-engine/tree"
	"github.com/stretchr/testify/require"
	db "github.com/tendermint/tm-db"
)

func TestGuardSlots(t *testing.T) {
	t.Parallel()
	mutableTree, err := tree.NewMutableTree(0, db.NewMemDB(), 1024)
	require.NoError(t, err)

	g := NewGuard(mutableTree.GetLastImmutable())
	alice := types.NameToAddress("alice")

	require.False(t, g.SenderSlotUsed(alice, 5))
	g.UseSenderSlot(alice, 5)
	require.True(t, g.SenderSlotUsed(alice, 5))
	require.False(t, g.SenderSlotUsed(alice, 6))

	require.False(t, g.PlatformSlotUsed(0))
	g.UsePlatformSlot(0)
	require.True(t, g.PlatformSlotUsed(0))

	_, _, err = mutableTree.Commit(g)
	require.NoError(t, err)

	reloaded := NewGuard(mutableTree.GetLastImmutable())
	require.True(t, reloaded.SenderSlotUsed(alice, 5))
	require.True(t, reloaded.PlatformSlotUsed(0))
	require.False(t, reloaded.SenderSlotUsed(types.NameToAddress("bob"), 5))
}

func TestGuardBreaker(t *testing.T) {
	t.Parallel()
	g := NewGuard(nil)

	require.False(t, g.BreakerExceeded(types.Units(1000)))

	g.SetBreakerThreshold(types.Units(10))
	require.True(t, g.BreakerExceeded(types.Units(11)))
	require.False(t, g.BreakerExceeded(types.Units(10)))
	require.False(t, g.BreakerExceeded(types.Units(9)))
}

func TestGuardGlobalDailyWithdrawn(t *testing.T) {
	t.Parallel()
	mutableTree, err := tree.NewMutableTree(0, db.NewMemDB(), 1024)
	require.NoError(t, err)

	g := NewGuard(mutableTree.GetLastImmutable())
	g.SetWithdrawalLimits(big.NewInt(10), big.NewInt(100))
	g.AddGlobalDailyWithdrawn(3, big.NewInt(40))
	g.AddGlobalDailyWithdrawn(3, big.NewInt(2))
	g.SetPaused(true)

	_, _, err = mutableTree.Commit(g)
	require.NoError(t, err)

	reloaded := NewGuard(mutableTree.GetLastImmutable())
	require.True(t, reloaded.IsPaused())
	require.Equal(t, "42", reloaded.GetGlobalDailyWithdrawn(3).String())
	require.Equal(t, "0", reloaded.GetGlobalDailyWithdrawn(4).String())
	require.Equal(t, "100", reloaded.GetGlobalDailyWithdrawalLimit().String())

	reloaded.AddGlobalDailyWithdrawn(4, big.NewInt(1))
	require.Equal(t, "1", reloaded.GetGlobalDailyWithdrawn(4).String())
}
