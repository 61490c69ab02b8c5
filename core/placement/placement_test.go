package placement

import (
	"fmt"
	"testing"
	"time"

	"github.com/MinterTeam/incentives-engine/core/state/accounts"
	"github.com/MinterTeam/incentives-engine/core/state/bus"
	"github.com/MinterTeam/incentives-engine/core/state/checker"
	"github.com/MinterTeam/incentives-engine/core/types"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"
)

type network struct {
	accounts *accounts.Accounts
	engine   *Engine
	nextID   uint32
}

func newNetwork(t *testing.T, params types.Params, clock clockwork.Clock) *network {
	t.Helper()
	b := bus.NewBus()
	checker.NewChecker(b)

	engine, err := NewEngine(params, clock)
	require.NoError(t, err)

	n := &network{accounts: accounts.NewAccounts(b, nil), engine: engine, nextID: 1}
	n.accounts.Create(addr("root"), n.nextID, types.Address{}, 1, 0)
	return n
}

func addr(name string) types.Address {
	return types.NameToAddress(name)
}

func (n *network) register(t *testing.T, name string, sponsor string) error {
	t.Helper()
	n.nextID++
	n.accounts.Create(addr(name), n.nextID, addr(sponsor), 1, 0)
	n.accounts.AddDirectReferral(addr(sponsor), addr(name))
	if err := n.engine.Place(n.accounts, addr(name), addr(sponsor)); err != nil {
		return err
	}
	n.engine.PropagateTeamSize(n.accounts, addr(name))
	return nil
}

func TestMatrixPlacement(t *testing.T) {
	t.Parallel()
	n := newNetwork(t, types.DefaultParams(), clockwork.NewFakeClock())

	for _, name := range []string{"a", "b", "c", "d", "e"} {
		require.NoError(t, n.register(t, name, "root"))
	}

	_, left, right := n.accounts.GetAccount(addr("root")).GetMatrix()
	require.Equal(t, addr("a"), left)
	require.Equal(t, addr("b"), right)

	parent, left, right := n.accounts.GetAccount(addr("a")).GetMatrix()
	require.Equal(t, addr("root"), parent)
	require.Equal(t, addr("c"), left)
	require.Equal(t, addr("d"), right)

	parent, left, _ = n.accounts.GetAccount(addr("c")).GetMatrix()
	require.Equal(t, addr("a"), parent)
	require.Equal(t, addr("e"), left)

	// the matrix is independent of the sponsor forest
	require.Equal(t, addr("root"), n.accounts.GetAccount(addr("e")).GetSponsor())
	require.Equal(t, uint64(5), n.accounts.GetAccount(addr("root")).GetTeamSize())
}

func TestDeepMatrixPlacement(t *testing.T) {
	t.Parallel()
	n := newNetwork(t, types.DefaultParams(), clockwork.NewFakeClock())

	for i := 1; i <= 3000; i++ {
		require.NoError(t, n.register(t, fmt.Sprintf("m-%d", i), "root"))
	}

	// m-(2k-1) holds m-(2k+1) on the left and m-(2k+2) on the right
	parent, _, _ := n.accounts.GetAccount(addr("m-3000")).GetMatrix()
	require.Equal(t, addr("m-2997"), parent)
	_, left, right := n.accounts.GetAccount(addr("m-2997")).GetMatrix()
	require.Equal(t, addr("m-2999"), left)
	require.Equal(t, addr("m-3000"), right)
	require.Equal(t, uint64(3000), n.accounts.GetAccount(addr("root")).GetTeamSize())
}

func TestMatrixCycleIsReported(t *testing.T) {
	t.Parallel()
	n := newNetwork(t, types.DefaultParams(), clockwork.NewFakeClock())

	for _, name := range []string{"a", "b", "c", "d"} {
		require.NoError(t, n.register(t, name, "root"))
	}
	n.accounts.SetMatrixChild(addr("a"), addr("root"), false)

	_, _, err := n.engine.FindMatrixSlot(n.accounts, addr("root"))
	require.Error(t, err)
}

func TestSponsorChainIsBoundedAndAcyclic(t *testing.T) {
	t.Parallel()
	n := newNetwork(t, types.DefaultParams(), clockwork.NewFakeClock())

	sponsor := "root"
	for i := 0; i < 40; i++ {
		name := fmt.Sprintf("level-%d", i)
		require.NoError(t, n.register(t, name, sponsor))
		sponsor = name
	}

	chain := n.engine.SponsorChain(n.accounts, addr("level-39"), 30)
	require.Len(t, chain, 30)
	require.Equal(t, addr("level-38"), chain[0])
	require.Equal(t, addr("level-9"), chain[29])

	full := n.engine.SponsorChain(n.accounts, addr("level-39"), 1000)
	require.Len(t, full, 40)
	require.Equal(t, addr("root"), full[39])

	seen := map[types.Address]struct{}{}
	for _, a := range full {
		_, dup := seen[a]
		require.False(t, dup)
		seen[a] = struct{}{}
	}

	require.Empty(t, n.engine.SponsorChain(n.accounts, addr("root"), 30))
	require.Empty(t, n.engine.SponsorChain(n.accounts, addr("unknown"), 30))
}

func TestTeamSizeDepthLimit(t *testing.T) {
	t.Parallel()
	n := newNetwork(t, types.DefaultParams(), clockwork.NewFakeClock())

	sponsor := "root"
	for i := 0; i < 35; i++ {
		name := fmt.Sprintf("level-%d", i)
		require.NoError(t, n.register(t, name, sponsor))
		sponsor = name
	}

	// level-34 is 35 links below root, only the nearest 30 ancestors count it
	require.Equal(t, uint64(30), n.accounts.GetAccount(addr("root")).GetTeamSize())
	require.Equal(t, uint64(30), n.accounts.GetAccount(addr("level-0")).GetTeamSize())
	require.Equal(t, uint64(29), n.accounts.GetAccount(addr("level-5")).GetTeamSize())
	require.Equal(t, uint64(0), n.accounts.GetAccount(addr("level-34")).GetTeamSize())
}

func TestNetworkSizeCache(t *testing.T) {
	t.Parallel()
	clock := clockwork.NewFakeClock()
	n := newNetwork(t, types.DefaultParams(), clock)

	require.NoError(t, n.register(t, "a", "root"))
	require.NoError(t, n.register(t, "b", "root"))
	require.NoError(t, n.register(t, "c", "a"))
	require.Equal(t, uint64(3), n.engine.NetworkSize(n.accounts, addr("root")))

	require.NoError(t, n.register(t, "d", "c"))
	require.Equal(t, uint64(3), n.engine.NetworkSize(n.accounts, addr("root")))

	clock.Advance(59 * time.Minute)
	require.Equal(t, uint64(3), n.engine.NetworkSize(n.accounts, addr("root")))

	clock.Advance(time.Minute)
	require.Equal(t, uint64(4), n.engine.NetworkSize(n.accounts, addr("root")))
	require.Equal(t, uint64(2), n.engine.NetworkSize(n.accounts, addr("a")))
}

func TestNetworkSizeLimits(t *testing.T) {
	t.Parallel()
	params := types.DefaultParams()
	params.NetworkSizeMaxVisited = 5
	n := newNetwork(t, params, clockwork.NewFakeClock())

	for i := 0; i < 10; i++ {
		require.NoError(t, n.register(t, fmt.Sprintf("direct-%d", i), "root"))
	}

	require.Equal(t, uint64(5), n.engine.NetworkSize(n.accounts, addr("root")))
}
