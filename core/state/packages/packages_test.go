package packages

import (
	"testing"

	"github.com/MinterTeam/incentives-engine/core/types"
	"github.com/MinterTeam/incentives-engine/tree"
	"github.com/stretchr/testify/require"
	db "github.com/tendermint/tm-db"
)

func TestPackagesRatesSumToHundredPercent(t *testing.T) {
	t.Parallel()
	packages := NewPackages(nil)

	err := packages.Create(&Model{Level: 1, Price: types.Units(30), DirectBP: 4000, LevelBP: 1000, UplineBP: 1000, LeaderBP: 1000, HelpBP: 3000})
	require.NoError(t, err)

	err = packages.Create(&Model{Level: 2, Price: types.Units(60), DirectBP: 4000, LevelBP: 1000, UplineBP: 1000, LeaderBP: 1000, HelpBP: 3000, ClubBP: 1})
	require.Error(t, err)
	require.Equal(t, uint32(1), packages.Count())
}

func TestPackagesCommit(t *testing.T) {
	t.Parallel()
	mutableTree, err := tree.NewMutableTree(0, db.NewMemDB(), 1024)
	require.NoError(t, err)

	packages := NewPackages(mutableTree.GetLastImmutable())
	for level := uint32(3); level >= 1; level-- {
		require.NoError(t, packages.Create(&Model{Level: level, Price: types.Units(int64(level) * 10), DirectBP: 5000, HelpBP: 5000}))
	}

	_, _, err = mutableTree.Commit(packages)
	require.NoError(t, err)

	reloaded := NewPackages(mutableTree.GetLastImmutable())
	require.Equal(t, uint32(3), reloaded.Count())
	require.Equal(t, types.Units(20).String(), reloaded.Get(2).Price.String())
	require.Nil(t, reloaded.Get(4))

	all := reloaded.All()
	for i, model := range all {
		require.Equal(t, uint32(i+1), model.Level)
		require.Equal(t, uint64(types.BasisPoints), model.RatesSum())
	}

	state := new(types.AppState)
	reloaded.Export(state)
	require.Len(t, state.Packages, 3)
	require.Equal(t, uint32(1), state.Packages[0].Level)
}
