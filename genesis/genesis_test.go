package genesis

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/MinterTeam/incentives-engine/core/types"
	"github.com/stretchr/testify/require"
)

func TestDefaultAppStateIsValid(t *testing.T) {
	admin, root := types.NameToAddress("admin"), types.NameToAddress("root")
	appState := DefaultAppState(time.Unix(1700000000, 0), admin, root)

	require.NoError(t, appState.Verify())
	require.Len(t, appState.Packages, levels)
	require.Equal(t, types.Units(30).String(), appState.Packages[0].Price)
	require.Equal(t, types.Units(60).String(), appState.Packages[1].Price)
	require.Equal(t, uint32(levels), appState.RootLevel)
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "genesis.json")
	appState := DefaultAppState(time.Unix(1700000000, 0), types.NameToAddress("admin"), types.NameToAddress("root"))

	require.NoError(t, Save(path, appState))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, appState, loaded)
}

func TestLoadRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "genesis.json")
	appState := DefaultAppState(time.Unix(1700000000, 0), types.NameToAddress("admin"), types.NameToAddress("root"))
	appState.Packages[3].ClubBP++

	require.NoError(t, Save(path, appState))

	_, err := Load(path)
	require.Error(t, err)
}
