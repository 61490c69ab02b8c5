package genesis

import (
	"encoding/json"
	"fmt"
	"math/big"
	"os"
	"time"

	"github.com/MinterTeam/incentives-engine/core/types"
	tmos "github.com/tendermint/tendermint/libs/os"
)

// basePrice is the level 1 package price in whole reference units; every
// following level doubles it.
const (
	basePrice = 30
	levels    = 10
)

// Rates shared by every default package, in basis points.
const (
	directBP = 4000
	levelBP  = 2000
	uplineBP = 1500
	leaderBP = 1000
	helpBP   = 1000
	clubBP   = 500
)

// DefaultAppState returns an initial state with the default package table.
// The admin also receives platform fees until a recipient is configured.
func DefaultAppState(genesisTime time.Time, admin types.Address, root types.Address) types.AppState {
	packages := make([]types.Package, 0, levels)
	price := types.Units(basePrice)
	for level := uint32(1); level <= levels; level++ {
		packages = append(packages, types.Package{
			Level:    level,
			Price:    price.String(),
			DirectBP: directBP,
			LevelBP:  levelBP,
			UplineBP: uplineBP,
			LeaderBP: leaderBP,
			HelpBP:   helpBP,
			ClubBP:   clubBP,
		})
		price = big.NewInt(0).Lsh(price, 1)
	}

	return types.AppState{
		GenesisTime:       uint64(genesisTime.Unix()),
		Admins:            []types.Address{admin},
		PlatformRecipient: admin,
		Root:              root,
		RootLevel:         levels,
		Packages:          packages,
		Guard: types.Guard{
			BreakerThreshold:           types.Units(100000).String(),
			DailyWithdrawalLimit:       types.Units(1000).String(),
			GlobalDailyWithdrawalLimit: types.Units(50000).String(),
		},
	}
}

// Load reads and verifies the genesis document at path.
func Load(path string) (types.AppState, error) {
	var appState types.AppState

	data, err := os.ReadFile(path)
	if err != nil {
		return appState, err
	}

	if err := json.Unmarshal(data, &appState); err != nil {
		return appState, fmt.Errorf("error reading genesis from %s: %w", path, err)
	}

	if err := appState.Verify(); err != nil {
		return appState, fmt.Errorf("invalid genesis %s: %w", path, err)
	}

	return appState, nil
}

// Save writes appState to path as indented JSON.
func Save(path string, appState types.AppState) error {
	data, err := json.MarshalIndent(appState, "", "  ")
	if err != nil {
		return err
	}

	return tmos.WriteFile(path, data, 0644)
}
