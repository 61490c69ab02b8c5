package types

import (
	"fmt"
	"math/big"
	"sort"
	"time"
)

// RateTier unlocks RateBP for accounts with at least MinDirects direct referrals.
type RateTier struct {
	MinDirects uint64 `json:"min_directs"`
	RateBP     uint64 `json:"rate_bp"`
}

// Params are the engine constants. They are fixed for the life of a state;
// the administrative knobs (breaker threshold, limits) live in guard state.
type Params struct {
	CapMultiplier uint64

	UplineDepth   int
	LevelDepth    int
	TeamSizeDepth int

	NetworkSizeMaxQueue   int
	NetworkSizeMaxVisited int
	NetworkSizeCacheTTL   time.Duration
	NetworkSizeCacheSize  int

	BatchSize uint64

	MinWithdrawal       *big.Int
	MaxSingleWithdrawal *big.Int
	PlatformFeeBP       uint64
	ReinvestLevelBP     uint64
	ReinvestUplineBP    uint64
	WithdrawalRates     []RateTier

	DistributionIntervals map[PoolType]time.Duration

	LeaderSilverDirects uint64
	LeaderGoldDirects   uint64
	LeaderGoldShareBP   uint64
	ClubMinLevel        uint32
	AlgorithmicMinTeam  uint64
}

// DefaultParams returns the parameter set the platform launched with.
func DefaultParams() Params {
	return Params{
		CapMultiplier: 4,

		UplineDepth:   30,
		LevelDepth:    10,
		TeamSizeDepth: 30,

		NetworkSizeMaxQueue:   1000,
		NetworkSizeMaxVisited: 10000,
		NetworkSizeCacheTTL:   time.Hour,
		NetworkSizeCacheSize:  4096,

		BatchSize: 50,

		MinWithdrawal:       Units(10),
		MaxSingleWithdrawal: Units(10000),
		PlatformFeeBP:       500,
		ReinvestLevelBP:     5000,
		ReinvestUplineBP:    2500,
		WithdrawalRates: []RateTier{
			{MinDirects: 0, RateBP: 7000},
			{MinDirects: 5, RateBP: 7500},
			{MinDirects: 20, RateBP: 8000},
		},

		DistributionIntervals: map[PoolType]time.Duration{
			PoolLeadership:  7 * 24 * time.Hour,
			PoolCommunity:   24 * time.Hour,
			PoolClub:        30 * 24 * time.Hour,
			PoolAlgorithmic: 24 * time.Hour,
		},

		LeaderSilverDirects: 10,
		LeaderGoldDirects:   25,
		LeaderGoldShareBP:   6000,
		ClubMinLevel:        6,
		AlgorithmicMinTeam:  100,
	}
}

// Validate reports the first inconsistent parameter.
func (p Params) Validate() error {
	if p.CapMultiplier == 0 {
		return fmt.Errorf("cap multiplier must be positive")
	}
	if p.UplineDepth <= 0 || p.LevelDepth <= 0 || p.TeamSizeDepth <= 0 {
		return fmt.Errorf("walk depths must be positive")
	}
	if p.BatchSize == 0 {
		return fmt.Errorf("batch size must be positive")
	}
	if p.MinWithdrawal == nil || p.MaxSingleWithdrawal == nil || p.MinWithdrawal.Cmp(p.MaxSingleWithdrawal) > 0 {
		return fmt.Errorf("withdrawal bounds are inconsistent")
	}
	if p.PlatformFeeBP > BasisPoints {
		return fmt.Errorf("platform fee above 100%%")
	}
	if p.ReinvestLevelBP+p.ReinvestUplineBP > BasisPoints {
		return fmt.Errorf("reinvest split above 100%%")
	}
	if p.LeaderGoldShareBP > BasisPoints {
		return fmt.Errorf("leader gold share above 100%%")
	}
	if p.LeaderGoldDirects < p.LeaderSilverDirects {
		return fmt.Errorf("leader gold threshold below silver threshold")
	}
	if len(p.WithdrawalRates) == 0 {
		return fmt.Errorf("withdrawal rate tiers are empty")
	}
	rates := append([]RateTier(nil), p.WithdrawalRates...)
	sort.Slice(rates, func(i, j int) bool { return rates[i].MinDirects < rates[j].MinDirects })
	if rates[0].MinDirects != 0 {
		return fmt.Errorf("withdrawal rate tiers must start at zero referrals")
	}
	for _, r := range rates {
		if r.RateBP == 0 || r.RateBP > BasisPoints {
			return fmt.Errorf("withdrawal rate %d out of range", r.RateBP)
		}
	}
	for _, pool := range PoolTypes {
		if _, ok := p.DistributionIntervals[pool]; !ok {
			return fmt.Errorf("missing distribution interval for %s pool", pool)
		}
	}
	return nil
}

// Units converts whole reference units to base units (multiplies by 1e18).
func Units(n int64) *big.Int {
	p := big.NewInt(10)
	p.Exp(p, big.NewInt(18), nil)
	return p.Mul(p, big.NewInt(n))
}

// WithdrawalRateFor returns the withdrawal rate unlocked by the given number
// of direct referrals: the rate of the highest tier whose threshold is met.
func (p Params) WithdrawalRateFor(directs uint64) uint64 {
	var rate, best uint64
	found := false
	for _, tier := range p.WithdrawalRates {
		if directs >= tier.MinDirects && (!found || tier.MinDirects >= best) {
			rate, best, found = tier.RateBP, tier.MinDirects, true
		}
	}

	return rate
}
