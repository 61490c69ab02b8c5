package types

import (
	"fmt"
	"math/big"
)

// AppState is the genesis (and export) document of the engine.
type AppState struct {
	GenesisTime       uint64    `json:"genesis_time"`
	Admins            []Address `json:"admins"`
	PlatformRecipient Address   `json:"platform_recipient"`
	Root              Address   `json:"root"`
	RootLevel         uint32    `json:"root_level"`
	Packages          []Package `json:"packages"`
	Guard             Guard     `json:"guard"`
	Accounts          []Account `json:"accounts,omitempty"`
	Pools             []Pool    `json:"pools,omitempty"`
	Totals            *Totals   `json:"totals,omitempty"`
}

type Package struct {
	Level    uint32 `json:"level"`
	Price    string `json:"price"`
	DirectBP uint64 `json:"direct_bp"`
	LevelBP  uint64 `json:"level_bp"`
	UplineBP uint64 `json:"upline_bp"`
	LeaderBP uint64 `json:"leader_bp"`
	HelpBP   uint64 `json:"help_bp"`
	ClubBP   uint64 `json:"club_bp"`
}

// RatesSum returns the sum of the six bonus rates.
func (p Package) RatesSum() uint64 {
	return p.DirectBP + p.LevelBP + p.UplineBP + p.LeaderBP + p.HelpBP + p.ClubBP
}

type Guard struct {
	Paused                     bool   `json:"paused"`
	BreakerTriggered           bool   `json:"breaker_triggered"`
	BreakerThreshold           string `json:"breaker_threshold"`
	DailyWithdrawalLimit       string `json:"daily_withdrawal_limit"`
	GlobalDailyWithdrawalLimit string `json:"global_daily_withdrawal_limit"`
	GlobalDailyWithdrawn       string `json:"global_daily_withdrawn,omitempty"`
	GlobalLastResetDay         uint64 `json:"global_last_reset_day,omitempty"`
}

type Account struct {
	ID                  uint32    `json:"id"`
	Address             Address   `json:"address"`
	Sponsor             Address   `json:"sponsor"`
	PackageLevel        uint32    `json:"package_level"`
	Balance             string    `json:"balance"`
	TotalInvestment     string    `json:"total_investment"`
	TotalEarnings       string    `json:"total_earnings"`
	EarningsCap         string    `json:"earnings_cap"`
	DirectReferralCount uint64    `json:"direct_referral_count"`
	TeamSize            uint64    `json:"team_size"`
	RegistrationTime    uint64    `json:"registration_time"`
	WithdrawalRate      uint64    `json:"withdrawal_rate"`
	Blacklisted         bool      `json:"blacklisted"`
	Active              bool      `json:"active"`
	DirectReferrals     []Address `json:"direct_referrals,omitempty"`
	DailyWithdrawn      string    `json:"daily_withdrawn,omitempty"`
	LastWithdrawDay     uint64    `json:"last_withdraw_day,omitempty"`
	MatrixParent        *Address  `json:"matrix_parent,omitempty"`
	MatrixLeft          *Address  `json:"matrix_left,omitempty"`
	MatrixRight         *Address  `json:"matrix_right,omitempty"`
}

type Pool struct {
	Type                 string  `json:"type"`
	Balance              string  `json:"balance"`
	LastDistributionTime uint64  `json:"last_distribution_time"`
	TotalDistributed     string  `json:"total_distributed"`
	Cursor               *Cursor `json:"cursor,omitempty"`
}

// Cursor is an unfinished distribution cycle.
type Cursor struct {
	Index         uint64    `json:"index"`
	BatchSize     uint64    `json:"batch_size"`
	SnapshotTotal string    `json:"snapshot_total"`
	Recipients    []Address `json:"recipients"`
	Ranks         []uint32  `json:"ranks,omitempty"`
	Shares        []string  `json:"shares"`
	Escrow        string    `json:"escrow"`
	StartedAt     uint64    `json:"started_at"`
}

type Totals struct {
	Inflow    string `json:"inflow"`
	Withdrawn string `json:"withdrawn"`
	Retained  string `json:"retained"`
	Discarded string `json:"discarded"`
}

// Verify checks the genesis document before import.
func (s *AppState) Verify() error {
	if len(s.Admins) == 0 {
		return fmt.Errorf("admin list is empty")
	}
	if s.Root.IsZero() {
		return fmt.Errorf("root account is not set")
	}
	if s.PlatformRecipient.IsZero() {
		return fmt.Errorf("platform recipient is not set")
	}
	if len(s.Packages) == 0 {
		return fmt.Errorf("package table is empty")
	}
	for i, p := range s.Packages {
		if p.Level != uint32(i+1) {
			return fmt.Errorf("package levels must be sequential from 1, got %d at position %d", p.Level, i)
		}
		price, ok := big.NewInt(0).SetString(p.Price, 10)
		if !ok || price.Sign() != 1 {
			return fmt.Errorf("package %d has invalid price %q", p.Level, p.Price)
		}
		if sum := p.RatesSum(); sum != BasisPoints {
			return fmt.Errorf("package %d rates sum to %d, expected %d", p.Level, sum, BasisPoints)
		}
	}
	if s.RootLevel == 0 || int(s.RootLevel) > len(s.Packages) {
		return fmt.Errorf("root level %d out of range", s.RootLevel)
	}
	return nil
}
