package accounts

import (
	"math/big"
	"sync"

	"github.com/MinterTeam/incentives-engine/core/types"
)

// Model is a participant record. Sponsor and matrix links are stored as
// addresses; the zero address means "none".
type Model struct {
	ID               uint32
	PackageLevel     uint32
	Sponsor          types.Address
	RegistrationTime uint64

	Balance         *big.Int
	TotalInvestment *big.Int
	TotalEarnings   *big.Int
	EarningsCap     *big.Int

	DirectReferralCount uint64
	DirectReferrals     []types.Address
	TeamSize            uint64
	WithdrawalRate      uint64

	Blacklisted bool
	Active      bool

	DailyWithdrawn  *big.Int
	LastWithdrawDay uint64

	MatrixParent types.Address
	MatrixLeft   types.Address
	MatrixRight  types.Address

	address   types.Address
	markDirty func(types.Address)
	lock      sync.RWMutex
}

func (model *Model) Address() types.Address {
	return model.address
}

func (model *Model) GetID() uint32 {
	model.lock.RLock()
	defer model.lock.RUnlock()

	return model.ID
}

func (model *Model) GetPackageLevel() uint32 {
	model.lock.RLock()
	defer model.lock.RUnlock()

	return model.PackageLevel
}

func (model *Model) GetSponsor() types.Address {
	model.lock.RLock()
	defer model.lock.RUnlock()

	return model.Sponsor
}

func (model *Model) GetBalance() *big.Int {
	model.lock.RLock()
	defer model.lock.RUnlock()

	return big.NewInt(0).Set(model.Balance)
}

func (model *Model) GetTotalInvestment() *big.Int {
	model.lock.RLock()
	defer model.lock.RUnlock()

	return big.NewInt(0).Set(model.TotalInvestment)
}

func (model *Model) GetTotalEarnings() *big.Int {
	model.lock.RLock()
	defer model.lock.RUnlock()

	return big.NewInt(0).Set(model.TotalEarnings)
}

func (model *Model) GetEarningsCap() *big.Int {
	model.lock.RLock()
	defer model.lock.RUnlock()

	return big.NewInt(0).Set(model.EarningsCap)
}

// RemainingCap returns how much the account may still earn.
func (model *Model) RemainingCap() *big.Int {
	model.lock.RLock()
	defer model.lock.RUnlock()

	remaining := big.NewInt(0).Sub(model.EarningsCap, model.TotalEarnings)
	if remaining.Sign() < 0 {
		return big.NewInt(0)
	}

	return remaining
}

func (model *Model) GetDirectReferralCount() uint64 {
	model.lock.RLock()
	defer model.lock.RUnlock()

	return model.DirectReferralCount
}

func (model *Model) GetDirectReferrals() []types.Address {
	model.lock.RLock()
	defer model.lock.RUnlock()

	return append([]types.Address(nil), model.DirectReferrals...)
}

func (model *Model) GetTeamSize() uint64 {
	model.lock.RLock()
	defer model.lock.RUnlock()

	return model.TeamSize
}

func (model *Model) GetWithdrawalRate() uint64 {
	model.lock.RLock()
	defer model.lock.RUnlock()

	return model.WithdrawalRate
}

func (model *Model) GetRegistrationTime() uint64 {
	model.lock.RLock()
	defer model.lock.RUnlock()

	return model.RegistrationTime
}

func (model *Model) IsBlacklisted() bool {
	model.lock.RLock()
	defer model.lock.RUnlock()

	return model.Blacklisted
}

func (model *Model) IsActive() bool {
	model.lock.RLock()
	defer model.lock.RUnlock()

	return model.Active
}

// IsEligible reports whether the account may receive commissions and pool shares.
func (model *Model) IsEligible() bool {
	model.lock.RLock()
	defer model.lock.RUnlock()

	return model.Active && !model.Blacklisted
}

// DailyWithdrawnOn returns the amount withdrawn on the given day.
func (model *Model) DailyWithdrawnOn(day uint64) *big.Int {
	model.lock.RLock()
	defer model.lock.RUnlock()

	if model.LastWithdrawDay != day {
		return big.NewInt(0)
	}

	return big.NewInt(0).Set(model.DailyWithdrawn)
}

func (model *Model) GetMatrix() (parent, left, right types.Address) {
	model.lock.RLock()
	defer model.lock.RUnlock()

	return model.MatrixParent, model.MatrixLeft, model.MatrixRight
}

func (model *Model) setBalance(balance *big.Int) {
	model.lock.Lock()
	defer model.lock.Unlock()

	model.Balance = balance
	model.markDirty(model.address)
}

func (model *Model) addEarnings(amount *big.Int) {
	model.lock.Lock()
	defer model.lock.Unlock()

	model.TotalEarnings = big.NewInt(0).Add(model.TotalEarnings, amount)
	model.markDirty(model.address)
}

func (model *Model) addInvestment(price *big.Int, capIncrease *big.Int) {
	model.lock.Lock()
	defer model.lock.Unlock()

	model.TotalInvestment = big.NewInt(0).Add(model.TotalInvestment, price)
	model.EarningsCap = big.NewInt(0).Add(model.EarningsCap, capIncrease)
	model.markDirty(model.address)
}

func (model *Model) setPackageLevel(level uint32) {
	model.lock.Lock()
	defer model.lock.Unlock()

	model.PackageLevel = level
	model.markDirty(model.address)
}

func (model *Model) addDirectReferral(referral types.Address) {
	model.lock.Lock()
	defer model.lock.Unlock()

	model.DirectReferrals = append(model.DirectReferrals, referral)
	model.DirectReferralCount++
	model.markDirty(model.address)
}

func (model *Model) incTeamSize() {
	model.lock.Lock()
	defer model.lock.Unlock()

	model.TeamSize++
	model.markDirty(model.address)
}

func (model *Model) setWithdrawalRate(rate uint64) {
	model.lock.Lock()
	defer model.lock.Unlock()

	if model.WithdrawalRate != rate {
		model.markDirty(model.address)
	}
	model.WithdrawalRate = rate
}

func (model *Model) setBlacklisted(blacklisted bool) {
	model.lock.Lock()
	defer model.lock.Unlock()

	if model.Blacklisted != blacklisted {
		model.markDirty(model.address)
	}
	model.Blacklisted = blacklisted
}

func (model *Model) addDailyWithdrawn(day uint64, amount *big.Int) {
	model.lock.Lock()
	defer model.lock.Unlock()

	if model.LastWithdrawDay != day {
		model.LastWithdrawDay = day
		model.DailyWithdrawn = big.NewInt(0)
	}
	model.DailyWithdrawn = big.NewInt(0).Add(model.DailyWithdrawn, amount)
	model.markDirty(model.address)
}

func (model *Model) setMatrixParent(parent types.Address) {
	model.lock.Lock()
	defer model.lock.Unlock()

	model.MatrixParent = parent
	model.markDirty(model.address)
}

func (model *Model) setMatrixChild(child types.Address, right bool) {
	model.lock.Lock()
	defer model.lock.Unlock()

	if right {
		model.MatrixRight = child
	} else {
		model.MatrixLeft = child
	}
	model.markDirty(model.address)
}
