package app

import (
	"math/big"
	"sync"

	"github.com/MinterTeam/incentives-engine/core/types"
)

type Model struct {
	AccountsCount     uint32
	Admins            []types.Address
	PlatformRecipient types.Address

	Inflow    *big.Int
	Withdrawn *big.Int
	Retained  *big.Int
	Discarded *big.Int

	LastTime uint64

	markDirty func()
	mx        sync.RWMutex
}

func (model *Model) getAccountsCount() uint32 {
	model.mx.RLock()
	defer model.mx.RUnlock()

	return model.AccountsCount
}

func (model *Model) setAccountsCount(count uint32) {
	model.mx.Lock()
	defer model.mx.Unlock()

	if model.AccountsCount != count {
		model.markDirty()
	}
	model.AccountsCount = count
}

func (model *Model) getAdmins() []types.Address {
	model.mx.RLock()
	defer model.mx.RUnlock()

	return append([]types.Address(nil), model.Admins...)
}

func (model *Model) setAdmins(admins []types.Address) {
	model.mx.Lock()
	defer model.mx.Unlock()

	model.Admins = append([]types.Address(nil), admins...)
	model.markDirty()
}

func (model *Model) getPlatformRecipient() types.Address {
	model.mx.RLock()
	defer model.mx.RUnlock()

	return model.PlatformRecipient
}

func (model *Model) setPlatformRecipient(address types.Address) {
	model.mx.Lock()
	defer model.mx.Unlock()

	if model.PlatformRecipient != address {
		model.markDirty()
	}
	model.PlatformRecipient = address
}

func (model *Model) getLastTime() uint64 {
	model.mx.RLock()
	defer model.mx.RUnlock()

	return model.LastTime
}

func (model *Model) setLastTime(t uint64) {
	model.mx.Lock()
	defer model.mx.Unlock()

	if model.LastTime != t {
		model.markDirty()
	}
	model.LastTime = t
}

// add increases one of the totals of the model.
func (model *Model) add(total **big.Int, amount *big.Int) {
	model.mx.Lock()
	defer model.mx.Unlock()

	if *total == nil {
		*total = big.NewInt(0)
	}
	*total = big.NewInt(0).Add(*total, amount)
	model.markDirty()
}

func (model *Model) get(total **big.Int) *big.Int {
	model.mx.RLock()
	defer model.mx.RUnlock()

	if *total == nil {
		return big.NewInt(0)
	}

	return big.NewInt(0).Set(*total)
}
