package accounts

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math/big"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/MinterTeam/incentives-engine/core/state/bus"
	"github.com/MinterTeam/incentives-engine/core/types"
	"github.com/cosmos/iavl"
	"github.com/ethereum/go-ethereum/rlp"
)

const mainPrefix = byte('a')
const idPrefix = byte('i')

type RAccounts interface {
	Export(state *types.AppState)
	GetAccount(address types.Address) *Model
	Exists(address types.Address) bool
	GetAddressByID(id uint32) (types.Address, bool)
	GetBalance(address types.Address) *big.Int
}

type Accounts struct {
	list  map[types.Address]*Model
	dirty map[types.Address]struct{}
	ids   map[uint32]types.Address

	db  atomic.Value
	bus *bus.Bus

	lock sync.RWMutex
}

func NewAccounts(stateBus *bus.Bus, db *iavl.ImmutableTree) *Accounts {
	immutableTree := atomic.Value{}
	if db != nil {
		immutableTree.Store(db)
	}
	return &Accounts{
		db:    immutableTree,
		bus:   stateBus,
		list:  map[types.Address]*Model{},
		dirty: map[types.Address]struct{}{},
		ids:   map[uint32]types.Address{},
	}
}

func (a *Accounts) immutableTree() *iavl.ImmutableTree {
	db := a.db.Load()
	if db == nil {
		return nil
	}
	return db.(*iavl.ImmutableTree)
}

func (a *Accounts) SetImmutableTree(immutableTree *iavl.ImmutableTree) {
	a.db.Store(immutableTree)
}

func (a *Accounts) Commit(db *iavl.MutableTree, version int64) error {
	for _, address := range a.getOrderedDirtyAccounts() {
		account := a.getFromMap(address)
		a.lock.Lock()
		delete(a.dirty, address)
		a.lock.Unlock()

		if account.Balance.Sign() < 0 {
			panic(fmt.Sprintf("Address %s has negative balance: %s", address.String(), account.Balance))
		}

		account.lock.RLock()
		data, err := rlp.EncodeToBytes(account)
		id := account.ID
		account.lock.RUnlock()
		if err != nil {
			return fmt.Errorf("can't encode object at %x: %v", address[:], err)
		}

		db.Set(pathAccount(address), data)
		db.Set(pathID(id), address.Bytes())
	}

	a.lock.Lock()
	a.ids = map[uint32]types.Address{}
	a.lock.Unlock()

	return nil
}

func (a *Accounts) getOrderedDirtyAccounts() []types.Address {
	a.lock.RLock()
	keys := make([]types.Address, 0, len(a.dirty))
	for k := range a.dirty {
		keys = append(keys, k)
	}
	a.lock.RUnlock()

	sort.SliceStable(keys, func(i, j int) bool {
		return bytes.Compare(keys[i].Bytes(), keys[j].Bytes()) == 1
	})

	return keys
}

func pathAccount(address types.Address) []byte {
	return append([]byte{mainPrefix}, address.Bytes()...)
}

func pathID(id uint32) []byte {
	path := make([]byte, 5)
	path[0] = idPrefix
	binary.BigEndian.PutUint32(path[1:], id)
	return path
}

func (a *Accounts) get(address types.Address) *Model {
	if account := a.getFromMap(address); account != nil {
		return account
	}

	tree := a.immutableTree()
	if tree == nil {
		return nil
	}

	_, enc := tree.Get(pathAccount(address))
	if len(enc) == 0 {
		return nil
	}

	account := &Model{}
	if err := rlp.DecodeBytes(enc, account); err != nil {
		panic(fmt.Sprintf("failed to decode account at address %s: %s", address.String(), err))
	}

	account.address = address
	account.markDirty = a.markDirty
	if account.DailyWithdrawn == nil {
		account.DailyWithdrawn = big.NewInt(0)
	}

	a.setToMap(address, account)
	return account
}

// Create stores a new account record. The caller checks that the address is
// not registered yet.
func (a *Accounts) Create(address types.Address, id uint32, sponsor types.Address, level uint32, registrationTime uint64) *Model {
	account := &Model{
		ID:               id,
		PackageLevel:     level,
		Sponsor:          sponsor,
		RegistrationTime: registrationTime,
		Balance:          big.NewInt(0),
		TotalInvestment:  big.NewInt(0),
		TotalEarnings:    big.NewInt(0),
		EarningsCap:      big.NewInt(0),
		DailyWithdrawn:   big.NewInt(0),
		Active:           true,
		address:          address,
		markDirty:        a.markDirty,
	}

	a.setToMap(address, account)
	a.lock.Lock()
	a.ids[id] = address
	a.lock.Unlock()
	a.markDirty(address)

	return account
}

func (a *Accounts) Exists(address types.Address) bool {
	return a.get(address) != nil
}

// GetAccount returns the account or nil if the address is not registered.
func (a *Accounts) GetAccount(address types.Address) *Model {
	return a.get(address)
}

func (a *Accounts) GetAddressByID(id uint32) (types.Address, bool) {
	a.lock.RLock()
	address, ok := a.ids[id]
	a.lock.RUnlock()
	if ok {
		return address, true
	}

	tree := a.immutableTree()
	if tree == nil {
		return types.Address{}, false
	}

	_, enc := tree.Get(pathID(id))
	if len(enc) == 0 {
		return types.Address{}, false
	}

	return types.BytesToAddress(enc), true
}

func (a *Accounts) GetBalance(address types.Address) *big.Int {
	account := a.get(address)
	if account == nil {
		return big.NewInt(0)
	}

	return account.GetBalance()
}

// AddBalance credits a registered account.
func (a *Accounts) AddBalance(address types.Address, amount *big.Int) {
	account := a.mustGet(address)
	account.setBalance(big.NewInt(0).Add(account.GetBalance(), amount))
	a.bus.Checker().AddCredit(amount)
}

// SubBalance debits a registered account.
func (a *Accounts) SubBalance(address types.Address, amount *big.Int) {
	account := a.mustGet(address)
	account.setBalance(big.NewInt(0).Sub(account.GetBalance(), amount))
	a.bus.Checker().AddDebit(amount)
}

func (a *Accounts) AddEarnings(address types.Address, amount *big.Int) {
	a.mustGet(address).addEarnings(amount)
}

func (a *Accounts) AddInvestment(address types.Address, price *big.Int, capIncrease *big.Int) {
	a.mustGet(address).addInvestment(price, capIncrease)
}

func (a *Accounts) SetPackageLevel(address types.Address, level uint32) {
	a.mustGet(address).setPackageLevel(level)
}

func (a *Accounts) AddDirectReferral(sponsor types.Address, referral types.Address) {
	a.mustGet(sponsor).addDirectReferral(referral)
}

func (a *Accounts) IncTeamSize(address types.Address) {
	a.mustGet(address).incTeamSize()
}

func (a *Accounts) SetWithdrawalRate(address types.Address, rate uint64) {
	a.mustGet(address).setWithdrawalRate(rate)
}

func (a *Accounts) SetBlacklisted(address types.Address, blacklisted bool) {
	a.mustGet(address).setBlacklisted(blacklisted)
}

func (a *Accounts) AddDailyWithdrawn(address types.Address, day uint64, amount *big.Int) {
	a.mustGet(address).addDailyWithdrawn(day, amount)
}

// SetMatrixChild links child under parent on the given side.
func (a *Accounts) SetMatrixChild(parent types.Address, child types.Address, right bool) {
	a.mustGet(parent).setMatrixChild(child, right)
	a.mustGet(child).setMatrixParent(parent)
}

func (a *Accounts) mustGet(address types.Address) *Model {
	account := a.get(address)
	if account == nil {
		panic(fmt.Sprintf("account %s is not registered", address.String()))
	}

	return account
}

func (a *Accounts) markDirty(addr types.Address) {
	a.lock.Lock()
	defer a.lock.Unlock()

	a.dirty[addr] = struct{}{}
}

func (a *Accounts) Export(state *types.AppState) {
	tree := a.immutableTree()
	if tree == nil {
		return
	}

	tree.IterateRange([]byte{idPrefix}, []byte{idPrefix + 1}, true, func(key []byte, value []byte) bool {
		account := a.get(types.BytesToAddress(value))
		if account == nil {
			return false
		}

		account.lock.RLock()
		acc := types.Account{
			ID:                  account.ID,
			Address:             account.address,
			Sponsor:             account.Sponsor,
			PackageLevel:        account.PackageLevel,
			Balance:             account.Balance.String(),
			TotalInvestment:     account.TotalInvestment.String(),
			TotalEarnings:       account.TotalEarnings.String(),
			EarningsCap:         account.EarningsCap.String(),
			DirectReferralCount: account.DirectReferralCount,
			TeamSize:            account.TeamSize,
			RegistrationTime:    account.RegistrationTime,
			WithdrawalRate:      account.WithdrawalRate,
			Blacklisted:         account.Blacklisted,
			Active:              account.Active,
			DirectReferrals:     append([]types.Address(nil), account.DirectReferrals...),
			MatrixParent:        optionalAddress(account.MatrixParent),
			MatrixLeft:          optionalAddress(account.MatrixLeft),
			MatrixRight:         optionalAddress(account.MatrixRight),
		}
		if account.DailyWithdrawn.Sign() == 1 {
			acc.DailyWithdrawn = account.DailyWithdrawn.String()
			acc.LastWithdrawDay = account.LastWithdrawDay
		}
		account.lock.RUnlock()

		state.Accounts = append(state.Accounts, acc)

		return false
	})
}

// Import restores an exported account record as is.
func (a *Accounts) Import(acc types.Account, balance, investment, earnings, earningsCap, dailyWithdrawn *big.Int) {
	account := a.Create(acc.Address, acc.ID, acc.Sponsor, acc.PackageLevel, acc.RegistrationTime)

	account.lock.Lock()
	account.TotalInvestment = investment
	account.TotalEarnings = earnings
	account.EarningsCap = earningsCap
	account.DirectReferralCount = acc.DirectReferralCount
	account.DirectReferrals = append([]types.Address(nil), acc.DirectReferrals...)
	account.TeamSize = acc.TeamSize
	account.WithdrawalRate = acc.WithdrawalRate
	account.Blacklisted = acc.Blacklisted
	account.Active = acc.Active
	account.DailyWithdrawn = dailyWithdrawn
	account.LastWithdrawDay = acc.LastWithdrawDay
	if acc.MatrixParent != nil {
		account.MatrixParent = *acc.MatrixParent
	}
	if acc.MatrixLeft != nil {
		account.MatrixLeft = *acc.MatrixLeft
	}
	if acc.MatrixRight != nil {
		account.MatrixRight = *acc.MatrixRight
	}
	account.lock.Unlock()

	a.AddBalance(acc.Address, balance)
}

func optionalAddress(address types.Address) *types.Address {
	if address.IsZero() {
		return nil
	}

	return &address
}

func (a *Accounts) getFromMap(address types.Address) *Model {
	a.lock.RLock()
	defer a.lock.RUnlock()

	return a.list[address]
}

func (a *Accounts) setToMap(address types.Address, model *Model) {
	a.lock.Lock()
	defer a.lock.Unlock()

	a.list[address] = model
}
