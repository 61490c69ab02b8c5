package vault

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"

	"github.com/MinterTeam/incentives-engine/core/types"
)

var (
	ErrInsufficientFunds     = errors.New("insufficient funds")
	ErrInsufficientAllowance = errors.New("insufficient allowance")
	ErrInvalidAmount         = errors.New("invalid amount")
)

// Vault moves value on the host ledger.
type Vault interface {
	BalanceOf(ctx context.Context, coin types.CoinID, owner types.Address) (*big.Int, error)
	Allowance(ctx context.Context, coin types.CoinID, owner types.Address, spender types.Address) (*big.Int, error)
	Approve(ctx context.Context, coin types.CoinID, owner types.Address, spender types.Address, amount *big.Int) error
	TransferFrom(ctx context.Context, coin types.CoinID, spender types.Address, from types.Address, to types.Address, amount *big.Int) error
	Transfer(ctx context.Context, coin types.CoinID, from types.Address, to types.Address, amount *big.Int) error
}

type balanceKey struct {
	coin  types.CoinID
	owner types.Address
}

type allowanceKey struct {
	coin    types.CoinID
	owner   types.Address
	spender types.Address
}

// Memory is an in-process Vault.
type Memory struct {
	balances   map[balanceKey]*big.Int
	allowances map[allowanceKey]*big.Int

	lock sync.RWMutex
}

func NewMemory() *Memory {
	return &Memory{
		balances:   map[balanceKey]*big.Int{},
		allowances: map[allowanceKey]*big.Int{},
	}
}

// Mint credits owner out of thin air.
func (m *Memory) Mint(coin types.CoinID, owner types.Address, amount *big.Int) {
	m.lock.Lock()
	defer m.lock.Unlock()

	m.add(balanceKey{coin, owner}, amount)
}

func (m *Memory) BalanceOf(_ context.Context, coin types.CoinID, owner types.Address) (*big.Int, error) {
	m.lock.RLock()
	defer m.lock.RUnlock()

	return m.get(balanceKey{coin, owner}), nil
}

func (m *Memory) Allowance(_ context.Context, coin types.CoinID, owner types.Address, spender types.Address) (*big.Int, error) {
	m.lock.RLock()
	defer m.lock.RUnlock()

	if allowance, ok := m.allowances[allowanceKey{coin, owner, spender}]; ok {
		return big.NewInt(0).Set(allowance), nil
	}
	return big.NewInt(0), nil
}

func (m *Memory) Approve(_ context.Context, coin types.CoinID, owner types.Address, spender types.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return ErrInvalidAmount
	}

	m.lock.Lock()
	defer m.lock.Unlock()

	m.allowances[allowanceKey{coin, owner, spender}] = big.NewInt(0).Set(amount)
	return nil
}

func (m *Memory) TransferFrom(_ context.Context, coin types.CoinID, spender types.Address, from types.Address, to types.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return ErrInvalidAmount
	}

	m.lock.Lock()
	defer m.lock.Unlock()

	key := allowanceKey{coin, from, spender}
	allowance, ok := m.allowances[key]
	if !ok || allowance.Cmp(amount) < 0 {
		return fmt.Errorf("%w: %s of %s approved to %s", ErrInsufficientAllowance, amount, from.String(), spender.String())
	}
	if err := m.move(coin, from, to, amount); err != nil {
		return err
	}
	m.allowances[key] = big.NewInt(0).Sub(allowance, amount)

	return nil
}

func (m *Memory) Transfer(_ context.Context, coin types.CoinID, from types.Address, to types.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return ErrInvalidAmount
	}

	m.lock.Lock()
	defer m.lock.Unlock()

	return m.move(coin, from, to, amount)
}

func (m *Memory) move(coin types.CoinID, from types.Address, to types.Address, amount *big.Int) error {
	if balance := m.get(balanceKey{coin, from}); balance.Cmp(amount) < 0 {
		return fmt.Errorf("%w: %s has %s %s, needs %s", ErrInsufficientFunds, from.String(), balance, coin, amount)
	}

	m.add(balanceKey{coin, from}, big.NewInt(0).Neg(amount))
	m.add(balanceKey{coin, to}, amount)
	return nil
}

func (m *Memory) get(key balanceKey) *big.Int {
	if balance, ok := m.balances[key]; ok {
		return big.NewInt(0).Set(balance)
	}
	return big.NewInt(0)
}

func (m *Memory) add(key balanceKey, amount *big.Int) {
	m.balances[key] = big.NewInt(0).Add(m.get(key), amount)
}
