package vault

import (
	"context"
	"encoding/binary"
	"fmt"
	"math/big"
	"sync"

	"github.com/MinterTeam/incentives-engine/core/types"
	"github.com/pkg/errors"
	db "github.com/tendermint/tm-db"
)

const (
	balancePrefix   = byte('b')
	allowancePrefix = byte('a')
)

// Ledger is a Vault persisted in a key-value database. The operator CLI uses
// it as a local stand-in for the host ledger.
type Ledger struct {
	db   db.DB
	lock sync.Mutex
}

func NewLedger(db db.DB) *Ledger {
	return &Ledger{db: db}
}

func pathBalance(coin types.CoinID, owner types.Address) []byte {
	key := make([]byte, 0, 1+4+types.AddressLength)
	key = append(key, balancePrefix)
	key = binary.BigEndian.AppendUint32(key, uint32(coin))
	return append(key, owner.Bytes()...)
}

func pathAllowance(coin types.CoinID, owner types.Address, spender types.Address) []byte {
	key := make([]byte, 0, 1+4+2*types.AddressLength)
	key = append(key, allowancePrefix)
	key = binary.BigEndian.AppendUint32(key, uint32(coin))
	key = append(key, owner.Bytes()...)
	return append(key, spender.Bytes()...)
}

func (l *Ledger) load(key []byte) (*big.Int, error) {
	value, err := l.db.Get(key)
	if err != nil {
		return nil, errors.Wrap(err, "read ledger")
	}

	return big.NewInt(0).SetBytes(value), nil
}

func encode(value *big.Int) []byte {
	if enc := value.Bytes(); len(enc) != 0 {
		return enc
	}
	return []byte{0}
}

// Mint credits owner out of thin air.
func (l *Ledger) Mint(coin types.CoinID, owner types.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return ErrInvalidAmount
	}

	l.lock.Lock()
	defer l.lock.Unlock()

	key := pathBalance(coin, owner)
	balance, err := l.load(key)
	if err != nil {
		return err
	}

	return l.db.SetSync(key, encode(balance.Add(balance, amount)))
}

func (l *Ledger) BalanceOf(_ context.Context, coin types.CoinID, owner types.Address) (*big.Int, error) {
	l.lock.Lock()
	defer l.lock.Unlock()

	return l.load(pathBalance(coin, owner))
}

func (l *Ledger) Allowance(_ context.Context, coin types.CoinID, owner types.Address, spender types.Address) (*big.Int, error) {
	l.lock.Lock()
	defer l.lock.Unlock()

	return l.load(pathAllowance(coin, owner, spender))
}

func (l *Ledger) Approve(_ context.Context, coin types.CoinID, owner types.Address, spender types.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return ErrInvalidAmount
	}

	l.lock.Lock()
	defer l.lock.Unlock()

	return l.db.SetSync(pathAllowance(coin, owner, spender), encode(amount))
}

func (l *Ledger) TransferFrom(_ context.Context, coin types.CoinID, spender types.Address, from types.Address, to types.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return ErrInvalidAmount
	}

	l.lock.Lock()
	defer l.lock.Unlock()

	key := pathAllowance(coin, from, spender)
	allowance, err := l.load(key)
	if err != nil {
		return err
	}
	if allowance.Cmp(amount) < 0 {
		return fmt.Errorf("%w: %s of %s approved to %s", ErrInsufficientAllowance, amount, from.String(), spender.String())
	}

	return l.move(coin, from, to, amount, key, allowance.Sub(allowance, amount))
}

func (l *Ledger) Transfer(_ context.Context, coin types.CoinID, from types.Address, to types.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return ErrInvalidAmount
	}

	l.lock.Lock()
	defer l.lock.Unlock()

	return l.move(coin, from, to, amount, nil, nil)
}

// move writes both balances and the optional allowance in one batch.
func (l *Ledger) move(coin types.CoinID, from types.Address, to types.Address, amount *big.Int, allowanceKey []byte, allowance *big.Int) error {
	fromKey, toKey := pathBalance(coin, from), pathBalance(coin, to)

	fromBalance, err := l.load(fromKey)
	if err != nil {
		return err
	}
	if fromBalance.Cmp(amount) < 0 {
		return fmt.Errorf("%w: %s has %s %s, needs %s", ErrInsufficientFunds, from.String(), fromBalance, coin, amount)
	}
	fromBalance.Sub(fromBalance, amount)

	toBalance, err := l.load(toKey)
	if err != nil {
		return err
	}
	if from == to {
		toBalance = fromBalance
	}
	toBalance.Add(toBalance, amount)

	batch := l.db.NewBatch()
	defer batch.Close()

	if from != to {
		if err := batch.Set(fromKey, encode(fromBalance)); err != nil {
			return err
		}
	}
	if err := batch.Set(toKey, encode(toBalance)); err != nil {
		return err
	}
	if allowanceKey != nil {
		if err := batch.Set(allowanceKey, encode(allowance)); err != nil {
			return err
		}
	}

	return errors.Wrap(batch.WriteSync(), "write ledger")
}
