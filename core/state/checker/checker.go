package checker

import (
	"fmt"
	"math/big"
	"sync"

	"github.com/MinterTeam/incentives-engine/core/state/bus"
)

// Checker is the per-operation value ledger. Holders of value (account
// balances, pools, distribution escrow, retained and discarded totals)
// report their credits and debits here; value entering or leaving the
// engine is reported as inflow or outflow.
type Checker struct {
	inflow  *big.Int
	outflow *big.Int
	credits *big.Int
	debits  *big.Int

	lock sync.RWMutex
}

func NewChecker(bus *bus.Bus) *Checker {
	checker := &Checker{}
	checker.reset()
	bus.SetChecker(checker)

	return checker
}

func (c *Checker) AddInflow(value *big.Int) {
	c.lock.Lock()
	defer c.lock.Unlock()

	c.inflow.Add(c.inflow, value)
}

func (c *Checker) AddOutflow(value *big.Int) {
	c.lock.Lock()
	defer c.lock.Unlock()

	c.outflow.Add(c.outflow, value)
}

func (c *Checker) AddCredit(value *big.Int) {
	c.lock.Lock()
	defer c.lock.Unlock()

	c.credits.Add(c.credits, value)
}

func (c *Checker) AddDebit(value *big.Int) {
	c.lock.Lock()
	defer c.lock.Unlock()

	c.debits.Add(c.debits, value)
}

// Moved returns the value the current operation moved: external inflow plus
// everything debited from a holder.
func (c *Checker) Moved() *big.Int {
	c.lock.RLock()
	defer c.lock.RUnlock()

	return big.NewInt(0).Add(c.inflow, c.debits)
}

// Reset resets checker data
func (c *Checker) Reset() {
	c.lock.Lock()
	defer c.lock.Unlock()

	c.reset()
}

func (c *Checker) reset() {
	c.inflow = big.NewInt(0)
	c.outflow = big.NewInt(0)
	c.credits = big.NewInt(0)
	c.debits = big.NewInt(0)
}

// Check verifies that inflow + debits equals credits + outflow.
func (c *Checker) Check() error {
	c.lock.RLock()
	defer c.lock.RUnlock()

	in := big.NewInt(0).Add(c.inflow, c.debits)
	out := big.NewInt(0).Add(c.credits, c.outflow)
	if in.Cmp(out) != 0 {
		return fmt.Errorf("invariants error: in %s, out %s, diff %s", in, out, big.NewInt(0).Sub(in, out))
	}

	return nil
}
