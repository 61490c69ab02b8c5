package commissions

import (
	"math/big"

	"github.com/MinterTeam/incentives-engine/core/events"
	"github.com/MinterTeam/incentives-engine/core/types"
)

// AccruePools adds the pool shares of a funding event.
func (e *Engine) AccruePools(leader, help, club *big.Int) {
	e.accrue(types.PoolLeadership, leader)
	e.accrue(types.PoolCommunity, help)
	e.accrue(types.PoolClub, club)
}

// FundPool adds value to a pool directly.
func (e *Engine) FundPool(pool types.PoolType, amount *big.Int) {
	e.accrue(pool, amount)
}

func (e *Engine) accrue(pool types.PoolType, amount *big.Int) {
	if amount.Sign() == 0 {
		return
	}

	e.state.Pools.AddBalance(pool, amount)
	e.addEvent(&events.PoolAccruedEvent{
		Pool:   pool.String(),
		Amount: amount.String(),
	})
}
