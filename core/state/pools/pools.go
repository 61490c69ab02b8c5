package pools

import (
	"fmt"
	"math/big"
	"sync"
	"sync/atomic"

	"github.com/MinterTeam/incentives-engine/core/state/bus"
	"github.com/MinterTeam/incentives-engine/core/types"
	"github.com/MinterTeam/incentives-engine/helpers"
	"github.com/cosmos/iavl"
	"github.com/ethereum/go-ethereum/rlp"
)

const (
	mainPrefix   = byte('l')
	cursorPrefix = byte('r')
)

type RPools interface {
	Export(state *types.AppState)
	Get(pool types.PoolType) *Model
	GetCursor(pool types.PoolType) *Cursor
	TotalEscrow() *big.Int
}

// Pools holds the reward pools and their distribution cursors.
type Pools struct {
	list         map[types.PoolType]*Model
	cursors      map[types.PoolType]*Cursor
	dirty        map[types.PoolType]struct{}
	dirtyCursors map[types.PoolType]struct{}

	db  atomic.Value
	bus *bus.Bus

	lock sync.RWMutex
}

func NewPools(stateBus *bus.Bus, db *iavl.ImmutableTree) *Pools {
	immutableTree := atomic.Value{}
	if db != nil {
		immutableTree.Store(db)
	}
	return &Pools{
		db:           immutableTree,
		bus:          stateBus,
		list:         map[types.PoolType]*Model{},
		cursors:      map[types.PoolType]*Cursor{},
		dirty:        map[types.PoolType]struct{}{},
		dirtyCursors: map[types.PoolType]struct{}{},
	}
}

func (p *Pools) immutableTree() *iavl.ImmutableTree {
	db := p.db.Load()
	if db == nil {
		return nil
	}
	return db.(*iavl.ImmutableTree)
}

func (p *Pools) SetImmutableTree(immutableTree *iavl.ImmutableTree) {
	p.db.Store(immutableTree)
}

func (p *Pools) Commit(db *iavl.MutableTree, version int64) error {
	p.lock.Lock()
	defer p.lock.Unlock()

	for _, pool := range types.PoolTypes {
		if _, ok := p.dirty[pool]; ok {
			data, err := rlp.EncodeToBytes(p.list[pool])
			if err != nil {
				return fmt.Errorf("can't encode %s pool: %v", pool, err)
			}
			db.Set([]byte{mainPrefix, byte(pool)}, data)
		}

		if _, ok := p.dirtyCursors[pool]; ok {
			cursor := p.cursors[pool]
			if !cursor.InProgress {
				db.Remove([]byte{cursorPrefix, byte(pool)})
				continue
			}
			data, err := rlp.EncodeToBytes(cursor)
			if err != nil {
				return fmt.Errorf("can't encode %s cursor: %v", pool, err)
			}
			db.Set([]byte{cursorPrefix, byte(pool)}, data)
		}
	}

	p.dirty = map[types.PoolType]struct{}{}
	p.dirtyCursors = map[types.PoolType]struct{}{}

	return nil
}

func (p *Pools) get(pool types.PoolType) *Model {
	if model, ok := p.list[pool]; ok {
		return model
	}

	model := newModel()
	if tree := p.immutableTree(); tree != nil {
		if _, enc := tree.Get([]byte{mainPrefix, byte(pool)}); len(enc) != 0 {
			if err := rlp.DecodeBytes(enc, model); err != nil {
				panic(fmt.Sprintf("failed to decode %s pool: %s", pool, err))
			}
		}
	}

	p.list[pool] = model
	return model
}

func (p *Pools) getCursor(pool types.PoolType) *Cursor {
	if cursor, ok := p.cursors[pool]; ok {
		return cursor
	}

	cursor := newCursor()
	if tree := p.immutableTree(); tree != nil {
		if _, enc := tree.Get([]byte{cursorPrefix, byte(pool)}); len(enc) != 0 {
			if err := rlp.DecodeBytes(enc, cursor); err != nil {
				panic(fmt.Sprintf("failed to decode %s cursor: %s", pool, err))
			}
		}
	}

	p.cursors[pool] = cursor
	return cursor
}

// Get returns a copy of the pool.
func (p *Pools) Get(pool types.PoolType) *Model {
	p.lock.Lock()
	defer p.lock.Unlock()

	return p.get(pool).copy()
}

// GetCursor returns a copy of the pool's distribution cursor.
func (p *Pools) GetCursor(pool types.PoolType) *Cursor {
	p.lock.Lock()
	defer p.lock.Unlock()

	return p.getCursor(pool).copy()
}

func (p *Pools) AddBalance(pool types.PoolType, amount *big.Int) {
	if amount.Sign() == 0 {
		return
	}

	p.lock.Lock()
	model := p.get(pool)
	model.Balance = big.NewInt(0).Add(model.Balance, amount)
	p.dirty[pool] = struct{}{}
	p.lock.Unlock()

	p.bus.Checker().AddCredit(amount)
}

// StartCycle stores the snapshot of a new cycle and moves the snapshotted
// value from the live balance into the cycle escrow.
func (p *Pools) StartCycle(pool types.PoolType, cursor *Cursor) {
	p.lock.Lock()
	defer p.lock.Unlock()

	started := cursor.copy()
	model := p.get(pool)
	if model.Balance.Cmp(started.SnapshotTotal) < 0 {
		panic(fmt.Sprintf("%s pool balance %s is below snapshot %s", pool, model.Balance, started.SnapshotTotal))
	}
	model.Balance = big.NewInt(0).Sub(model.Balance, started.SnapshotTotal)
	p.dirty[pool] = struct{}{}

	started.InProgress = true
	started.Index = 0
	started.Escrow = big.NewInt(0).Set(started.SnapshotTotal)
	p.cursors[pool] = started
	p.dirtyCursors[pool] = struct{}{}
}

// PayFromEscrow takes amount out of the running cycle's escrow.
func (p *Pools) PayFromEscrow(pool types.PoolType, amount *big.Int) {
	if amount.Sign() == 0 {
		return
	}

	p.lock.Lock()
	cursor := p.getCursor(pool)
	cursor.Escrow = big.NewInt(0).Sub(cursor.Escrow, amount)
	if cursor.Escrow.Sign() < 0 {
		p.lock.Unlock()
		panic(fmt.Sprintf("%s pool escrow went negative", pool))
	}
	p.dirtyCursors[pool] = struct{}{}
	p.lock.Unlock()

	p.bus.Checker().AddDebit(amount)
}

func (p *Pools) SetCursorIndex(pool types.PoolType, index uint64) {
	p.lock.Lock()
	defer p.lock.Unlock()

	p.getCursor(pool).Index = index
	p.dirtyCursors[pool] = struct{}{}
}

// FinishCycle closes the running cycle and returns the escrow remainder,
// which the caller must account for.
func (p *Pools) FinishCycle(pool types.PoolType, now uint64) *big.Int {
	p.lock.Lock()
	cursor := p.getCursor(pool)
	rest := big.NewInt(0).Set(cursor.Escrow)

	model := p.get(pool)
	model.LastDistributionTime = now
	model.TotalDistributed = big.NewInt(0).Add(model.TotalDistributed, cursor.SnapshotTotal)
	p.dirty[pool] = struct{}{}

	p.cursors[pool] = newCursor()
	p.dirtyCursors[pool] = struct{}{}
	p.lock.Unlock()

	if rest.Sign() != 0 {
		p.bus.Checker().AddDebit(rest)
	}

	return rest
}

// TotalEscrow returns the value held by all running cycles.
func (p *Pools) TotalEscrow() *big.Int {
	p.lock.Lock()
	defer p.lock.Unlock()

	total := big.NewInt(0)
	for _, pool := range types.PoolTypes {
		total.Add(total, p.getCursor(pool).Escrow)
	}

	return total
}

func (p *Pools) Export(state *types.AppState) {
	for _, pool := range types.PoolTypes {
		model := p.Get(pool)
		exported := types.Pool{
			Type:                 pool.String(),
			Balance:              model.Balance.String(),
			LastDistributionTime: model.LastDistributionTime,
			TotalDistributed:     model.TotalDistributed.String(),
		}

		if cursor := p.GetCursor(pool); cursor.InProgress {
			exported.Cursor = &types.Cursor{
				Index:         cursor.Index,
				BatchSize:     cursor.BatchSize,
				SnapshotTotal: cursor.SnapshotTotal.String(),
				Recipients:    cursor.Recipients,
				Ranks:         cursor.Ranks,
				Escrow:        cursor.Escrow.String(),
				StartedAt:     cursor.StartedAt,
			}
			for _, share := range cursor.Shares {
				exported.Cursor.Shares = append(exported.Cursor.Shares, share.String())
			}
		}

		state.Pools = append(state.Pools, exported)
	}
}

// Import restores an exported pool, including an unfinished cycle.
func (p *Pools) Import(pool types.Pool) error {
	poolType, err := types.ParsePoolType(pool.Type)
	if err != nil {
		return err
	}

	p.lock.Lock()
	model := p.get(poolType)
	model.LastDistributionTime = pool.LastDistributionTime
	model.TotalDistributed = helpers.StringToBigIntOrZero(pool.TotalDistributed)
	p.dirty[poolType] = struct{}{}
	p.lock.Unlock()

	balance := helpers.StringToBigIntOrZero(pool.Balance)
	if pool.Cursor == nil {
		p.AddBalance(poolType, balance)
		return nil
	}

	cursor := &Cursor{
		Index:                 pool.Cursor.Index,
		BatchSize:             pool.Cursor.BatchSize,
		SnapshotTotal:         helpers.StringToBigIntOrZero(pool.Cursor.SnapshotTotal),
		SnapshotEligibleCount: uint64(len(pool.Cursor.Recipients)),
		Recipients:            pool.Cursor.Recipients,
		Ranks:                 pool.Cursor.Ranks,
		StartedAt:             pool.Cursor.StartedAt,
	}
	for _, share := range pool.Cursor.Shares {
		cursor.Shares = append(cursor.Shares, helpers.StringToBigIntOrZero(share))
	}
	if len(cursor.Shares) == 0 {
		return fmt.Errorf("%s pool cursor has no shares", pool.Type)
	}
	escrow := helpers.StringToBigIntOrZero(pool.Cursor.Escrow)

	p.AddBalance(poolType, big.NewInt(0).Add(balance, escrow))
	snapshotTotal := cursor.SnapshotTotal
	cursor.SnapshotTotal = escrow
	p.StartCycle(poolType, cursor)

	p.lock.Lock()
	started := p.cursors[poolType]
	started.SnapshotTotal = snapshotTotal
	started.Index = pool.Cursor.Index
	p.lock.Unlock()

	return nil
}
