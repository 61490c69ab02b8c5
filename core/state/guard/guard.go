package guard

import (
	"encoding/binary"
	"fmt"
	"math/big"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/MinterTeam/incentives-engine/core/types"
	"github.com/cosmos/iavl"
	"github.com/ethereum/go-ethereum/rlp"
)

const (
	mainPrefix = byte('g')
	slotPrefix = byte('s')
)

type RGuard interface {
	Export(state *types.AppState)
	IsPaused() bool
	IsBreakerTriggered() bool
	GetBreakerThreshold() *big.Int
	GetDailyWithdrawalLimit() *big.Int
	GetGlobalDailyWithdrawalLimit() *big.Int
	GetGlobalDailyWithdrawn(day uint64) *big.Int
	SenderSlotUsed(sender types.Address, slot uint64) bool
	PlatformSlotUsed(slot uint64) bool
}

// Model holds the protection switches and the global withdrawal counter.
// A zero limit or threshold disables the corresponding check.
type Model struct {
	Paused           bool
	BreakerTriggered bool
	BreakerThreshold *big.Int

	DailyWithdrawalLimit       *big.Int
	GlobalDailyWithdrawalLimit *big.Int
	GlobalDailyWithdrawn       *big.Int
	GlobalLastResetDay         uint64

	PlatformSlot    uint64
	HasPlatformSlot bool
}

type Guard struct {
	model      *Model
	isDirty    bool
	slots      map[types.Address]uint64
	dirtySlots map[types.Address]struct{}

	db atomic.Value
	mx sync.Mutex
}

func NewGuard(db *iavl.ImmutableTree) *Guard {
	immutableTree := atomic.Value{}
	if db != nil {
		immutableTree.Store(db)
	}
	return &Guard{
		db:         immutableTree,
		slots:      map[types.Address]uint64{},
		dirtySlots: map[types.Address]struct{}{},
	}
}

func (g *Guard) immutableTree() *iavl.ImmutableTree {
	db := g.db.Load()
	if db == nil {
		return nil
	}
	return db.(*iavl.ImmutableTree)
}

func (g *Guard) SetImmutableTree(immutableTree *iavl.ImmutableTree) {
	g.db.Store(immutableTree)
}

func (g *Guard) Commit(db *iavl.MutableTree, version int64) error {
	g.mx.Lock()
	defer g.mx.Unlock()

	if g.isDirty {
		g.isDirty = false
		data, err := rlp.EncodeToBytes(g.model)
		if err != nil {
			return fmt.Errorf("can't encode guard model: %s", err)
		}
		db.Set([]byte{mainPrefix}, data)
	}

	senders := make([]types.Address, 0, len(g.dirtySlots))
	for sender := range g.dirtySlots {
		senders = append(senders, sender)
	}
	sort.Slice(senders, func(i, j int) bool { return senders[i].Compare(senders[j]) < 0 })
	for _, sender := range senders {
		db.Set(pathSlot(sender), uint64ToBytes(g.slots[sender]))
	}
	g.dirtySlots = map[types.Address]struct{}{}

	return nil
}

func pathSlot(sender types.Address) []byte {
	return append([]byte{slotPrefix}, sender.Bytes()...)
}

func uint64ToBytes(v uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, v)
	return b
}

func (g *Guard) getOrNew() *Model {
	if g.model != nil {
		return g.model
	}

	model := &Model{
		BreakerThreshold:           big.NewInt(0),
		DailyWithdrawalLimit:       big.NewInt(0),
		GlobalDailyWithdrawalLimit: big.NewInt(0),
		GlobalDailyWithdrawn:       big.NewInt(0),
	}
	if tree := g.immutableTree(); tree != nil {
		if _, enc := tree.Get([]byte{mainPrefix}); len(enc) != 0 {
			if err := rlp.DecodeBytes(enc, model); err != nil {
				panic(fmt.Sprintf("failed to decode guard model: %s", err))
			}
		}
	}

	g.model = model
	return model
}

func (g *Guard) IsPaused() bool {
	g.mx.Lock()
	defer g.mx.Unlock()

	return g.getOrNew().Paused
}

func (g *Guard) SetPaused(paused bool) {
	g.mx.Lock()
	defer g.mx.Unlock()

	g.getOrNew().Paused = paused
	g.isDirty = true
}

func (g *Guard) IsBreakerTriggered() bool {
	g.mx.Lock()
	defer g.mx.Unlock()

	return g.getOrNew().BreakerTriggered
}

func (g *Guard) SetBreakerTriggered(triggered bool) {
	g.mx.Lock()
	defer g.mx.Unlock()

	g.getOrNew().BreakerTriggered = triggered
	g.isDirty = true
}

func (g *Guard) GetBreakerThreshold() *big.Int {
	g.mx.Lock()
	defer g.mx.Unlock()

	return big.NewInt(0).Set(g.getOrNew().BreakerThreshold)
}

func (g *Guard) SetBreakerThreshold(threshold *big.Int) {
	g.mx.Lock()
	defer g.mx.Unlock()

	g.getOrNew().BreakerThreshold = big.NewInt(0).Set(threshold)
	g.isDirty = true
}

// BreakerExceeded reports whether moved value trips an enabled breaker.
func (g *Guard) BreakerExceeded(moved *big.Int) bool {
	threshold := g.GetBreakerThreshold()

	return threshold.Sign() == 1 && moved.Cmp(threshold) > 0
}

func (g *Guard) GetDailyWithdrawalLimit() *big.Int {
	g.mx.Lock()
	defer g.mx.Unlock()

	return big.NewInt(0).Set(g.getOrNew().DailyWithdrawalLimit)
}

func (g *Guard) GetGlobalDailyWithdrawalLimit() *big.Int {
	g.mx.Lock()
	defer g.mx.Unlock()

	return big.NewInt(0).Set(g.getOrNew().GlobalDailyWithdrawalLimit)
}

func (g *Guard) SetWithdrawalLimits(daily *big.Int, globalDaily *big.Int) {
	g.mx.Lock()
	defer g.mx.Unlock()

	model := g.getOrNew()
	model.DailyWithdrawalLimit = big.NewInt(0).Set(daily)
	model.GlobalDailyWithdrawalLimit = big.NewInt(0).Set(globalDaily)
	g.isDirty = true
}

// GetGlobalDailyWithdrawn returns the platform-wide amount withdrawn on day.
func (g *Guard) GetGlobalDailyWithdrawn(day uint64) *big.Int {
	g.mx.Lock()
	defer g.mx.Unlock()

	model := g.getOrNew()
	if model.GlobalLastResetDay != day {
		return big.NewInt(0)
	}

	return big.NewInt(0).Set(model.GlobalDailyWithdrawn)
}

func (g *Guard) AddGlobalDailyWithdrawn(day uint64, amount *big.Int) {
	g.mx.Lock()
	defer g.mx.Unlock()

	model := g.getOrNew()
	if model.GlobalLastResetDay != day {
		model.GlobalLastResetDay = day
		model.GlobalDailyWithdrawn = big.NewInt(0)
	}
	model.GlobalDailyWithdrawn = big.NewInt(0).Add(model.GlobalDailyWithdrawn, amount)
	g.isDirty = true
}

func (g *Guard) getSlot(sender types.Address) (uint64, bool) {
	if slot, ok := g.slots[sender]; ok {
		return slot, true
	}

	tree := g.immutableTree()
	if tree == nil {
		return 0, false
	}

	_, enc := tree.Get(pathSlot(sender))
	if len(enc) == 0 {
		return 0, false
	}

	slot := binary.BigEndian.Uint64(enc)
	g.slots[sender] = slot
	return slot, true
}

// SenderSlotUsed reports whether sender already mutated state in slot.
func (g *Guard) SenderSlotUsed(sender types.Address, slot uint64) bool {
	g.mx.Lock()
	defer g.mx.Unlock()

	last, ok := g.getSlot(sender)
	return ok && last == slot
}

func (g *Guard) UseSenderSlot(sender types.Address, slot uint64) {
	g.mx.Lock()
	defer g.mx.Unlock()

	g.slots[sender] = slot
	g.dirtySlots[sender] = struct{}{}
}

// PlatformSlotUsed reports whether a platform-wide sensitive call already ran in slot.
func (g *Guard) PlatformSlotUsed(slot uint64) bool {
	g.mx.Lock()
	defer g.mx.Unlock()

	model := g.getOrNew()
	return model.HasPlatformSlot && model.PlatformSlot == slot
}

func (g *Guard) UsePlatformSlot(slot uint64) {
	g.mx.Lock()
	defer g.mx.Unlock()

	model := g.getOrNew()
	model.PlatformSlot = slot
	model.HasPlatformSlot = true
	g.isDirty = true
}

func (g *Guard) Export(state *types.AppState) {
	g.mx.Lock()
	defer g.mx.Unlock()

	model := g.getOrNew()
	state.Guard = types.Guard{
		Paused:                     model.Paused,
		BreakerTriggered:           model.BreakerTriggered,
		BreakerThreshold:           model.BreakerThreshold.String(),
		DailyWithdrawalLimit:       model.DailyWithdrawalLimit.String(),
		GlobalDailyWithdrawalLimit: model.GlobalDailyWithdrawalLimit.String(),
		GlobalDailyWithdrawn:       model.GlobalDailyWithdrawn.String(),
		GlobalLastResetDay:         model.GlobalLastResetDay,
	}
}
