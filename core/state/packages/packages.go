package packages

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

const mainPrefix = byte('p')

type RPackages interface {
	Export(state *types.AppState)
	Get(level uint32) *Model
	Count() uint32
	All() []*Model
}

// Model is a package tier. Rates are in basis points.
type Model struct {
	Level    uint32
	Price    *big.Int
	DirectBP uint64
	LevelBP  uint64
	UplineBP uint64
	LeaderBP uint64
	HelpBP   uint64
	ClubBP   uint64
}

// RatesSum returns the sum of all six rates.
func (m *Model) RatesSum() uint64 {
	return m.DirectBP + m.LevelBP + m.UplineBP + m.LeaderBP + m.HelpBP + m.ClubBP
}

// Packages is the tier table. It is written once at genesis.
type Packages struct {
	list   map[uint32]*Model
	dirty  map[uint32]struct{}
	loaded bool

	db   atomic.Value
	lock sync.RWMutex
}

func NewPackages(db *iavl.ImmutableTree) *Packages {
	immutableTree := atomic.Value{}
	if db != nil {
		immutableTree.Store(db)
	}
	return &Packages{db: immutableTree, list: map[uint32]*Model{}, dirty: map[uint32]struct{}{}}
}

func (p *Packages) immutableTree() *iavl.ImmutableTree {
	db := p.db.Load()
	if db == nil {
		return nil
	}
	return db.(*iavl.ImmutableTree)
}

func (p *Packages) SetImmutableTree(immutableTree *iavl.ImmutableTree) {
	p.db.Store(immutableTree)
}

func (p *Packages) Commit(db *iavl.MutableTree, version int64) error {
	p.lock.Lock()
	defer p.lock.Unlock()

	levels := make([]uint32, 0, len(p.dirty))
	for level := range p.dirty {
		levels = append(levels, level)
	}
	sort.Slice(levels, func(i, j int) bool { return levels[i] < levels[j] })
	for _, level := range levels {
		data, err := rlp.EncodeToBytes(p.list[level])
		if err != nil {
			return fmt.Errorf("can't encode package %d: %v", level, err)
		}
		db.Set(pathPackage(level), data)
	}
	p.dirty = map[uint32]struct{}{}

	return nil
}

func pathPackage(level uint32) []byte {
	path := make([]byte, 5)
	path[0] = mainPrefix
	binary.BigEndian.PutUint32(path[1:], level)
	return path
}

// Create adds a tier. Rates must sum to 100%.
func (p *Packages) Create(model *Model) error {
	if sum := model.RatesSum(); sum != types.BasisPoints {
		return fmt.Errorf("package %d rates sum to %d, expected %d", model.Level, sum, types.BasisPoints)
	}

	p.load()

	p.lock.Lock()
	defer p.lock.Unlock()

	p.list[model.Level] = model
	p.dirty[model.Level] = struct{}{}

	return nil
}

func (p *Packages) load() {
	p.lock.Lock()
	defer p.lock.Unlock()

	if p.loaded {
		return
	}
	p.loaded = true

	tree := p.immutableTree()
	if tree == nil {
		return
	}

	tree.IterateRange([]byte{mainPrefix}, []byte{mainPrefix + 1}, true, func(key []byte, value []byte) bool {
		model := &Model{}
		if err := rlp.DecodeBytes(value, model); err != nil {
			panic(fmt.Sprintf("failed to decode package %x: %s", key, err))
		}
		if _, ok := p.list[model.Level]; !ok {
			p.list[model.Level] = model
		}
		return false
	})
}

// Get returns the tier or nil when the level is out of range.
func (p *Packages) Get(level uint32) *Model {
	p.load()

	p.lock.RLock()
	defer p.lock.RUnlock()

	return p.list[level]
}

func (p *Packages) Count() uint32 {
	p.load()

	p.lock.RLock()
	defer p.lock.RUnlock()

	return uint32(len(p.list))
}

// All returns tiers ordered by level.
func (p *Packages) All() []*Model {
	p.load()

	p.lock.RLock()
	list := make([]*Model, 0, len(p.list))
	for _, model := range p.list {
		list = append(list, model)
	}
	p.lock.RUnlock()

	sort.Slice(list, func(i, j int) bool { return list[i].Level < list[j].Level })
	return list
}

func (p *Packages) Export(state *types.AppState) {
	for _, model := range p.All() {
		state.Packages = append(state.Packages, types.Package{
			Level:    model.Level,
			Price:    model.Price.String(),
			DirectBP: model.DirectBP,
			LevelBP:  model.LevelBP,
			UplineBP: model.UplineBP,
			LeaderBP: model.LeaderBP,
			HelpBP:   model.HelpBP,
			ClubBP:   model.ClubBP,
		})
	}
}
