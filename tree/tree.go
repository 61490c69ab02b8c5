package tree

import (
	"sync"

	"github.com/cosmos/iavl"
	"github.com/pkg/errors"
	dbm "github.com/tendermint/tm-db"
)

type saver interface {
	Commit(db *iavl.MutableTree, version int64) error
	SetImmutableTree(immutableTree *iavl.ImmutableTree)
}

// MTree mutable tree, used for operation delivery
type MTree interface {
	Commit(...saver) ([]byte, int64, error)
	GetLastImmutable() *iavl.ImmutableTree
	GetImmutableAtHeight(version int64) (*iavl.ImmutableTree, error)
	DeleteVersion(version int64) error
	AvailableVersions() []int
	Version() int64
	Hash() []byte
}

// NewMutableTree creates and returns a new MutableTree. Height zero loads the
// latest saved version, any other height reloads that version for overwriting.
func NewMutableTree(height uint64, db dbm.DB, cacheSize int) (MTree, error) {
	tree, err := iavl.NewMutableTree(db, cacheSize)
	if err != nil {
		return nil, errors.Wrap(err, "create iavl tree")
	}

	if height == 0 {
		if _, err := tree.Load(); err != nil {
			return nil, errors.Wrap(err, "load latest version")
		}
	} else if _, err := tree.LoadVersionForOverwriting(int64(height)); err != nil {
		return nil, errors.Wrapf(err, "load version %d", height)
	}

	return &mutableTree{tree: tree}, nil
}

type mutableTree struct {
	tree *iavl.MutableTree
	lock sync.RWMutex
}

func (t *mutableTree) GetLastImmutable() *iavl.ImmutableTree {
	t.lock.RLock()
	defer t.lock.RUnlock()

	return t.lastImmutable()
}

func (t *mutableTree) lastImmutable() *iavl.ImmutableTree {
	if t.tree.Version() == 0 {
		return iavl.NewImmutableTree(dbm.NewMemDB(), 0)
	}

	immutable, err := t.tree.GetImmutable(t.tree.Version())
	if err != nil {
		panic(err)
	}

	return immutable
}

func (t *mutableTree) GetImmutableAtHeight(version int64) (*iavl.ImmutableTree, error) {
	t.lock.RLock()
	defer t.lock.RUnlock()

	return t.tree.GetImmutable(version)
}

func (t *mutableTree) Hash() []byte {
	t.lock.RLock()
	defer t.lock.RUnlock()

	return t.tree.Hash()
}

func (t *mutableTree) Version() int64 {
	t.lock.RLock()
	defer t.lock.RUnlock()

	return t.tree.Version()
}

func (t *mutableTree) AvailableVersions() []int {
	t.lock.RLock()
	defer t.lock.RUnlock()

	return t.tree.AvailableVersions()
}

// Commit flushes every dirty saver into the tree, saves a new version and
// points all savers at the resulting immutable tree.
func (t *mutableTree) Commit(savers ...saver) ([]byte, int64, error) {
	t.lock.Lock()
	defer t.lock.Unlock()

	version := t.tree.Version() + 1
	for _, s := range savers {
		if err := s.Commit(t.tree, version); err != nil {
			t.tree.Rollback()
			return nil, 0, err
		}
	}

	hash, v, err := t.tree.SaveVersion()
	if err != nil {
		t.tree.Rollback()
		return nil, 0, errors.Wrap(err, "save version")
	}

	immutable := t.lastImmutable()
	for _, s := range savers {
		s.SetImmutableTree(immutable)
	}

	return hash, v, nil
}

func (t *mutableTree) DeleteVersion(version int64) error {
	t.lock.Lock()
	defer t.lock.Unlock()

	if !t.tree.VersionExists(version) {
		return nil
	}

	return t.tree.DeleteVersion(version)
}
