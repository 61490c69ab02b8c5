package placement

import (
	"errors"
	"time"

	"github.com/MinterTeam/incentives-engine/core/state/accounts"
	"github.com/MinterTeam/incentives-engine/core/types"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/jonboulle/clockwork"
)

// Reader gives read access to account records.
type Reader interface {
	GetAccount(address types.Address) *accounts.Model
}

// Accounts gives the placement engine the writes it needs.
type Accounts interface {
	Reader
	SetMatrixChild(parent types.Address, child types.Address, right bool)
	IncTeamSize(address types.Address)
}

type networkSize struct {
	size       uint64
	computedAt time.Time
}

// Engine walks the sponsor forest and the binary matrix.
type Engine struct {
	params types.Params
	clock  clockwork.Clock
	cache  *lru.Cache[types.Address, networkSize]
}

func NewEngine(params types.Params, clock clockwork.Clock) (*Engine, error) {
	size := params.NetworkSizeCacheSize
	if size <= 0 {
		size = 1
	}
	cache, err := lru.New[types.Address, networkSize](size)
	if err != nil {
		return nil, err
	}

	return &Engine{params: params, clock: clock, cache: cache}, nil
}

// SponsorChain returns up to depth ancestors of address, nearest first. The
// walk stops at the root, at an unknown sponsor or at a repeated address.
func (e *Engine) SponsorChain(reader Reader, address types.Address, depth int) []types.Address {
	account := reader.GetAccount(address)
	if account == nil {
		return nil
	}

	chain := make([]types.Address, 0, depth)
	seen := map[types.Address]struct{}{address: {}}
	for sponsor := account.GetSponsor(); len(chain) < depth && !sponsor.IsZero(); {
		if _, ok := seen[sponsor]; ok {
			break
		}
		seen[sponsor] = struct{}{}

		parent := reader.GetAccount(sponsor)
		if parent == nil {
			break
		}
		chain = append(chain, sponsor)
		sponsor = parent.GetSponsor()
	}

	return chain
}

// FindMatrixSlot returns the first free slot below sponsor: its left child
// if empty, else its right child if empty, else the same test one level
// down the left branch. New accounts are always leaves, so the left branch
// is finite and the walk ends.
func (e *Engine) FindMatrixSlot(reader Reader, sponsor types.Address) (parent types.Address, right bool, err error) {
	seen := make(map[types.Address]struct{})
	for current := sponsor; ; {
		if _, ok := seen[current]; ok {
			return types.Address{}, false, errors.New("matrix left branch has a cycle")
		}
		seen[current] = struct{}{}

		account := reader.GetAccount(current)
		if account == nil {
			return types.Address{}, false, errors.New("matrix node is not registered")
		}

		_, left, rightChild := account.GetMatrix()
		if left.IsZero() {
			return current, false, nil
		}
		if rightChild.IsZero() {
			return current, true, nil
		}
		current = left
	}
}

// Place links a new account into the matrix below its sponsor.
func (e *Engine) Place(accs Accounts, address types.Address, sponsor types.Address) error {
	parent, right, err := e.FindMatrixSlot(accs, sponsor)
	if err != nil {
		return err
	}

	accs.SetMatrixChild(parent, address, right)
	return nil
}

// PropagateTeamSize adds the new account to the team of every ancestor up
// to the team size depth. Deeper ancestors are not updated.
func (e *Engine) PropagateTeamSize(accs Accounts, address types.Address) {
	for _, ancestor := range e.SponsorChain(accs, address, e.params.TeamSizeDepth) {
		accs.IncTeamSize(ancestor)
	}
}

// NetworkSize counts accounts reachable from address through direct
// referral links, bounded by the queue and visited limits. Results are
// cached for the configured TTL.
func (e *Engine) NetworkSize(reader Reader, address types.Address) uint64 {
	now := e.clock.Now()
	if cached, ok := e.cache.Get(address); ok && now.Sub(cached.computedAt) < e.params.NetworkSizeCacheTTL {
		return cached.size
	}

	size := e.countNetwork(reader, address)
	e.cache.Add(address, networkSize{size: size, computedAt: now})

	return size
}

func (e *Engine) countNetwork(reader Reader, address types.Address) uint64 {
	root := reader.GetAccount(address)
	if root == nil {
		return 0
	}

	visited := map[types.Address]struct{}{address: {}}
	queue := []types.Address{address}
	var count uint64

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		account := reader.GetAccount(current)
		if account == nil {
			continue
		}

		for _, referral := range account.GetDirectReferrals() {
			if _, ok := visited[referral]; ok {
				continue
			}
			if len(visited) > e.params.NetworkSizeMaxVisited {
				return count
			}
			visited[referral] = struct{}{}
			count++

			if len(queue) < e.params.NetworkSizeMaxQueue {
				queue = append(queue, referral)
			}
		}
	}

	return count
}
