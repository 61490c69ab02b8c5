package pools

import (
	"math/big"

	"github.com/MinterTeam/incentives-engine/core/types"
)

type Model struct {
	Balance              *big.Int
	LastDistributionTime uint64
	TotalDistributed     *big.Int
}

func newModel() *Model {
	return &Model{Balance: big.NewInt(0), TotalDistributed: big.NewInt(0)}
}

func (m *Model) copy() *Model {
	return &Model{
		Balance:              big.NewInt(0).Set(m.Balance),
		LastDistributionTime: m.LastDistributionTime,
		TotalDistributed:     big.NewInt(0).Set(m.TotalDistributed),
	}
}

// Cursor is the checkpoint of a distribution cycle. Recipients, ranks and
// shares are fixed when the cycle starts; Index is the next recipient to pay.
type Cursor struct {
	InProgress            bool
	Index                 uint64
	BatchSize             uint64
	SnapshotTotal         *big.Int
	SnapshotEligibleCount uint64
	Recipients            []types.Address
	Ranks                 []uint32
	Shares                []*big.Int
	Escrow                *big.Int
	StartedAt             uint64
}

func newCursor() *Cursor {
	return &Cursor{SnapshotTotal: big.NewInt(0), Escrow: big.NewInt(0)}
}

// Share returns the amount owed to the recipient at position i.
func (c *Cursor) Share(i uint64) *big.Int {
	rank := uint32(0)
	if len(c.Ranks) > 0 {
		rank = c.Ranks[i]
	}

	return big.NewInt(0).Set(c.Shares[rank])
}

func (c *Cursor) copy() *Cursor {
	cursor := &Cursor{
		InProgress:            c.InProgress,
		Index:                 c.Index,
		BatchSize:             c.BatchSize,
		SnapshotTotal:         orZero(c.SnapshotTotal),
		SnapshotEligibleCount: c.SnapshotEligibleCount,
		Recipients:            append([]types.Address(nil), c.Recipients...),
		Ranks:                 append([]uint32(nil), c.Ranks...),
		Escrow:                orZero(c.Escrow),
		StartedAt:             c.StartedAt,
	}
	for _, share := range c.Shares {
		cursor.Shares = append(cursor.Shares, big.NewInt(0).Set(share))
	}

	return cursor
}

func orZero(value *big.Int) *big.Int {
	if value == nil {
		return big.NewInt(0)
	}

	return big.NewInt(0).Set(value)
}
