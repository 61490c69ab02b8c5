package distribution

import (
	"errors"
	"math/big"

	"github.com/MinterTeam/incentives-engine/core/commissions"
	"github.com/MinterTeam/incentives-engine/core/events"
	"github.com/MinterTeam/incentives-engine/core/state"
	"github.com/MinterTeam/incentives-engine/core/state/accounts"
	"github.com/MinterTeam/incentives-engine/core/state/pools"
	"github.com/MinterTeam/incentives-engine/core/statistics"
	"github.com/MinterTeam/incentives-engine/core/types"
	"github.com/MinterTeam/incentives-engine/helpers"
)

var (
	ErrCycleNotDue          = errors.New("distribution cycle is not due")
	ErrPoolEmpty            = errors.New("pool is empty")
	ErrNoEligibleRecipients = errors.New("no eligible recipients")
)

// Leadership ranks.
const (
	RankSilver uint32 = 0
	RankGold   uint32 = 1
)

// Distributor drains pools in fixed-size batches. Progress lives in the pool
// cursor, so every call is atomic and a failed call can simply be retried.
type Distributor struct {
	state       *state.State
	commissions *commissions.Engine
	params      types.Params
	stats       *statistics.Data
}

func NewDistributor(st *state.State, commissions *commissions.Engine, params types.Params, stats *statistics.Data) *Distributor {
	return &Distributor{state: st, commissions: commissions, params: params, stats: stats}
}

// Batch reports one distribution call.
type Batch struct {
	Pool      types.PoolType
	Started   bool
	From      uint64
	To        uint64
	Paid      *big.Int
	Retained  *big.Int
	Completed bool
}

// NextTime returns the earliest time a new cycle of pool may start.
func (d *Distributor) NextTime(pool types.PoolType) uint64 {
	last := d.state.Pools.Get(pool).LastDistributionTime
	if last == 0 {
		return 0
	}
	return last + uint64(d.params.DistributionIntervals[pool].Seconds())
}

// Distribute starts a cycle of pool when none is running and pays the next
// batch of recipients.
func (d *Distributor) Distribute(pool types.PoolType, now uint64) (*Batch, error) {
	batch := &Batch{Pool: pool, Paid: big.NewInt(0), Retained: big.NewInt(0)}

	if !d.state.Pools.GetCursor(pool).InProgress {
		if err := d.start(pool, now); err != nil {
			return nil, err
		}
		batch.Started = true
	}

	cursor := d.state.Pools.GetCursor(pool)
	batch.From = cursor.Index
	batch.To = cursor.Index + cursor.BatchSize
	if batch.To > cursor.SnapshotEligibleCount {
		batch.To = cursor.SnapshotEligibleCount
	}

	for i := batch.From; i < batch.To; i++ {
		recipient := cursor.Recipients[i]
		share := cursor.Share(i)
		if share.Sign() == 0 {
			continue
		}

		d.state.Pools.PayFromEscrow(pool, share)

		account := d.state.Accounts.GetAccount(recipient)
		if account == nil || !account.IsEligible() {
			d.state.App.AddRetained(share)
			batch.Retained.Add(batch.Retained, share)
			continue
		}

		d.commissions.Credit(events.KindDistribution, types.Address{}, recipient, share)
		batch.Paid.Add(batch.Paid, share)
	}

	d.addEvent(&events.DistributionBatchEvent{
		Pool: pool.String(),
		From: batch.From,
		To:   batch.To,
		Paid: batch.Paid.String(),
	})
	d.stats.DistributionBatch(pool.String())

	if batch.To < cursor.SnapshotEligibleCount {
		d.state.Pools.SetCursorIndex(pool, batch.To)
		return batch, nil
	}

	dust := d.state.Pools.FinishCycle(pool, now)
	d.state.App.AddRetained(dust)
	batch.Retained.Add(batch.Retained, dust)
	batch.Completed = true

	d.addEvent(&events.DistributionCompletedEvent{
		Pool:       pool.String(),
		Total:      cursor.SnapshotTotal.String(),
		Recipients: cursor.SnapshotEligibleCount,
		Retained:   dust.String(),
	})

	return batch, nil
}

func (d *Distributor) start(pool types.PoolType, now uint64) error {
	model := d.state.Pools.Get(pool)
	if model.LastDistributionTime != 0 && now < d.NextTime(pool) {
		return ErrCycleNotDue
	}
	if model.Balance.Sign() == 0 {
		return ErrPoolEmpty
	}

	recipients, ranks := d.Eligible(pool)
	if len(recipients) == 0 {
		return ErrNoEligibleRecipients
	}

	cursor := &pools.Cursor{
		BatchSize:             d.params.BatchSize,
		SnapshotTotal:         model.Balance,
		SnapshotEligibleCount: uint64(len(recipients)),
		Recipients:            recipients,
		Escrow:                big.NewInt(0),
		StartedAt:             now,
	}

	if pool == types.PoolLeadership {
		cursor.Ranks = ranks
		cursor.Shares = d.leadershipShares(model.Balance, ranks)
	} else {
		cursor.Shares = []*big.Int{big.NewInt(0).Quo(model.Balance, big.NewInt(int64(len(recipients))))}
	}

	d.state.Pools.StartCycle(pool, cursor)
	return nil
}

// leadershipShares splits total into gold and silver subtotals and divides
// each by its rank size. An empty rank hands its subtotal to the other one.
func (d *Distributor) leadershipShares(total *big.Int, ranks []uint32) []*big.Int {
	var gold, silver int64
	for _, rank := range ranks {
		if rank == RankGold {
			gold++
		} else {
			silver++
		}
	}

	goldTotal := helpers.MulBP(total, d.params.LeaderGoldShareBP)
	silverTotal := big.NewInt(0).Sub(total, goldTotal)
	switch {
	case gold == 0:
		silverTotal, goldTotal = big.NewInt(0).Set(total), big.NewInt(0)
	case silver == 0:
		goldTotal, silverTotal = big.NewInt(0).Set(total), big.NewInt(0)
	}

	shares := []*big.Int{big.NewInt(0), big.NewInt(0)}
	if silver > 0 {
		shares[RankSilver] = silverTotal.Quo(silverTotal, big.NewInt(silver))
	}
	if gold > 0 {
		shares[RankGold] = goldTotal.Quo(goldTotal, big.NewInt(gold))
	}

	return shares
}

// Eligible lists the recipients of pool in account id order. For the
// leadership pool it also returns each recipient's rank.
func (d *Distributor) Eligible(pool types.PoolType) ([]types.Address, []uint32) {
	var (
		recipients []types.Address
		ranks      []uint32
	)

	count := d.state.App.GetAccountsCount()
	for id := uint32(1); id <= count; id++ {
		address, ok := d.state.Accounts.GetAddressByID(id)
		if !ok {
			continue
		}
		account := d.state.Accounts.GetAccount(address)
		if account == nil || !account.IsEligible() {
			continue
		}

		rank, ok := d.qualifies(pool, account)
		if !ok {
			continue
		}

		recipients = append(recipients, address)
		ranks = append(ranks, rank)
	}

	return recipients, ranks
}

func (d *Distributor) qualifies(pool types.PoolType, account *accounts.Model) (uint32, bool) {
	switch pool {
	case types.PoolLeadership:
		directs := account.GetDirectReferralCount()
		if directs >= d.params.LeaderGoldDirects {
			return RankGold, true
		}
		return RankSilver, directs >= d.params.LeaderSilverDirects
	case types.PoolCommunity:
		return 0, true
	case types.PoolClub:
		return 0, account.GetPackageLevel() >= d.params.ClubMinLevel
	case types.PoolAlgorithmic:
		return 0, account.GetTeamSize() >= d.params.AlgorithmicMinTeam
	}

	return 0, false
}

func (d *Distributor) addEvent(event events.Event) {
	if store := d.state.Events(); store != nil {
		store.AddEvent(event)
	}
}
