package withdrawal

import (
	"fmt"
	"math/big"

	"github.com/MinterTeam/incentives-engine/core/commissions"
	"github.com/MinterTeam/incentives-engine/core/events"
	"github.com/MinterTeam/incentives-engine/core/state"
	"github.com/MinterTeam/incentives-engine/core/statistics"
	"github.com/MinterTeam/incentives-engine/core/types"
	"github.com/MinterTeam/incentives-engine/helpers"
)

// Split is the breakdown of a withdrawal request.
type Split struct {
	Amount       *big.Int
	RateBP       uint64
	Withdrawable *big.Int
	Reinvest     *big.Int
	Fee          *big.Int
	Net          *big.Int
}

// Calculate splits amount by the withdrawal rate and the platform fee.
func Calculate(amount *big.Int, rateBP uint64, feeBP uint64) *Split {
	withdrawable := helpers.MulBP(amount, rateBP)
	fee := helpers.MulBP(withdrawable, feeBP)

	return &Split{
		Amount:       big.NewInt(0).Set(amount),
		RateBP:       rateBP,
		Withdrawable: withdrawable,
		Reinvest:     big.NewInt(0).Sub(amount, withdrawable),
		Fee:          fee,
		Net:          big.NewInt(0).Sub(withdrawable, fee),
	}
}

// Payout is an external transfer from the treasury owed once the operation
// passes every check.
type Payout struct {
	To     types.Address
	Amount *big.Int
}

type Processor struct {
	state       *state.State
	commissions *commissions.Engine
	params      types.Params
	stats       *statistics.Data
}

func NewProcessor(st *state.State, commissions *commissions.Engine, params types.Params, stats *statistics.Data) *Processor {
	return &Processor{state: st, commissions: commissions, params: params, stats: stats}
}

// RateFor returns the withdrawal rate of address.
func (p *Processor) RateFor(address types.Address) uint64 {
	account := p.state.Accounts.GetAccount(address)
	if account == nil {
		return p.params.WithdrawalRateFor(0)
	}

	return p.params.WithdrawalRateFor(account.GetDirectReferralCount())
}

// Withdraw debits amount from the balance of from, books the daily totals and
// reinvests the part above the withdrawal rate. The returned payouts are not
// executed here. Validation is the caller's job.
func (p *Processor) Withdraw(from types.Address, amount *big.Int, day uint64) (*Split, []Payout, error) {
	if p.state.Accounts.GetAccount(from) == nil {
		return nil, nil, fmt.Errorf("account %s is not registered", from.String())
	}

	split := Calculate(amount, p.RateFor(from), p.params.PlatformFeeBP)

	p.state.Accounts.SubBalance(from, amount)
	p.state.Accounts.AddDailyWithdrawn(from, day, amount)
	p.state.Guard.AddGlobalDailyWithdrawn(day, amount)

	payouts := []Payout{{To: from, Amount: split.Net}}
	paid := big.NewInt(0).Set(split.Net)
	if recipient := p.state.App.GetPlatformRecipient(); !recipient.IsZero() {
		payouts = append(payouts, Payout{To: recipient, Amount: split.Fee})
		paid.Add(paid, split.Fee)
	} else {
		p.state.App.AddRetained(split.Fee)
	}
	p.state.App.AddWithdrawn(paid)

	if _, err := p.commissions.Reinvest(from, split.Reinvest); err != nil {
		return nil, nil, err
	}

	if store := p.state.Events(); store != nil {
		store.AddEvent(&events.WithdrawalEvent{
			Address:  from,
			Amount:   split.Amount.String(),
			Net:      split.Net.String(),
			Fee:      split.Fee.String(),
			Reinvest: split.Reinvest.String(),
		})
	}
	p.stats.Withdrawal(paid)

	return split, payouts, nil
}
