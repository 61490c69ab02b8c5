package transaction

import (
	"fmt"
	"math/big"

	"github.com/MinterTeam/incentives-engine/core/code"
	"github.com/MinterTeam/incentives-engine/core/types"
	"github.com/MinterTeam/incentives-engine/core/withdrawal"
	"github.com/MinterTeam/incentives-engine/helpers"
)

type WithdrawData struct {
	Amount *big.Int
}

func (data WithdrawData) TxType() TxType {
	return TypeWithdraw
}

func (data WithdrawData) String() string {
	return fmt.Sprintf("WITHDRAW amount:%s", data.Amount)
}

func (data WithdrawData) basicCheck(tx *Transaction, context *Context) *Response {
	st := context.State
	params := context.Params

	account := st.Accounts.GetAccount(tx.Sender)
	if account == nil {
		return &Response{
			Code: code.NotRegistered,
			Log:  fmt.Sprintf("Account %s is not registered", tx.Sender.String()),
			Info: EncodeError(code.NewNotRegistered(tx.Sender.String())),
		}
	}

	if account.IsBlacklisted() {
		return &Response{
			Code: code.Blacklisted,
			Log:  fmt.Sprintf("Account %s is blacklisted", tx.Sender.String()),
			Info: EncodeError(code.NewBlacklisted(tx.Sender.String())),
		}
	}

	if data.Amount == nil || data.Amount.Sign() <= 0 || data.Amount.Cmp(params.MinWithdrawal) < 0 {
		amount := "0"
		if data.Amount != nil {
			amount = data.Amount.String()
		}
		return &Response{
			Code: code.InvalidAmount,
			Log:  fmt.Sprintf("Withdrawal amount must be at least %s", params.MinWithdrawal),
			Info: EncodeError(code.NewInvalidAmount(amount, params.MinWithdrawal.String())),
		}
	}

	if balance := account.GetBalance(); balance.Cmp(data.Amount) < 0 {
		return &Response{
			Code: code.InsufficientBalance,
			Log:  fmt.Sprintf("Insufficient balance of %s. Wanted %s, has %s", tx.Sender.String(), data.Amount, balance),
			Info: EncodeError(code.NewInsufficientBalance(tx.Sender.String(), data.Amount.String(), balance.String())),
		}
	}

	if data.Amount.Cmp(params.MaxSingleWithdrawal) > 0 {
		return &Response{
			Code: code.ExceedsMaxSingleWithdrawal,
			Log:  fmt.Sprintf("Withdrawal amount is above %s", params.MaxSingleWithdrawal),
			Info: EncodeError(code.NewExceedsMaxSingleWithdrawal(data.Amount.String(), params.MaxSingleWithdrawal.String())),
		}
	}

	day := types.Day(context.Now)
	if limit := st.Guard.GetDailyWithdrawalLimit(); limit.Sign() == 1 {
		withdrawn := account.DailyWithdrawnOn(day)
		if helpers.Sum(withdrawn, data.Amount).Cmp(limit) > 0 {
			return &Response{
				Code: code.DailyLimitExceeded,
				Log:  fmt.Sprintf("Daily withdrawal limit %s exceeded", limit),
				Info: EncodeError(code.NewDailyLimitExceeded(withdrawn.String(), data.Amount.String(), limit.String())),
			}
		}
	}

	if limit := st.Guard.GetGlobalDailyWithdrawalLimit(); limit.Sign() == 1 {
		withdrawn := st.Guard.GetGlobalDailyWithdrawn(day)
		if helpers.Sum(withdrawn, data.Amount).Cmp(limit) > 0 {
			return &Response{
				Code: code.GlobalDailyLimitExceeded,
				Log:  fmt.Sprintf("Global daily withdrawal limit %s exceeded", limit),
				Info: EncodeError(code.NewGlobalDailyLimitExceeded(withdrawn.String(), data.Amount.String(), limit.String())),
			}
		}
	}

	return nil
}

func (data WithdrawData) Run(tx *Transaction, context *Context) Response {
	response := data.basicCheck(tx, context)
	if response != nil {
		return *response
	}

	split := withdrawal.Calculate(data.Amount, context.Withdrawals.RateFor(tx.Sender), context.Params.PlatformFeeBP)
	treasury, err := context.Vault.BalanceOf(context.Ctx, types.ReferenceCoin, context.Treasury)
	if err != nil {
		return Response{
			Code: code.InternalError,
			Log:  err.Error(),
			Info: EncodeError(code.NewInternalError(err.Error())),
		}
	}
	if treasury.Cmp(split.Withdrawable) < 0 {
		return Response{
			Code: code.InsufficientTreasury,
			Log:  fmt.Sprintf("Treasury holds %s, needs %s", treasury, split.Withdrawable),
			Info: EncodeError(code.NewInsufficientTreasury(split.Withdrawable.String(), treasury.String())),
		}
	}

	_, payouts, err := context.Withdrawals.Withdraw(tx.Sender, data.Amount, types.Day(context.Now))
	if err != nil {
		return Response{
			Code: code.InternalError,
			Log:  err.Error(),
			Info: EncodeError(code.NewInternalError(err.Error())),
		}
	}

	for _, payout := range payouts {
		context.pay(payout.To, payout.Amount)
	}

	return Response{Code: code.OK}
}
