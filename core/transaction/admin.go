package transaction

import (
	"fmt"
	"math/big"

	"github.com/MinterTeam/incentives-engine/core/code"
	"github.com/MinterTeam/incentives-engine/core/types"
)

type SetBlacklistedData struct {
	Address     types.Address
	Blacklisted bool
}

func (data SetBlacklistedData) TxType() TxType {
	return TypeSetBlacklisted
}

func (data SetBlacklistedData) String() string {
	return fmt.Sprintf("SET BLACKLISTED address:%s blacklisted:%t", data.Address.String(), data.Blacklisted)
}

func (data SetBlacklistedData) adminOnly() {}

func (data SetBlacklistedData) Run(tx *Transaction, context *Context) Response {
	if !context.State.Accounts.Exists(data.Address) {
		return Response{
			Code: code.AdminTargetNotFound,
			Log:  fmt.Sprintf("Account %s is not registered", data.Address.String()),
			Info: EncodeError(code.NewAdminTargetNotFound(data.Address.String())),
		}
	}

	context.State.Accounts.SetBlacklisted(data.Address, data.Blacklisted)
	return Response{Code: code.OK}
}

type SetPlatformRecipientData struct {
	Address types.Address
}

func (data SetPlatformRecipientData) TxType() TxType {
	return TypeSetPlatformRecipient
}

func (data SetPlatformRecipientData) String() string {
	return fmt.Sprintf("SET PLATFORM RECIPIENT address:%s", data.Address.String())
}

func (data SetPlatformRecipientData) adminOnly() {}

func (data SetPlatformRecipientData) Run(tx *Transaction, context *Context) Response {
	if data.Address.IsZero() {
		return Response{
			Code: code.InvalidAddress,
			Log:  "Platform recipient address is empty",
			Info: EncodeError(code.NewInvalidAddress(data.Address.String())),
		}
	}

	context.State.App.SetPlatformRecipient(data.Address)
	return Response{Code: code.OK}
}

// FundPoolData moves reference coins approved by the admin into a pool.
type FundPoolData struct {
	Pool   types.PoolType
	Amount *big.Int
}

func (data FundPoolData) TxType() TxType {
	return TypeFundPool
}

func (data FundPoolData) String() string {
	return fmt.Sprintf("FUND POOL pool:%s amount:%s", data.Pool, data.Amount)
}

func (data FundPoolData) adminOnly() {}

func (data FundPoolData) Run(tx *Transaction, context *Context) Response {
	if !data.Pool.IsValid() {
		return Response{
			Code: code.UnknownPool,
			Log:  fmt.Sprintf("Unknown pool %s", data.Pool),
			Info: EncodeError(code.NewUnknownPool(data.Pool.String())),
		}
	}

	if data.Amount == nil || data.Amount.Sign() <= 0 {
		return Response{
			Code: code.InvalidAmount,
			Log:  "Amount must be positive",
			Info: EncodeError(code.NewInvalidAmount(fmt.Sprintf("%s", data.Amount), "1")),
		}
	}

	context.collect(types.ReferenceCoin, tx.Sender, data.Amount)
	context.State.App.AddInflow(data.Amount)
	context.Commissions.FundPool(data.Pool, data.Amount)

	return Response{Code: code.OK}
}
