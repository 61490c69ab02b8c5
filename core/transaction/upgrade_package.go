package transaction

import (
	"fmt"
	"math/big"
	"strconv"

	"github.com/MinterTeam/incentives-engine/core/code"
	"github.com/MinterTeam/incentives-engine/core/events"
	"github.com/MinterTeam/incentives-engine/core/types"
)

type UpgradePackageData struct {
	NewLevel uint32
	Coin     types.CoinID
	Amount   *big.Int
}

func (data UpgradePackageData) TxType() TxType {
	return TypeUpgradePackage
}

func (data UpgradePackageData) String() string {
	return fmt.Sprintf("UPGRADE level:%d coin:%s amount:%s", data.NewLevel, data.Coin, data.Amount)
}

func (data UpgradePackageData) basicCheck(tx *Transaction, context *Context) *Response {
	account := context.State.Accounts.GetAccount(tx.Sender)
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

	current := account.GetPackageLevel()
	if data.NewLevel <= current || context.State.Packages.Get(data.NewLevel) == nil {
		return &Response{
			Code: code.InvalidTier,
			Log:  fmt.Sprintf("Cannot upgrade from package %d to %d", current, data.NewLevel),
			Info: EncodeError(code.NewInvalidTier(strconv.Itoa(int(data.NewLevel)), strconv.Itoa(int(current)), strconv.Itoa(int(context.State.Packages.Count())))),
		}
	}

	return nil
}

func (data UpgradePackageData) Run(tx *Transaction, context *Context) Response {
	response := data.basicCheck(tx, context)
	if response != nil {
		return *response
	}

	st := context.State
	price := st.Packages.Get(data.NewLevel).Price
	if response := collectPayment(tx, context, price, data.Coin, data.Amount); response != nil {
		return *response
	}

	st.Accounts.AddInvestment(tx.Sender, price, big.NewInt(0).Mul(price, big.NewInt(0).SetUint64(context.Params.CapMultiplier)))
	st.Accounts.SetPackageLevel(tx.Sender, data.NewLevel)

	st.App.AddInflow(price)
	if _, err := context.Commissions.Fund(tx.Sender, data.NewLevel, price); err != nil {
		return Response{
			Code: code.InternalError,
			Log:  err.Error(),
			Info: EncodeError(code.NewInternalError(err.Error())),
		}
	}

	if store := st.Events(); store != nil {
		store.AddEvent(&events.UpgradeEvent{
			Address: tx.Sender,
			Level:   data.NewLevel,
			Amount:  price.String(),
		})
	}

	return Response{Code: code.OK}
}
