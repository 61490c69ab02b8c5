package transaction

import (
	"fmt"
	"math/big"
	"strconv"

	"github.com/MinterTeam/incentives-engine/core/code"
	"github.com/MinterTeam/incentives-engine/core/events"
	"github.com/MinterTeam/incentives-engine/core/types"
)

type RegisterData struct {
	Sponsor      types.Address
	PackageLevel uint32
	Coin         types.CoinID
	Amount       *big.Int
}

func (data RegisterData) TxType() TxType {
	return TypeRegister
}

func (data RegisterData) String() string {
	return fmt.Sprintf("REGISTER sponsor:%s level:%d coin:%s amount:%s",
		data.Sponsor.String(), data.PackageLevel, data.Coin, data.Amount)
}

func (data RegisterData) basicCheck(tx *Transaction, context *Context) *Response {
	accounts := context.State.Accounts

	if account := accounts.GetAccount(tx.Sender); account != nil {
		return &Response{
			Code: code.AlreadyRegistered,
			Log:  fmt.Sprintf("Account %s is already registered", tx.Sender.String()),
			Info: EncodeError(code.NewAlreadyRegistered(tx.Sender.String(), strconv.Itoa(int(account.GetID())))),
		}
	}

	if data.PackageLevel == 0 || context.State.Packages.Get(data.PackageLevel) == nil {
		return &Response{
			Code: code.InvalidTier,
			Log:  fmt.Sprintf("Package %d does not exist", data.PackageLevel),
			Info: EncodeError(code.NewInvalidTier(strconv.Itoa(int(data.PackageLevel)), "0", strconv.Itoa(int(context.State.Packages.Count())))),
		}
	}

	if tx.Sender == data.Sponsor {
		return &Response{
			Code: code.SelfSponsor,
			Log:  "Account cannot sponsor itself",
			Info: EncodeError(code.NewSelfSponsor(tx.Sender.String())),
		}
	}

	sponsor := accounts.GetAccount(data.Sponsor)
	if sponsor == nil {
		return &Response{
			Code: code.SponsorNotEligible,
			Log:  fmt.Sprintf("Sponsor %s is not registered", data.Sponsor.String()),
			Info: EncodeError(code.NewSponsorNotEligible(data.Sponsor.String(), "not registered")),
		}
	}
	if sponsor.IsBlacklisted() {
		return &Response{
			Code: code.SponsorNotEligible,
			Log:  fmt.Sprintf("Sponsor %s is blacklisted", data.Sponsor.String()),
			Info: EncodeError(code.NewSponsorNotEligible(data.Sponsor.String(), "blacklisted")),
		}
	}
	if !sponsor.IsActive() {
		return &Response{
			Code: code.SponsorNotEligible,
			Log:  fmt.Sprintf("Sponsor %s is not active", data.Sponsor.String()),
			Info: EncodeError(code.NewSponsorNotEligible(data.Sponsor.String(), "inactive")),
		}
	}

	return nil
}

func (data RegisterData) Run(tx *Transaction, context *Context) Response {
	response := data.basicCheck(tx, context)
	if response != nil {
		return *response
	}

	st := context.State
	price := st.Packages.Get(data.PackageLevel).Price
	if response := collectPayment(tx, context, price, data.Coin, data.Amount); response != nil {
		return *response
	}

	id := st.App.GetNextAccountID()
	st.Accounts.Create(tx.Sender, id, data.Sponsor, data.PackageLevel, context.Now)
	st.App.SetAccountsCount(id)
	st.Accounts.AddInvestment(tx.Sender, price, big.NewInt(0).Mul(price, big.NewInt(0).SetUint64(context.Params.CapMultiplier)))
	st.Accounts.SetWithdrawalRate(tx.Sender, context.Params.WithdrawalRateFor(0))

	st.Accounts.AddDirectReferral(data.Sponsor, tx.Sender)
	directs := st.Accounts.GetAccount(data.Sponsor).GetDirectReferralCount()
	st.Accounts.SetWithdrawalRate(data.Sponsor, context.Params.WithdrawalRateFor(directs))

	if err := context.Placement.Place(st.Accounts, tx.Sender, data.Sponsor); err != nil {
		return Response{
			Code: code.InternalError,
			Log:  err.Error(),
			Info: EncodeError(code.NewInternalError(err.Error())),
		}
	}
	context.Placement.PropagateTeamSize(st.Accounts, tx.Sender)

	st.App.AddInflow(price)
	if _, err := context.Commissions.Fund(tx.Sender, data.PackageLevel, price); err != nil {
		return Response{
			Code: code.InternalError,
			Log:  err.Error(),
			Info: EncodeError(code.NewInternalError(err.Error())),
		}
	}

	if store := st.Events(); store != nil {
		store.AddEvent(&events.RegistrationEvent{
			Address: tx.Sender,
			Sponsor: data.Sponsor,
			ID:      uint64(id),
			Level:   data.PackageLevel,
			Amount:  price.String(),
		})
	}

	return Response{Code: code.OK}
}
