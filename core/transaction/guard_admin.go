package transaction

import (
	"fmt"
	"math/big"

	"github.com/MinterTeam/incentives-engine/core/code"
)

type SetPauseData struct {
	Paused bool
}

func (data SetPauseData) TxType() TxType {
	return TypeSetPause
}

func (data SetPauseData) String() string {
	return fmt.Sprintf("SET PAUSE paused:%t", data.Paused)
}

func (data SetPauseData) adminOnly() {}

func (data SetPauseData) Run(tx *Transaction, context *Context) Response {
	context.State.Guard.SetPaused(data.Paused)
	return Response{Code: code.OK}
}

type ResetCircuitBreakerData struct{}

func (data ResetCircuitBreakerData) TxType() TxType {
	return TypeResetCircuitBreaker
}

func (data ResetCircuitBreakerData) String() string {
	return "RESET CIRCUIT BREAKER"
}

func (data ResetCircuitBreakerData) adminOnly() {}

func (data ResetCircuitBreakerData) Run(tx *Transaction, context *Context) Response {
	context.State.Guard.SetBreakerTriggered(false)
	return Response{Code: code.OK}
}

type SetCircuitBreakerThresholdData struct {
	Threshold *big.Int
}

func (data SetCircuitBreakerThresholdData) TxType() TxType {
	return TypeSetCircuitBreakerThreshold
}

func (data SetCircuitBreakerThresholdData) String() string {
	return fmt.Sprintf("SET CIRCUIT BREAKER THRESHOLD threshold:%s", data.Threshold)
}

func (data SetCircuitBreakerThresholdData) adminOnly() {}

func (data SetCircuitBreakerThresholdData) Run(tx *Transaction, context *Context) Response {
	if data.Threshold == nil || data.Threshold.Sign() < 0 {
		return Response{
			Code: code.WrongThreshold,
			Log:  "Threshold must not be negative",
			Info: EncodeError(code.NewWrongThreshold(fmt.Sprintf("%s", data.Threshold))),
		}
	}

	context.State.Guard.SetBreakerThreshold(data.Threshold)
	return Response{Code: code.OK}
}

// SetWithdrawalLimitsData sets the per-account and global daily limits. Zero
// disables a limit.
type SetWithdrawalLimitsData struct {
	Daily       *big.Int
	GlobalDaily *big.Int
}

func (data SetWithdrawalLimitsData) TxType() TxType {
	return TypeSetWithdrawalLimits
}

func (data SetWithdrawalLimitsData) String() string {
	return fmt.Sprintf("SET WITHDRAWAL LIMITS daily:%s global:%s", data.Daily, data.GlobalDaily)
}

func (data SetWithdrawalLimitsData) adminOnly() {}

func (data SetWithdrawalLimitsData) Run(tx *Transaction, context *Context) Response {
	if data.Daily == nil || data.Daily.Sign() < 0 {
		return Response{
			Code: code.WrongLimits,
			Log:  "Daily limit must not be negative",
			Info: EncodeError(code.NewWrongLimits("daily", fmt.Sprintf("%s", data.Daily))),
		}
	}
	if data.GlobalDaily == nil || data.GlobalDaily.Sign() < 0 {
		return Response{
			Code: code.WrongLimits,
			Log:  "Global daily limit must not be negative",
			Info: EncodeError(code.NewWrongLimits("global_daily", fmt.Sprintf("%s", data.GlobalDaily))),
		}
	}
	if data.Daily.Sign() == 1 && data.GlobalDaily.Sign() == 1 && data.GlobalDaily.Cmp(data.Daily) < 0 {
		return Response{
			Code: code.WrongLimits,
			Log:  "Global daily limit is below the per-account limit",
			Info: EncodeError(code.NewWrongLimits("global_daily", data.GlobalDaily.String())),
		}
	}

	context.State.Guard.SetWithdrawalLimits(data.Daily, data.GlobalDaily)
	return Response{Code: code.OK}
}
