package transaction

import (
	"fmt"
	"strconv"

	"github.com/MinterTeam/incentives-engine/core/code"
	"github.com/MinterTeam/incentives-engine/core/distribution"
	"github.com/MinterTeam/incentives-engine/core/types"
)

type DistributePoolData struct {
	Pool types.PoolType
}

func (data DistributePoolData) TxType() TxType {
	return TypeDistributePool
}

func (data DistributePoolData) String() string {
	return fmt.Sprintf("DISTRIBUTE pool:%s", data.Pool)
}

func (data DistributePoolData) platformSensitive() {}

func (data DistributePoolData) Run(tx *Transaction, context *Context) Response {
	if !data.Pool.IsValid() {
		return Response{
			Code: code.UnknownPool,
			Log:  fmt.Sprintf("Unknown pool %s", data.Pool),
			Info: EncodeError(code.NewUnknownPool(data.Pool.String())),
		}
	}

	_, err := context.Distributor.Distribute(data.Pool, context.Now)
	switch err {
	case nil:
		return Response{Code: code.OK}
	case distribution.ErrCycleNotDue:
		next := context.Distributor.NextTime(data.Pool)
		return Response{
			Code: code.CycleNotDue,
			Log:  fmt.Sprintf("Next %s distribution is due at %d", data.Pool, next),
			Info: EncodeError(code.NewCycleNotDue(data.Pool.String(), strconv.FormatUint(next, 10), strconv.FormatUint(context.Now, 10))),
		}
	case distribution.ErrPoolEmpty:
		return Response{
			Code: code.PoolEmpty,
			Log:  fmt.Sprintf("Pool %s is empty", data.Pool),
			Info: EncodeError(code.NewPoolEmpty(data.Pool.String())),
		}
	case distribution.ErrNoEligibleRecipients:
		return Response{
			Code: code.NoEligibleRecipients,
			Log:  fmt.Sprintf("Pool %s has no eligible recipients", data.Pool),
			Info: EncodeError(code.NewNoEligibleRecipients(data.Pool.String())),
		}
	}

	return Response{
		Code: code.InternalError,
		Log:  err.Error(),
		Info: EncodeError(code.NewInternalError(err.Error())),
	}
}
