package transaction

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/MinterTeam/incentives-engine/core/code"
)

// Response represents standard response from operation delivery
type Response struct {
	Code uint32 `json:"code,omitempty"`
	Log  string `json:"log,omitempty"`
	Info string `json:"info,omitempty"`
}

func (r Response) IsOK() bool {
	return r.Code == code.OK
}

type Executor struct {
	decodeTxFunc func(txType TxType) (Data, bool)
}

func NewExecutor(decodeTxFunc func(txType TxType) (Data, bool)) *Executor {
	return &Executor{decodeTxFunc: decodeTxFunc}
}

// RunTx applies the guard checks and executes tx in the given context. The
// caller owns commit and rollback.
func (e *Executor) RunTx(context *Context, tx *Transaction) Response {
	if tx.Sender.IsZero() {
		return Response{
			Code: code.InvalidAddress,
			Log:  "Sender address is empty",
			Info: EncodeError(code.NewInvalidAddress(tx.Sender.String())),
		}
	}

	if tx.GetDecodedData() == nil {
		if err := e.decodeData(tx); err != nil {
			if err == errUnknownType {
				return Response{
					Code: code.UnknownOperation,
					Log:  fmt.Sprintf("Unknown operation type %s", tx.Type),
					Info: EncodeError(code.NewUnknownOperation(tx.Type.String())),
				}
			}
			return Response{
				Code: code.DecodeError,
				Log:  err.Error(),
				Info: EncodeError(code.NewDecodeError(err.Error())),
			}
		}
	}
	data := tx.GetDecodedData()
	st := context.State

	if _, ok := data.(adminData); ok {
		if !st.App.IsAdmin(tx.Sender) {
			return Response{
				Code: code.NotAdmin,
				Log:  fmt.Sprintf("Sender %s is not an admin", tx.Sender.String()),
				Info: EncodeError(code.NewNotAdmin(tx.Sender.String())),
			}
		}
	} else {
		if st.Guard.IsPaused() {
			return Response{
				Code: code.SystemPaused,
				Log:  "System is paused",
				Info: EncodeError(code.NewSystemPaused()),
			}
		}
		if st.Guard.IsBreakerTriggered() {
			return Response{
				Code: code.CircuitBreakerActivated,
				Log:  "Circuit breaker is triggered",
				Info: EncodeError(code.NewCircuitBreakerActivated("", st.Guard.GetBreakerThreshold().String())),
			}
		}
	}

	slot := strconv.FormatUint(tx.Slot, 10)
	if st.Guard.SenderSlotUsed(tx.Sender, tx.Slot) {
		return Response{
			Code: code.SameSlotReplay,
			Log:  fmt.Sprintf("Sender %s already operated in slot %d", tx.Sender.String(), tx.Slot),
			Info: EncodeError(code.NewSameSlotReplay(tx.Sender.String(), slot)),
		}
	}
	_, platform := data.(platformData)
	if platform && st.Guard.PlatformSlotUsed(tx.Slot) {
		return Response{
			Code: code.SameSlotReplay,
			Log:  fmt.Sprintf("Platform operation already ran in slot %d", tx.Slot),
			Info: EncodeError(code.NewSameSlotReplay(tx.Sender.String(), slot)),
		}
	}

	response := data.Run(tx, context)
	if response.Code != code.OK {
		return response
	}

	st.Guard.UseSenderSlot(tx.Sender, tx.Slot)
	if platform {
		st.Guard.UsePlatformSlot(tx.Slot)
	}

	return response
}

// EncodeError encodes error to json
func EncodeError(data interface{}) string {
	marshaled, err := json.Marshal(data)
	if err != nil {
		panic(err)
	}
	return string(marshaled)
}
