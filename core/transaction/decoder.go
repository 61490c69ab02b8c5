package transaction

import (
	"errors"

	"github.com/ethereum/go-ethereum/rlp"
)

func GetData(txType TxType) (Data, bool) {
	switch txType {
	case TypeRegister:
		return &RegisterData{}, true
	case TypeUpgradePackage:
		return &UpgradePackageData{}, true
	case TypeWithdraw:
		return &WithdrawData{}, true
	case TypeDistributePool:
		return &DistributePoolData{}, true
	case TypeSetPause:
		return &SetPauseData{}, true
	case TypeResetCircuitBreaker:
		return &ResetCircuitBreakerData{}, true
	case TypeSetCircuitBreakerThreshold:
		return &SetCircuitBreakerThresholdData{}, true
	case TypeSetWithdrawalLimits:
		return &SetWithdrawalLimitsData{}, true
	case TypeSetBlacklisted:
		return &SetBlacklistedData{}, true
	case TypeSetPlatformRecipient:
		return &SetPlatformRecipientData{}, true
	case TypeFundPool:
		return &FundPoolData{}, true
	default:
		return nil, false
	}
}

var errUnknownType = errors.New("unknown operation type")

// DecodeFromBytes decodes a serialized transaction together with its data.
func (e *Executor) DecodeFromBytes(buf []byte) (*Transaction, error) {
	tx := &Transaction{}
	if err := rlp.DecodeBytes(buf, tx); err != nil {
		return nil, err
	}

	if err := e.decodeData(tx); err != nil {
		return nil, err
	}

	return tx, nil
}

func (e *Executor) decodeData(tx *Transaction) error {
	data, ok := e.decodeTxFunc(tx.Type)
	if !ok {
		return errUnknownType
	}

	if err := rlp.DecodeBytes(tx.Data, data); err != nil {
		return err
	}

	tx.SetDecodedData(data)
	return nil
}
