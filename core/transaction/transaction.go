package transaction

import (
	"context"
	"encoding/hex"
	"fmt"
	"math/big"

	"github.com/MinterTeam/incentives-engine/core/commissions"
	"github.com/MinterTeam/incentives-engine/core/distribution"
	"github.com/MinterTeam/incentives-engine/core/oracle"
	"github.com/MinterTeam/incentives-engine/core/placement"
	"github.com/MinterTeam/incentives-engine/core/state"
	"github.com/MinterTeam/incentives-engine/core/types"
	"github.com/MinterTeam/incentives-engine/core/vault"
	"github.com/MinterTeam/incentives-engine/core/withdrawal"
	"github.com/ethereum/go-ethereum/rlp"
)

// TxType of transaction is determined by a single byte.
type TxType byte

func (t TxType) String() string {
	return "0x" + hex.EncodeToString([]byte{byte(t)})
}

const (
	TypeRegister       TxType = 0x01
	TypeUpgradePackage TxType = 0x02
	TypeWithdraw       TxType = 0x03
	TypeDistributePool TxType = 0x04

	TypeSetPause                   TxType = 0x10
	TypeResetCircuitBreaker        TxType = 0x11
	TypeSetCircuitBreakerThreshold TxType = 0x12
	TypeSetWithdrawalLimits        TxType = 0x13
	TypeSetBlacklisted             TxType = 0x14
	TypeSetPlatformRecipient       TxType = 0x15
	TypeFundPool                   TxType = 0x16
)

var typeNames = map[TxType]string{
	TypeRegister:                   "register",
	TypeUpgradePackage:             "upgrade_package",
	TypeWithdraw:                   "withdraw",
	TypeDistributePool:             "distribute_pool",
	TypeSetPause:                   "set_pause",
	TypeResetCircuitBreaker:        "reset_circuit_breaker",
	TypeSetCircuitBreakerThreshold: "set_circuit_breaker_threshold",
	TypeSetWithdrawalLimits:        "set_withdrawal_limits",
	TypeSetBlacklisted:             "set_blacklisted",
	TypeSetPlatformRecipient:       "set_platform_recipient",
	TypeFundPool:                   "fund_pool",
}

// Name returns the metric and log label of the type.
func (t TxType) Name() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return "unknown"
}

// Transaction is one state-mutating operation. Slot is the host ledger slot
// the operation was submitted in.
type Transaction struct {
	Sender types.Address
	Slot   uint64
	Type   TxType
	Data   RawData

	decodedData Data
}

type RawData []byte

type Data interface {
	String() string
	TxType() TxType
	Run(tx *Transaction, context *Context) Response
}

// adminData marks operations reserved to the admin set. They keep working
// while the engine is paused or the breaker is triggered.
type adminData interface {
	adminOnly()
}

// platformData marks operations limited to one per slot engine-wide.
type platformData interface {
	platformSensitive()
}

// NewTransaction encodes data into a transaction of sender.
func NewTransaction(sender types.Address, slot uint64, data Data) (*Transaction, error) {
	raw, err := rlp.EncodeToBytes(data)
	if err != nil {
		return nil, err
	}

	return &Transaction{
		Sender:      sender,
		Slot:        slot,
		Type:        data.TxType(),
		Data:        raw,
		decodedData: data,
	}, nil
}

func (tx *Transaction) Serialize() ([]byte, error) {
	return rlp.EncodeToBytes(tx)
}

func (tx *Transaction) GetDecodedData() Data {
	return tx.decodedData
}

func (tx *Transaction) SetDecodedData(data Data) {
	tx.decodedData = data
}

func (tx *Transaction) String() string {
	data := "<undecoded>"
	if tx.decodedData != nil {
		data = tx.decodedData.String()
	}

	return fmt.Sprintf("TX from:%s slot:%d type:%s data:%s", tx.Sender.String(), tx.Slot, tx.Type, data)
}

// TransferKind tells how a deferred transfer moves value.
type TransferKind byte

const (
	// TransferCollect pulls an approved amount from a payer into the treasury.
	TransferCollect TransferKind = iota
	// TransferPay sends treasury value out.
	TransferPay
)

// Transfer is a vault movement executed only after the operation passed the
// invariant and breaker checks.
type Transfer struct {
	Kind   TransferKind
	Coin   types.CoinID
	From   types.Address
	To     types.Address
	Amount *big.Int
}

// Context carries everything an operation may touch.
type Context struct {
	Ctx    context.Context
	State  *state.State
	Now    uint64
	Params types.Params

	Placement   *placement.Engine
	Commissions *commissions.Engine
	Distributor *distribution.Distributor
	Withdrawals *withdrawal.Processor
	Oracle      oracle.Source
	Vault       vault.Vault
	Treasury    types.Address

	Transfers []Transfer
}

func (c *Context) collect(coin types.CoinID, from types.Address, amount *big.Int) {
	c.Transfers = append(c.Transfers, Transfer{Kind: TransferCollect, Coin: coin, From: from, To: c.Treasury, Amount: amount})
}

func (c *Context) pay(to types.Address, amount *big.Int) {
	if amount.Sign() == 0 {
		return
	}
	c.Transfers = append(c.Transfers, Transfer{Kind: TransferPay, Coin: types.ReferenceCoin, From: c.Treasury, To: to, Amount: amount})
}
