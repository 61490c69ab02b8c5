package events

import (
	"github.com/MinterTeam/incentives-engine/core/types"
)

// Event type names
const (
	TypeRegistrationEvent          = "incentives/RegistrationEvent"
	TypeUpgradeEvent               = "incentives/UpgradeEvent"
	TypeCommissionEvent            = "incentives/CommissionEvent"
	TypeEarningsCapReachedEvent    = "incentives/EarningsCapReachedEvent"
	TypePoolAccruedEvent           = "incentives/PoolAccruedEvent"
	TypeDistributionBatchEvent     = "incentives/DistributionBatchEvent"
	TypeDistributionCompletedEvent = "incentives/DistributionCompletedEvent"
	TypeWithdrawalEvent            = "incentives/WithdrawalEvent"
	TypeCircuitBreakerEvent        = "incentives/CircuitBreakerEvent"
)

// Commission kinds
const (
	KindDirect         = "direct"
	KindUpline         = "upline"
	KindUplineLeftover = "upline_leftover"
	KindLevel          = "level"
	KindDistribution   = "distribution"
)

type Event interface {
	Type() string
}

type Events []Event

type RegistrationEvent struct {
	Address types.Address `json:"address"`
	Sponsor types.Address `json:"sponsor"`
	ID      uint64        `json:"id"`
	Level   uint32        `json:"level"`
	Amount  string        `json:"amount"`
}

func (e *RegistrationEvent) Type() string {
	return TypeRegistrationEvent
}

type UpgradeEvent struct {
	Address types.Address `json:"address"`
	Level   uint32        `json:"level"`
	Amount  string        `json:"amount"`
}

func (e *UpgradeEvent) Type() string {
	return TypeUpgradeEvent
}

type CommissionEvent struct {
	Kind    string        `json:"kind"`
	From    types.Address `json:"from"`
	Address types.Address `json:"address"`
	Amount  string        `json:"amount"`
}

func (e *CommissionEvent) Type() string {
	return TypeCommissionEvent
}

type EarningsCapReachedEvent struct {
	Address   types.Address `json:"address"`
	Discarded string        `json:"discarded"`
}

func (e *EarningsCapReachedEvent) Type() string {
	return TypeEarningsCapReachedEvent
}

type PoolAccruedEvent struct {
	Pool   string `json:"pool"`
	Amount string `json:"amount"`
}

func (e *PoolAccruedEvent) Type() string {
	return TypePoolAccruedEvent
}

type DistributionBatchEvent struct {
	Pool string `json:"pool"`
	From uint64 `json:"from"`
	To   uint64 `json:"to"`
	Paid string `json:"paid"`
}

func (e *DistributionBatchEvent) Type() string {
	return TypeDistributionBatchEvent
}

type DistributionCompletedEvent struct {
	Pool       string `json:"pool"`
	Total      string `json:"total"`
	Recipients uint64 `json:"recipients"`
	Retained   string `json:"retained"`
}

func (e *DistributionCompletedEvent) Type() string {
	return TypeDistributionCompletedEvent
}

type WithdrawalEvent struct {
	Address  types.Address `json:"address"`
	Amount   string        `json:"amount"`
	Net      string        `json:"net"`
	Fee      string        `json:"fee"`
	Reinvest string        `json:"reinvest"`
}

func (e *WithdrawalEvent) Type() string {
	return TypeWithdrawalEvent
}

type CircuitBreakerEvent struct {
	Moved     string `json:"moved"`
	Threshold string `json:"threshold"`
}

func (e *CircuitBreakerEvent) Type() string {
	return TypeCircuitBreakerEvent
}
