package bus

import (
	"math/big"

	"github.com/MinterTeam/incentives-engine/core/events"
)

// Checker collects value movements of the operation being delivered.
type Checker interface {
	AddInflow(*big.Int)
	AddOutflow(*big.Int)
	AddCredit(*big.Int)
	AddDebit(*big.Int)
}

type Bus struct {
	events  events.IEventsDB
	checker Checker
}

func NewBus() *Bus {
	return &Bus{}
}

func (b *Bus) SetEvents(events events.IEventsDB) {
	b.events = events
}

func (b *Bus) Events() events.IEventsDB {
	return b.events
}

func (b *Bus) SetChecker(checker Checker) {
	b.checker = checker
}

func (b *Bus) Checker() Checker {
	return b.checker
}
