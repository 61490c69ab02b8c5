package events

import (
	"encoding/binary"
	"sync"

	"github.com/pkg/errors"
	"github.com/tendermint/go-amino"
	db "github.com/tendermint/tm-db"
)

// IEventsDB is an interface of Events
type IEventsDB interface {
	AddEvent(event Event)
	Pending() Events
	Reset()
	LoadEvents(version uint64) (Events, error)
	CommitEvents(version uint64) error
}

type eventsStore struct {
	cdc *amino.Codec
	sync.RWMutex
	db      db.DB
	pending pendingEvents
}

type pendingEvents struct {
	sync.Mutex
	items Events
}

// NewEventsStore creates new events store in given DB
func NewEventsStore(db db.DB) IEventsDB {
	codec := amino.NewCodec()
	codec.RegisterInterface((*Event)(nil), nil)
	codec.RegisterConcrete(&RegistrationEvent{}, TypeRegistrationEvent, nil)
	codec.RegisterConcrete(&UpgradeEvent{}, TypeUpgradeEvent, nil)
	codec.RegisterConcrete(&CommissionEvent{}, TypeCommissionEvent, nil)
	codec.RegisterConcrete(&EarningsCapReachedEvent{}, TypeEarningsCapReachedEvent, nil)
	codec.RegisterConcrete(&PoolAccruedEvent{}, TypePoolAccruedEvent, nil)
	codec.RegisterConcrete(&DistributionBatchEvent{}, TypeDistributionBatchEvent, nil)
	codec.RegisterConcrete(&DistributionCompletedEvent{}, TypeDistributionCompletedEvent, nil)
	codec.RegisterConcrete(&WithdrawalEvent{}, TypeWithdrawalEvent, nil)
	codec.RegisterConcrete(&CircuitBreakerEvent{}, TypeCircuitBreakerEvent, nil)

	return &eventsStore{
		cdc: codec,
		db:  db,
	}
}

func (store *eventsStore) AddEvent(event Event) {
	store.pending.Lock()
	defer store.pending.Unlock()

	store.pending.items = append(store.pending.items, event)
}

// Pending returns events collected since the last commit or reset
func (store *eventsStore) Pending() Events {
	store.pending.Lock()
	defer store.pending.Unlock()

	items := make(Events, len(store.pending.items))
	copy(items, store.pending.items)
	return items
}

// Reset drops pending events of an aborted operation
func (store *eventsStore) Reset() {
	store.pending.Lock()
	defer store.pending.Unlock()

	store.pending.items = nil
}

func (store *eventsStore) LoadEvents(version uint64) (Events, error) {
	store.RLock()
	defer store.RUnlock()

	bytes, err := store.db.Get(uint64ToBytes(version))
	if err != nil {
		return nil, errors.Wrapf(err, "load events of version %d", version)
	}
	if len(bytes) == 0 {
		return Events{}, nil
	}

	var items Events
	if err := store.cdc.UnmarshalBinaryBare(bytes, &items); err != nil {
		return nil, errors.Wrapf(err, "decode events of version %d", version)
	}

	return items, nil
}

func (store *eventsStore) CommitEvents(version uint64) error {
	store.pending.Lock()
	defer store.pending.Unlock()

	if len(store.pending.items) == 0 {
		return nil
	}

	bytes, err := store.cdc.MarshalBinaryBare(store.pending.items)
	if err != nil {
		return errors.Wrap(err, "encode events")
	}

	store.Lock()
	defer store.Unlock()
	if err := store.db.Set(uint64ToBytes(version), bytes); err != nil {
		return errors.Wrapf(err, "save events of version %d", version)
	}

	store.pending.items = nil
	return nil
}

func uint64ToBytes(version uint64) []byte {
	var h = make([]byte, 8)
	binary.BigEndian.PutUint64(h, version)
	return h
}
