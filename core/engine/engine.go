package engine

import (
	"context"
	"fmt"
	"math/big"
	"sync/atomic"

	"github.com/MinterTeam/incentives-engine/core/code"
	"github.com/MinterTeam/incentives-engine/core/commissions"
	"github.com/MinterTeam/incentives-engine/core/distribution"
	"github.com/MinterTeam/incentives-engine/core/events"
	"github.com/MinterTeam/incentives-engine/core/oracle"
	"github.com/MinterTeam/incentives-engine/core/placement"
	"github.com/MinterTeam/incentives-engine/core/state"
	"github.com/MinterTeam/incentives-engine/core/statistics"
	"github.com/MinterTeam/incentives-engine/core/transaction"
	"github.com/MinterTeam/incentives-engine/core/types"
	"github.com/MinterTeam/incentives-engine/core/vault"
	"github.com/MinterTeam/incentives-engine/core/withdrawal"
	"github.com/jonboulle/clockwork"
	"github.com/pkg/errors"
	"github.com/tendermint/tendermint/libs/log"
)

// Options configure an Engine. Clock, Logger and Vault default to the real
// clock, a no-op logger and an in-memory vault.
type Options struct {
	Params   types.Params
	Clock    clockwork.Clock
	Logger   log.Logger
	Stats    *statistics.Data
	Oracle   oracle.Source
	Vault    vault.Vault
	Treasury types.Address
}

// Engine is the single entry point of state-mutating operations. Every
// operation either commits one state version or leaves no trace.
type Engine struct {
	state    *state.State
	params   types.Params
	clock    clockwork.Clock
	logger   log.Logger
	stats    *statistics.Data
	oracle   oracle.Source
	vault    vault.Vault
	treasury types.Address

	executor    *transaction.Executor
	placement   *placement.Engine
	commissions *commissions.Engine
	distributor *distribution.Distributor
	withdrawals *withdrawal.Processor

	inOperation uint32
}

func NewEngine(st *state.State, opts Options) (*Engine, error) {
	if err := opts.Params.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid params")
	}
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	if opts.Logger == nil {
		opts.Logger = log.NewNopLogger()
	}
	if opts.Vault == nil {
		opts.Vault = vault.NewMemory()
	}

	placementEngine, err := placement.NewEngine(opts.Params, opts.Clock)
	if err != nil {
		return nil, errors.Wrap(err, "create placement engine")
	}
	commissionsEngine := commissions.NewEngine(st, placementEngine, opts.Params, opts.Stats)

	return &Engine{
		state:       st,
		params:      opts.Params,
		clock:       opts.Clock,
		logger:      opts.Logger.With("module", "engine"),
		stats:       opts.Stats,
		oracle:      opts.Oracle,
		vault:       opts.Vault,
		treasury:    opts.Treasury,
		executor:    transaction.NewExecutor(transaction.GetData),
		placement:   placementEngine,
		commissions: commissionsEngine,
		distributor: distribution.NewDistributor(st, commissionsEngine, opts.Params, opts.Stats),
		withdrawals: withdrawal.NewProcessor(st, commissionsEngine, opts.Params, opts.Stats),
	}, nil
}

// InitGenesis loads the genesis document into an empty state and commits it.
func (e *Engine) InitGenesis(genesis types.AppState) error {
	e.state.Lock()
	defer e.state.Unlock()

	if e.state.Tree().Version() != 0 {
		return errors.New("state is already initialized")
	}

	if err := e.state.Import(genesis, e.params); err != nil {
		e.state.Rollback()
		return errors.Wrap(err, "import genesis")
	}

	_, version, err := e.state.Commit()
	if err != nil {
		return errors.Wrap(err, "commit genesis")
	}
	e.stats.SetVersion(version)
	e.logger.Info("genesis loaded", "accounts", e.state.App.GetAccountsCount(), "version", version)

	return nil
}

// Deliver runs one operation. A nested call made while another operation is
// in flight fails with ReentrantCall.
func (e *Engine) Deliver(ctx context.Context, tx *transaction.Transaction) transaction.Response {
	if !atomic.CompareAndSwapUint32(&e.inOperation, 0, 1) {
		return transaction.Response{
			Code: code.ReentrantCall,
			Log:  "Operation is already in progress",
			Info: transaction.EncodeError(code.NewReentrantCall()),
		}
	}
	defer atomic.StoreUint32(&e.inOperation, 0)

	e.state.Lock()
	defer e.state.Unlock()

	response, version := e.deliver(ctx, tx)

	e.stats.Operation(tx.Type.Name(), response.Code)
	if response.Code != code.OK {
		e.logger.Info("operation rejected", "type", tx.Type.Name(), "sender", tx.Sender.String(), "code", response.Code, "log", response.Log)
		return response
	}

	e.stats.SetVersion(version)
	e.logger.Info("operation delivered", "type", tx.Type.Name(), "sender", tx.Sender.String(), "version", version)

	return response
}

func (e *Engine) deliver(ctx context.Context, tx *transaction.Transaction) (transaction.Response, int64) {
	now := e.now()
	txContext := &transaction.Context{
		Ctx:         ctx,
		State:       e.state,
		Now:         now,
		Params:      e.params,
		Placement:   e.placement,
		Commissions: e.commissions,
		Distributor: e.distributor,
		Withdrawals: e.withdrawals,
		Oracle:      e.oracle,
		Vault:       e.vault,
		Treasury:    e.treasury,
	}

	response := e.executor.RunTx(txContext, tx)
	if response.Code != code.OK {
		e.state.Rollback()
		return response, 0
	}
	e.state.App.SetLastTime(now)

	if err := e.state.Check(); err != nil {
		e.state.Rollback()
		e.logger.Error("invariant violation", "type", tx.Type.Name(), "err", err)
		return transaction.Response{
			Code: code.InvariantViolation,
			Log:  err.Error(),
			Info: transaction.EncodeError(code.NewInvariantViolation(err.Error())),
		}, 0
	}

	moved := e.state.Checker.Moved()
	if e.state.Guard.BreakerExceeded(moved) {
		return e.tripBreaker(moved), 0
	}

	if response := e.executeTransfers(ctx, txContext.Transfers); response != nil {
		e.state.Rollback()
		return *response, 0
	}

	_, version, err := e.state.Commit()
	if err != nil {
		e.state.Rollback()
		e.logger.Error("commit failed", "err", err)
		return transaction.Response{
			Code: code.InternalError,
			Log:  err.Error(),
			Info: transaction.EncodeError(code.NewInternalError(err.Error())),
		}, 0
	}

	return response, version
}

// tripBreaker drops the operation and commits the triggered flag alone.
func (e *Engine) tripBreaker(moved *big.Int) transaction.Response {
	e.state.Rollback()

	threshold := e.state.Guard.GetBreakerThreshold()
	e.state.Guard.SetBreakerTriggered(true)
	if store := e.state.Events(); store != nil {
		store.AddEvent(&events.CircuitBreakerEvent{Moved: moved.String(), Threshold: threshold.String()})
	}
	if _, _, err := e.state.Commit(); err != nil {
		e.state.Rollback()
		e.logger.Error("commit breaker state failed", "err", err)
	}

	e.stats.BreakerTrip()
	e.logger.Error("circuit breaker activated", "moved", moved.String(), "threshold", threshold.String())

	return transaction.Response{
		Code: code.CircuitBreakerActivated,
		Log:  fmt.Sprintf("Operation moved %s, above threshold %s", moved, threshold),
		Info: transaction.EncodeError(code.NewCircuitBreakerActivated(moved.String(), threshold.String())),
	}
}

// executeTransfers runs the vault movements of a checked operation. On the
// first failure the finished ones are reversed.
func (e *Engine) executeTransfers(ctx context.Context, transfers []transaction.Transfer) *transaction.Response {
	for i, transfer := range transfers {
		var err error
		switch transfer.Kind {
		case transaction.TransferCollect:
			err = e.vault.TransferFrom(ctx, transfer.Coin, e.treasury, transfer.From, transfer.To, transfer.Amount)
		case transaction.TransferPay:
			err = e.vault.Transfer(ctx, transfer.Coin, transfer.From, transfer.To, transfer.Amount)
		}
		if err == nil {
			continue
		}

		for j := i - 1; j >= 0; j-- {
			done := transfers[j]
			if rerr := e.vault.Transfer(ctx, done.Coin, done.To, done.From, done.Amount); rerr != nil {
				e.logger.Error("transfer reversal failed", "from", done.To.String(), "to", done.From.String(), "amount", done.Amount.String(), "err", rerr)
			}
		}

		return &transaction.Response{
			Code: code.TransferFailed,
			Log:  err.Error(),
			Info: transaction.EncodeError(code.NewTransferFailed(transfer.From.String(), transfer.To.String(), transfer.Amount.String(), err.Error())),
		}
	}

	return nil
}

// now returns the engine time, never earlier than the last operation.
func (e *Engine) now() uint64 {
	now := e.clock.Now().Unix()
	if now < 0 {
		now = 0
	}
	if last := e.state.App.GetLastTime(); uint64(now) < last {
		return last
	}
	return uint64(now)
}
