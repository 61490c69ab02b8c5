package keeper

import (
	"context"
	"fmt"

	"github.com/MinterTeam/incentives-engine/core/code"
	"github.com/MinterTeam/incentives-engine/core/engine"
	"github.com/MinterTeam/incentives-engine/core/transaction"
	"github.com/MinterTeam/incentives-engine/core/types"
	"github.com/jonboulle/clockwork"
	"github.com/robfig/cron/v3"
	"github.com/tendermint/tendermint/libs/log"
	"golang.org/x/time/rate"
)

// Engine is the part of the engine the keeper drives.
type Engine interface {
	Pool(pool types.PoolType) (*engine.PoolStatus, error)
	Version() int64
	Deliver(ctx context.Context, tx *transaction.Transaction) transaction.Response
}

type Config struct {
	Schedule   string
	Address    types.Address
	RateLimit  rate.Limit
	MaxBatches int
}

// Keeper advances due distribution cycles on a cron schedule. Every batch is
// an ordinary distribute operation submitted as Address.
type Keeper struct {
	engine  Engine
	clock   clockwork.Clock
	logger  log.Logger
	cfg     Config
	limiter *rate.Limiter
	cron    *cron.Cron
}

func NewKeeper(eng Engine, clock clockwork.Clock, logger log.Logger, cfg Config) (*Keeper, error) {
	if cfg.MaxBatches <= 0 {
		return nil, fmt.Errorf("max batches must be positive")
	}
	if cfg.Address.IsZero() {
		return nil, fmt.Errorf("keeper address is not set")
	}

	k := &Keeper{
		engine:  eng,
		clock:   clock,
		logger:  logger.With("module", "keeper"),
		cfg:     cfg,
		limiter: rate.NewLimiter(cfg.RateLimit, 1),
	}

	if cfg.Schedule != "" {
		k.cron = cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
		if _, err := k.cron.AddFunc(cfg.Schedule, func() { k.Tick(context.Background()) }); err != nil {
			return nil, fmt.Errorf("invalid schedule %q: %w", cfg.Schedule, err)
		}
	}

	return k, nil
}

// Run starts the schedule and blocks until ctx is done.
func (k *Keeper) Run(ctx context.Context) error {
	if k.cron == nil {
		<-ctx.Done()
		return nil
	}

	k.logger.Info("keeper started", "schedule", k.cfg.Schedule, "address", k.cfg.Address.String())
	k.cron.Start()
	<-ctx.Done()
	<-k.cron.Stop().Done()
	k.logger.Info("keeper stopped")

	return nil
}

// Tick delivers batches of every due pool and returns the number of
// delivered batches.
func (k *Keeper) Tick(ctx context.Context) int {
	delivered := 0
	for _, pool := range types.PoolTypes {
		n, err := k.advance(ctx, pool)
		delivered += n
		if err != nil {
			k.logger.Error("distribution stopped", "pool", pool.String(), "err", err)
		}
		if ctx.Err() != nil {
			break
		}
	}

	return delivered
}

func (k *Keeper) due(pool types.PoolType) (bool, error) {
	status, err := k.engine.Pool(pool)
	if err != nil {
		return false, err
	}
	if status.Cursor != nil {
		return true, nil
	}

	return uint64(k.clock.Now().Unix()) >= status.NextDistributionTime && status.Balance != "0", nil
}

func (k *Keeper) advance(ctx context.Context, pool types.PoolType) (int, error) {
	for delivered := 0; delivered < k.cfg.MaxBatches; delivered++ {
		due, err := k.due(pool)
		if err != nil || !due {
			return delivered, err
		}

		if err := k.limiter.Wait(ctx); err != nil {
			return delivered, err
		}

		// every commit bumps the version, so consecutive batches never share a slot
		tx, err := transaction.NewTransaction(k.cfg.Address, uint64(k.engine.Version())+1, &transaction.DistributePoolData{Pool: pool})
		if err != nil {
			return delivered, err
		}

		response := k.engine.Deliver(ctx, tx)
		switch response.Code {
		case code.OK:
		case code.CycleNotDue, code.PoolEmpty, code.NoEligibleRecipients:
			k.logger.Debug("pool skipped", "pool", pool.String(), "log", response.Log)
			return delivered, nil
		default:
			return delivered, fmt.Errorf("code %d: %s", response.Code, response.Log)
		}
	}

	return k.cfg.MaxBatches, nil
}
