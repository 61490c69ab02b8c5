package oracle

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/MinterTeam/incentives-engine/helpers"
	"github.com/jonboulle/clockwork"
	"golang.org/x/time/rate"
)

var (
	ErrPriceUnavailable = errors.New("price unavailable")
	ErrPriceOutOfBounds = errors.New("price out of bounds")
	ErrPriceStale       = errors.New("price is stale")
)

// unit is the base-unit size of one whole coin.
var unit = big.NewInt(0).Exp(big.NewInt(10), big.NewInt(18), nil)

// Price is the value of one native coin in reference base units.
type Price struct {
	Rate      *big.Int
	UpdatedAt time.Time
}

// Source reports the latest native coin price.
type Source interface {
	Price(ctx context.Context) (Price, error)
}

// Static is a Source holding a price set by the operator.
type Static struct {
	lock  sync.RWMutex
	price Price
}

func NewStatic(rate *big.Int, updatedAt time.Time) *Static {
	return &Static{price: Price{Rate: rate, UpdatedAt: updatedAt}}
}

func (s *Static) Set(rate *big.Int, updatedAt time.Time) {
	s.lock.Lock()
	defer s.lock.Unlock()

	s.price = Price{Rate: big.NewInt(0).Set(rate), UpdatedAt: updatedAt}
}

func (s *Static) Price(context.Context) (Price, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	if s.price.Rate == nil {
		return Price{}, ErrPriceUnavailable
	}

	return Price{Rate: big.NewInt(0).Set(s.price.Rate), UpdatedAt: s.price.UpdatedAt}, nil
}

// Config bounds the prices Guarded accepts. A nil bound is not checked and a
// zero MaxAge disables the staleness check.
type Config struct {
	MinRate *big.Int
	MaxRate *big.Int
	MaxAge  time.Duration
	// RefreshRate limits how often the source is queried; cached prices are
	// served in between. Zero queries the source on every call.
	RefreshRate rate.Limit
}

// Guarded validates prices of an underlying source.
type Guarded struct {
	source  Source
	clock   clockwork.Clock
	cfg     Config
	limiter *rate.Limiter

	lock   sync.Mutex
	cached *Price
}

func NewGuarded(source Source, clock clockwork.Clock, cfg Config) *Guarded {
	g := &Guarded{source: source, clock: clock, cfg: cfg}
	if cfg.RefreshRate > 0 {
		g.limiter = rate.NewLimiter(cfg.RefreshRate, 1)
	}

	return g
}

// Price returns the current price or the reason it cannot be used.
func (g *Guarded) Price(ctx context.Context) (Price, error) {
	price, err := g.fetch(ctx)
	if err != nil {
		return Price{}, fmt.Errorf("%w: %v", ErrPriceUnavailable, err)
	}
	if price.Rate == nil || price.Rate.Sign() <= 0 {
		return Price{}, fmt.Errorf("%w: non-positive rate", ErrPriceUnavailable)
	}

	if g.cfg.MinRate != nil && price.Rate.Cmp(g.cfg.MinRate) < 0 {
		return price, fmt.Errorf("%w: %s below %s", ErrPriceOutOfBounds, price.Rate, g.cfg.MinRate)
	}
	if g.cfg.MaxRate != nil && price.Rate.Cmp(g.cfg.MaxRate) > 0 {
		return price, fmt.Errorf("%w: %s above %s", ErrPriceOutOfBounds, price.Rate, g.cfg.MaxRate)
	}

	if g.cfg.MaxAge > 0 {
		if age := g.clock.Since(price.UpdatedAt); age > g.cfg.MaxAge {
			return price, fmt.Errorf("%w: updated %s ago", ErrPriceStale, age)
		}
	}

	return price, nil
}

func (g *Guarded) fetch(ctx context.Context) (Price, error) {
	g.lock.Lock()
	defer g.lock.Unlock()

	if g.cached != nil && g.limiter != nil && !g.limiter.AllowN(g.clock.Now(), 1) {
		return *g.cached, nil
	}

	price, err := g.source.Price(ctx)
	if err != nil {
		return Price{}, err
	}
	if g.limiter != nil && g.cached == nil {
		g.limiter.AllowN(g.clock.Now(), 1)
	}
	g.cached = &price

	return price, nil
}

// NativeAmount returns how many native base units pay for value reference
// base units at rate, rounded up.
func NativeAmount(value *big.Int, rate *big.Int) *big.Int {
	return helpers.MulDivCeil(value, unit, rate)
}
