package statistics

import (
	"math/big"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestCollectors(t *testing.T) {
	t.Parallel()
	d := New(prometheus.NewRegistry())

	unit := big.NewInt(0).Exp(big.NewInt(10), big.NewInt(18), nil)
	d.Commission("direct", big.NewInt(0).Mul(unit, big.NewInt(3)))
	d.Commission("direct", big.NewInt(0).Div(unit, big.NewInt(2)))
	d.CapHit(unit)
	d.Operation("register", 0)
	d.Operation("register", 0)
	d.BreakerTrip()
	d.SetVersion(7)

	require.Equal(t, 3.5, testutil.ToFloat64(d.Commissions.WithLabelValues("direct")))
	require.Equal(t, 1.0, testutil.ToFloat64(d.CapReached))
	require.Equal(t, 1.0, testutil.ToFloat64(d.Discarded))
	require.Equal(t, 2.0, testutil.ToFloat64(d.Operations.WithLabelValues("register", "0")))
	require.Equal(t, 1.0, testutil.ToFloat64(d.BreakerTrips))
	require.Equal(t, 7.0, testutil.ToFloat64(d.Version))
}

func TestNilData(t *testing.T) {
	t.Parallel()
	var d *Data
	d.Commission("level", big.NewInt(1))
	d.CapHit(big.NewInt(1))
	d.Operation("withdraw", 301)
	d.SetVersion(1)
}
