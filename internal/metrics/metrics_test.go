package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewReusesRegisteredCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	a, err := New(reg)
	require.NoError(t, err)
	b, err := New(reg)
	require.NoError(t, err)

	a.GeoShared.WithLabelValues("M-Band").Inc()
	b.GeoShared.WithLabelValues("M-Band").Inc()
	assert.Equal(t, 2.0, testutil.ToFloat64(a.GeoShared.WithLabelValues("M-Band")))

	a.LiveSources.Inc()
	assert.Equal(t, 1.0, testutil.ToFloat64(b.LiveSources))

	n, err := testutil.GatherAndCount(reg)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestNewConflictingCollector(t *testing.T) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "resolutions_total",
		Help:      "Something else.",
	}))
	_, err := New(reg)
	assert.Error(t, err)
}

func TestDiscardIsPrivate(t *testing.T) {
	a, b := Discard(), Discard()
	a.Fetches.WithLabelValues("x", "ok").Inc()
	assert.Zero(t, testutil.ToFloat64(b.Fetches.WithLabelValues("x", "ok")))
}
