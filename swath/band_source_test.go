package swath_test

import (
	"errors"
	"io"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robert-malhotra/go-swath/internal/metrics"
	"github.com/robert-malhotra/go-swath/swath"
)

type fixture struct {
	src      *swath.BandSource
	spies    map[string]*spyAdapter
	closer   *countingCloser
	registry *prometheus.Registry
}

// newFixture builds a source with three M-Band siblings, one I-Band band and
// one ungrouped product.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	fx := &fixture{
		spies:    map[string]*spyAdapter{},
		closer:   &countingCloser{},
		registry: prometheus.NewRegistry(),
	}
	specs := []struct {
		name, group string
		wavelength  float64
		res         float64
	}{
		{"M05", "M-Band", 0.672, 750},
		{"M07", "M-Band", 0.865, 750},
		{"M15", "M-Band", 10.763, 750},
		{"I01", "I-Band", 0.640, 375},
		{"CloudMask", "", 0, 0},
	}
	var bands []swath.Band
	for i, s := range specs {
		spy := newSpy(s.name, float32(100*i))
		fx.spies[s.name] = spy
		bands = append(bands, swath.Band{
			Name:       s.name,
			Group:      s.group,
			Info:       swath.BandInfo{Kind: swath.KindReflective, Wavelength: s.wavelength},
			Resolution: s.res,
			Adapter:    spy,
		})
	}
	src, err := swath.NewBandSource(swath.SourceInfo{
		Description: "Test Imager",
		DateTime:    time.Date(2024, 1, 15, 3, 0, 0, 0, time.UTC),
		Files:       []string{"a.nc", "b.nc"},
	}, bands, []io.Closer{fx.closer}, swath.WithRegisterer(fx.registry))
	require.NoError(t, err)
	fx.src = src
	return fx
}

func TestChoicesStableOrder(t *testing.T) {
	fx := newFixture(t)
	var names []string
	for _, c := range fx.src.Choices() {
		names = append(names, c.Name())
		assert.Same(t, fx.src, c.Source())
	}
	assert.Equal(t, []string{"M05", "M07", "M15", "I01", "CloudMask"}, names)
	assert.Equal(t, fx.src.Choices(), fx.src.Choices())
	assert.Nil(t, fx.src.Choice("M99"))

	assert.True(t, fx.spies["M05"].DefaultSubset().Equal(fx.src.Choice("M05").Selection()))
	assert.Equal(t, []string{"a.nc", "b.nc"}, fx.src.Files())
}

func TestAggregatesPerGroup(t *testing.T) {
	fx := newFixture(t)
	views := fx.src.Aggregates()
	require.Len(t, views, 2)
	assert.Equal(t, "M-Band", views[0].Group().Name())
	assert.Equal(t, "I-Band", views[1].Group().Name())
	assert.Equal(t, []float64{0.672, 0.865, 10.763}, views[0].Wavelengths())
	assert.Len(t, views[0].Bands(), 3)

	m05 := fx.src.Choice("M05")
	assert.True(t, views[0].Contains(m05))
	assert.False(t, views[1].Contains(m05))
	assert.Same(t, views[0], fx.src.Aggregate(m05))
	assert.Nil(t, fx.src.Aggregate(fx.src.Choice("CloudMask")))
	assert.Same(t, m05.Group(), fx.src.Choice("M15").Group())
}

func TestGeolocationComputedOncePerGroup(t *testing.T) {
	fx := newFixture(t)
	m05, m07, m15 := fx.src.Choice("M05"), fx.src.Choice("M07"), fx.src.Choice("M15")

	d, err := fx.src.Fetch(m05, nil)
	require.NoError(t, err)
	assert.Equal(t, []int{10, 5}, d.Shape)

	geo := fx.spies["M05"].Geolocation()
	require.NotNil(t, geo)
	assert.Same(t, geo, fx.src.Aggregate(m05).Geolocation())
	assert.Same(t, geo, fx.spies["M07"].Geolocation())
	assert.Same(t, geo, fx.spies["M15"].Geolocation())
	assert.Nil(t, fx.spies["I01"].Geolocation(), "other groups are untouched")

	for _, c := range []*swath.Choice{m07, m15, m05} {
		d, err := fx.src.Fetch(c, nil)
		require.NoError(t, err)
		assert.Same(t, geo, d.Geo)
	}
	assert.EqualValues(t, 1, fx.spies["M05"].computed.Load())
	assert.Zero(t, fx.spies["M07"].computed.Load())
	assert.Zero(t, fx.spies["M15"].computed.Load())

	c, err := metrics.New(fx.registry)
	require.NoError(t, err)
	assert.Equal(t, 2.0, testutil.ToFloat64(c.GeoShared.WithLabelValues("M-Band")))
	assert.Equal(t, 4.0, testutil.ToFloat64(c.Fetches.WithLabelValues("Test Imager", "ok")))
}

func TestUngroupedComputesOwnGeolocation(t *testing.T) {
	fx := newFixture(t)
	_, err := fx.src.Fetch(fx.src.Choice("CloudMask"), nil)
	require.NoError(t, err)
	_, err = fx.src.Fetch(fx.src.Choice("CloudMask"), nil)
	require.NoError(t, err)
	assert.EqualValues(t, 1, fx.spies["CloudMask"].computed.Load())
	assert.Nil(t, fx.spies["M05"].Geolocation())
}

func TestFailedFetchPublishesNothing(t *testing.T) {
	fx := newFixture(t)
	m05, m07 := fx.src.Choice("M05"), fx.src.Choice("M07")
	fx.spies["M05"].failures.Store(1)

	_, err := fx.src.Fetch(m05, nil)
	var de *swath.DataError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "M05", de.Choice)
	assert.True(t, errors.Is(err, swath.ErrUpstreamRead))
	assert.True(t, errors.Is(err, errFlaky))
	assert.Nil(t, fx.src.Aggregate(m05).Geolocation())
	assert.Nil(t, fx.spies["M07"].Geolocation())

	// The next sibling to succeed publishes.
	_, err = fx.src.Fetch(m07, nil)
	require.NoError(t, err)
	geo := fx.src.Aggregate(m05).Geolocation()
	require.NotNil(t, geo)
	assert.Equal(t, "M07", geo.CoordSys)
	assert.Same(t, geo, fx.spies["M05"].Geolocation())
}

func TestConcurrentFirstFetches(t *testing.T) {
	fx := newFixture(t)
	choices := fx.src.Aggregate(fx.src.Choice("M05")).Bands()

	var wg sync.WaitGroup
	errs := make(chan error, 12)
	for i := 0; i < 12; i++ {
		c := choices[i%len(choices)]
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := fx.src.Fetch(c, nil)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	var total int32
	for _, c := range choices {
		total += fx.spies[c.Name()].computed.Load()
	}
	assert.EqualValues(t, 1, total)
	geo := fx.src.Aggregate(choices[0]).Geolocation()
	for _, c := range choices {
		assert.Same(t, geo, fx.spies[c.Name()].Geolocation())
	}
}

func TestFetchOutOfRangeNeverReads(t *testing.T) {
	fx := newFixture(t)
	var sel swath.Subset
	sel.MustSet("Track", 0, 20, 1)

	_, err := fx.src.Fetch(fx.src.Choice("M05"), &sel)
	var oor *swath.OutOfRangeError
	require.ErrorAs(t, err, &oor)
	assert.Equal(t, 20, oor.Length)
	assert.Zero(t, fx.spies["M05"].reads.Load())
}

func TestFetchExplicitSelection(t *testing.T) {
	fx := newFixture(t)
	m07 := fx.src.Choice("M07")
	var pick swath.Subset
	pick.MustSet("Track", 3, 5, 1)
	sel := m07.Selection().Merge(pick)

	d, err := fx.src.Fetch(m07, &sel)
	require.NoError(t, err)
	assert.Equal(t, []int{3, 5}, d.Shape)
	v, err := d.At(2, 4)
	require.NoError(t, err)
	assert.Equal(t, float32(105), v)
	_, err = d.At(3, 0)
	assert.Error(t, err)

	// The attached selection is unchanged.
	r, _ := m07.Selection().Get("Track")
	assert.Equal(t, 2, r.Stride)

	m07.Override(pick)
	d, err = fx.src.Fetch(m07, nil)
	require.NoError(t, err)
	assert.Equal(t, []int{3, 5}, d.Shape)
}

func TestForeignChoice(t *testing.T) {
	a, b := newFixture(t), newFixture(t)
	_, err := a.src.Fetch(b.src.Choice("M05"), nil)
	assert.True(t, errors.Is(err, swath.ErrForeignChoice))
	_, err = a.src.DefaultResolution(b.src.Choice("M05"))
	assert.True(t, errors.Is(err, swath.ErrForeignChoice))
}

func TestNilChoice(t *testing.T) {
	fx := newFixture(t)
	var de *swath.DataError
	_, err := fx.src.Fetch(nil, nil)
	require.ErrorAs(t, err, &de)
	assert.ErrorIs(t, err, swath.ErrForeignChoice)

	_, err = fx.src.DefaultResolution(nil)
	assert.ErrorIs(t, err, swath.ErrForeignChoice)
}

func TestDefaultResolution(t *testing.T) {
	fx := newFixture(t)
	r, err := fx.src.DefaultResolution(fx.src.Choice("I01"))
	require.NoError(t, err)
	assert.Equal(t, 375.0, r)

	_, err = fx.src.DefaultResolution(fx.src.Choice("CloudMask"))
	var rue *swath.ResolutionUnknownError
	require.ErrorAs(t, err, &rue)
	assert.Equal(t, "CloudMask", rue.Choice)
	assert.True(t, errors.Is(err, swath.ErrResolutionUnknown))
}

func TestCloseIdempotent(t *testing.T) {
	fx := newFixture(t)
	require.NoError(t, fx.src.Close())
	require.NoError(t, fx.src.Close())
	assert.EqualValues(t, 1, fx.closer.n.Load())

	_, err := fx.src.Fetch(fx.src.Choice("M05"), nil)
	assert.True(t, errors.Is(err, swath.ErrClosed))
}

func TestSpectrum(t *testing.T) {
	fx := newFixture(t)
	view := fx.src.Aggregate(fx.src.Choice("M05"))

	var point swath.Subset
	point.MustSet("Track", 7, 7, 1).MustSet("XTrack", 3, 3, 1)
	got, err := view.Spectrum(point)
	require.NoError(t, err)
	assert.Equal(t, []float32{7, 107, 207}, got)
	assert.NotNil(t, view.Geolocation())

	var far swath.Subset
	far.MustSet("Track", 40, 40, 1)
	_, err = view.Spectrum(far)
	assert.True(t, errors.Is(err, swath.ErrOutOfRange))
}

func TestSharedGeolocationSpansDefaultDomain(t *testing.T) {
	fx := newFixture(t)
	view := fx.src.Aggregate(fx.src.Choice("M05"))

	var point swath.Subset
	point.MustSet("Track", 5, 5, 1).MustSet("XTrack", 2, 2, 1)
	_, err := view.Spectrum(point)
	require.NoError(t, err)

	geo := view.Geolocation()
	require.NotNil(t, geo)
	assert.Equal(t, []int{10, 5}, geo.Domain.Shape(), "a point read publishes the default domain")

	d, err := fx.src.Fetch(fx.src.Choice("M15"), nil)
	require.NoError(t, err)
	assert.Equal(t, d.Shape, d.Geo.Domain.Shape())
	assert.Same(t, geo, d.Geo)

	var window swath.Subset
	window.MustSet("Track", 4, 9, 1).MustSet("XTrack", 0, 2, 1)
	d, err = fx.src.Fetch(fx.src.Choice("M07"), &window)
	require.NoError(t, err)
	assert.Equal(t, []int{6, 3}, d.Shape)
	assert.Equal(t, d.Shape, d.Geo.Domain.Shape())
	assert.Same(t, geo, view.Geolocation(), "narrower reads never replace the shared record")
}

func TestComposeNeedsAdapter(t *testing.T) {
	g := swath.NewTaxonomy().Intern("M-Band")
	c := swath.NewChoice(nil, "M05", g, swath.BandInfo{}, swath.NewSubset())
	_, err := swath.Compose([]*swath.Choice{c}, map[*swath.Choice]swath.ArrayAdapter{})
	assert.Error(t, err)
}

func TestSummary(t *testing.T) {
	d := &swath.Data{
		Dims:   []string{"Track"},
		Shape:  []int{5},
		Values: []float32{1, 2, 3, float32(math.NaN()), float32(math.Inf(1))},
	}
	s, err := d.Summary()
	require.NoError(t, err)
	assert.Equal(t, 3, s.Count)
	assert.Equal(t, 2, s.NaN)
	assert.Equal(t, 1.0, s.Min)
	assert.Equal(t, 3.0, s.Max)
	assert.InDelta(t, 2.0, s.Mean, 1e-9)
	assert.Equal(t, 1.0, s.P2)
	assert.Equal(t, 3.0, s.P98)

	single, err := (&swath.Data{Dims: []string{"Track"}, Shape: []int{1}, Values: []float32{7}}).Summary()
	require.NoError(t, err)
	assert.Equal(t, 1, single.Count)
	assert.Equal(t, 7.0, single.P2)
	assert.Equal(t, 7.0, single.P98)

	ramp := make([]float32, 100)
	for i := range ramp {
		ramp[i] = float32(i + 1)
	}
	wide, err := (&swath.Data{Dims: []string{"Track"}, Shape: []int{100}, Values: ramp}).Summary()
	require.NoError(t, err)
	assert.Equal(t, 2.0, wide.P2)
	assert.Equal(t, 98.0, wide.P98)

	empty, err := (&swath.Data{}).Summary()
	require.NoError(t, err)
	assert.Zero(t, empty.Count)
}
