package products

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/robert-malhotra/go-swath/internal/granule"
	"github.com/robert-malhotra/go-swath/internal/metrics"
	"github.com/robert-malhotra/go-swath/swath"
)

// adapterBase is the part of an array adapter shared by swath and grid
// products: selection bookkeeping and the cached geolocation record.
type adapterBase struct {
	name       string
	instrument string
	array      string
	kind       swath.BandKind
	units      string

	data    *granule.Aggregation
	dims    []string
	lengths map[string]int
	primary [2]string // row, column dimension names
	stride  int

	logger  *zap.Logger
	metrics *metrics.Collectors

	mu  sync.Mutex
	geo *swath.Geolocation
}

func newAdapterBase(d *Descriptor, b BandDescriptor, data *granule.Aggregation, o *options) (*adapterBase, error) {
	dims, shape, err := data.Dims(b.Array)
	if err != nil {
		return nil, err
	}
	base := &adapterBase{
		name:       b.Name,
		instrument: d.Name,
		array:      b.Array,
		kind:       swath.BandKind(b.Kind),
		units:      unitsFor(b),
		data:       data,
		dims:       dims,
		lengths:    make(map[string]int, len(dims)),
		primary:    [2]string{d.TrackDim, d.XTrackDim},
		stride:     d.stride(),
		logger:     o.logger,
		metrics:    o.metrics,
	}
	for i, dim := range dims {
		base.lengths[dim] = shape[i]
	}
	for _, p := range base.primary {
		if _, ok := base.lengths[p]; !ok {
			return nil, fmt.Errorf("%s: dimension %s not in %v", b.Array, p, dims)
		}
	}
	return base, nil
}

// DefaultSubset decimates the two primary dimensions by the product stride
// and pins every other dimension to its first index.
func (a *adapterBase) DefaultSubset() swath.Subset {
	var s swath.Subset
	for _, d := range a.dims {
		if d == a.primary[0] || d == a.primary[1] {
			s.MustSet(d, 0, a.lengths[d]-1, a.stride)
		} else {
			s.MustSet(d, 0, 0, 1)
		}
	}
	return s
}

// Lengths returns the full length of every dimension of the band array.
func (a *adapterBase) Lengths() map[string]int {
	out := make(map[string]int, len(a.lengths))
	for k, v := range a.lengths {
		out[k] = v
	}
	return out
}

// Geolocation returns the cached record, or nil.
func (a *adapterBase) Geolocation() *swath.Geolocation {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.geo
}

// SetGeolocation injects a record computed by a sibling band.
func (a *adapterBase) SetGeolocation(geo *swath.Geolocation) {
	a.mu.Lock()
	a.geo = geo
	a.mu.Unlock()
}

// ranges resolves sel against the array dims, filling gaps from the default
// subset.
func (a *adapterBase) ranges(sel swath.Subset) ([]swath.Range, error) {
	if err := sel.Validate(a.lengths); err != nil {
		return nil, err
	}
	def := a.DefaultSubset()
	out := make([]swath.Range, len(a.dims))
	for i, d := range a.dims {
		r, ok := sel.Get(d)
		if !ok {
			r, _ = def.Get(d)
		}
		out[i] = r
	}
	return out, nil
}

func (a *adapterBase) primaryRanges(rs []swath.Range) (row, col swath.Range) {
	for i, d := range a.dims {
		switch d {
		case a.primary[0]:
			row = rs[i]
		case a.primary[1]:
			col = rs[i]
		}
	}
	return row, col
}

func hyperslab(rs []swath.Range) granule.Hyperslab {
	h := granule.Hyperslab{
		Start:  make([]int, len(rs)),
		Count:  make([]int, len(rs)),
		Stride: make([]int, len(rs)),
	}
	for i, r := range rs {
		h.Start[i], h.Count[i], h.Stride[i] = r.Start, r.Count(), r.Stride
	}
	return h
}

// readBand reads and calibrates the band array for rs.
func (a *adapterBase) readBand(rs []swath.Range) ([]float64, error) {
	vals, err := a.data.Read(a.array, hyperslab(rs))
	if err != nil {
		return nil, &swath.UpstreamReadError{Array: a.array, Err: err}
	}
	return vals, nil
}

// navigateFunc computes the geolocation for row and column ranges.
type navigateFunc func(row, col swath.Range) (*swath.Geolocation, error)

// locate returns the geolocation for one read over row and col. The cached
// record always spans the default domain so that it can be shared with
// siblings whatever selection computed it. Reads on the cached grid are cut
// from it; others are navigated directly and never cached.
func (a *adapterBase) locate(row, col swath.Range, navigate navigateFunc) (*swath.Geolocation, error) {
	def := a.DefaultSubset()
	defRow, _ := def.Get(a.primary[0])
	defCol, _ := def.Get(a.primary[1])
	shared, err := a.cached(func() (*swath.Geolocation, error) {
		return navigate(defRow, defCol)
	})
	if err != nil {
		return nil, err
	}
	if geo := cut(shared, row, col); geo != nil {
		return geo, nil
	}
	a.logger.Debug("geolocation off the shared grid",
		zap.String("band", a.name),
		zap.Stringer("row", row),
		zap.Stringer("col", col))
	return navigate(row, col)
}

// cut narrows geo to row and col without reading. It returns geo itself when
// the ranges match its domain and nil when they are not on its grid.
func cut(geo *swath.Geolocation, row, col swath.Range) *swath.Geolocation {
	dom := geo.Domain
	if len(dom.Ranges) != 2 {
		return nil
	}
	if dom.Ranges[0] == row && dom.Ranges[1] == col {
		return geo
	}
	ro, rs, ok := row.Within(dom.Ranges[0])
	if !ok {
		return nil
	}
	co, cs, ok := col.Within(dom.Ranges[1])
	if !ok {
		return nil
	}
	rows := lattice{offset: ro, step: rs, count: row.Count()}
	cols := lattice{offset: co, step: cs, count: col.Count()}

	var sys any
	switch nav := geo.CoordSys.(type) {
	case *SwathNavigation:
		sys = nav.cut(rows, cols)
	case *GridNavigation:
		sys = nav.cut(rows, cols)
	default:
		return nil
	}
	return &swath.Geolocation{
		CoordSys: sys,
		Domain: swath.Domain{
			Dims:   append([]string(nil), dom.Dims...),
			Ranges: []swath.Range{row, col},
		},
	}
}

// cached returns the geolocation record, computing it with compute on first
// use. compute runs with a.mu held.
func (a *adapterBase) cached(compute func() (*swath.Geolocation, error)) (*swath.Geolocation, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.geo != nil {
		return a.geo, nil
	}
	geo, err := compute()
	if err != nil {
		return nil, err
	}
	a.geo = geo
	a.metrics.GeoComputations.WithLabelValues(a.instrument).Inc()
	a.logger.Debug("geolocation computed",
		zap.String("instrument", a.instrument),
		zap.String("band", a.name),
		zap.Ints("shape", geo.Domain.Shape()))
	return geo, nil
}

func (a *adapterBase) result(rs []swath.Range, vals []float64, geo *swath.Geolocation) *swath.Data {
	shape := make([]int, len(rs))
	for i, r := range rs {
		shape[i] = r.Count()
	}
	return &swath.Data{
		Choice: a.name,
		Dims:   append([]string(nil), a.dims...),
		Shape:  shape,
		Values: toFloat32(vals),
		Units:  a.units,
		Geo:    geo,
	}
}

func toFloat32(v []float64) []float32 {
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = float32(x)
	}
	return out
}
