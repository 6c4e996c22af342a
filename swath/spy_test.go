package swath_test

import (
	"errors"
	"sync"
	"sync/atomic"

	"github.com/robert-malhotra/go-swath/swath"
)

var errFlaky = errors.New("flaky read")

// spyAdapter is a Track x XTrack band whose sample at (i, j) is base + i.
// It computes its geolocation over the default domain on the first
// successful read unless one was injected. Reads off the default domain get
// a record narrowed to their own ranges.
type spyAdapter struct {
	name     string
	base     float32
	track    int
	xtrack   int
	failures atomic.Int32

	reads    atomic.Int32
	computed atomic.Int32

	mu  sync.Mutex
	geo *swath.Geolocation
}

func newSpy(name string, base float32) *spyAdapter {
	return &spyAdapter{name: name, base: base, track: 20, xtrack: 10}
}

func (a *spyAdapter) DefaultSubset() swath.Subset {
	var s swath.Subset
	s.MustSet("Track", 0, a.track-1, 2).MustSet("XTrack", 0, a.xtrack-1, 2)
	return s
}

func (a *spyAdapter) Lengths() map[string]int {
	return map[string]int{"Track": a.track, "XTrack": a.xtrack}
}

func (a *spyAdapter) Read(sel swath.Subset) (*swath.Data, error) {
	a.reads.Add(1)
	if a.failures.Load() > 0 {
		a.failures.Add(-1)
		return nil, errFlaky
	}
	tr, _ := sel.Get("Track")
	xr, _ := sel.Get("XTrack")

	a.mu.Lock()
	if a.geo == nil {
		a.computed.Add(1)
		def := a.DefaultSubset()
		dt, _ := def.Get("Track")
		dx, _ := def.Get("XTrack")
		a.geo = &swath.Geolocation{
			CoordSys: a.name,
			Domain:   swath.Domain{Dims: []string{"Track", "XTrack"}, Ranges: []swath.Range{dt, dx}},
		}
	}
	geo := a.geo
	a.mu.Unlock()
	if dom := geo.Domain; dom.Ranges[0] != tr || dom.Ranges[1] != xr {
		geo = &swath.Geolocation{
			CoordSys: geo.CoordSys,
			Domain:   swath.Domain{Dims: dom.Dims, Ranges: []swath.Range{tr, xr}},
		}
	}

	var vals []float32
	for i := tr.Start; i <= tr.Stop; i += tr.Stride {
		for j := xr.Start; j <= xr.Stop; j += xr.Stride {
			vals = append(vals, a.base+float32(i))
		}
	}
	return &swath.Data{
		Choice: a.name,
		Dims:   []string{"Track", "XTrack"},
		Shape:  []int{tr.Count(), xr.Count()},
		Values: vals,
		Geo:    geo,
	}, nil
}

func (a *spyAdapter) Geolocation() *swath.Geolocation {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.geo
}

func (a *spyAdapter) SetGeolocation(geo *swath.Geolocation) {
	a.mu.Lock()
	a.geo = geo
	a.mu.Unlock()
}

type countingCloser struct{ n atomic.Int32 }

func (c *countingCloser) Close() error {
	c.n.Add(1)
	return nil
}
