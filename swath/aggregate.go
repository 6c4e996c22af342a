package swath

import (
	"fmt"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/robert-malhotra/go-swath/internal/metrics"
)

// AggregateView is the multi-band view over every choice of one Group. It
// owns the group's geolocation record, which is empty until the first
// successful fetch of any sibling and immutable afterwards. The record spans
// the siblings' default domain; narrower fetches and Spectrum never shrink it.
type AggregateView struct {
	group    *Group
	choices  []*Choice
	adapters []ArrayAdapter

	geo    atomic.Pointer[Geolocation]
	initMu sync.Mutex

	logger  *zap.Logger
	metrics *metrics.Collectors
}

// Compose builds one view per distinct non-nil group among choices. Views
// are returned in order of first appearance and list their siblings in
// choice order. Every choice must have an adapter.
func Compose(choices []*Choice, adapters map[*Choice]ArrayAdapter, opts ...Option) ([]*AggregateView, error) {
	o := buildOptions(opts)
	var views []*AggregateView
	byGroup := make(map[*Group]*AggregateView)
	for _, c := range choices {
		g := c.Group()
		if g == nil {
			continue
		}
		a, ok := adapters[c]
		if !ok {
			return nil, fmt.Errorf("no adapter for choice %s", c.Name())
		}
		v, ok := byGroup[g]
		if !ok {
			v = &AggregateView{group: g, logger: o.logger, metrics: o.metrics}
			byGroup[g] = v
			views = append(views, v)
		}
		v.choices = append(v.choices, c)
		v.adapters = append(v.adapters, a)
	}
	return views, nil
}

// Group returns the tag shared by every band in the view.
func (v *AggregateView) Group() *Group { return v.group }

// Bands returns the sibling choices.
func (v *AggregateView) Bands() []*Choice {
	out := make([]*Choice, len(v.choices))
	copy(out, v.choices)
	return out
}

// Wavelengths returns the centre wavelength of every sibling.
func (v *AggregateView) Wavelengths() []float64 {
	out := make([]float64, len(v.choices))
	for i, c := range v.choices {
		out[i] = c.Info().Wavelength
	}
	return out
}

// Geolocation returns the shared record, or nil before the first successful
// fetch.
func (v *AggregateView) Geolocation() *Geolocation {
	return v.geo.Load()
}

// Contains reports whether c is one of the view's siblings.
func (v *AggregateView) Contains(c *Choice) bool {
	return v.indexOf(c) >= 0
}

func (v *AggregateView) indexOf(c *Choice) int {
	for i, sib := range v.choices {
		if sib == c {
			return i
		}
	}
	return -1
}

// read fetches through adapter a. While the shared record is empty, reads
// are serialized so two siblings never publish concurrently. A failed read
// leaves the record empty and the next read tries again.
func (v *AggregateView) read(a ArrayAdapter, sel Subset) (*Data, error) {
	if v.geo.Load() != nil {
		return a.Read(sel)
	}

	v.initMu.Lock()
	defer v.initMu.Unlock()
	if v.geo.Load() != nil {
		return a.Read(sel)
	}

	d, err := a.Read(sel)
	if err != nil {
		return nil, err
	}
	v.publish(a)
	return d, nil
}

// publish stores origin's geolocation and copies it onto every other
// sibling. Must be called with initMu held.
func (v *AggregateView) publish(origin ArrayAdapter) {
	geo := origin.Geolocation()
	if geo == nil {
		return
	}
	v.geo.Store(geo)
	for _, sib := range v.adapters {
		if sib == origin {
			continue
		}
		sib.SetGeolocation(geo)
		v.metrics.GeoShared.WithLabelValues(v.group.Name()).Inc()
	}
	v.logger.Debug("geolocation shared",
		zap.String("group", v.group.Name()),
		zap.Int("siblings", len(v.adapters)-1))
}

// Spectrum reads one sample per sibling at point, which is merged over each
// sibling's attached selection. point normally pins the track and
// cross-track dimensions to single indices.
func (v *AggregateView) Spectrum(point Subset) ([]float32, error) {
	out := make([]float32, len(v.choices))
	for i, c := range v.choices {
		a := v.adapters[i]
		sel := c.Selection().Merge(point)
		if err := sel.Validate(a.Lengths()); err != nil {
			return nil, &DataError{Choice: c.Name(), Err: err}
		}
		d, err := v.read(a, sel)
		if err != nil {
			return nil, &DataError{Choice: c.Name(), Err: classify(c.Name(), err)}
		}
		if d.Len() == 0 {
			return nil, &DataError{Choice: c.Name(), Err: fmt.Errorf("empty read at %s", point)}
		}
		out[i] = d.Values[0]
	}
	return out, nil
}
