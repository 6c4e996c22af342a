package swath

import (
	"errors"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/robert-malhotra/go-swath/internal/metrics"
)

// Band binds one retrievable quantity to the adapter that reads it.
type Band struct {
	Name       string
	Group      string
	Info       BandInfo
	Resolution float64 // metres; 0 means undeclared
	Adapter    ArrayAdapter
}

// SourceInfo describes the dataset behind a BandSource.
type SourceInfo struct {
	Description string
	DateTime    time.Time
	Files       []string
}

// BandSource is the generic Source: a list of bands, each with its own
// adapter, grouped into aggregate views that share geolocation.
type BandSource struct {
	id       uuid.UUID
	info     SourceInfo
	taxonomy *Taxonomy

	choices     []*Choice
	adapters    map[*Choice]ArrayAdapter
	resolutions map[*Choice]float64
	views       []*AggregateView
	viewOf      map[*Choice]*AggregateView

	closers []io.Closer

	mu     sync.Mutex
	closed bool

	logger  *zap.Logger
	metrics *metrics.Collectors
}

var _ Source = (*BandSource)(nil)

// NewBandSource creates choices for bands in order, using each adapter's
// default subset as the attached selection, and composes the group views.
// closers are released by Close.
func NewBandSource(info SourceInfo, bands []Band, closers []io.Closer, opts ...Option) (*BandSource, error) {
	o := buildOptions(opts)
	s := &BandSource{
		id:          uuid.New(),
		info:        info,
		taxonomy:    NewTaxonomy(),
		adapters:    make(map[*Choice]ArrayAdapter, len(bands)),
		resolutions: make(map[*Choice]float64, len(bands)),
		viewOf:      make(map[*Choice]*AggregateView),
		closers:     closers,
		logger:      o.logger,
		metrics:     o.metrics,
	}
	s.info.Files = append([]string(nil), info.Files...)

	for _, b := range bands {
		c := NewChoice(s, b.Name, s.taxonomy.Intern(b.Group), b.Info, b.Adapter.DefaultSubset())
		s.choices = append(s.choices, c)
		s.adapters[c] = b.Adapter
		s.resolutions[c] = b.Resolution
	}

	views, err := Compose(s.choices, s.adapters, WithLogger(o.logger), WithMetrics(o.metrics))
	if err != nil {
		return nil, err
	}
	s.views = views
	for _, v := range views {
		for _, c := range v.choices {
			s.viewOf[c] = v
		}
	}
	return s, nil
}

// ID returns the source identity.
func (s *BandSource) ID() uuid.UUID { return s.id }

// Description returns the product description.
func (s *BandSource) Description() string { return s.info.Description }

// DateTime returns the nominal time.
func (s *BandSource) DateTime() time.Time { return s.info.DateTime }

// Files returns the input files in read order.
func (s *BandSource) Files() []string {
	return append([]string(nil), s.info.Files...)
}

// Taxonomy returns the group tags in use.
func (s *BandSource) Taxonomy() *Taxonomy { return s.taxonomy }

// Choices returns the bands in construction order.
func (s *BandSource) Choices() []*Choice {
	out := make([]*Choice, len(s.choices))
	copy(out, s.choices)
	return out
}

// Choice returns the first choice named name, or nil.
func (s *BandSource) Choice(name string) *Choice {
	for _, c := range s.choices {
		if c.Name() == name {
			return c
		}
	}
	return nil
}

// Aggregates returns the per-group views.
func (s *BandSource) Aggregates() []*AggregateView {
	out := make([]*AggregateView, len(s.views))
	copy(out, s.views)
	return out
}

// Aggregate returns the view containing c, or nil for ungrouped choices.
func (s *BandSource) Aggregate(c *Choice) *AggregateView {
	return s.viewOf[c]
}

// Fetch reads c through its adapter. The subset is validated against the
// adapter's dimension lengths before any read; it is never clamped.
func (s *BandSource) Fetch(c *Choice, sel *Subset) (*Data, error) {
	if c == nil {
		return nil, &DataError{Err: ErrForeignChoice}
	}
	a, ok := s.adapters[c]
	if !ok {
		return nil, &DataError{Choice: c.Name(), Err: ErrForeignChoice}
	}
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return nil, &DataError{Choice: c.Name(), Err: ErrClosed}
	}

	var subset Subset
	if sel != nil {
		subset = sel.Clone()
	} else {
		subset = c.Selection()
	}

	d, err := s.read(c, a, subset)
	if err != nil {
		s.metrics.Fetches.WithLabelValues(s.info.Description, "error").Inc()
		s.logger.Debug("fetch failed", zap.String("choice", c.Name()), zap.Error(err))
		return nil, &DataError{Choice: c.Name(), Err: classify(c.Name(), err)}
	}
	s.metrics.Fetches.WithLabelValues(s.info.Description, "ok").Inc()
	return d, nil
}

func (s *BandSource) read(c *Choice, a ArrayAdapter, sel Subset) (*Data, error) {
	if err := sel.Validate(a.Lengths()); err != nil {
		return nil, err
	}
	if v := s.viewOf[c]; v != nil {
		return v.read(a, sel)
	}
	return a.Read(sel)
}

// DefaultResolution returns the declared nominal resolution of c.
func (s *BandSource) DefaultResolution(c *Choice) (float64, error) {
	r, ok := s.resolutions[c]
	if c == nil || !ok {
		return 0, ErrForeignChoice
	}
	if r <= 0 {
		return 0, &ResolutionUnknownError{Source: s.info.Description, Choice: c.Name()}
	}
	return r, nil
}

// Close releases every reader. It is safe to call more than once.
func (s *BandSource) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	var errs []error
	for _, c := range s.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// classify keeps the data error kinds callers test for and wraps anything
// else as an upstream read failure.
func classify(choice string, err error) error {
	switch {
	case errors.Is(err, ErrOutOfRange),
		errors.Is(err, ErrMissingAncillary),
		errors.Is(err, ErrUpstreamRead),
		errors.Is(err, ErrInvalidRange):
		return err
	default:
		return &UpstreamReadError{Array: choice, Err: err}
	}
}
