package products

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/robert-malhotra/go-swath/internal/granule"
	"github.com/robert-malhotra/go-swath/internal/h5read"
	"github.com/robert-malhotra/go-swath/internal/metrics"
	"github.com/robert-malhotra/go-swath/internal/ncread"
	"github.com/robert-malhotra/go-swath/internal/timestamp"
	"github.com/robert-malhotra/go-swath/swath"
)

// Option configures handlers and the default registry.
type Option func(*options)

type options struct {
	ctx         context.Context
	logger      *zap.Logger
	registerer  prometheus.Registerer
	metrics     *metrics.Collectors
	session     *swath.Session
	open        granule.OpenFunc
	parse       granule.TimestampFunc
	descriptors []Descriptor
}

func defaultOptions() *options {
	return &options{
		ctx:    context.Background(),
		logger: zap.NewNop(),
		parse:  timestamp.Parse,
	}
}

func buildOptions(opts []Option) *options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	if o.metrics == nil {
		c, err := metrics.New(o.registerer)
		if err != nil {
			o.logger.Warn("metrics registration failed, using private registry", zap.Error(err))
			c = metrics.Discard()
		}
		o.metrics = c
	}
	return o
}

func (o *options) swathOptions() []swath.Option {
	opts := []swath.Option{swath.WithLogger(o.logger), swath.WithMetrics(o.metrics)}
	if o.session != nil {
		opts = append(opts, swath.WithSession(o.session))
	}
	return opts
}

// opener returns the granule reader for a file format. HDF5 datasets carry
// no dimension names, so they are named trackDim and xtrackDim. An opener
// set with WithOpener serves every format.
func (o *options) opener(format, trackDim, xtrackDim string) granule.OpenFunc {
	if o.open != nil {
		return o.open
	}
	if format == FormatHDF5 {
		return h5read.Opener(h5read.WithDimNames(trackDim, xtrackDim))
	}
	return func(path string) (granule.Reader, error) {
		return ncread.Open(path)
	}
}

// WithLogger sets the logger. A nil logger is ignored.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithRegisterer registers the module's collectors on reg.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(o *options) {
		o.registerer = reg
	}
}

// WithMetrics shares an existing set of collectors.
func WithMetrics(c *metrics.Collectors) Option {
	return func(o *options) {
		o.metrics = c
	}
}

// WithSession records resolved sources in s.
func WithSession(s *swath.Session) Option {
	return func(o *options) {
		o.session = s
	}
}

// WithContext bounds granule opens.
func WithContext(ctx context.Context) Option {
	return func(o *options) {
		if ctx != nil {
			o.ctx = ctx
		}
	}
}

// WithOpener replaces the granule reader of every format.
func WithOpener(open granule.OpenFunc) Option {
	return func(o *options) {
		if open != nil {
			o.open = open
		}
	}
}

// WithTimestampParser replaces the file name timestamp parser.
func WithTimestampParser(parse granule.TimestampFunc) Option {
	return func(o *options) {
		if parse != nil {
			o.parse = parse
		}
	}
}

// WithDescriptors replaces the built-in descriptor table used by NewRegistry.
func WithDescriptors(ds []Descriptor) Option {
	return func(o *options) {
		o.descriptors = ds
	}
}
