package swath

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/robert-malhotra/go-swath/internal/metrics"
)

// Option configures a Registry or a BandSource.
type Option func(*options)

type options struct {
	logger     *zap.Logger
	registerer prometheus.Registerer
	session    *Session
	metrics    *metrics.Collectors
}

func defaultOptions() *options {
	return &options{
		logger: zap.NewNop(),
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

// WithSession makes a Registry record resolved sources in s instead of a
// session of its own.
func WithSession(s *Session) Option {
	return func(o *options) {
		o.session = s
	}
}

// WithMetrics shares an existing set of collectors.
func WithMetrics(c *metrics.Collectors) Option {
	return func(o *options) {
		o.metrics = c
	}
}
