package swath

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/robert-malhotra/go-swath/internal/metrics"
)

// Registry resolves file sets to sources by trying an ordered table of
// candidates. The first candidate that opens successfully wins, so narrow
// filename conventions must come before broad ones.
type Registry struct {
	candidates []Candidate
	session    *Session
	logger     *zap.Logger
	metrics    *metrics.Collectors
}

// NewRegistry returns a registry over candidates, tried in the given order.
func NewRegistry(candidates []Candidate, opts ...Option) *Registry {
	o := buildOptions(opts)
	session := o.session
	if session == nil {
		session = NewSession(WithMetrics(o.metrics))
	}
	return &Registry{
		candidates: append([]Candidate(nil), candidates...),
		session:    session,
		logger:     o.logger,
		metrics:    o.metrics,
	}
}

// Candidates returns the candidate names in priority order.
func (r *Registry) Candidates() []string {
	names := make([]string, len(r.candidates))
	for i, c := range r.candidates {
		names[i] = c.Name
	}
	return names
}

// Session returns the session that records resolved sources.
func (r *Registry) Session() *Session { return r.session }

// Resolve returns the source built by the first candidate that accepts
// files. A candidate is skipped when its probe answers false or its
// constructor fails. An *IOError from a probe aborts resolution.
func (r *Registry) Resolve(files []string) (Source, error) {
	if len(files) == 0 {
		return nil, &UnrecognizedInputError{Rejections: map[string]error{}}
	}
	for i, f := range files {
		if f == "" {
			return nil, fmt.Errorf("file %d: empty name", i)
		}
	}

	rejections := make(map[string]error)
	for _, c := range r.candidates {
		ok, err := c.Probe(files)
		if err != nil {
			var ioErr *IOError
			if errors.As(err, &ioErr) {
				r.metrics.Resolutions.WithLabelValues(c.Name, "io_error").Inc()
				return nil, err
			}
			rejections[c.Name] = err
			continue
		}
		if !ok {
			rejections[c.Name] = errors.New("probe declined")
			continue
		}

		src, err := c.Open(files)
		if err != nil {
			r.logger.Debug("candidate rejected input",
				zap.String("candidate", c.Name),
				zap.Strings("files", files),
				zap.Error(err))
			rejections[c.Name] = err
			if errors.Is(err, ErrUnsortableGranule) {
				r.metrics.Resolutions.WithLabelValues(c.Name, "unsortable").Inc()
			}
			continue
		}

		r.session.Add(src)
		r.metrics.Resolutions.WithLabelValues(c.Name, "ok").Inc()
		r.logger.Info("resolved source",
			zap.String("candidate", c.Name),
			zap.String("description", src.Description()),
			zap.Stringer("id", src.ID()),
			zap.Int("choices", len(src.Choices())))
		return src, nil
	}

	r.metrics.Resolutions.WithLabelValues("", "unrecognized").Inc()
	return nil, &UnrecognizedInputError{
		Files:      append([]string(nil), files...),
		Rejections: rejections,
	}
}

// ListByDescription returns the session's sources with the given description.
func (r *Registry) ListByDescription(desc string) []Source {
	return r.session.ListByDescription(desc)
}

// Forget drops src from the session.
func (r *Registry) Forget(src Source) bool {
	return r.session.Forget(src)
}
