package swath

import (
	"sync"

	"github.com/google/uuid"

	"github.com/robert-malhotra/go-swath/internal/metrics"
)

// Session lists the sources a host application has resolved. It does not
// own them: a caller may close and drop a source that is still listed until
// Forget is called.
type Session struct {
	mu      sync.Mutex
	sources []Source
	metrics *metrics.Collectors
}

// NewSession returns an empty session.
func NewSession(opts ...Option) *Session {
	o := buildOptions(opts)
	return &Session{metrics: o.metrics}
}

// Add records src. Adding the same source twice is a no-op.
func (s *Session) Add(src Source) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.sources {
		if existing == src {
			return
		}
	}
	s.sources = append(s.sources, src)
	s.metrics.LiveSources.Inc()
}

// Forget removes src. It reports whether src was listed.
func (s *Session) Forget(src Source) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, existing := range s.sources {
		if existing == src {
			s.sources = append(s.sources[:i], s.sources[i+1:]...)
			s.metrics.LiveSources.Dec()
			return true
		}
	}
	return false
}

// Sources returns every listed source in insertion order.
func (s *Session) Sources() []Source {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Source, len(s.sources))
	copy(out, s.sources)
	return out
}

// ListByDescription returns the listed sources whose Description equals desc.
func (s *Session) ListByDescription(desc string) []Source {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Source
	for _, src := range s.sources {
		if src.Description() == desc {
			out = append(out, src)
		}
	}
	return out
}

// Lookup returns the listed source with the given id.
func (s *Session) Lookup(id uuid.UUID) (Source, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, src := range s.sources {
		if src.ID() == id {
			return src, true
		}
	}
	return nil, false
}
