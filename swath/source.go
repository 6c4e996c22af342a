package swath

import (
	"time"

	"github.com/google/uuid"
)

//go:generate mockgen -destination=mocks/mock_adapter.go -package=mocks -source=source.go ArrayAdapter

// Source is a resolved handler over one logical dataset, possibly a virtual
// concatenation of several granules.
type Source interface {
	// ID returns the identity assigned at construction.
	ID() uuid.UUID

	// Description returns a short product description, e.g. "SNPP VIIRS".
	Description() string

	// DateTime returns the nominal time of the first granule.
	DateTime() time.Time

	// Files returns the input files in the order they are read.
	Files() []string

	// Choices returns the bands in construction order. The order is stable
	// for the lifetime of the source.
	Choices() []*Choice

	// Choice returns the first choice with the given name, or nil.
	Choice(name string) *Choice

	// Fetch retrieves data for c. A nil sel means the choice's attached
	// selection. Failures are *DataError.
	Fetch(c *Choice, sel *Subset) (*Data, error)

	// DefaultResolution returns the nominal ground sample distance in metres.
	DefaultResolution(c *Choice) (float64, error)

	// Aggregates returns one view per band group.
	Aggregates() []*AggregateView

	// Close releases readers held by the source.
	Close() error
}

// ArrayAdapter reads one band. Implementations compute geolocation as a side
// effect of their first successful Read unless one has been injected with
// SetGeolocation, after which they must reuse it. The record returned by
// Geolocation always covers the primary dimensions of DefaultSubset, whatever
// selection triggered it; Read attaches a record whose domain matches sel.
type ArrayAdapter interface {
	// DefaultSubset returns a decimated full-frame selection.
	DefaultSubset() Subset

	// Lengths returns the full length of every selectable dimension.
	Lengths() map[string]int

	// Read returns calibrated samples for sel.
	Read(sel Subset) (*Data, error)

	// Geolocation returns the geolocation in use, or nil if none yet.
	Geolocation() *Geolocation

	// SetGeolocation injects a geolocation computed by a sibling band.
	SetGeolocation(geo *Geolocation)
}

// ProbeFunc reports whether a handler understands files. It answers false on
// naming or content mismatch and returns *IOError only for unreadable paths.
type ProbeFunc func(files []string) (bool, error)

// OpenFunc builds a source from files. It may assume Probe returned true.
type OpenFunc func(files []string) (Source, error)

// Candidate pairs a probe with a constructor. Registries try candidates in
// order and keep the first that opens successfully.
type Candidate struct {
	Name  string
	Probe ProbeFunc
	Open  OpenFunc
}
