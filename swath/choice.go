package swath

import "sync"

// BandKind classifies what a band measures.
type BandKind string

const (
	KindReflective BandKind = "reflective"
	KindEmissive   BandKind = "emissive"
	KindDNB        BandKind = "dnb"
	KindProduct    BandKind = "product"
)

// BandInfo carries descriptive metadata for a choice.
type BandInfo struct {
	Kind       BandKind
	Sensor     string
	Wavelength float64 // micrometres, 0 when not applicable
	Units      string
}

// Choice is a named, retrievable quantity offered by a Source. Choices are
// compared by identity; names are only unique within one Source.
type Choice struct {
	name   string
	source Source
	group  *Group
	info   BandInfo

	mu        sync.RWMutex
	selection Subset
}

// NewChoice creates a choice owned by src with sel as its default selection.
func NewChoice(src Source, name string, group *Group, info BandInfo, sel Subset) *Choice {
	return &Choice{
		name:      name,
		source:    src,
		group:     group,
		info:      info,
		selection: sel.Clone(),
	}
}

// Name returns the band name.
func (c *Choice) Name() string { return c.name }

// Source returns the owning source.
func (c *Choice) Source() Source { return c.source }

// Group returns the band's group, or nil if the band is ungrouped.
func (c *Choice) Group() *Group { return c.group }

// Info returns the band metadata.
func (c *Choice) Info() BandInfo { return c.info }

// Selection returns a copy of the attached subset.
func (c *Choice) Selection() Subset {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.selection.Clone()
}

// SetSelection replaces the attached subset.
func (c *Choice) SetSelection(s Subset) {
	c.mu.Lock()
	c.selection = s.Clone()
	c.mu.Unlock()
}

// Override merges partial into the attached subset, e.g. to pick a single
// channel while keeping the default track and cross-track decimation.
func (c *Choice) Override(partial Subset) {
	c.mu.Lock()
	c.selection = c.selection.Merge(partial)
	c.mu.Unlock()
}

func (c *Choice) String() string { return c.name }
