package swath

import "sync"

// Group tags bands that are geolocated on the same pixel grid. Groups are
// compared by identity; two groups with the same name from different
// Taxonomies are distinct.
type Group struct {
	name string
}

// Name returns the tag, e.g. "M-Band" or "2km-emissive".
func (g *Group) Name() string {
	if g == nil {
		return ""
	}
	return g.name
}

func (g *Group) String() string { return g.Name() }

// Taxonomy interns group names for one Source. Descriptor authors are
// responsible for giving co-registered bands the same name; nothing here
// checks that the grids really match.
type Taxonomy struct {
	mu     sync.Mutex
	groups map[string]*Group
	order  []*Group
}

// NewTaxonomy returns an empty taxonomy.
func NewTaxonomy() *Taxonomy {
	return &Taxonomy{groups: make(map[string]*Group)}
}

// Intern returns the group for name, creating it on first use. The empty
// name means "ungrouped" and yields nil.
func (t *Taxonomy) Intern(name string) *Group {
	if name == "" {
		return nil
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if g, ok := t.groups[name]; ok {
		return g
	}
	g := &Group{name: name}
	t.groups[name] = g
	t.order = append(t.order, g)
	return g
}

// Groups returns every interned group in creation order.
func (t *Taxonomy) Groups() []*Group {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]*Group, len(t.order))
	copy(out, t.order)
	return out
}
