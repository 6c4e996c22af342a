package swath

import (
	"fmt"
	"strings"
)

// Range selects indices Start..Stop (inclusive) every Stride elements.
type Range struct {
	Start  int
	Stop   int
	Stride int
}

// NewRange validates and returns a Range. dim is only used for the error.
func NewRange(dim string, start, stop, stride int) (Range, error) {
	r := Range{Start: start, Stop: stop, Stride: stride}
	if !r.valid() {
		return Range{}, &InvalidRangeError{Dim: dim, Start: start, Stop: stop, Stride: stride}
	}
	return r, nil
}

func (r Range) valid() bool {
	return r.Start >= 0 && r.Start <= r.Stop && r.Stride >= 1
}

// Count returns the number of selected indices.
func (r Range) Count() int {
	if !r.valid() {
		return 0
	}
	return (r.Stop-r.Start)/r.Stride + 1
}

// Last returns the last index actually selected, which may be before Stop
// when the stride does not divide the span.
func (r Range) Last() int {
	return r.Start + (r.Count()-1)*r.Stride
}

// Within reports whether every index r selects is also selected by outer.
// offset is the position of r.Start among outer's indices and step is the
// distance, in outer positions, between consecutive indices of r.
func (r Range) Within(outer Range) (offset, step int, ok bool) {
	if !r.valid() || !outer.valid() {
		return 0, 0, false
	}
	if r.Start < outer.Start || r.Last() > outer.Last() || (r.Start-outer.Start)%outer.Stride != 0 {
		return 0, 0, false
	}
	step = 1
	if r.Count() > 1 {
		if r.Stride%outer.Stride != 0 {
			return 0, 0, false
		}
		step = r.Stride / outer.Stride
	}
	return (r.Start - outer.Start) / outer.Stride, step, true
}

func (r Range) String() string {
	return fmt.Sprintf("[%d:%d:%d]", r.Start, r.Stop, r.Stride)
}

// Subset is an ordered mapping from dimension name to Range. The zero value
// is an empty subset. Subset has value semantics: Merge and Clone return new
// subsets that share nothing with the receiver.
type Subset struct {
	dims   []string
	ranges map[string]Range
}

// NewSubset returns an empty subset.
func NewSubset() Subset {
	return Subset{}
}

// Set assigns the range for dim, appending dim if it is new. It fails with
// *InvalidRangeError if start > stop, start < 0 or stride < 1.
func (s *Subset) Set(dim string, start, stop, stride int) error {
	r, err := NewRange(dim, start, stop, stride)
	if err != nil {
		return err
	}
	s.put(dim, r)
	return nil
}

// MustSet is like Set but panics on an invalid range. Intended for literals.
func (s *Subset) MustSet(dim string, start, stop, stride int) *Subset {
	if err := s.Set(dim, start, stop, stride); err != nil {
		panic(err)
	}
	return s
}

func (s *Subset) put(dim string, r Range) {
	if s.ranges == nil {
		s.ranges = make(map[string]Range)
	}
	if _, ok := s.ranges[dim]; !ok {
		s.dims = append(s.dims, dim)
	}
	s.ranges[dim] = r
}

// Get returns the range for dim.
func (s Subset) Get(dim string) (Range, bool) {
	r, ok := s.ranges[dim]
	return r, ok
}

// Dims returns the dimension names in insertion order.
func (s Subset) Dims() []string {
	out := make([]string, len(s.dims))
	copy(out, s.dims)
	return out
}

// Len returns the number of dimensions.
func (s Subset) Len() int {
	return len(s.dims)
}

// Clone returns an independent copy.
func (s Subset) Clone() Subset {
	var out Subset
	for _, d := range s.dims {
		out.put(d, s.ranges[d])
	}
	return out
}

// Merge returns a new subset in which entries of other override entries of
// the receiver with the same dimension name. Dimensions present on only one
// side pass through. The receiver's order is kept; dimensions new in other
// are appended in other's order.
func (s Subset) Merge(other Subset) Subset {
	out := s.Clone()
	for _, d := range other.dims {
		out.put(d, other.ranges[d])
	}
	return out
}

// Equal reports whether both subsets select the same ranges in the same order.
func (s Subset) Equal(other Subset) bool {
	if len(s.dims) != len(other.dims) {
		return false
	}
	for i, d := range s.dims {
		if other.dims[i] != d || other.ranges[d] != s.ranges[d] {
			return false
		}
	}
	return true
}

// Validate checks every entry against the supplied dimension lengths.
// Dimensions with no known length are not checked.
func (s Subset) Validate(lengths map[string]int) error {
	for _, d := range s.dims {
		r := s.ranges[d]
		n, ok := lengths[d]
		if !ok {
			continue
		}
		if r.Stop >= n {
			return &OutOfRangeError{Dim: d, Range: r, Length: n}
		}
	}
	return nil
}

func (s Subset) String() string {
	parts := make([]string, 0, len(s.dims))
	for _, d := range s.dims {
		parts = append(parts, d+":"+s.ranges[d].String())
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
