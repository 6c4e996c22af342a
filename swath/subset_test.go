package swath_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robert-malhotra/go-swath/swath"
)

type entry struct {
	Dim   string
	Range swath.Range
}

func entries(s swath.Subset) []entry {
	var out []entry
	for _, d := range s.Dims() {
		r, _ := s.Get(d)
		out = append(out, entry{d, r})
	}
	return out
}

func TestMergeOverridesTrack(t *testing.T) {
	var def, pick swath.Subset
	def.MustSet("Track", 0, 999, 10).MustSet("XTrack", 0, 499, 10)
	pick.MustSet("Track", 0, 999, 1)

	got := def.Merge(pick)
	want := []entry{
		{"Track", swath.Range{Start: 0, Stop: 999, Stride: 1}},
		{"XTrack", swath.Range{Start: 0, Stop: 499, Stride: 10}},
	}
	if diff := cmp.Diff(want, entries(got)); diff != "" {
		t.Errorf("merge mismatch (-want +got):\n%s", diff)
	}

	// The operands are untouched.
	r, _ := def.Get("Track")
	assert.Equal(t, 10, r.Stride)
}

func TestMergeLaws(t *testing.T) {
	var a, b, c swath.Subset
	a.MustSet("Track", 0, 9, 1).MustSet("XTrack", 0, 9, 2)
	b.MustSet("XTrack", 1, 5, 1).MustSet("Channel", 3, 3, 1)
	c.MustSet("Channel", 0, 0, 1)

	for _, s := range []swath.Subset{a, b, c} {
		assert.True(t, s.Merge(swath.NewSubset()).Equal(s), "right identity %s", s)
		assert.True(t, swath.NewSubset().Merge(s).Equal(s), "left identity %s", s)
		assert.True(t, s.Merge(s).Equal(s), "idempotent %s", s)
	}
	assert.True(t, a.Merge(b).Merge(c).Equal(a.Merge(b.Merge(c))), "associative")

	got := a.Merge(b)
	want := []entry{
		{"Track", swath.Range{Start: 0, Stop: 9, Stride: 1}},
		{"XTrack", swath.Range{Start: 1, Stop: 5, Stride: 1}},
		{"Channel", swath.Range{Start: 3, Stop: 3, Stride: 1}},
	}
	if diff := cmp.Diff(want, entries(got)); diff != "" {
		t.Errorf("merge order mismatch (-want +got):\n%s", diff)
	}
}

func TestNewRangeValidation(t *testing.T) {
	tests := []struct {
		name                string
		start, stop, stride int
		ok                  bool
		count               int
	}{
		{"single index", 5, 5, 1, true, 1},
		{"inclusive stop", 0, 999, 10, true, 100},
		{"stride past stop", 0, 10, 4, true, 3},
		{"reversed", 10, 5, 1, false, 0},
		{"negative start", -1, 5, 1, false, 0},
		{"zero stride", 0, 5, 0, false, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := swath.NewRange("Track", tt.start, tt.stop, tt.stride)
			if !tt.ok {
				assert.True(t, errors.Is(err, swath.ErrInvalidRange))
				var ire *swath.InvalidRangeError
				require.ErrorAs(t, err, &ire)
				assert.Equal(t, "Track", ire.Dim)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.count, r.Count())
		})
	}
}

func TestRangeLast(t *testing.T) {
	r := swath.Range{Start: 0, Stop: 10, Stride: 4}
	assert.Equal(t, 8, r.Last())
}

func TestRangeWithin(t *testing.T) {
	outer := swath.Range{Start: 0, Stop: 19, Stride: 2}
	tests := []struct {
		name         string
		r            swath.Range
		offset, step int
		ok           bool
	}{
		{"same", outer, 0, 1, true},
		{"same indices, other stop", swath.Range{Start: 0, Stop: 18, Stride: 2}, 0, 1, true},
		{"coarser", swath.Range{Start: 4, Stop: 16, Stride: 6}, 2, 3, true},
		{"single on lattice", swath.Range{Start: 6, Stop: 6, Stride: 1}, 3, 1, true},
		{"single off lattice", swath.Range{Start: 5, Stop: 5, Stride: 1}, 0, 0, false},
		{"finer", swath.Range{Start: 0, Stop: 4, Stride: 1}, 0, 0, false},
		{"past the end", swath.Range{Start: 18, Stop: 19, Stride: 1}, 0, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			offset, step, ok := tt.r.Within(outer)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.offset, offset)
				assert.Equal(t, tt.step, step)
			}
		})
	}
}

func TestSetRejectsInvalidRange(t *testing.T) {
	var s swath.Subset
	assert.Error(t, s.Set("Track", 3, 1, 1))
	assert.Zero(t, s.Len())
	assert.Panics(t, func() { s.MustSet("Track", 0, 1, 0) })
}

func TestValidate(t *testing.T) {
	var s swath.Subset
	s.MustSet("Track", 0, 767, 1).MustSet("Channel", 0, 0, 1)

	assert.NoError(t, s.Validate(map[string]int{"Track": 768, "XTrack": 3200}))

	err := s.Validate(map[string]int{"Track": 767})
	var oor *swath.OutOfRangeError
	require.ErrorAs(t, err, &oor)
	assert.Equal(t, "Track", oor.Dim)
	assert.Equal(t, 767, oor.Length)
	assert.True(t, errors.Is(err, swath.ErrOutOfRange))
}

func TestCloneIsIndependent(t *testing.T) {
	var s swath.Subset
	s.MustSet("Track", 0, 9, 1)
	c := s.Clone()
	c.MustSet("Track", 0, 4, 1)
	c.MustSet("XTrack", 0, 4, 1)

	r, _ := s.Get("Track")
	assert.Equal(t, 9, r.Stop)
	assert.Equal(t, 1, s.Len())
	assert.Equal(t, "{Track:[0:9:1]}", s.String())
}

func TestTaxonomyInterns(t *testing.T) {
	tax := swath.NewTaxonomy()
	m := tax.Intern("M-Band")
	assert.Same(t, m, tax.Intern("M-Band"))
	assert.Nil(t, tax.Intern(""))
	i := tax.Intern("I-Band")
	assert.NotSame(t, m, i)
	assert.Equal(t, []*swath.Group{m, i}, tax.Groups())

	other := swath.NewTaxonomy().Intern("M-Band")
	assert.NotSame(t, m, other, "groups from different taxonomies are distinct")
	assert.Equal(t, "", (*swath.Group)(nil).Name())
}
