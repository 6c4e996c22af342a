package granule

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robert-malhotra/go-swath/internal/timestamp"
)

func TestSortByTimestamp(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{
			name: "two prefixes",
			in:   []string{"B_2024015_0300.dat", "A_2024015_0200.dat"},
			want: []string{"A_2024015_0200.dat", "B_2024015_0300.dat"},
		},
		{
			name: "same prefix out of order",
			in:   []string{"B_2024015_0300.dat", "B_2024015_0000.dat", "B_2024015_0130.dat"},
			want: []string{"B_2024015_0000.dat", "B_2024015_0130.dat", "B_2024015_0300.dat"},
		},
		{
			name: "across midnight",
			in:   []string{"B_2024016_0000.dat", "B_2024015_2354.dat"},
			want: []string{"B_2024015_2354.dat", "B_2024016_0000.dat"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			first := tt.in[0]
			got, err := Sort(tt.in, timestamp.Parse)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, first, tt.in[0], "input must not be reordered")
		})
	}
}

func TestSortPermutations(t *testing.T) {
	t1 := "VNP02MOD.A2024015.0300.nc"
	t2 := "VNP02MOD.A2024015.0306.nc"
	t3 := "VNP02MOD.A2024015.0312.nc"
	want := []string{t1, t2, t3}
	perms := [][]string{
		{t1, t2, t3}, {t1, t3, t2}, {t2, t1, t3},
		{t2, t3, t1}, {t3, t1, t2}, {t3, t2, t1},
	}
	for _, p := range perms {
		got, err := Sort(p, timestamp.Parse)
		require.NoError(t, err)
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("Sort(%v) mismatch (-want +got):\n%s", p, diff)
		}
	}
}

func TestSortStable(t *testing.T) {
	at := func(string) (time.Time, error) { return time.Unix(0, 0), nil }
	got, err := Sort([]string{"c", "a", "b"}, at)
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "a", "b"}, got)
}

func TestSortUnsortable(t *testing.T) {
	got, err := Sort([]string{"A_2024015_0200.dat", "readme.txt"}, timestamp.Parse)
	assert.Nil(t, got)
	var ue *UnsortableError
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, "readme.txt", ue.Name)
	assert.True(t, errors.Is(err, timestamp.ErrNoTimestamp))
}

func TestHyperslabValidate(t *testing.T) {
	shape := []int{10, 4}
	assert.NoError(t, Full(shape).Validate(shape))
	assert.NoError(t, Hyperslab{Start: []int{0, 0}, Count: []int{4, 2}, Stride: []int{3, 3}}.Validate(shape))

	bad := []Hyperslab{
		{Start: []int{0}, Count: []int{1}, Stride: []int{1}},
		{Start: []int{-1, 0}, Count: []int{1, 1}, Stride: []int{1, 1}},
		{Start: []int{0, 0}, Count: []int{0, 1}, Stride: []int{1, 1}},
		{Start: []int{0, 0}, Count: []int{1, 1}, Stride: []int{0, 1}},
		{Start: []int{0, 0}, Count: []int{5, 1}, Stride: []int{3, 1}},
	}
	for i, h := range bad {
		assert.ErrorIs(t, h.Validate(shape), ErrBadHyperslab, "case %d", i)
	}
}

func TestGather(t *testing.T) {
	shape := []int{3, 4}
	vals := make([]float64, 12)
	for i := range vals {
		vals[i] = float64(i)
	}
	got, err := Gather(vals, shape, Hyperslab{Start: []int{1, 0}, Count: []int{2, 2}, Stride: []int{1, 3}})
	require.NoError(t, err)
	assert.Equal(t, []float64{4, 7, 8, 11}, got)

	got, err = Gather(vals, shape, Full(shape))
	require.NoError(t, err)
	assert.Equal(t, vals, got)

	_, err = Gather(vals[:5], shape, Full(shape))
	assert.ErrorIs(t, err, ErrBadHyperslab)
	_, err = Gather(vals, shape, Hyperslab{Start: []int{2, 0}, Count: []int{2, 1}, Stride: []int{1, 1}})
	assert.ErrorIs(t, err, ErrBadHyperslab)
}

func TestSplit(t *testing.T) {
	lengths := []int{768, 768, 768}
	got := split(500, 51, 10, lengths)
	want := []piece{
		{granule: 0, start: 500, count: 27, offset: 0},
		{granule: 1, start: 2, count: 24, offset: 27},
	}
	if diff := cmp.Diff(want, got, cmp.AllowUnexported(piece{})); diff != "" {
		t.Errorf("split mismatch (-want +got):\n%s", diff)
	}

	got = split(1600, 2, 1, lengths)
	assert.Equal(t, []piece{{granule: 2, start: 64, count: 2, offset: 0}}, got)
}

func threeGranules() ([]string, []*fakeReader) {
	files := []string{"g0", "g1", "g2"}
	var readers []*fakeReader
	for i := range files {
		r := newFake().
			ramp("radiance", []string{"lines", "pixels"}, 4, 3, float64(i*1000)).
			ramp("latitude", []string{"lines", "pixels"}, 2, 3, float64(i*1000)).
			ramp("table", []string{"entries", "cols"}, 2, 2, 0)
		r.attrs["radiance@scale_factor"] = 0.5
		readers = append(readers, r)
	}
	return files, readers
}

func aggregate(t *testing.T) (*Aggregation, []*fakeReader) {
	t.Helper()
	files, fakes := threeGranules()
	readers := make([]Reader, len(fakes))
	for i, f := range fakes {
		readers[i] = f
	}
	a, err := New(files, readers, "lines")
	require.NoError(t, err)
	return a, fakes
}

func TestAggregationDims(t *testing.T) {
	a, _ := aggregate(t)

	dims, shape, err := a.Dims("radiance")
	require.NoError(t, err)
	assert.Equal(t, []string{"lines", "pixels"}, dims)
	assert.Equal(t, []int{12, 3}, shape)

	// Arrays at a coarser along-track resolution sum their own lengths.
	_, shape, err = a.Dims("latitude")
	require.NoError(t, err)
	assert.Equal(t, []int{6, 3}, shape)

	// Arrays without the track dimension come from the first granule.
	_, shape, err = a.Dims("table")
	require.NoError(t, err)
	assert.Equal(t, []int{2, 2}, shape)

	assert.Equal(t, 0.5, func() any { v, _ := a.Attr("radiance", "scale_factor"); return v }())
}

func TestAggregationReadAcrossBoundaries(t *testing.T) {
	a, fakes := aggregate(t)

	// Rows 2..9 step 3 → global rows 2, 5, 8 → g0 row 2, g1 row 1, g2 row 0.
	h := Hyperslab{Start: []int{2, 0}, Count: []int{3, 2}, Stride: []int{3, 2}}
	got, err := a.Read("radiance", h)
	require.NoError(t, err)
	want := []float64{
		200, 202,
		1100, 1102,
		2000, 2002,
	}
	assert.Equal(t, want, got)
	for _, f := range fakes {
		assert.EqualValues(t, 1, f.reads.Load())
	}
}

func TestAggregationReadSingleGranuleRange(t *testing.T) {
	a, fakes := aggregate(t)
	got, err := a.Read("radiance", Hyperslab{Start: []int{5, 1}, Count: []int{2, 1}, Stride: []int{1, 1}})
	require.NoError(t, err)
	assert.Equal(t, []float64{1101, 1201}, got)
	assert.EqualValues(t, 0, fakes[0].reads.Load())
	assert.EqualValues(t, 1, fakes[1].reads.Load())
	assert.EqualValues(t, 0, fakes[2].reads.Load())
}

func TestAggregationReadTrackNotOutermost(t *testing.T) {
	files := []string{"g0", "g1"}
	var readers []Reader
	for i := range files {
		r := newFake().ramp("swapped", []string{"pixels", "lines"}, 2, 3, float64(i*1000))
		readers = append(readers, r)
	}
	a, err := New(files, readers, "lines")
	require.NoError(t, err)

	_, shape, err := a.Dims("swapped")
	require.NoError(t, err)
	assert.Equal(t, []int{2, 6}, shape)

	got, err := a.Read("swapped", Full(shape))
	require.NoError(t, err)
	want := []float64{
		0, 1, 2, 1000, 1001, 1002,
		100, 101, 102, 1100, 1101, 1102,
	}
	assert.Equal(t, want, got)
}

func TestAggregationProcessorPerGranule(t *testing.T) {
	a, _ := aggregate(t)
	require.NoError(t, a.SetProcessor("radiance", []Processor{addProcessor(1), nil, addProcessor(3)}))

	got, err := a.Read("radiance", Hyperslab{Start: []int{3, 0}, Count: []int{6, 1}, Stride: []int{1, 1}})
	require.NoError(t, err)
	assert.Equal(t, []float64{301, 1000, 1100, 1200, 1300, 2003}, got)

	assert.Error(t, a.SetProcessor("radiance", []Processor{addProcessor(1)}))
}

func TestAggregationReadOutOfBounds(t *testing.T) {
	a, _ := aggregate(t)
	_, err := a.Read("radiance", Hyperslab{Start: []int{0, 0}, Count: []int{13, 1}, Stride: []int{1, 1}})
	assert.ErrorIs(t, err, ErrBadHyperslab)
}

func TestAggregationReadError(t *testing.T) {
	a, fakes := aggregate(t)
	boom := errors.New("boom")
	fakes[1].err = boom
	_, err := a.Read("radiance", Full([]int{12, 3}))
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "g1")
}

func TestOpenPreservesOrder(t *testing.T) {
	files, fakes := threeGranules()
	byName := map[string]*fakeReader{}
	for i, f := range files {
		byName[f] = fakes[i]
	}
	open := func(path string) (Reader, error) { return byName[path], nil }

	a, err := Open(context.Background(), files, "lines", open)
	require.NoError(t, err)
	for i, g := range a.Granules() {
		assert.Same(t, fakes[i], g)
	}
	assert.Equal(t, files, a.Files())

	require.NoError(t, a.Close())
	for _, f := range fakes {
		assert.True(t, f.closed.Load())
	}
}

func TestOpenFailureClosesOpened(t *testing.T) {
	files, fakes := threeGranules()
	var mu sync.Mutex
	var opened []*fakeReader
	open := func(path string) (Reader, error) {
		if path == "g1" {
			return nil, fmt.Errorf("corrupt")
		}
		f := fakes[0]
		if path == "g2" {
			f = fakes[2]
		}
		mu.Lock()
		opened = append(opened, f)
		mu.Unlock()
		return f, nil
	}
	a, err := Open(context.Background(), files, "lines", open)
	require.Error(t, err)
	assert.Nil(t, a)
	assert.Contains(t, err.Error(), "g1")
	for _, f := range opened {
		assert.True(t, f.closed.Load())
	}
}

func TestOpenEmpty(t *testing.T) {
	_, err := Open(context.Background(), nil, "lines", nil)
	assert.ErrorIs(t, err, ErrNoGranules)
}
