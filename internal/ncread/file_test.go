package ncread

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robert-malhotra/go-swath/internal/granule"
)

func sampleFile() (*File, *fakeGroup, *fakeVar) {
	root := newGroup()
	root.attrs["title"] = "VIIRS M-band"

	obs := newGroup()
	radiance := &fakeVar{
		dims: []string{"number_of_lines", "number_of_pixels"},
		values: [][]uint16{
			{0, 1, 2, 3},
			{10, 11, 12, 13},
			{20, 21, 22, 23},
			{30, 31, 32, 33},
			{40, 41, 42, 43},
		},
		attrs: fakeAttrs{"scale_factor": []float32{0.5}, "units": "W m-2"},
	}
	obs.vars["M05"] = radiance
	obs.vars["quality"] = &fakeVar{dims: []string{"number_of_lines"}, values: []int8{-1, 0, 1, 2, 3}, attrs: fakeAttrs{}}
	root.groups["observation_data"] = obs
	root.vars["scan_start"] = &fakeVar{values: float64(42), attrs: fakeAttrs{}}
	return New("test.nc", root), root, radiance
}

func TestDims(t *testing.T) {
	f, _, _ := sampleFile()

	dims, shape, err := f.Dims("observation_data/M05")
	require.NoError(t, err)
	assert.Equal(t, []string{"number_of_lines", "number_of_pixels"}, dims)
	assert.Equal(t, []int{5, 4}, shape)

	_, shape, err = f.Dims("/observation_data/quality")
	require.NoError(t, err)
	assert.Equal(t, []int{5}, shape)

	_, _, err = f.Dims("observation_data/M99")
	assert.ErrorIs(t, err, ErrNotFound)
	_, _, err = f.Dims("nowhere/M05")
	assert.ErrorIs(t, err, ErrNotFound)

	assert.True(t, f.HasArray("observation_data/M05"))
	assert.False(t, f.HasArray("M05"))
}

func TestReadStrided(t *testing.T) {
	f, _, radiance := sampleFile()

	h := granule.Hyperslab{Start: []int{1, 1}, Count: []int{2, 2}, Stride: []int{2, 2}}
	got, err := f.Read("observation_data/M05", h)
	require.NoError(t, err)
	assert.Equal(t, []float64{11, 13, 31, 33}, got)
	// Only rows 1..3 are pulled from the library.
	assert.Equal(t, [2]int64{1, 4}, radiance.slices[len(radiance.slices)-1])
}

func TestReadFullAndSigned(t *testing.T) {
	f, _, _ := sampleFile()
	got, err := f.Read("observation_data/quality", granule.Full([]int{5}))
	require.NoError(t, err)
	assert.Equal(t, []float64{-1, 0, 1, 2, 3}, got)
}

func TestReadScalar(t *testing.T) {
	f, _, _ := sampleFile()
	got, err := f.Read("scan_start", granule.Hyperslab{})
	require.NoError(t, err)
	assert.Equal(t, []float64{42}, got)
}

func TestReadOutOfBounds(t *testing.T) {
	f, _, _ := sampleFile()
	_, err := f.Read("observation_data/M05", granule.Hyperslab{Start: []int{4, 0}, Count: []int{2, 1}, Stride: []int{1, 1}})
	assert.ErrorIs(t, err, granule.ErrBadHyperslab)
}

func TestAttributes(t *testing.T) {
	f, _, _ := sampleFile()

	v, ok := f.Attr("observation_data/M05", "scale_factor")
	require.True(t, ok)
	scale, ok := Float64(v)
	require.True(t, ok)
	assert.Equal(t, 0.5, scale)

	v, ok = f.AttrPath("observation_data/M05@units")
	require.True(t, ok)
	units, ok := String(v)
	require.True(t, ok)
	assert.Equal(t, "W m-2", units)

	v, ok = f.AttrPath("/@title")
	require.True(t, ok)
	assert.Equal(t, "VIIRS M-band", v)

	_, ok = f.Attr("observation_data/M05", "missing")
	assert.False(t, ok)
}

func TestAttrNames(t *testing.T) {
	f, _, _ := sampleFile()
	names, err := f.AttrNames("/observation_data/M05")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"scale_factor", "units"}, names)

	names, err = f.AttrNames("/")
	require.NoError(t, err)
	assert.Equal(t, []string{"title"}, names)

	_, err = f.AttrNames("observation_data/M99")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCloseIdempotent(t *testing.T) {
	f, root, _ := sampleFile()
	require.NoError(t, f.Close())
	require.NoError(t, f.Close())
	assert.True(t, root.closed)
	_, _, err := f.Dims("observation_data/M05")
	assert.ErrorIs(t, err, ErrClosed)
	_, ok := f.Attr("/", "title")
	assert.False(t, ok)
}

func TestWalkAndVariables(t *testing.T) {
	f, _, _ := sampleFile()
	vars, err := f.Variables()
	require.NoError(t, err)
	assert.Equal(t, []string{"/scan_start", "/observation_data/M05", "/observation_data/quality"}, vars)

	var seen []string
	err = Walk(f.Root(), func(p string, dims []string, err error) error {
		seen = append(seen, p)
		return ErrStopWalk
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"/scan_start"}, seen)
}

func TestPaths(t *testing.T) {
	obj, attr, err := ParseAttrPath("geo/latitude@units")
	require.NoError(t, err)
	assert.Equal(t, "/geo/latitude", obj)
	assert.Equal(t, "units", attr)

	obj, attr, err = ParseAttrPath("@title")
	require.NoError(t, err)
	assert.Equal(t, "/", obj)
	assert.Equal(t, "title", attr)

	_, _, err = ParseAttrPath("geo/latitude")
	assert.Error(t, err)
	_, _, err = ParseAttrPath("geo@")
	assert.Error(t, err)

	assert.Equal(t, "/@title", JoinAttrPath("", "title"))
	assert.Equal(t, "/a/b@c", JoinAttrPath("a/b/", "c"))
	assert.Equal(t, "/a/b", CleanPath("a//b/"))
	assert.Nil(t, SplitPath("/"))
}

func TestFloat64s(t *testing.T) {
	fs, ok := Float64s([]int16{-5, 7})
	require.True(t, ok)
	assert.Equal(t, []float64{-5, 7}, fs)

	_, ok = Float64("text")
	assert.False(t, ok)
	_, ok = Float64([]float64{1, 2})
	assert.False(t, ok)
}
