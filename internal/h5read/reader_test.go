package h5read

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robert-malhotra/go-swath/internal/granule"
	"github.com/robert-malhotra/go-swath/internal/hdf5"
)

// writeSample writes a two-level IDPS-style layout: a 4x6 uint16 band with
// its Factors companion, plus a rank-1 dataset at the root.
func writeSample(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "SVM05_npp_d20240115_t0300000_e0301000_b00001_c0_noaa_ops.h5")

	f, err := hdf5.Create(path)
	require.NoError(t, err)
	all, err := f.Root().CreateGroup("All_Data")
	require.NoError(t, err)
	sdr, err := all.CreateGroup("VIIRS-M5-SDR_All")
	require.NoError(t, err)

	band := make([]uint16, 24)
	for i := range band {
		band[i] = uint16(10*(i/6) + i%6)
	}
	_, err = sdr.CreateDataset("Reflectance", band,
		hdf5.WithShape(4, 6),
		hdf5.WithAttribute("units", "1"))
	require.NoError(t, err)
	_, err = sdr.CreateDataset("ReflectanceFactors", []float32{0.5, 1, 0.5, 1})
	require.NoError(t, err)
	_, err = f.Root().CreateDataset("scan_time", []float64{1.5, 2.5, 3.5, 4.5})
	require.NoError(t, err)
	require.NoError(t, f.Close())
	return path
}

func TestDimsNamedByRank(t *testing.T) {
	r, err := Open(writeSample(t), WithDimNames("Track", "XTrack"))
	require.NoError(t, err)
	defer r.Close()

	dims, shape, err := r.Dims("All_Data/VIIRS-M5-SDR_All/Reflectance")
	require.NoError(t, err)
	assert.Equal(t, []string{"Track", "XTrack"}, dims)
	assert.Equal(t, []int{4, 6}, shape)

	dims, shape, err = r.Dims("/scan_time")
	require.NoError(t, err)
	assert.Equal(t, []string{"phony_dim_0"}, dims)
	assert.Equal(t, []int{4}, shape)
}

func TestReadStrided(t *testing.T) {
	r, err := Open(writeSample(t))
	require.NoError(t, err)
	defer r.Close()

	h := granule.Hyperslab{Start: []int{1, 1}, Count: []int{2, 3}, Stride: []int{2, 2}}
	got, err := r.Read("All_Data/VIIRS-M5-SDR_All/Reflectance", h)
	require.NoError(t, err)
	assert.Equal(t, []float64{11, 13, 15, 31, 33, 35}, got)

	got, err = r.Read("All_Data/VIIRS-M5-SDR_All/ReflectanceFactors", granule.Full([]int{4}))
	require.NoError(t, err)
	assert.Equal(t, []float64{0.5, 1, 0.5, 1}, got)

	_, err = r.Read("All_Data/VIIRS-M5-SDR_All/Reflectance",
		granule.Hyperslab{Start: []int{3, 0}, Count: []int{2, 1}, Stride: []int{1, 1}})
	assert.ErrorIs(t, err, granule.ErrBadHyperslab)
}

func TestAttrAndVariables(t *testing.T) {
	r, err := Open(writeSample(t))
	require.NoError(t, err)
	defer r.Close()

	v, ok := r.Attr("All_Data/VIIRS-M5-SDR_All/Reflectance", "units")
	require.True(t, ok)
	assert.Equal(t, "1", v)
	_, ok = r.Attr("All_Data/VIIRS-M5-SDR_All/Reflectance", "scale_factor")
	assert.False(t, ok)

	vars, err := r.Variables()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{
		"/All_Data/VIIRS-M5-SDR_All/Reflectance",
		"/All_Data/VIIRS-M5-SDR_All/ReflectanceFactors",
		"/scan_time",
	}, vars)
}

func TestMissingArray(t *testing.T) {
	r, err := Open(writeSample(t))
	require.NoError(t, err)
	defer r.Close()

	assert.True(t, r.HasArray("/All_Data/VIIRS-M5-SDR_All/Reflectance"))
	assert.False(t, r.HasArray("All_Data/VIIRS-M5-SDR_All/Radiance"))
	_, _, err = r.Dims("All_Data/VIIRS-M5-SDR_All/Radiance")
	assert.ErrorIs(t, err, granule.ErrNoArray)
}

func TestCloseIsIdempotent(t *testing.T) {
	r, err := Open(writeSample(t))
	require.NoError(t, err)
	require.NoError(t, r.Close())
	require.NoError(t, r.Close())

	_, err = r.Read("scan_time", granule.Full([]int{4}))
	assert.ErrorIs(t, err, ErrClosed)
	_, err = r.Variables()
	assert.ErrorIs(t, err, ErrClosed)
}

func TestOpenerAndMissingFile(t *testing.T) {
	open := Opener(WithDimNames("Track", "XTrack"))
	g, err := open(writeSample(t))
	require.NoError(t, err)
	defer g.Close()
	dims, _, err := g.Dims("All_Data/VIIRS-M5-SDR_All/Reflectance")
	require.NoError(t, err)
	assert.Equal(t, []string{"Track", "XTrack"}, dims)

	_, err = Open(filepath.Join(t.TempDir(), "absent.h5"))
	assert.Error(t, err)
}
