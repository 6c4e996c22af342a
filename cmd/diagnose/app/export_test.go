package app

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robert-malhotra/go-swath/internal/granule"
	"github.com/robert-malhotra/go-swath/internal/h5read"
	"github.com/robert-malhotra/go-swath/products"
	"github.com/robert-malhotra/go-swath/swath"
)

func TestExportBands(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scene.h5")
	require.NoError(t, exportBands(testSource(t), []string{"C13", "C14"}, path))

	r, err := h5read.Open(path)
	require.NoError(t, err)
	defer r.Close()

	_, shape, err := r.Dims("C13/values")
	require.NoError(t, err)
	assert.Equal(t, []int{2, 2}, shape)
	got, err := r.Read("C14/values", granule.Full(shape))
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 2, 8, 10}, got)

	units, ok := r.Attr("C13/values", "units")
	require.True(t, ok)
	assert.Equal(t, "K", units)
	desc, ok := r.Attr("C13/values", "source")
	require.True(t, ok)
	assert.Equal(t, "GOES-16 ABI", desc)

	assert.False(t, r.HasArray("C13/longitude"), "grid records carry no per-pixel navigation")
}

func TestExportSwathNavigation(t *testing.T) {
	geo := &swath.Geolocation{CoordSys: &products.SwathNavigation{
		Lon:   []float32{-100, -98, -100, -98},
		Lat:   []float32{40, 40, 42, 42},
		Shape: [2]int{2, 2},
	}}
	src, err := swath.NewBandSource(swath.SourceInfo{Description: "SNPP VIIRS"}, []swath.Band{
		{Name: "M15", Group: "M-Band", Info: swath.BandInfo{Kind: swath.KindEmissive}, Adapter: &rampAdapter{geo: geo}},
	}, nil)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "swath.h5")
	require.NoError(t, exportBands(src, []string{"M15"}, path))

	r, err := h5read.Open(path)
	require.NoError(t, err)
	defer r.Close()
	lat, err := r.Read("M15/latitude", granule.Full([]int{2, 2}))
	require.NoError(t, err)
	assert.Equal(t, []float64{40, 40, 42, 42}, lat)
	units, ok := r.Attr("/M15/longitude", "units")
	require.True(t, ok)
	assert.Equal(t, "degrees_east", units)
}

func TestExportUnknownBand(t *testing.T) {
	err := exportBands(testSource(t), []string{"C99"}, filepath.Join(t.TempDir(), "x.h5"))
	assert.ErrorContains(t, err, "C99: no such band")
}

func TestExportNeedsOutput(t *testing.T) {
	cmd := NewRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"export", "a.nc"})
	assert.ErrorContains(t, cmd.Execute(), "--output is required")
}

func TestInspectHDF5(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scene.h5")
	require.NoError(t, exportBands(testSource(t), []string{"C13"}, path))

	var out bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"inspect", path})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "/C13/values [2 2]")
}
