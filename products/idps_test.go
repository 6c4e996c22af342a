package products

import (
	"fmt"
	"math"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robert-malhotra/go-swath/internal/hdf5"
	"github.com/robert-malhotra/go-swath/swath"
)

// idpsName returns an SDR file name for granule n (0-based, one minute each).
func idpsName(prefix string, n int) string {
	return fmt.Sprintf("%s_npp_d20240115_t03%02d000_e03%02d500_b%05d_c20240115040000000000_noaa_ops.h5",
		prefix, n, n, 1+n)
}

// writeH5 writes one flat 4x6 dataset per entry into a fresh file, creating
// the two group levels above each dataset.
func writeH5(t *testing.T, path string, arrays map[string]any) {
	t.Helper()
	f, err := hdf5.Create(path)
	require.NoError(t, err)
	groups := map[string]*hdf5.Group{"/": f.Root()}
	group := func(p string) *hdf5.Group {
		if g, ok := groups[p]; ok {
			return g
		}
		parent := groups["/"]
		if dir := filepath.Dir(p); dir != "/" {
			parent = groups[dir]
			if parent == nil {
				parent, err = groups["/"].CreateGroup(filepath.Base(dir))
				require.NoError(t, err)
				groups[dir] = parent
			}
		}
		g, err := parent.CreateGroup(filepath.Base(p))
		require.NoError(t, err)
		groups[p] = g
		return g
	}
	for name, values := range arrays {
		g := group(filepath.Dir(name))
		var opts []hdf5.DatasetOption
		switch v := values.(type) {
		case []uint16:
			if len(v) == 24 {
				opts = append(opts, hdf5.WithShape(4, 6))
			}
		case []float32:
			if len(v) == 24 {
				opts = append(opts, hdf5.WithShape(4, 6))
			}
		}
		_, err := g.CreateDataset(filepath.Base(name), values, opts...)
		require.NoError(t, err, name)
	}
	require.NoError(t, f.Close())
}

func fill4x6[T uint16 | float32](fn func(i, j int) float64) []T {
	out := make([]T, 0, 24)
	for i := 0; i < 4; i++ {
		for j := 0; j < 6; j++ {
			out = append(out, T(fn(i, j)))
		}
	}
	return out
}

// writeSDR writes two one-minute granules of M05, M15 and their terrain
// corrected geolocation into dir.
func writeSDR(t *testing.T, dir string) []string {
	t.Helper()
	var data []string
	for n := 0; n < 2; n++ {
		base := float64(100 * (n + 1))
		m05 := fill4x6[uint16](func(i, j int) float64 { return base + float64(10*i+j) })
		if n == 0 {
			m05[7] = 65533 // (1, 1): an IDPS fill code
		}
		p := filepath.Join(dir, idpsName("SVM05", n))
		writeH5(t, p, map[string]any{
			"/All_Data/VIIRS-M5-SDR_All/Reflectance":        m05,
			"/All_Data/VIIRS-M5-SDR_All/ReflectanceFactors": []float32{0.5, 0, 0.5, 0},
		})
		data = append(data, p)

		p = filepath.Join(dir, idpsName("SVM15", n))
		writeH5(t, p, map[string]any{
			"/All_Data/VIIRS-M15-SDR_All/BrightnessTemperature":        fill4x6[uint16](func(i, j int) float64 { return float64(10*i + j) }),
			"/All_Data/VIIRS-M15-SDR_All/BrightnessTemperatureFactors": []float32{2, 100},
		})
		data = append(data, p)

		lat0 := 40 + 10*float64(n)
		writeH5(t, filepath.Join(dir, idpsName("GMTCO", n)), map[string]any{
			"/All_Data/VIIRS-MOD-GEO-TC_All/Longitude":        fill4x6[float32](func(i, j int) float64 { return -100 + float64(j) }),
			"/All_Data/VIIRS-MOD-GEO-TC_All/Latitude":         fill4x6[float32](func(i, j int) float64 { return lat0 + float64(i) }),
			"/All_Data/VIIRS-MOD-GEO-TC_All/SolarZenithAngle": fill4x6[float32](func(i, j int) float64 { return 0 }),
		})
	}
	return data
}

func TestResolveIDPSFromHDF5(t *testing.T) {
	dir := t.TempDir()
	files := writeSDR(t, dir)

	reg, err := NewRegistry(WithRegisterer(prometheus.NewRegistry()))
	require.NoError(t, err)
	// Later granules and other bands first: order is restored per band.
	src, err := reg.Resolve([]string{files[3], files[0], files[2], files[1]})
	require.NoError(t, err)
	defer src.Close()

	assert.Equal(t, "SNPP VIIRS SDR", src.Description())
	assert.Len(t, src.Files(), 4)
	var names []string
	for _, c := range src.Choices() {
		names = append(names, c.Name())
	}
	assert.Equal(t, []string{"M05", "M15"}, names)

	want := swath.Subset{}
	want.MustSet("Track", 0, 7, 3).MustSet("XTrack", 0, 5, 3)
	assert.True(t, want.Equal(src.Choice("M05").Selection()), "default selection %s", src.Choice("M05").Selection())

	d, err := src.Fetch(src.Choice("M05"), nil)
	require.NoError(t, err)
	assert.Equal(t, []int{3, 2}, d.Shape)
	// Factors 0.5, 0 over rows 0, 3 of granule one and row 2 of granule two.
	approx(t, []float64{50, 51.5, 65, 66.5, 110, 111.5}, d.Values)

	require.NotNil(t, d.Geo)
	nav := d.Geo.CoordSys.(*SwathNavigation)
	lon, lat, err := nav.At(2, 1)
	require.NoError(t, err)
	assert.InDelta(t, -97, lon, 1e-6)
	assert.InDelta(t, 52, lat, 1e-6)

	t15, err := src.Fetch(src.Choice("M15"), nil)
	require.NoError(t, err)
	assert.Equal(t, "K", t15.Units)
	approx(t, []float64{100, 106, 160, 166, 140, 146}, t15.Values)
	assert.Same(t, d.Geo, t15.Geo)
}

func TestIDPSFillCodesMasked(t *testing.T) {
	files := writeSDR(t, t.TempDir())
	reg, err := NewRegistry(WithRegisterer(prometheus.NewRegistry()))
	require.NoError(t, err)
	src, err := reg.Resolve(files)
	require.NoError(t, err)
	defer src.Close()

	var sel swath.Subset
	sel.MustSet("Track", 1, 1, 1).MustSet("XTrack", 0, 1, 1)
	d, err := src.Fetch(src.Choice("M05"), &sel)
	require.NoError(t, err)
	approx(t, []float64{55, math.NaN()}, d.Values)
}

func TestIDPSBandFilesMustCoverSameGranules(t *testing.T) {
	files := writeSDR(t, t.TempDir())
	h, err := NewHandler(mustDescriptor(t, "idps-viirs-mband"))
	require.NoError(t, err)

	ok, err := h.Probe(files[:3])
	require.NoError(t, err)
	require.True(t, ok)
	_, err = h.Open(files[:3]) // M15 lacks the second granule
	assert.ErrorContains(t, err, "SVM15 has 1 granules")
}

func TestCompanionKeyWithSeparator(t *testing.T) {
	dir := t.TempDir()
	files := writeSDR(t, dir)
	h, err := NewHandler(mustDescriptor(t, "idps-viirs-mband"))
	require.NoError(t, err)

	geo, err := h.companions([]string{files[2], files[0]}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, idpsName("GMTCO", 1)),
		filepath.Join(dir, idpsName("GMTCO", 0)),
	}, geo)

	_, err = h.companions([]string{filepath.Join(dir, "SVM05_npp.h5")}, nil)
	var me *swath.MissingAncillaryError
	assert.ErrorAs(t, err, &me)
}

func TestByPrefixKeepsFirstSeenOrder(t *testing.T) {
	got := byPrefix([]string{"a/SVM15_x", "a/SVM05_x", "b/SVM15_y", "VNP02MOD.A.nc"})
	assert.Equal(t, [][]string{{"a/SVM15_x", "b/SVM15_y"}, {"a/SVM05_x"}, {"VNP02MOD.A.nc"}}, got)
}
