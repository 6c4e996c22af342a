package products

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robert-malhotra/go-swath/internal/metrics"
	"github.com/robert-malhotra/go-swath/swath"
)

const (
	mod0300 = "VNP02MOD.A2024015.0300.002.2024015100000.nc"
	mod0306 = "VNP02MOD.A2024015.0306.002.2024015100000.nc"
	geo0300 = "VNP03MOD.A2024015.0300.002.2024015090000.nc"
	geo0306 = "VNP03MOD.A2024015.0306.002.2024015090000.nc"
	mcmip   = "OR_ABI-L2-MCMIPF-M6_G16_s20240150300204_e20240150309512_c20240150310000.nc"
)

var lines = []string{"number_of_lines", "number_of_pixels"}

// viirsGranule builds a 4x6 M-band granule. M05 is base + 10i + j with a
// 0.5 scale factor; M15 holds LUT indices 10i + j.
func viirsGranule(base float64) *fakeFile {
	f := newFakeFile()
	m05 := f.grid("observation_data/M05", lines, 4, 6, func(i, j int) float64 { return base + float64(10*i+j) })
	m05.attrs["scale_factor"] = []float32{0.5}
	m05.attrs["add_offset"] = []float32{0}
	m05.attrs["_FillValue"] = []uint16{65535}
	f.grid("observation_data/M15", lines, 4, 6, func(i, j int) float64 { return float64(10*i + j) })
	lut := make([]float64, 100)
	for i := range lut {
		lut[i] = 200 + float64(i)
	}
	lut[99] = -999.9
	f.vector("observation_data/M15_brightness_temperature_lut", "lut", lut)
	return f
}

func geoGranule(lat0 float64) *fakeFile {
	f := newFakeFile()
	f.grid("geolocation_data/longitude", lines, 4, 6, func(i, j int) float64 { return -100 + float64(j) })
	f.grid("geolocation_data/latitude", lines, 4, 6, func(i, j int) float64 { return lat0 + float64(i) })
	f.grid("geolocation_data/solar_zenith", lines, 4, 6, func(i, j int) float64 { return 60 })
	return f
}

type fixture struct {
	dir   string
	files opener
	reg   *prometheus.Registry
}

func newFixture(t *testing.T, names ...string) *fixture {
	t.Helper()
	fx := &fixture{dir: t.TempDir(), files: opener{}, reg: prometheus.NewRegistry()}
	fx.files[mod0300] = viirsGranule(100)
	fx.files[mod0306] = viirsGranule(200)
	fx.files[geo0300] = geoGranule(40)
	fx.files[geo0306] = geoGranule(50)
	fx.files[mcmip] = abiFile()
	for _, n := range names {
		require.NoError(t, os.WriteFile(filepath.Join(fx.dir, n), nil, 0o644))
	}
	return fx
}

func (fx *fixture) path(name string) string { return filepath.Join(fx.dir, name) }

func (fx *fixture) registry(t *testing.T) *swath.Registry {
	t.Helper()
	reg, err := NewRegistry(WithOpener(fx.files.open), WithRegisterer(fx.reg))
	require.NoError(t, err)
	return reg
}

func approx(t *testing.T, want []float64, got []float32) {
	t.Helper()
	require.Len(t, got, len(want))
	for i := range want {
		if math.IsNaN(want[i]) {
			assert.True(t, math.IsNaN(float64(got[i])), "index %d: want NaN, got %v", i, got[i])
			continue
		}
		assert.InDelta(t, want[i], got[i], 1e-3, "index %d", i)
	}
}

func TestBuiltinDescriptors(t *testing.T) {
	ds, err := Builtin()
	require.NoError(t, err)
	var names []string
	for _, d := range ds {
		names = append(names, d.Name)
	}
	assert.Equal(t, []string{"sips-viirs-mband", "sips-viirs-iband", "sips-viirs-dnb", "idps-viirs-mband", "abi-mcmip"}, names)

	// Aliased defaults resolve for every band.
	for _, d := range ds {
		for _, b := range d.Bands {
			assert.NotEmpty(t, d.steps(b), "%s/%s", d.Name, b.Name)
		}
	}
}

func TestDescriptorValidation(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"missing bands", `- {name: x, layout: swath, patterns: ['^X'], track_dim: a, xtrack_dim: b}`},
		{"bad layout", `- {name: x, layout: polar, patterns: ['^X'], track_dim: a, xtrack_dim: b, bands: [{name: B, array: B, kind: product}]}`},
		{"bad kind", `- {name: x, layout: swath, patterns: ['^X'], track_dim: a, xtrack_dim: b, bands: [{name: B, array: B, kind: thermal}]}`},
		{"bad pattern", `- {name: x, layout: swath, patterns: ['(['], track_dim: a, xtrack_dim: b, bands: [{name: B, array: B, kind: product}]}`},
		{"grid without coords", `- {name: x, layout: grid, patterns: ['^X'], track_dim: a, xtrack_dim: b, bands: [{name: B, array: B, kind: product}]}`},
		{"duplicate band", `- {name: x, layout: swath, patterns: ['^X'], track_dim: a, xtrack_dim: b, bands: [{name: B, array: B, kind: product}, {name: B, array: C, kind: product}]}`},
		{"bad format", `- {name: x, layout: swath, format: grib, patterns: ['^X'], track_dim: a, xtrack_dim: b, bands: [{name: B, array: B, kind: product}]}`},
		{"single and per-band files", `- {name: x, layout: swath, single_file: true, band_per_file: true, patterns: ['^X'], track_dim: a, xtrack_dim: b, bands: [{name: B, array: B, kind: product}]}`},
		{"negative key parts", `- {name: x, layout: swath, patterns: ['^X'], track_dim: a, xtrack_dim: b, geolocation: {prefixes: {X: G}, key_parts: -1, track_dim: a, xtrack_dim: b, longitude: lon, latitude: lat}, bands: [{name: B, array: B, kind: product}]}`},
		{"array step with attrs", `- {name: x, layout: swath, patterns: ['^X'], track_dim: a, xtrack_dim: b, bands: [{name: B, array: B, kind: product, calibration: [{kind: scale, array: "{array}Factors", attrs: [scale_factor], values: [1, 0]}]}]}`},
		{"array step without defaults", `- {name: x, layout: swath, patterns: ['^X'], track_dim: a, xtrack_dim: b, bands: [{name: B, array: B, kind: product, calibration: [{kind: scale, array: "{array}Factors"}]}]}`},
		{"duplicate descriptor", "- {name: x, layout: swath, patterns: ['^X'], track_dim: a, xtrack_dim: b, bands: [{name: B, array: B, kind: product}]}\n" +
			"- {name: x, layout: swath, patterns: ['^Y'], track_dim: a, xtrack_dim: b, bands: [{name: B, array: B, kind: product}]}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadDescriptors(strings.NewReader(tt.yaml))
			assert.ErrorIs(t, err, ErrInvalidDescriptor)
		})
	}

	_, err := LoadDescriptors(strings.NewReader(`- {name: x, colour: red}`))
	assert.Error(t, err, "unknown fields are rejected")
}

func TestLoadDescriptorFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "extra.yaml")
	require.NoError(t, os.WriteFile(path, []byte(
		`- {name: lst, description: Land surface temperature, layout: swath, patterns: ['^LST_'], track_dim: y, xtrack_dim: x, bands: [{name: LST, array: lst, kind: product}]}`), 0o644))
	ds, err := LoadDescriptorFile(path)
	require.NoError(t, err)
	require.Len(t, ds, 1)
	assert.Equal(t, "lst", ds[0].Name)

	_, err = LoadDescriptorFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestConcatRejectsDuplicateNames(t *testing.T) {
	builtin, err := Builtin()
	require.NoError(t, err)
	extra := []Descriptor{mustDescriptor(t, "abi-mcmip")}
	extra[0].Description = "shadow"

	_, err = Concat(extra, builtin)
	assert.ErrorIs(t, err, ErrInvalidDescriptor)
	_, err = NewRegistry(WithDescriptors(append(extra, builtin...)))
	assert.ErrorIs(t, err, ErrInvalidDescriptor)

	extra[0].Name = "abi-mcmip-shadow"
	ds, err := Concat(extra, builtin)
	require.NoError(t, err)
	assert.Len(t, ds, len(builtin)+1)
	assert.Equal(t, "abi-mcmip-shadow", ds[0].Name)
}

func TestResolveVIIRSAggregatesGranules(t *testing.T) {
	fx := newFixture(t, mod0300, mod0306, geo0300, geo0306)
	reg := fx.registry(t)

	src, err := reg.Resolve([]string{fx.path(mod0306), fx.path(mod0300)})
	require.NoError(t, err)
	t.Cleanup(func() { src.Close() })

	assert.Equal(t, "SNPP VIIRS", src.Description())
	assert.Equal(t, []string{fx.path(mod0300), fx.path(mod0306)}, src.Files())
	assert.True(t, time.Date(2024, 1, 15, 3, 0, 0, 0, time.UTC).Equal(src.DateTime()))

	var names []string
	for _, c := range src.Choices() {
		names = append(names, c.Name())
	}
	assert.Equal(t, []string{"M05", "M15"}, names)

	m05 := src.Choice("M05")
	want := swath.Subset{}
	want.MustSet("number_of_lines", 0, 7, 3).MustSet("number_of_pixels", 0, 5, 3)
	assert.True(t, want.Equal(m05.Selection()), "default selection %s", m05.Selection())

	res, err := src.DefaultResolution(m05)
	require.NoError(t, err)
	assert.Equal(t, 770.0, res)

	listed, ok := reg.Session().Lookup(src.ID())
	require.True(t, ok)
	assert.Same(t, src, listed)
	assert.Len(t, reg.ListByDescription("SNPP VIIRS"), 1)
}

func TestFetchReflectiveAcrossGranules(t *testing.T) {
	fx := newFixture(t, mod0300, mod0306, geo0300, geo0306)
	src, err := fx.registry(t).Resolve([]string{fx.path(mod0300), fx.path(mod0306)})
	require.NoError(t, err)
	defer src.Close()

	d, err := src.Fetch(src.Choice("M05"), nil)
	require.NoError(t, err)
	assert.Equal(t, []int{3, 2}, d.Shape)
	assert.Equal(t, "1", d.Units)
	// raw * 0.5 / cos(60°): rows 0, 3 of granule one and row 2 of granule two.
	approx(t, []float64{100, 103, 130, 133, 220, 223}, d.Values)

	require.NotNil(t, d.Geo)
	nav, ok := d.Geo.CoordSys.(*SwathNavigation)
	require.True(t, ok)
	assert.Equal(t, [2]int{3, 2}, nav.Shape)
	lon, lat, err := nav.At(2, 1)
	require.NoError(t, err)
	assert.InDelta(t, -97, lon, 1e-6)
	assert.InDelta(t, 52, lat, 1e-6)
}

func TestFetchEmissiveLUT(t *testing.T) {
	fx := newFixture(t, mod0300, mod0306, geo0300, geo0306)
	src, err := fx.registry(t).Resolve([]string{fx.path(mod0300), fx.path(mod0306)})
	require.NoError(t, err)
	defer src.Close()

	d, err := src.Fetch(src.Choice("M15"), nil)
	require.NoError(t, err)
	assert.Equal(t, "K", d.Units)
	approx(t, []float64{200, 203, 230, 233, 220, 223}, d.Values)
}

func TestFillValueMasked(t *testing.T) {
	fx := newFixture(t, mod0300, mod0306, geo0300, geo0306)
	fx.files[mod0300].arrays["observation_data/M05"].values[7] = 65535 // (1, 1)
	src, err := fx.registry(t).Resolve([]string{fx.path(mod0300), fx.path(mod0306)})
	require.NoError(t, err)
	defer src.Close()

	var sel swath.Subset
	sel.MustSet("number_of_lines", 1, 1, 1).MustSet("number_of_pixels", 0, 1, 1)
	d, err := src.Fetch(src.Choice("M05"), &sel)
	require.NoError(t, err)
	approx(t, []float64{110, math.NaN()}, d.Values)
}

func TestGeolocationComputedOncePerGroup(t *testing.T) {
	fx := newFixture(t, mod0300, mod0306, geo0300, geo0306)
	reg := fx.registry(t)
	src, err := reg.Resolve([]string{fx.path(mod0300), fx.path(mod0306)})
	require.NoError(t, err)
	defer src.Close()

	for _, name := range []string{"M05", "M15", "M05", "M15"} {
		_, err := src.Fetch(src.Choice(name), nil)
		require.NoError(t, err, name)
	}

	c, err := metrics.New(fx.reg)
	require.NoError(t, err)
	assert.Equal(t, 1.0, testutil.ToFloat64(c.GeoComputations.WithLabelValues("sips-viirs-mband")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.GeoShared.WithLabelValues("M-Band")))
	// Longitude was read once, for the first fetch.
	assert.Equal(t, 1, fx.files[geo0300].readCount("geolocation_data/longitude"))

	views := src.Aggregates()
	require.Len(t, views, 1)
	assert.Equal(t, "M-Band", views[0].Group().Name())
	assert.NotNil(t, views[0].Geolocation())
	assert.Equal(t, []float64{0.672, 10.763}, views[0].Wavelengths())
}

func TestGeolocationMatchesEachSelection(t *testing.T) {
	fx := newFixture(t, mod0300, mod0306, geo0300, geo0306)
	src, err := fx.registry(t).Resolve([]string{fx.path(mod0300), fx.path(mod0306)})
	require.NoError(t, err)
	defer src.Close()
	view := src.Aggregates()[0]

	var point swath.Subset
	point.MustSet("number_of_lines", 5, 5, 1).MustSet("number_of_pixels", 2, 2, 1)
	spectrum, err := view.Spectrum(point)
	require.NoError(t, err)
	approx(t, []float64{212, 212}, spectrum)

	shared := view.Geolocation()
	require.NotNil(t, shared)
	assert.Equal(t, []int{3, 2}, shared.Domain.Shape(), "shared record spans the default domain")

	d, err := src.Fetch(src.Choice("M15"), nil)
	require.NoError(t, err)
	assert.Same(t, shared, d.Geo)
	nav := d.Geo.CoordSys.(*SwathNavigation)
	assert.Equal(t, [2]int{3, 2}, nav.Shape)
	lon, lat, err := nav.At(2, 1)
	require.NoError(t, err)
	assert.InDelta(t, -97, lon, 1e-6)
	assert.InDelta(t, 52, lat, 1e-6)

	reads := func() int {
		return fx.files[geo0300].readCount("geolocation_data/longitude") +
			fx.files[geo0306].readCount("geolocation_data/longitude")
	}
	before := reads()
	var window swath.Subset
	window.MustSet("number_of_lines", 3, 6, 3).MustSet("number_of_pixels", 3, 3, 1)
	d, err = src.Fetch(src.Choice("M15"), &window)
	require.NoError(t, err)
	assert.Equal(t, []int{2, 1}, d.Shape)
	assert.Equal(t, d.Shape, d.Geo.Domain.Shape())
	nav = d.Geo.CoordSys.(*SwathNavigation)
	approx(t, []float64{-97, -97}, nav.Lon)
	approx(t, []float64{43, 52}, nav.Lat)
	assert.Equal(t, before, reads(), "windows on the shared grid are cut without reading")
	assert.Same(t, shared, view.Geolocation())

	c, err := metrics.New(fx.reg)
	require.NoError(t, err)
	assert.Equal(t, 1.0, testutil.ToFloat64(c.GeoComputations.WithLabelValues("sips-viirs-mband")))
}

func TestMissingGeolocationSurfacesAtFetch(t *testing.T) {
	fx := newFixture(t, mod0300, mod0306, geo0300) // no 0306 companion
	src, err := fx.registry(t).Resolve([]string{fx.path(mod0300), fx.path(mod0306)})
	require.NoError(t, err, "construction succeeds without companions")
	defer src.Close()

	_, err = src.Fetch(src.Choice("M15"), nil)
	require.Error(t, err)
	var de *swath.DataError
	require.ErrorAs(t, err, &de)
	assert.True(t, errors.Is(err, swath.ErrMissingAncillary))

	var me *swath.MissingAncillaryError
	require.ErrorAs(t, err, &me)
	assert.Equal(t, fx.path(mod0306), me.File)
}

func TestFetchOutOfRange(t *testing.T) {
	fx := newFixture(t, mod0300, mod0306, geo0300, geo0306)
	src, err := fx.registry(t).Resolve([]string{fx.path(mod0300), fx.path(mod0306)})
	require.NoError(t, err)
	defer src.Close()

	var sel swath.Subset
	sel.MustSet("number_of_lines", 0, 8, 1)
	_, err = src.Fetch(src.Choice("M05"), &sel)
	assert.True(t, errors.Is(err, swath.ErrOutOfRange))
	assert.Zero(t, fx.files[mod0300].readCount("observation_data/M05"), "no read before validation")
}

func TestUnsortableGranules(t *testing.T) {
	bad := "VNP02MOD.Aunknown.nc"
	fx := newFixture(t, mod0300, bad)
	_, err := fx.registry(t).Resolve([]string{fx.path(mod0300), fx.path(bad)})
	require.Error(t, err)
	assert.True(t, errors.Is(err, swath.ErrUnrecognizedInput))
	assert.True(t, errors.Is(err, swath.ErrUnsortableGranule))
}

func TestUnreadablePathAborts(t *testing.T) {
	fx := newFixture(t, mod0300)
	_, err := fx.registry(t).Resolve([]string{fx.path(mod0300), fx.path(mod0306)})
	var ioErr *swath.IOError
	require.ErrorAs(t, err, &ioErr)
	assert.Equal(t, fx.path(mod0306), ioErr.Path)
}

func TestUnrecognizedInput(t *testing.T) {
	fx := newFixture(t, "notes.txt")
	_, err := fx.registry(t).Resolve([]string{fx.path("notes.txt")})
	var ue *swath.UnrecognizedInputError
	require.ErrorAs(t, err, &ue)
	assert.Len(t, ue.Rejections, 4)
}

// abiFile builds a 4x5 MCMIP file with one reflective and one emissive band.
func abiFile() *fakeFile {
	f := newFakeFile()
	yx := []string{"y", "x"}
	c01 := f.grid("CMI_C01", yx, 4, 5, func(i, j int) float64 { return float64(i*5 + j) })
	c01.attrs["scale_factor"] = []float32{0.01}
	c01.attrs["add_offset"] = []float32{0}
	c01.attrs["_FillValue"] = []int16{-1}
	c13 := f.grid("CMI_C13", yx, 4, 5, func(i, j int) float64 { return float64(i*5 + j) })
	c13.attrs["scale_factor"] = []float32{0.1}
	c13.attrs["add_offset"] = []float32{200}
	x := f.vector("x", "x", []float64{0, 1, 2, 3, 4})
	x.attrs["scale_factor"] = []float32{0.5}
	x.attrs["add_offset"] = []float32{-1}
	f.vector("y", "y", []float64{10, 20, 30, 40})
	proj := f.vector("goes_imager_projection", "one", []float64{0})
	proj.attrs["grid_mapping_name"] = "geostationary"
	proj.attrs["perspective_point_height"] = 35786023.0
	return f
}

func TestResolveABIGrid(t *testing.T) {
	fx := newFixture(t, mcmip)
	src, err := fx.registry(t).Resolve([]string{fx.path(mcmip)})
	require.NoError(t, err)
	defer src.Close()

	assert.Equal(t, "GOES-16 ABI", src.Description())
	var names []string
	for _, c := range src.Choices() {
		names = append(names, c.Name())
	}
	assert.Equal(t, []string{"C01", "C13"}, names)

	c01 := src.Choice("C01")
	assert.Equal(t, "2KMrefl", c01.Group().Name())
	assert.Equal(t, "2KMemis", src.Choice("C13").Group().Name())
	res, err := src.DefaultResolution(c01)
	require.NoError(t, err)
	assert.Equal(t, 2000.0, res)

	var sel swath.Subset
	sel.MustSet("y", 1, 3, 2).MustSet("x", 0, 4, 2)
	d, err := src.Fetch(c01, &sel)
	require.NoError(t, err)
	approx(t, []float64{0.05, 0.07, 0.09, 0.15, 0.17, 0.19}, d.Values)

	nav, ok := d.Geo.CoordSys.(*GridNavigation)
	require.True(t, ok)
	assert.Equal(t, []float64{-1, 0, 1}, nav.X)
	assert.Equal(t, []float64{20, 40}, nav.Y)
	assert.Equal(t, "geostationary", nav.Mapping)
	assert.Equal(t, 35786023.0, nav.Projection["perspective_point_height"])

	d, err = src.Fetch(src.Choice("C13"), &sel)
	require.NoError(t, err)
	approx(t, []float64{200.5, 200.7, 200.9, 201.5, 201.7, 201.9}, d.Values)
}

func TestABIRejectsMultipleFiles(t *testing.T) {
	other := strings.Replace(mcmip, "s2024015030", "s2024015031", 1)
	fx := newFixture(t, mcmip, other)
	h, err := NewHandler(mustDescriptor(t, "abi-mcmip"), WithOpener(fx.files.open))
	require.NoError(t, err)
	ok, err := h.Probe([]string{fx.path(mcmip), fx.path(other)})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCompanionsFromInputList(t *testing.T) {
	fx := newFixture(t, mod0300)
	elsewhere := t.TempDir()
	geo := filepath.Join(elsewhere, geo0300)
	require.NoError(t, os.WriteFile(geo, nil, 0o644))

	h, err := NewHandler(mustDescriptor(t, "sips-viirs-mband"), WithOpener(fx.files.open))
	require.NoError(t, err)
	got, err := h.companions([]string{fx.path(mod0300)}, []string{geo})
	require.NoError(t, err)
	assert.Equal(t, []string{geo}, got)

	_, err = h.companions([]string{fx.path(mod0306)}, nil)
	assert.True(t, errors.Is(err, swath.ErrMissingAncillary))
}

func mustDescriptor(t *testing.T, name string) Descriptor {
	t.Helper()
	ds, err := Builtin()
	require.NoError(t, err)
	for _, d := range ds {
		if d.Name == name {
			return d
		}
	}
	t.Fatalf("no descriptor %s", name)
	return Descriptor{}
}

func TestDNBLogScale(t *testing.T) {
	const (
		dnb = "VNP02DNB.A2024015.0300.002.2024015100000.nc"
		geo = "VNP03DNB.A2024015.0300.002.2024015090000.nc"
	)
	fx := newFixture(t, dnb, geo)
	f := newFakeFile()
	obs := f.grid("observation_data/DNB_observations", lines, 4, 6, func(i, j int) float64 {
		if i == 0 && j == 0 {
			return 0
		}
		return 1000
	})
	obs.attrs["scale_factor"] = []float32{0.1}
	fx.files[dnb] = f
	fx.files[geo] = geoGranule(40)

	src, err := fx.registry(t).Resolve([]string{fx.path(dnb)})
	require.NoError(t, err)
	defer src.Close()

	c := src.Choice("DNB")
	require.NotNil(t, c)
	assert.Equal(t, "DNB-Band", c.Group().Name())
	d, err := src.Fetch(c, nil)
	require.NoError(t, err)
	assert.Equal(t, "W m-2 sr-1", d.Units)
	approx(t, []float64{math.NaN(), 2, 2, 2}, d.Values)
}
