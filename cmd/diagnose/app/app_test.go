package app

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/robert-malhotra/go-swath/products"
	"github.com/robert-malhotra/go-swath/swath"
)

// rampAdapter is a 4x4 band whose sample at (i, j) is i*4 + j.
type rampAdapter struct{ geo *swath.Geolocation }

func (a *rampAdapter) DefaultSubset() swath.Subset {
	var s swath.Subset
	s.MustSet("y", 0, 3, 2).MustSet("x", 0, 3, 2)
	return s
}

func (a *rampAdapter) Lengths() map[string]int { return map[string]int{"y": 4, "x": 4} }

func (a *rampAdapter) Read(sel swath.Subset) (*swath.Data, error) {
	y, _ := sel.Get("y")
	x, _ := sel.Get("x")
	if a.geo == nil {
		a.geo = &swath.Geolocation{CoordSys: "grid"}
	}
	d := &swath.Data{Dims: []string{"y", "x"}, Shape: []int{y.Count(), x.Count()}, Units: "K", Geo: a.geo}
	for i := y.Start; i <= y.Stop; i += y.Stride {
		for j := x.Start; j <= x.Stop; j += x.Stride {
			d.Values = append(d.Values, float32(i*4+j))
		}
	}
	return d, nil
}

func (a *rampAdapter) Geolocation() *swath.Geolocation { return a.geo }
func (a *rampAdapter) SetGeolocation(geo *swath.Geolocation) { a.geo = geo }

func testSource(t *testing.T) swath.Source {
	t.Helper()
	src, err := swath.NewBandSource(swath.SourceInfo{Description: "GOES-16 ABI", Files: []string{"abi.nc"}}, []swath.Band{
		{Name: "C13", Group: "2KMemis", Info: swath.BandInfo{Kind: swath.KindEmissive, Wavelength: 10.33}, Resolution: 2000, Adapter: &rampAdapter{}},
		{Name: "C14", Group: "2KMemis", Info: swath.BandInfo{Kind: swath.KindEmissive, Wavelength: 11.19}, Resolution: 2000, Adapter: &rampAdapter{}},
	}, nil)
	require.NoError(t, err)
	return src
}

func TestBuildReport(t *testing.T) {
	r := buildReport(testSource(t), []string{"C13", "C14", "C99"}, zap.NewNop())

	require.Len(t, r.Choices, 2)
	assert.Equal(t, ChoiceRow{
		Name: "C13", Group: "2KMemis", Kind: "emissive", Wavelength: 10.33, Resolution: 2000,
		Selection: "{y:[0:3:2], x:[0:3:2]}",
	}, r.Choices[0])

	require.Len(t, r.Fetches, 3)
	assert.Equal(t, []int{2, 2}, r.Fetches[0].Shape)
	assert.Equal(t, 4, r.Fetches[0].Summary.Count)
	assert.Equal(t, 10.0, r.Fetches[0].Summary.Max)
	assert.False(t, r.Fetches[0].Shared)
	assert.True(t, r.Fetches[1].Shared, "second sibling reuses the published geolocation")
	assert.Equal(t, "no such band", r.Fetches[2].Error)

	assert.Equal(t, []AggregateRow{{Group: "2KMemis", Bands: []string{"C13", "C14"}, Geolocation: true}}, r.Aggregates)
}

func TestWriteReport(t *testing.T) {
	r := buildReport(testSource(t), []string{"C13"}, zap.NewNop())

	var buf bytes.Buffer
	require.NoError(t, writeJSON(&buf, r))
	var decoded Report
	require.NoError(t, jsoniter.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, r.Choices, decoded.Choices)
	assert.Equal(t, "GOES-16 ABI", decoded.Description)

	buf.Reset()
	require.NoError(t, writeTables(&buf, r))
	out := buf.String()
	assert.Contains(t, out, "C13")
	assert.Contains(t, out, "2KMemis")
	assert.Contains(t, out, "{y:[0:3:2], x:[0:3:2]}")
}

func TestDescriptorsCommand(t *testing.T) {
	extra := filepath.Join(t.TempDir(), "extra.yaml")
	require.NoError(t, os.WriteFile(extra, []byte(
		`- {name: lst, description: Land surface temperature, layout: swath, patterns: ['^LST_'], track_dim: y, xtrack_dim: x, bands: [{name: LST, array: lst, kind: product}]}`), 0o644))

	var out bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"descriptors", "--descriptors", extra})
	require.NoError(t, cmd.Execute())

	text := out.String()
	lst := strings.Index(text, "lst")
	mband := strings.Index(text, "sips-viirs-mband")
	require.True(t, lst >= 0 && mband >= 0, text)
	assert.Less(t, lst, mband, "extra descriptors come first")
	assert.Contains(t, text, "abi-mcmip")
}

func TestDescriptorsDuplicateName(t *testing.T) {
	extra := filepath.Join(t.TempDir(), "extra.yaml")
	require.NoError(t, os.WriteFile(extra, []byte(
		`- {name: abi-mcmip, description: Shadowed ABI, layout: swath, patterns: ['^OR_'], track_dim: y, xtrack_dim: x, bands: [{name: C13, array: CMI_C13, kind: emissive}]}`), 0o644))

	cmd := NewRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"descriptors", "--descriptors", extra})
	err := cmd.Execute()
	require.ErrorIs(t, err, products.ErrInvalidDescriptor)
	assert.Contains(t, err.Error(), `"abi-mcmip"`)
}

func TestResolveUnknownFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	cmd := NewRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"resolve", path})
	err := cmd.Execute()
	assert.ErrorIs(t, err, swath.ErrUnrecognizedInput)
}
