package products

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/robert-malhotra/go-swath/swath"
)

//go:embed descriptors.yaml
var builtinYAML []byte

// Layouts
const (
	LayoutSwath = "swath"
	LayoutGrid  = "grid"
)

// File formats
const (
	FormatNetCDF = "netcdf"
	FormatHDF5   = "hdf5"
)

// ErrInvalidDescriptor is wrapped by every validation failure.
var ErrInvalidDescriptor = errors.New("invalid descriptor")

// Descriptor declares how one product family maps onto bands.
type Descriptor struct {
	Name          string                `yaml:"name"`
	Description   string                `yaml:"description"`
	Sensor        string                `yaml:"sensor"`
	Layout        string                `yaml:"layout"`
	Format        string                `yaml:"format"`
	SingleFile    bool                  `yaml:"single_file"`
	BandPerFile   bool                  `yaml:"band_per_file"`
	Patterns      []string              `yaml:"patterns"`
	TrackDim      string                `yaml:"track_dim"`
	XTrackDim     string                `yaml:"xtrack_dim"`
	DefaultStride int                   `yaml:"default_stride"`
	Resolution    float64               `yaml:"resolution"`
	Geolocation   *GeoDescriptor        `yaml:"geolocation"`
	Grid          *GridDescriptor       `yaml:"grid"`
	BandDefaults  map[string][]StepSpec `yaml:"band_defaults"`
	Bands         []BandDescriptor      `yaml:"bands"`
}

// GeoDescriptor locates the companion geolocation files of a swath product.
// Prefixes maps a data file prefix to its geolocation file prefix; the two
// files share the KeyParts fields that follow the prefix, split on
// Separator. The defaults, "." and 2, pair on the ".AYYYYDDD.HHMM" key.
type GeoDescriptor struct {
	Prefixes    map[string]string `yaml:"prefixes"`
	Separator   string            `yaml:"separator"`
	KeyParts    int               `yaml:"key_parts"`
	TrackDim    string            `yaml:"track_dim"`
	XTrackDim   string            `yaml:"xtrack_dim"`
	Longitude   string            `yaml:"longitude"`
	Latitude    string            `yaml:"latitude"`
	SolarZenith string            `yaml:"solar_zenith"`
}

// GridDescriptor names the coordinate variables of a fixed-grid product.
// An empty Projection is found by looking for a variable that carries a
// grid_mapping_name attribute.
type GridDescriptor struct {
	X          string `yaml:"x"`
	Y          string `yaml:"y"`
	Projection string `yaml:"projection"`
}

// BandDescriptor declares one band. An empty Calibration uses the
// descriptor's BandDefaults entry for Kind.
type BandDescriptor struct {
	Name        string     `yaml:"name"`
	Array       string     `yaml:"array"`
	Group       string     `yaml:"group"`
	Kind        string     `yaml:"kind"`
	Wavelength  float64    `yaml:"wavelength"`
	Resolution  float64    `yaml:"resolution"`
	Units       string     `yaml:"units"`
	Calibration []StepSpec `yaml:"calibration"`
}

// StepSpec describes a calibration step. Attrs name attributes of the band
// array whose values become the step parameters; Values supplies a default
// for each attribute that is missing, or the parameters themselves when
// Attrs is empty. Array instead names a companion array whose leading
// len(Values) elements are the parameters, with Values used when the array
// is absent. LUT names the table array for a lut step. In Array and LUT,
// "{array}" is replaced with the band's array path.
type StepSpec struct {
	Kind   string    `yaml:"kind"`
	Attrs  []string  `yaml:"attrs"`
	Array  string    `yaml:"array"`
	Values []float64 `yaml:"values"`
	LUT    string    `yaml:"lut"`
}

// Builtin returns the embedded descriptor table.
func Builtin() ([]Descriptor, error) {
	return LoadDescriptors(bytes.NewReader(builtinYAML))
}

// LoadDescriptorFile reads a descriptor table from a YAML file.
func LoadDescriptorFile(path string) ([]Descriptor, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	ds, err := LoadDescriptors(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return ds, nil
}

// LoadDescriptors decodes and validates a YAML list of descriptors.
func LoadDescriptors(r io.Reader) ([]Descriptor, error) {
	var ds []Descriptor
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&ds); err != nil {
		return nil, fmt.Errorf("decode descriptors: %w", err)
	}
	for i := range ds {
		if err := ds[i].Validate(); err != nil {
			return nil, err
		}
	}
	if err := uniqueNames(ds); err != nil {
		return nil, err
	}
	return ds, nil
}

// Concat joins descriptor tables in order. Names must stay unique across
// the joined table because rejections are reported per name.
func Concat(tables ...[]Descriptor) ([]Descriptor, error) {
	var out []Descriptor
	for _, t := range tables {
		out = append(out, t...)
	}
	if err := uniqueNames(out); err != nil {
		return nil, err
	}
	return out, nil
}

func uniqueNames(ds []Descriptor) error {
	seen := make(map[string]bool, len(ds))
	for _, d := range ds {
		if seen[d.Name] {
			return fmt.Errorf("%w: duplicate name %q", ErrInvalidDescriptor, d.Name)
		}
		seen[d.Name] = true
	}
	return nil
}

// Validate checks a descriptor for internal consistency.
func (d *Descriptor) Validate() error {
	fail := func(format string, args ...any) error {
		return fmt.Errorf("%w: %s: %s", ErrInvalidDescriptor, d.Name, fmt.Sprintf(format, args...))
	}
	if d.Name == "" {
		return fmt.Errorf("%w: missing name", ErrInvalidDescriptor)
	}
	if len(d.Patterns) == 0 {
		return fail("no file patterns")
	}
	for _, p := range d.Patterns {
		if _, err := regexp.Compile(p); err != nil {
			return fail("pattern %q: %v", p, err)
		}
	}
	if d.TrackDim == "" || d.XTrackDim == "" {
		return fail("track_dim and xtrack_dim are required")
	}
	if d.DefaultStride < 0 {
		return fail("negative default_stride")
	}
	switch d.Format {
	case "", FormatNetCDF, FormatHDF5:
	default:
		return fail("unknown format %q", d.Format)
	}
	if d.SingleFile && d.BandPerFile {
		return fail("single_file and band_per_file are exclusive")
	}
	switch d.Layout {
	case LayoutSwath:
		if d.Grid != nil {
			return fail("swath layout cannot have a grid section")
		}
		if g := d.Geolocation; g != nil {
			if len(g.Prefixes) == 0 || g.Longitude == "" || g.Latitude == "" {
				return fail("geolocation needs prefixes, longitude and latitude")
			}
			if g.TrackDim == "" || g.XTrackDim == "" {
				return fail("geolocation needs track_dim and xtrack_dim")
			}
			if g.KeyParts < 0 {
				return fail("negative geolocation key_parts")
			}
		}
	case LayoutGrid:
		if d.Grid == nil || d.Grid.X == "" || d.Grid.Y == "" {
			return fail("grid layout needs grid.x and grid.y")
		}
		if d.Geolocation != nil {
			return fail("grid layout cannot have a geolocation section")
		}
	default:
		return fail("unknown layout %q", d.Layout)
	}
	if len(d.Bands) == 0 {
		return fail("no bands")
	}
	names := make(map[string]bool, len(d.Bands))
	for _, b := range d.Bands {
		if b.Name == "" || b.Array == "" {
			return fail("band needs name and array")
		}
		if names[b.Name] {
			return fail("duplicate band %q", b.Name)
		}
		names[b.Name] = true
		switch swath.BandKind(b.Kind) {
		case swath.KindReflective, swath.KindEmissive, swath.KindDNB, swath.KindProduct:
		default:
			return fail("band %s: unknown kind %q", b.Name, b.Kind)
		}
		for _, s := range d.steps(b) {
			if s.Kind == "lut" && s.LUT == "" {
				return fail("band %s: lut step without table", b.Name)
			}
			if s.Array != "" && (len(s.Attrs) > 0 || len(s.Values) == 0) {
				return fail("band %s: %s step reads %s but needs values and no attrs", b.Name, s.Kind, s.Array)
			}
		}
	}
	return nil
}

// steps returns the calibration for b, falling back to the kind default.
func (d *Descriptor) steps(b BandDescriptor) []StepSpec {
	if len(b.Calibration) > 0 {
		return b.Calibration
	}
	return d.BandDefaults[b.Kind]
}

// resolution returns the band's declared resolution or the product's.
func (d *Descriptor) resolution(b BandDescriptor) float64 {
	if b.Resolution > 0 {
		return b.Resolution
	}
	return d.Resolution
}

func (d *Descriptor) stride() int {
	if d.DefaultStride < 1 {
		return 1
	}
	return d.DefaultStride
}

func (d *Descriptor) format() string {
	if d.Format == "" {
		return FormatNetCDF
	}
	return d.Format
}

func (g *GeoDescriptor) separator() string {
	if g.Separator == "" {
		return "."
	}
	return g.Separator
}

func (g *GeoDescriptor) keyParts() int {
	if g.KeyParts < 1 {
		return 2
	}
	return g.KeyParts
}

func expandArray(name, array string) string {
	return strings.ReplaceAll(name, "{array}", array)
}

func lutArray(spec StepSpec, array string) string {
	return expandArray(spec.LUT, array)
}

func unitsFor(b BandDescriptor) string {
	if b.Units != "" {
		return b.Units
	}
	switch swath.BandKind(b.Kind) {
	case swath.KindReflective:
		return "1"
	case swath.KindEmissive:
		return "K"
	}
	return ""
}
