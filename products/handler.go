package products

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/robert-malhotra/go-swath/internal/granule"
	"github.com/robert-malhotra/go-swath/swath"
)

// Handler turns a descriptor into a probe and a source constructor.
type Handler struct {
	desc     Descriptor
	patterns []*regexp.Regexp
	opts     *options
}

// NewHandler validates d and compiles its file patterns.
func NewHandler(d Descriptor, opts ...Option) (*Handler, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	h := &Handler{desc: d, opts: buildOptions(opts)}
	for _, p := range d.Patterns {
		h.patterns = append(h.patterns, regexp.MustCompile(p))
	}
	return h, nil
}

// Name returns the descriptor name.
func (h *Handler) Name() string { return h.desc.Name }

// Descriptor returns the descriptor the handler was built from.
func (h *Handler) Descriptor() Descriptor { return h.desc }

// Candidate returns the handler as a registry entry.
func (h *Handler) Candidate() swath.Candidate {
	return swath.Candidate{Name: h.desc.Name, Probe: h.Probe, Open: h.Open}
}

// Matches reports whether a base file name follows the product's naming.
func (h *Handler) Matches(name string) bool {
	for _, re := range h.patterns {
		if re.MatchString(name) {
			return true
		}
	}
	return false
}

// Probe accepts files when the first one follows the product's naming
// convention. Every file must exist; an unreadable path is an *IOError.
func (h *Handler) Probe(files []string) (bool, error) {
	if len(files) == 0 || !h.Matches(filepath.Base(files[0])) {
		return false, nil
	}
	if h.desc.SingleFile && len(h.dataFiles(files)) != 1 {
		return false, nil
	}
	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			return false, &swath.IOError{Path: f, Err: err}
		}
	}
	return true, nil
}

// dataFiles returns the files that follow the naming convention, in input
// order.
func (h *Handler) dataFiles(files []string) []string {
	var out []string
	for _, f := range files {
		if h.Matches(filepath.Base(f)) {
			out = append(out, f)
		}
	}
	return out
}

// Open builds a source. Data granules are put in time order and aggregated
// along the track dimension. Files that are not data granules are searched,
// before the data directory, for companion geolocation granules. A
// band_per_file product gets one aggregation per file prefix, and every
// prefix must cover the same granules.
func (h *Handler) Open(files []string) (swath.Source, error) {
	data := h.dataFiles(files)
	if len(data) == 0 {
		return nil, fmt.Errorf("%s: no data granules among %d files", h.desc.Name, len(files))
	}
	var extra []string
	for _, f := range files {
		if !h.Matches(filepath.Base(f)) {
			extra = append(extra, f)
		}
	}

	sets := [][]string{data}
	if h.desc.BandPerFile {
		sets = byPrefix(data)
	}
	var all []string
	for i, set := range sets {
		sorted, err := granule.Sort(set, h.opts.parse)
		if err != nil {
			var ue *granule.UnsortableError
			if errors.As(err, &ue) {
				return nil, &swath.UnsortableGranuleError{File: ue.Name, Err: ue.Err}
			}
			return nil, err
		}
		if len(sorted) != len(sets[0]) {
			return nil, fmt.Errorf("%s: %s has %d granules, %s has %d", h.desc.Name,
				prefixOf(sorted[0]), len(sorted), prefixOf(sets[0][0]), len(sets[0]))
		}
		sets[i] = sorted
		all = append(all, sorted...)
	}
	sorted := sets[0]

	open := h.opts.opener(h.desc.format(), h.desc.TrackDim, h.desc.XTrackDim)
	var closers []io.Closer
	fail := func(err error) (swath.Source, error) {
		for _, c := range closers {
			c.Close()
		}
		return nil, err
	}
	aggs := make([]*granule.Aggregation, 0, len(sets))
	for _, set := range sets {
		a, err := granule.Open(h.opts.ctx, set, h.desc.TrackDim, open)
		if err != nil {
			return fail(err)
		}
		closers = append(closers, a)
		aggs = append(aggs, a)
	}

	var geoData *granule.Aggregation
	var geoErr error
	if gd := h.desc.Geolocation; gd != nil {
		geoFiles, err := h.companions(sorted, extra)
		if err != nil {
			geoErr = err
			h.opts.logger.Warn("geolocation companions missing",
				zap.String("product", h.desc.Name), zap.Error(err))
		} else {
			geoOpen := h.opts.opener(h.desc.format(), gd.TrackDim, gd.XTrackDim)
			geoData, err = granule.Open(h.opts.ctx, geoFiles, gd.TrackDim, geoOpen)
			if err != nil {
				return fail(err)
			}
			closers = append(closers, geoData)
		}
	}

	var projection string
	if g := h.desc.Grid; g != nil {
		projection = g.Projection
		if projection == "" {
			projection = findProjection(aggs[0].Granules()[0])
		}
	}

	var bands []swath.Band
	for _, b := range h.desc.Bands {
		agg := holding(aggs, b.Array)
		if agg == nil {
			continue
		}
		procs, err := pipelines(agg, b.Array, h.desc.steps(b))
		if err != nil {
			return fail(err)
		}
		if procs != nil {
			if err := agg.SetProcessor(b.Array, procs); err != nil {
				return fail(err)
			}
		}
		base, err := newAdapterBase(&h.desc, b, agg, h.opts)
		if err != nil {
			return fail(err)
		}

		var adapter swath.ArrayAdapter
		switch h.desc.Layout {
		case LayoutGrid:
			adapter = &GridAdapter{adapterBase: base, grid: *h.desc.Grid, projection: projection}
		default:
			adapter = &SwathAdapter{adapterBase: base, geoData: geoData, geoErr: geoErr, gd: h.desc.Geolocation}
		}
		bands = append(bands, swath.Band{
			Name:  b.Name,
			Group: b.Group,
			Info: swath.BandInfo{
				Kind:       swath.BandKind(b.Kind),
				Sensor:     h.desc.Sensor,
				Wavelength: b.Wavelength,
				Units:      unitsFor(b),
			},
			Resolution: h.desc.resolution(b),
			Adapter:    adapter,
		})
	}
	if len(bands) == 0 {
		return fail(fmt.Errorf("%s: no known bands in %s", h.desc.Name, sorted[0]))
	}

	when, _ := h.opts.parse(sorted[0])
	src, err := swath.NewBandSource(swath.SourceInfo{
		Description: h.desc.Description,
		DateTime:    when,
		Files:       all,
	}, bands, closers, h.opts.swathOptions()...)
	if err != nil {
		return fail(err)
	}
	h.opts.logger.Debug("source opened",
		zap.String("product", h.desc.Name),
		zap.Int("granules", len(sorted)),
		zap.Int("bands", len(bands)),
		zap.Bool("geolocation", geoData != nil || h.desc.Layout == LayoutGrid))
	return src, nil
}

// companions finds the geolocation granule for each data granule. A data
// file "VNP02MOD.A2024015.0300.002.nc" pairs with the first file starting
// "VNP03MOD.A2024015.0300.", and with separator "_" and five key parts
// "SVM05_npp_d20240115_t0300000_e0301000_b00001_c..." pairs with
// "GMTCO_npp_d20240115_t0300000_e0301000_b00001_".
func (h *Handler) companions(data, extra []string) ([]string, error) {
	gd := h.desc.Geolocation
	sep, n := gd.separator(), gd.keyParts()
	listings := make(map[string][]string)
	out := make([]string, len(data))
	for i, f := range data {
		base := filepath.Base(f)
		parts := strings.SplitN(base, sep, n+2)
		if len(parts) < n+1 {
			return nil, &swath.MissingAncillaryError{File: f, Kind: "geolocation"}
		}
		prefix, ok := gd.Prefixes[parts[0]]
		if !ok {
			return nil, &swath.MissingAncillaryError{File: f, Kind: "geolocation"}
		}
		key := prefix + sep + strings.Join(parts[1:n+1], sep) + sep

		candidates := extra
		dir := filepath.Dir(f)
		if _, ok := listings[dir]; !ok {
			listings[dir] = listDir(dir)
		}
		candidates = append(append([]string(nil), candidates...), listings[dir]...)

		for _, c := range candidates {
			if strings.HasPrefix(filepath.Base(c), key) {
				out[i] = c
				break
			}
		}
		if out[i] == "" {
			return nil, &swath.MissingAncillaryError{File: f, Kind: "geolocation"}
		}
	}
	return out, nil
}

// holding returns the first aggregation that carries array.
func holding(aggs []*granule.Aggregation, array string) *granule.Aggregation {
	for _, a := range aggs {
		if a.HasArray(array) {
			return a
		}
	}
	return nil
}

// prefixOf returns the base name up to the first "_" or ".", the band token
// of a band-per-file product such as "SVM05".
func prefixOf(path string) string {
	base := filepath.Base(path)
	if i := strings.IndexAny(base, "_."); i > 0 {
		return base[:i]
	}
	return base
}

// byPrefix splits files by prefixOf, keeping first-seen order.
func byPrefix(files []string) [][]string {
	index := make(map[string]int)
	var out [][]string
	for _, f := range files {
		p := prefixOf(f)
		i, ok := index[p]
		if !ok {
			i = len(out)
			index[p] = i
			out = append(out, nil)
		}
		out[i] = append(out[i], f)
	}
	return out
}

func listDir(dir string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	var out []string
	for _, e := range entries {
		if !e.IsDir() {
			out = append(out, filepath.Join(dir, e.Name()))
		}
	}
	return out
}
