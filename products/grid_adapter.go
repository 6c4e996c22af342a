package products

import (
	"fmt"

	"github.com/robert-malhotra/go-swath/internal/calib"
	"github.com/robert-malhotra/go-swath/internal/granule"
	"github.com/robert-malhotra/go-swath/internal/ncread"
	"github.com/robert-malhotra/go-swath/swath"
)

// projectionAttrs are the CF grid-mapping attributes copied into a
// GridNavigation.
var projectionAttrs = []string{
	"grid_mapping_name",
	"perspective_point_height",
	"semi_major_axis",
	"semi_minor_axis",
	"inverse_flattening",
	"latitude_of_projection_origin",
	"longitude_of_projection_origin",
	"sweep_angle_axis",
}

// GridAdapter reads one band of a fixed-grid product. Its geolocation is the
// projection coordinates of the default domain.
type GridAdapter struct {
	*adapterBase

	grid       GridDescriptor
	projection string
}

var _ swath.ArrayAdapter = (*GridAdapter)(nil)

// Read returns calibrated samples for sel.
func (a *GridAdapter) Read(sel swath.Subset) (*swath.Data, error) {
	rs, err := a.ranges(sel)
	if err != nil {
		return nil, err
	}
	row, col := a.primaryRanges(rs)

	vals, err := a.readBand(rs)
	if err != nil {
		return nil, err
	}
	geo, err := a.locate(row, col, a.navigate)
	if err != nil {
		return nil, err
	}
	return a.result(rs, vals, geo), nil
}

func (a *GridAdapter) navigate(row, col swath.Range) (*swath.Geolocation, error) {
	x, err := a.coordinate(a.grid.X, col)
	if err != nil {
		return nil, err
	}
	y, err := a.coordinate(a.grid.Y, row)
	if err != nil {
		return nil, err
	}
	nav := &GridNavigation{X: x, Y: y, Projection: make(map[string]any)}
	if a.projection != "" {
		for _, name := range projectionAttrs {
			if v, ok := a.data.Attr(a.projection, name); ok {
				nav.Projection[name] = v
			}
		}
		nav.Mapping, _ = ncread.String(nav.Projection["grid_mapping_name"])
	}
	return &swath.Geolocation{
		CoordSys: nav,
		Domain: swath.Domain{
			Dims:   []string{a.primary[0], a.primary[1]},
			Ranges: []swath.Range{row, col},
		},
	}, nil
}

// coordinate reads a 1-D coordinate variable over r and unpacks it with its
// scale_factor and add_offset attributes.
func (a *GridAdapter) coordinate(array string, r swath.Range) ([]float64, error) {
	dims, _, err := a.data.Dims(array)
	if err != nil {
		return nil, &swath.UpstreamReadError{Array: array, Err: err}
	}
	if len(dims) != 1 {
		return nil, &swath.UpstreamReadError{Array: array, Err: fmt.Errorf("coordinate has %d dimensions", len(dims))}
	}
	vals, err := a.data.Read(array, hyperslab([]swath.Range{r}))
	if err != nil {
		return nil, &swath.UpstreamReadError{Array: array, Err: err}
	}
	specs, err := resolveSteps(a.data, array, []StepSpec{
		{Kind: calib.KindScale, Attrs: []string{"scale_factor", "add_offset"}, Values: []float64{1, 0}},
	})
	if err != nil {
		return nil, &swath.UpstreamReadError{Array: array, Err: err}
	}
	p, err := calib.NewPipeline(specs)
	if err != nil {
		return nil, &swath.UpstreamReadError{Array: array, Err: err}
	}
	return p.Process(vals)
}

// findProjection returns the first variable carrying grid_mapping_name.
func findProjection(r granule.Reader) string {
	w, ok := r.(interface{ Variables() ([]string, error) })
	if !ok {
		return ""
	}
	vars, err := w.Variables()
	if err != nil {
		return ""
	}
	for _, v := range vars {
		if _, ok := r.Attr(v, "grid_mapping_name"); ok {
			return v
		}
	}
	return ""
}
