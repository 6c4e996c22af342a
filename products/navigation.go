package products

import "fmt"

// SwathNavigation holds per-pixel longitudes and latitudes for the domain of
// a swath geolocation record.
type SwathNavigation struct {
	Lon   []float32
	Lat   []float32
	Shape [2]int // track, cross-track
}

// At returns the location of pixel (i, j) within the domain.
func (n *SwathNavigation) At(i, j int) (lon, lat float32, err error) {
	if i < 0 || i >= n.Shape[0] || j < 0 || j >= n.Shape[1] {
		return 0, 0, fmt.Errorf("pixel (%d, %d) outside %dx%d domain", i, j, n.Shape[0], n.Shape[1])
	}
	k := i*n.Shape[1] + j
	return n.Lon[k], n.Lat[k], nil
}

// GridNavigation holds the projection coordinates of a fixed grid domain and
// the attributes of its grid-mapping variable. Converting to geographic
// coordinates is left to the caller.
type GridNavigation struct {
	X          []float64
	Y          []float64
	Mapping    string
	Projection map[string]any
}

// lattice selects count positions starting at offset, every step.
type lattice struct{ offset, step, count int }

func (l lattice) at(k int) int { return l.offset + k*l.step }

// cut returns the navigation for a sub-lattice of the domain.
func (n *SwathNavigation) cut(rows, cols lattice) *SwathNavigation {
	out := &SwathNavigation{
		Lon:   make([]float32, 0, rows.count*cols.count),
		Lat:   make([]float32, 0, rows.count*cols.count),
		Shape: [2]int{rows.count, cols.count},
	}
	for i := 0; i < rows.count; i++ {
		for j := 0; j < cols.count; j++ {
			k := rows.at(i)*n.Shape[1] + cols.at(j)
			out.Lon = append(out.Lon, n.Lon[k])
			out.Lat = append(out.Lat, n.Lat[k])
		}
	}
	return out
}

// cut returns the navigation for a sub-lattice of the domain. The
// projection attributes are shared.
func (n *GridNavigation) cut(rows, cols lattice) *GridNavigation {
	out := &GridNavigation{
		X:          make([]float64, cols.count),
		Y:          make([]float64, rows.count),
		Mapping:    n.Mapping,
		Projection: n.Projection,
	}
	for j := range out.X {
		out.X[j] = n.X[cols.at(j)]
	}
	for i := range out.Y {
		out.Y[i] = n.Y[rows.at(i)]
	}
	return out
}
