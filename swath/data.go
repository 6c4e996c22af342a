package swath

import (
	"fmt"
	"math"

	"github.com/montanaflynn/stats"
)

// Domain describes the pixel grid a geolocation record was computed for.
type Domain struct {
	Dims   []string
	Ranges []Range
}

// Shape returns the number of pixels along each dimension.
func (d Domain) Shape() []int {
	out := make([]int, len(d.Ranges))
	for i, r := range d.Ranges {
		out[i] = r.Count()
	}
	return out
}

// Geolocation pairs an opaque coordinate system with the grid it applies to.
// The core copies it between adapters but never looks inside CoordSys.
type Geolocation struct {
	CoordSys any
	Domain   Domain
}

// Data is the result of a fetch: row-major float32 samples over Dims.
type Data struct {
	Choice string
	Dims   []string
	Shape  []int
	Values []float32
	Units  string
	Geo    *Geolocation
}

// Rank returns the number of dimensions.
func (d *Data) Rank() int {
	return len(d.Shape)
}

// Len returns the number of samples.
func (d *Data) Len() int {
	return len(d.Values)
}

// At returns the sample at the given indices, one per dimension.
func (d *Data) At(idx ...int) (float32, error) {
	if len(idx) != len(d.Shape) {
		return 0, fmt.Errorf("expected %d indices, got %d", len(d.Shape), len(idx))
	}
	off := 0
	for i, n := range d.Shape {
		if idx[i] < 0 || idx[i] >= n {
			return 0, fmt.Errorf("index %d out of range for dimension %s (length %d)", idx[i], d.Dims[i], n)
		}
		off = off*n + idx[i]
	}
	return d.Values[off], nil
}

// Summary holds basic statistics over the finite samples of a Data.
type Summary struct {
	Count  int
	NaN    int
	Min    float64
	Max    float64
	Mean   float64
	StdDev float64
	P2     float64
	P98    float64
}

// Summary computes statistics over finite samples. P2/P98 are a reasonable
// default display range for imagery.
func (d *Data) Summary() (Summary, error) {
	finite := make([]float64, 0, len(d.Values))
	var s Summary
	for _, v := range d.Values {
		f := float64(v)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			s.NaN++
			continue
		}
		finite = append(finite, f)
	}
	s.Count = len(finite)
	if s.Count == 0 {
		return s, nil
	}

	var err error
	if s.Min, err = stats.Min(finite); err != nil {
		return s, err
	}
	if s.Max, err = stats.Max(finite); err != nil {
		return s, err
	}
	if s.Mean, err = stats.Mean(finite); err != nil {
		return s, err
	}
	if s.StdDev, err = stats.StandardDeviation(finite); err != nil {
		return s, err
	}
	if s.P2, err = stats.PercentileNearestRank(finite, 2); err != nil {
		return s, err
	}
	if s.P98, err = stats.PercentileNearestRank(finite, 98); err != nil {
		return s, err
	}
	return s, nil
}
