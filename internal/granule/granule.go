package granule

import (
	"errors"
	"fmt"
)

// Errors
var (
	ErrNoArray        = errors.New("array not found")
	ErrBadHyperslab   = errors.New("invalid hyperslab")
	ErrNoGranules     = errors.New("no granules")
	ErrMismatchedRank = errors.New("array rank differs between granules")
)

// Reader is the array-file access an Aggregation needs from each granule.
// Values are returned row-major as float64 regardless of the stored type.
type Reader interface {
	HasArray(name string) bool
	Dims(name string) ([]string, []int, error)
	Read(name string, h Hyperslab) ([]float64, error)
	Attr(name, attr string) (any, bool)
	Close() error
}

// Processor transforms the raw values of one granule's piece of a read,
// typically a calibration pipeline built from that granule's attributes.
type Processor interface {
	Process(values []float64) ([]float64, error)
}

// Hyperslab selects Count elements every Stride starting at Start, per
// dimension, in the array's dimension order.
type Hyperslab struct {
	Start  []int
	Count  []int
	Stride []int
}

// Full returns the hyperslab selecting every element of an array with the
// given shape.
func Full(shape []int) Hyperslab {
	h := Hyperslab{
		Start:  make([]int, len(shape)),
		Count:  append([]int(nil), shape...),
		Stride: make([]int, len(shape)),
	}
	for i := range h.Stride {
		h.Stride[i] = 1
	}
	return h
}

// Size returns the number of selected elements.
func (h Hyperslab) Size() int {
	n := 1
	for _, c := range h.Count {
		n *= c
	}
	return n
}

// Validate checks h against an array shape.
func (h Hyperslab) Validate(shape []int) error {
	if len(h.Start) != len(shape) || len(h.Count) != len(shape) || len(h.Stride) != len(shape) {
		return fmt.Errorf("%w: rank %d/%d/%d for array of rank %d",
			ErrBadHyperslab, len(h.Start), len(h.Count), len(h.Stride), len(shape))
	}
	for i := range shape {
		if h.Start[i] < 0 || h.Count[i] < 1 || h.Stride[i] < 1 {
			return fmt.Errorf("%w: dimension %d: start=%d count=%d stride=%d",
				ErrBadHyperslab, i, h.Start[i], h.Count[i], h.Stride[i])
		}
		if last := h.Start[i] + (h.Count[i]-1)*h.Stride[i]; last >= shape[i] {
			return fmt.Errorf("%w: dimension %d: last index %d beyond length %d",
				ErrBadHyperslab, i, last, shape[i])
		}
	}
	return nil
}

// Gather returns the elements h selects from values, a row-major array of
// the given shape.
func Gather(values []float64, shape []int, h Hyperslab) ([]float64, error) {
	if err := h.Validate(shape); err != nil {
		return nil, err
	}
	pitch := make([]int, len(shape))
	n := 1
	for i := len(shape) - 1; i >= 0; i-- {
		pitch[i] = n
		n *= shape[i]
	}
	if len(values) != n {
		return nil, fmt.Errorf("%w: %d values for shape %v", ErrBadHyperslab, len(values), shape)
	}
	out := make([]float64, 0, h.Size())
	var walk func(dim, off int)
	walk = func(dim, off int) {
		if dim == len(shape) {
			out = append(out, values[off])
			return
		}
		for k := 0; k < h.Count[dim]; k++ {
			walk(dim+1, off+(h.Start[dim]+k*h.Stride[dim])*pitch[dim])
		}
	}
	walk(0, 0)
	return out, nil
}

func (h Hyperslab) clone() Hyperslab {
	return Hyperslab{
		Start:  append([]int(nil), h.Start...),
		Count:  append([]int(nil), h.Count...),
		Stride: append([]int(nil), h.Stride...),
	}
}
