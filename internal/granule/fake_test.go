package granule

import (
	"fmt"
	"sync/atomic"
)

// fakeArray is a row-major in-memory array.
type fakeArray struct {
	dims   []string
	shape  []int
	values []float64
}

type fakeReader struct {
	arrays map[string]fakeArray
	attrs  map[string]any
	reads  atomic.Int32
	closed atomic.Bool
	err    error
}

func newFake() *fakeReader {
	return &fakeReader{arrays: map[string]fakeArray{}, attrs: map[string]any{}}
}

// ramp adds a 2-D array whose value at (i, j) is base + i*100 + j.
func (f *fakeReader) ramp(name string, dims []string, rows, cols int, base float64) *fakeReader {
	vals := make([]float64, rows*cols)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			vals[i*cols+j] = base + float64(i*100+j)
		}
	}
	f.arrays[name] = fakeArray{dims: dims, shape: []int{rows, cols}, values: vals}
	return f
}

func (f *fakeReader) HasArray(name string) bool {
	_, ok := f.arrays[name]
	return ok
}

func (f *fakeReader) Dims(name string) ([]string, []int, error) {
	a, ok := f.arrays[name]
	if !ok {
		return nil, nil, fmt.Errorf("%s: %w", name, ErrNoArray)
	}
	return a.dims, a.shape, nil
}

func (f *fakeReader) Read(name string, h Hyperslab) ([]float64, error) {
	f.reads.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	a, ok := f.arrays[name]
	if !ok {
		return nil, fmt.Errorf("%s: %w", name, ErrNoArray)
	}
	if err := h.Validate(a.shape); err != nil {
		return nil, err
	}
	out := make([]float64, 0, h.Size())
	for i := 0; i < h.Count[0]; i++ {
		r := h.Start[0] + i*h.Stride[0]
		for j := 0; j < h.Count[1]; j++ {
			c := h.Start[1] + j*h.Stride[1]
			out = append(out, a.values[r*a.shape[1]+c])
		}
	}
	return out, nil
}

func (f *fakeReader) Attr(name, attr string) (any, bool) {
	v, ok := f.attrs[name+"@"+attr]
	return v, ok
}

func (f *fakeReader) Close() error {
	f.closed.Store(true)
	return nil
}

type addProcessor float64

func (p addProcessor) Process(v []float64) ([]float64, error) {
	out := make([]float64, len(v))
	for i := range v {
		out[i] = v[i] + float64(p)
	}
	return out, nil
}
