package products

import (
	"fmt"
	"path/filepath"
	"sync"

	"github.com/robert-malhotra/go-swath/internal/granule"
)

type fakeArray struct {
	dims   []string
	shape  []int
	values []float64
	attrs  map[string]any
}

// fakeFile is an in-memory granule.Reader.
type fakeFile struct {
	arrays map[string]*fakeArray
	mu     sync.Mutex
	reads  map[string]int
	closed bool
}

func newFakeFile() *fakeFile {
	return &fakeFile{arrays: map[string]*fakeArray{}, reads: map[string]int{}}
}

// grid adds a 2-D array with value fn(i, j).
func (f *fakeFile) grid(name string, dims []string, rows, cols int, fn func(i, j int) float64) *fakeArray {
	a := &fakeArray{dims: dims, shape: []int{rows, cols}, attrs: map[string]any{}}
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			a.values = append(a.values, fn(i, j))
		}
	}
	f.arrays[name] = a
	return a
}

func (f *fakeFile) vector(name, dim string, values []float64) *fakeArray {
	a := &fakeArray{dims: []string{dim}, shape: []int{len(values)}, values: values, attrs: map[string]any{}}
	f.arrays[name] = a
	return a
}

func (f *fakeFile) HasArray(name string) bool {
	_, ok := f.arrays[name]
	return ok
}

func (f *fakeFile) Dims(name string) ([]string, []int, error) {
	a, ok := f.arrays[name]
	if !ok {
		return nil, nil, fmt.Errorf("%s: %w", name, granule.ErrNoArray)
	}
	return a.dims, a.shape, nil
}

func (f *fakeFile) Read(name string, h granule.Hyperslab) ([]float64, error) {
	a, ok := f.arrays[name]
	if !ok {
		return nil, fmt.Errorf("%s: %w", name, granule.ErrNoArray)
	}
	if err := h.Validate(a.shape); err != nil {
		return nil, err
	}
	f.mu.Lock()
	f.reads[name]++
	f.mu.Unlock()
	return granule.Gather(a.values, a.shape, h)
}

func (f *fakeFile) Attr(name, attr string) (any, bool) {
	a, ok := f.arrays[name]
	if !ok {
		return nil, false
	}
	v, ok := a.attrs[attr]
	return v, ok
}

func (f *fakeFile) Variables() ([]string, error) {
	var out []string
	for k := range f.arrays {
		out = append(out, k)
	}
	return out, nil
}

func (f *fakeFile) Close() error {
	f.mu.Lock()
	f.closed = true
	f.mu.Unlock()
	return nil
}

func (f *fakeFile) readCount(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.reads[name]
}

// opener serves fake files by base name.
type opener map[string]*fakeFile

func (o opener) open(path string) (granule.Reader, error) {
	f, ok := o[filepath.Base(path)]
	if !ok {
		return nil, fmt.Errorf("no fake for %s", path)
	}
	return f, nil
}
