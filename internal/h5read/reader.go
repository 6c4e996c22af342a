package h5read

import (
	"errors"
	"fmt"
	"sync"

	"github.com/robert-malhotra/go-swath/internal/granule"
	"github.com/robert-malhotra/go-swath/internal/hdf5"
)

// ErrClosed is returned by reads after Close.
var ErrClosed = errors.New("file closed")

// Option configures a Reader.
type Option func(*Reader)

// WithDimNames names the dimensions of every dataset whose rank equals
// len(names).
func WithDimNames(names ...string) Option {
	return func(r *Reader) {
		r.dimNames = append([]string(nil), names...)
	}
}

// Reader is a granule.Reader over one HDF5 file. Access to the file is
// serialized.
type Reader struct {
	path     string
	dimNames []string

	mu       sync.Mutex
	file     *hdf5.File
	closed   bool
	datasets map[string]*hdf5.Dataset
}

var _ granule.Reader = (*Reader)(nil)

// Open opens an HDF5 file for reading.
func Open(path string, opts ...Option) (*Reader, error) {
	f, err := hdf5.Open(path)
	if err != nil {
		return nil, fmt.Errorf("h5read: open %s: %w", path, err)
	}
	r := &Reader{path: path, file: f, datasets: make(map[string]*hdf5.Dataset)}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Opener returns an open function for granule.Open.
func Opener(opts ...Option) granule.OpenFunc {
	return func(path string) (granule.Reader, error) {
		return Open(path, opts...)
	}
}

// Path returns the file name.
func (r *Reader) Path() string { return r.path }

// dataset resolves name. Caller holds r.mu.
func (r *Reader) dataset(name string) (*hdf5.Dataset, error) {
	if r.closed {
		return nil, ErrClosed
	}
	key := hdf5.CleanPath(name)
	if ds, ok := r.datasets[key]; ok {
		return ds, nil
	}
	ds, err := r.file.OpenDataset(key)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", key, granule.ErrNoArray)
	}
	r.datasets[key] = ds
	return ds, nil
}

// HasArray reports whether name resolves to a dataset.
func (r *Reader) HasArray(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, err := r.dataset(name)
	return err == nil
}

// Dims returns the dimension names and lengths of name.
func (r *Reader) Dims(name string) ([]string, []int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ds, err := r.dataset(name)
	if err != nil {
		return nil, nil, err
	}
	shape := make([]int, 0, ds.Rank())
	for _, n := range ds.Shape() {
		shape = append(shape, int(n))
	}
	return r.names(len(shape)), shape, nil
}

func (r *Reader) names(rank int) []string {
	if rank == len(r.dimNames) {
		return append([]string(nil), r.dimNames...)
	}
	out := make([]string, rank)
	for i := range out {
		out[i] = fmt.Sprintf("phony_dim_%d", i)
	}
	return out
}

// Read returns the selected values of name as float64. Scalars ignore h.
func (r *Reader) Read(name string, h granule.Hyperslab) ([]float64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ds, err := r.dataset(name)
	if err != nil {
		return nil, err
	}
	if ds.IsScalar() {
		vals, err := ds.ReadFloat64()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", ds.Path(), err)
		}
		return vals, nil
	}

	dims := ds.Shape()
	shape := make([]int, len(dims))
	for i, n := range dims {
		shape[i] = int(n)
	}
	if err := h.Validate(shape); err != nil {
		return nil, fmt.Errorf("%s: %w", ds.Path(), err)
	}

	// Bounding box of the selection, then decimation in memory.
	start := make([]uint64, len(shape))
	count := make([]uint64, len(shape))
	box := make([]int, len(shape))
	for i := range shape {
		box[i] = (h.Count[i]-1)*h.Stride[i] + 1
		start[i], count[i] = uint64(h.Start[i]), uint64(box[i])
	}
	raw, err := ds.ReadSliceFloat64(start, count)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ds.Path(), err)
	}
	sub := granule.Hyperslab{
		Start:  make([]int, len(shape)),
		Count:  h.Count,
		Stride: h.Stride,
	}
	return granule.Gather(raw, box, sub)
}

// Attr returns attribute attr of dataset or group name. An empty name or "/"
// reads a root attribute.
func (r *Reader) Attr(name, attr string) (any, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil, false
	}
	v, err := r.file.ReadAttr(hdf5.JoinAttrPath(hdf5.CleanPath(name), attr))
	if err != nil {
		return nil, false
	}
	return v, true
}

// Variables lists the path of every dataset in the file.
func (r *Reader) Variables() ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil, ErrClosed
	}
	var out []string
	err := hdf5.Walk(r.file.Root(), func(path string, obj interface{}, err error) error {
		if err != nil {
			return nil
		}
		if _, ok := obj.(*hdf5.Dataset); ok {
			out = append(out, path)
		}
		return nil
	})
	return out, err
}

// Close releases the file. It is safe to call more than once.
func (r *Reader) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil
	}
	r.closed = true
	r.datasets = nil
	return r.file.Close()
}
