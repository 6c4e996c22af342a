package ncread

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/batchatco/go-native-netcdf/netcdf"
	"github.com/batchatco/go-native-netcdf/netcdf/api"

	"github.com/robert-malhotra/go-swath/internal/granule"
)

// Errors
var (
	ErrNotFound = errors.New("not found")
	ErrClosed   = errors.New("file closed")
)

// File is a granule.Reader over one NetCDF file.
type File struct {
	path string
	root api.Group

	mu     sync.Mutex
	closed bool
	groups map[string]api.Group
	shapes map[string][]int
}

var _ granule.Reader = (*File)(nil)

// Open opens a NetCDF-3 or NetCDF-4 file.
func Open(path string) (*File, error) {
	root, err := netcdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("ncread: open %s: %w", path, err)
	}
	return New(path, root), nil
}

// New wraps an already-open root group. path is used only in messages.
func New(path string, root api.Group) *File {
	return &File{
		path:   path,
		root:   root,
		groups: map[string]api.Group{"/": root},
		shapes: make(map[string][]int),
	}
}

// Path returns the file name.
func (f *File) Path() string { return f.path }

// Root returns the root group.
func (f *File) Root() api.Group { return f.root }

// group resolves a chain of group names below the root. Caller holds f.mu.
func (f *File) group(parts []string) (api.Group, error) {
	key := CleanPath(strings.Join(parts, "/"))
	if g, ok := f.groups[key]; ok {
		return g, nil
	}
	parent, err := f.group(parts[:len(parts)-1])
	if err != nil {
		return nil, err
	}
	g, err := parent.GetGroup(parts[len(parts)-1])
	if err != nil {
		return nil, fmt.Errorf("group %s: %w", key, ErrNotFound)
	}
	f.groups[key] = g
	return g, nil
}

func (f *File) varGetter(name string) (api.VarGetter, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return nil, ErrClosed
	}
	groups, v := splitVar(name)
	if v == "" {
		return nil, fmt.Errorf("empty array name")
	}
	g, err := f.group(groups)
	if err != nil {
		return nil, err
	}
	vg, err := g.GetVarGetter(v)
	if err != nil {
		return nil, fmt.Errorf("array %s: %w", CleanPath(name), ErrNotFound)
	}
	return vg, nil
}

// HasArray reports whether name resolves to a variable.
func (f *File) HasArray(name string) bool {
	_, err := f.varGetter(name)
	return err == nil
}

// Dims returns the dimension names and lengths of name.
func (f *File) Dims(name string) ([]string, []int, error) {
	vg, err := f.varGetter(name)
	if err != nil {
		return nil, nil, err
	}
	dims := vg.Dimensions()
	shape, err := f.shape(name, vg, len(dims))
	if err != nil {
		return nil, nil, err
	}
	return dims, shape, nil
}

// shape discovers inner lengths by slicing the first outer element.
func (f *File) shape(name string, vg api.VarGetter, rank int) ([]int, error) {
	key := CleanPath(name)
	f.mu.Lock()
	s, ok := f.shapes[key]
	f.mu.Unlock()
	if ok {
		return append([]int(nil), s...), nil
	}

	shape := make([]int, rank)
	if rank > 0 {
		shape[0] = int(vg.Len())
	}
	if rank > 1 && shape[0] > 0 {
		first, err := vg.GetSlice(0, 1)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", key, err)
		}
		inner := shapeOf(reflect.ValueOf(first))
		if len(inner) != rank {
			return nil, fmt.Errorf("%s: %d dimensions declared, %d in data", key, rank, len(inner))
		}
		copy(shape[1:], inner[1:])
	}

	f.mu.Lock()
	f.shapes[key] = shape
	f.mu.Unlock()
	return append([]int(nil), shape...), nil
}

// Read returns the selected values of name as float64. Scalars ignore h.
func (f *File) Read(name string, h granule.Hyperslab) ([]float64, error) {
	vg, err := f.varGetter(name)
	if err != nil {
		return nil, err
	}
	rank := len(vg.Dimensions())
	if rank == 0 {
		v, err := vg.Values()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", CleanPath(name), err)
		}
		return flatten(reflect.ValueOf(v), nil)
	}

	shape, err := f.shape(name, vg, rank)
	if err != nil {
		return nil, err
	}
	if err := h.Validate(shape); err != nil {
		return nil, fmt.Errorf("%s: %w", CleanPath(name), err)
	}

	begin := int64(h.Start[0])
	end := begin + int64((h.Count[0]-1)*h.Stride[0]) + 1
	raw, err := vg.GetSlice(begin, end)
	if err != nil {
		return nil, fmt.Errorf("%s: slice [%d,%d): %w", CleanPath(name), begin, end, err)
	}
	out, err := sample(reflect.ValueOf(raw), h.Start, h.Count, h.Stride, 0, make([]float64, 0, h.Size()))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", CleanPath(name), err)
	}
	return out, nil
}

// Attr returns attribute attr of variable name. An empty name or "/" reads a
// global attribute.
func (f *File) Attr(name, attr string) (any, bool) {
	if CleanPath(name) == "/" {
		f.mu.Lock()
		defer f.mu.Unlock()
		if f.closed {
			return nil, false
		}
		return f.root.Attributes().Get(attr)
	}
	vg, err := f.varGetter(name)
	if err != nil {
		return nil, false
	}
	return vg.Attributes().Get(attr)
}

// AttrNames lists the attributes of variable name, or the global
// attributes for "/".
func (f *File) AttrNames(name string) ([]string, error) {
	if CleanPath(name) == "/" {
		f.mu.Lock()
		defer f.mu.Unlock()
		if f.closed {
			return nil, ErrClosed
		}
		return f.root.Attributes().Keys(), nil
	}
	vg, err := f.varGetter(name)
	if err != nil {
		return nil, err
	}
	return vg.Attributes().Keys(), nil
}

// AttrPath reads an attribute given as "object@attr".
func (f *File) AttrPath(path string) (any, bool) {
	obj, attr, err := ParseAttrPath(path)
	if err != nil {
		return nil, false
	}
	return f.Attr(obj, attr)
}

// Close releases the file. Later calls are no-ops.
func (f *File) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return nil
	}
	f.closed = true
	f.root.Close()
	f.groups = nil
	return nil
}
