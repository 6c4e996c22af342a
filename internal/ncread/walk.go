package ncread

import (
	"errors"
	"path"
	"sort"

	"github.com/batchatco/go-native-netcdf/netcdf/api"
)

// ErrStopWalk can be returned from a WalkFunc to end the walk without error.
var ErrStopWalk = errors.New("walk stopped")

// WalkFunc is called for every variable. path is group-qualified with a
// leading "/". err reports a subgroup that could not be opened, in which case
// dims is nil. Returning an error stops the walk.
type WalkFunc func(path string, dims []string, err error) error

// Walk visits the variables of g and its subgroups depth first, variables
// before subgroups, each level in name order.
func Walk(g api.Group, fn WalkFunc) error {
	err := walkGroup(g, "/", fn)
	if errors.Is(err, ErrStopWalk) {
		return nil
	}
	return err
}

func walkGroup(g api.Group, at string, fn WalkFunc) error {
	vars := append([]string(nil), g.ListVariables()...)
	sort.Strings(vars)
	for _, name := range vars {
		var dims []string
		if vg, err := g.GetVarGetter(name); err == nil {
			dims = vg.Dimensions()
		}
		if err := fn(path.Join(at, name), dims, nil); err != nil {
			return err
		}
	}

	subs := append([]string(nil), g.ListSubgroups()...)
	sort.Strings(subs)
	for _, name := range subs {
		child, err := g.GetGroup(name)
		if err != nil {
			if err := fn(path.Join(at, name), nil, err); err != nil {
				return err
			}
			continue
		}
		if err := walkGroup(child, path.Join(at, name), fn); err != nil {
			return err
		}
	}
	return nil
}

// Variables lists every variable path in the file.
func (f *File) Variables() ([]string, error) {
	f.mu.Lock()
	closed := f.closed
	f.mu.Unlock()
	if closed {
		return nil, ErrClosed
	}
	var out []string
	err := Walk(f.root, func(p string, _ []string, err error) error {
		if err == nil {
			out = append(out, p)
		}
		return nil
	})
	return out, err
}
