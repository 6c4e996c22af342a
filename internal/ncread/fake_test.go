package ncread

import (
	"fmt"
	"reflect"

	"github.com/batchatco/go-native-netcdf/netcdf/api"
)

type fakeAttrs map[string]any

func (a fakeAttrs) Keys() []string {
	var keys []string
	for k := range a {
		keys = append(keys, k)
	}
	return keys
}

func (a fakeAttrs) Get(key string) (any, bool) {
	v, ok := a[key]
	return v, ok
}

func (a fakeAttrs) GetType(key string) (string, bool) { return "", false }

func (a fakeAttrs) GetGoType(key string) (string, bool) { return "", false }

type fakeVar struct {
	values any
	dims   []string
	attrs  fakeAttrs
	slices [][2]int64
}

func (v *fakeVar) Len() int64 {
	rv := reflect.ValueOf(v.values)
	if rv.Kind() != reflect.Slice {
		return 1
	}
	return int64(rv.Len())
}

func (v *fakeVar) Values() (any, error) { return v.values, nil }

func (v *fakeVar) GetSlice(begin, end int64) (any, error) {
	rv := reflect.ValueOf(v.values)
	if begin < 0 || end > int64(rv.Len()) || begin > end {
		return nil, fmt.Errorf("bad slice [%d,%d)", begin, end)
	}
	v.slices = append(v.slices, [2]int64{begin, end})
	return rv.Slice(int(begin), int(end)).Interface(), nil
}

func (v *fakeVar) Dimensions() []string { return v.dims }

func (v *fakeVar) Attributes() api.AttributeMap { return v.attrs }

func (v *fakeVar) Type() string { return "" }

func (v *fakeVar) GoType() string { return "" }

type fakeGroup struct {
	attrs  fakeAttrs
	vars   map[string]*fakeVar
	groups map[string]*fakeGroup
	closed bool
}

func newGroup() *fakeGroup {
	return &fakeGroup{attrs: fakeAttrs{}, vars: map[string]*fakeVar{}, groups: map[string]*fakeGroup{}}
}

func (g *fakeGroup) Close() { g.closed = true }

func (g *fakeGroup) Attributes() api.AttributeMap { return g.attrs }

func (g *fakeGroup) ListVariables() []string {
	var out []string
	for k := range g.vars {
		out = append(out, k)
	}
	return out
}

func (g *fakeGroup) GetVariable(name string) (*api.Variable, error) {
	v, ok := g.vars[name]
	if !ok {
		return nil, fmt.Errorf("no variable %s", name)
	}
	return &api.Variable{Values: v.values, Dimensions: v.dims, Attributes: v.attrs}, nil
}

func (g *fakeGroup) GetVarGetter(name string) (api.VarGetter, error) {
	v, ok := g.vars[name]
	if !ok {
		return nil, fmt.Errorf("no variable %s", name)
	}
	return v, nil
}

func (g *fakeGroup) ListSubgroups() []string {
	var out []string
	for k := range g.groups {
		out = append(out, k)
	}
	return out
}

func (g *fakeGroup) GetGroup(name string) (api.Group, error) {
	c, ok := g.groups[name]
	if !ok {
		return nil, fmt.Errorf("no group %s", name)
	}
	return c, nil
}

func (g *fakeGroup) ListTypes() []string { return nil }

func (g *fakeGroup) GetType(string) (string, bool) { return "", false }

func (g *fakeGroup) GetGoType(string) (string, bool) { return "", false }
