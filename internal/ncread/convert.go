package ncread

import (
	"fmt"
	"reflect"
)

// flatten appends the numeric leaves of v, a (possibly nested) slice, to out
// in row-major order.
func flatten(v reflect.Value, out []float64) ([]float64, error) {
	if v.Kind() == reflect.Slice || v.Kind() == reflect.Array {
		for i := 0; i < v.Len(); i++ {
			var err error
			if out, err = flatten(v.Index(i), out); err != nil {
				return nil, err
			}
		}
		return out, nil
	}
	f, err := scalar(v)
	if err != nil {
		return nil, err
	}
	return append(out, f), nil
}

// sample appends the hyperslab-selected leaves of v to out. v's outermost
// dimension has already been sliced, so dimension 0 is sampled from index 0.
func sample(v reflect.Value, start, count, stride []int, dim int, out []float64) ([]float64, error) {
	if dim == len(count) {
		f, err := scalar(v)
		if err != nil {
			return nil, err
		}
		return append(out, f), nil
	}
	if v.Kind() != reflect.Slice && v.Kind() != reflect.Array {
		return nil, fmt.Errorf("expected slice at dimension %d, got %s", dim, v.Kind())
	}
	first := start[dim]
	if dim == 0 {
		first = 0
	}
	for i := 0; i < count[dim]; i++ {
		idx := first + i*stride[dim]
		if idx >= v.Len() {
			return nil, fmt.Errorf("index %d beyond length %d at dimension %d", idx, v.Len(), dim)
		}
		var err error
		if out, err = sample(v.Index(idx), start, count, stride, dim+1, out); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func scalar(v reflect.Value) (float64, error) {
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(v.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(v.Uint()), nil
	case reflect.Float32, reflect.Float64:
		return v.Float(), nil
	case reflect.Interface:
		return scalar(v.Elem())
	default:
		return 0, fmt.Errorf("non-numeric element type %s", v.Type())
	}
}

// shapeOf returns the lengths of the nested slices in v, following index 0.
func shapeOf(v reflect.Value) []int {
	var shape []int
	for v.Kind() == reflect.Slice || v.Kind() == reflect.Array {
		shape = append(shape, v.Len())
		if v.Len() == 0 {
			break
		}
		v = v.Index(0)
	}
	return shape
}

// Float64 coerces a numeric attribute value to float64. Single-element
// slices are unwrapped.
func Float64(v any) (float64, bool) {
	fs, ok := Float64s(v)
	if !ok || len(fs) != 1 {
		return 0, false
	}
	return fs[0], true
}

// Float64s coerces a numeric scalar or slice attribute value.
func Float64s(v any) ([]float64, bool) {
	if v == nil {
		return nil, false
	}
	out, err := flatten(reflect.ValueOf(v), nil)
	if err != nil {
		return nil, false
	}
	return out, true
}

// String returns a string attribute value.
func String(v any) (string, bool) {
	switch s := v.(type) {
	case string:
		return s, true
	case []string:
		if len(s) == 1 {
			return s[0], true
		}
	case []byte:
		return string(s), true
	}
	return "", false
}
