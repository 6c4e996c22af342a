package calib

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// Step kinds
const (
	KindFill       = "fill"
	KindUnsigned   = "unsigned"
	KindScale      = "scale"
	KindValidRange = "valid_range"
	KindLUT        = "lut"
	KindLog10      = "log10"
)

// ErrUnknownKind is returned for a Spec whose kind is not registered.
var ErrUnknownKind = errors.New("unknown calibration step")

// Step is one stage of a calibration pipeline. Apply may modify v in place
// and returns the resulting slice.
type Step interface {
	Kind() string
	Apply(v []float64) ([]float64, error)
}

// Spec describes a step. Values holds the step's numeric parameters:
// fill values for fill, bit width for unsigned, scale then offset for scale,
// min then max for valid_range. Table holds a lut's entries.
type Spec struct {
	Kind   string    `yaml:"kind"`
	Values []float64 `yaml:"values,omitempty"`
	Table  []float64 `yaml:"-"`
}

// Registry maps step kinds to constructors.
var Registry = map[string]func(Spec) (Step, error){
	KindFill:       newFill,
	KindUnsigned:   newUnsigned,
	KindScale:      newScale,
	KindValidRange: newValidRange,
	KindLUT:        newLUT,
	KindLog10:      func(Spec) (Step, error) { return log10Step{}, nil },
}

// New builds the step described by s.
func New(s Spec) (Step, error) {
	ctor, ok := Registry[s.Kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, s.Kind)
	}
	return ctor(s)
}

func need(s Spec, n int) error {
	if len(s.Values) != n {
		return fmt.Errorf("%s: expected %d values, got %d", s.Kind, n, len(s.Values))
	}
	return nil
}

// Fill masks fill values.
type Fill struct {
	values []float64
}

func newFill(s Spec) (Step, error) {
	if len(s.Values) == 0 {
		return nil, fmt.Errorf("fill: no fill values")
	}
	return Fill{values: append([]float64(nil), s.Values...)}, nil
}

func (Fill) Kind() string { return KindFill }

func (f Fill) Apply(v []float64) ([]float64, error) {
	for i, x := range v {
		for _, fv := range f.values {
			if x == fv {
				v[i] = math.NaN()
				break
			}
		}
	}
	return v, nil
}

// Unsigned reinterprets negative values as unsigned integers of bits width.
type Unsigned struct {
	shift float64
}

func newUnsigned(s Spec) (Step, error) {
	if err := need(s, 1); err != nil {
		return nil, err
	}
	bits := s.Values[0]
	if bits != 8 && bits != 16 && bits != 32 {
		return nil, fmt.Errorf("unsigned: unsupported width %v", bits)
	}
	return Unsigned{shift: math.Exp2(bits)}, nil
}

func (Unsigned) Kind() string { return KindUnsigned }

func (u Unsigned) Apply(v []float64) ([]float64, error) {
	for i, x := range v {
		if x < 0 {
			v[i] = x + u.shift
		}
	}
	return v, nil
}

// Scale applies v*scale + offset.
type Scale struct {
	scale, offset float64
}

func newScale(s Spec) (Step, error) {
	if err := need(s, 2); err != nil {
		return nil, err
	}
	return Scale{scale: s.Values[0], offset: s.Values[1]}, nil
}

func (Scale) Kind() string { return KindScale }

func (s Scale) Apply(v []float64) ([]float64, error) {
	floats.Scale(s.scale, v)
	floats.AddConst(s.offset, v)
	return v, nil
}

// ValidRange masks values outside [min, max].
type ValidRange struct {
	min, max float64
}

func newValidRange(s Spec) (Step, error) {
	if err := need(s, 2); err != nil {
		return nil, err
	}
	if s.Values[0] > s.Values[1] {
		return nil, fmt.Errorf("valid_range: min %v > max %v", s.Values[0], s.Values[1])
	}
	return ValidRange{min: s.Values[0], max: s.Values[1]}, nil
}

func (ValidRange) Kind() string { return KindValidRange }

func (r ValidRange) Apply(v []float64) ([]float64, error) {
	for i, x := range v {
		if x < r.min || x > r.max {
			v[i] = math.NaN()
		}
	}
	return v, nil
}

// LUT maps integer indices through a table.
type LUT struct {
	table []float64
}

func newLUT(s Spec) (Step, error) {
	if len(s.Table) == 0 {
		return nil, fmt.Errorf("lut: empty table")
	}
	return LUT{table: s.Table}, nil
}

func (LUT) Kind() string { return KindLUT }

func (l LUT) Apply(v []float64) ([]float64, error) {
	for i, x := range v {
		if math.IsNaN(x) || x < 0 || x >= float64(len(l.table)) {
			v[i] = math.NaN()
			continue
		}
		v[i] = l.table[int(x)]
	}
	return v, nil
}

type log10Step struct{}

func (log10Step) Kind() string { return KindLog10 }

func (log10Step) Apply(v []float64) ([]float64, error) {
	for i, x := range v {
		if x > 0 {
			v[i] = math.Log10(x)
		} else {
			v[i] = math.NaN()
		}
	}
	return v, nil
}
