package calib

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// Pipeline runs steps in order.
type Pipeline struct {
	steps []Step
}

// NewPipeline builds a pipeline from specs. An empty list gives an empty
// pipeline that returns its input unchanged.
func NewPipeline(specs []Spec) (*Pipeline, error) {
	p := &Pipeline{steps: make([]Step, 0, len(specs))}
	for i, s := range specs {
		step, err := New(s)
		if err != nil {
			return nil, fmt.Errorf("calibration step %d: %w", i, err)
		}
		p.steps = append(p.steps, step)
	}
	return p, nil
}

// Process applies every step to a copy of v.
func (p *Pipeline) Process(v []float64) ([]float64, error) {
	out := make([]float64, len(v))
	copy(out, v)
	for _, s := range p.steps {
		var err error
		if out, err = s.Apply(out); err != nil {
			return nil, fmt.Errorf("%s: %w", s.Kind(), err)
		}
	}
	return out, nil
}

// Empty returns true if the pipeline has no steps.
func (p *Pipeline) Empty() bool {
	return len(p.steps) == 0
}

// Len returns the number of steps.
func (p *Pipeline) Len() int {
	return len(p.steps)
}

// Kinds lists the step kinds in order.
func (p *Pipeline) Kinds() []string {
	out := make([]string, len(p.steps))
	for i, s := range p.steps {
		out[i] = s.Kind()
	}
	return out
}

// MaxSolarZenith is the solar zenith angle, in degrees, at and beyond which
// reflectances are left unnormalized.
const MaxSolarZenith = 80.0

// CorrectReflectance divides reflectances by the cosine of the solar zenith
// angle in place. zenith holds degrees and must match values in length.
func CorrectReflectance(values, zenith []float64) error {
	if len(values) != len(zenith) {
		return fmt.Errorf("reflectance: %d values, %d zenith angles", len(values), len(zenith))
	}
	cos := make([]float64, len(zenith))
	for i, z := range zenith {
		if math.IsNaN(z) || z >= MaxSolarZenith {
			cos[i] = 1
			continue
		}
		cos[i] = math.Cos(z * math.Pi / 180)
	}
	floats.Div(values, cos)
	return nil
}
