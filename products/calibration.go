package products

import (
	"fmt"

	"github.com/robert-malhotra/go-swath/internal/calib"
	"github.com/robert-malhotra/go-swath/internal/granule"
	"github.com/robert-malhotra/go-swath/internal/ncread"
)

// pipelines builds one calibration pipeline per granule for array. Each
// granule's own attributes and tables are used, since scale factors and
// lookup tables may change between granules.
func pipelines(agg *granule.Aggregation, array string, specs []StepSpec) ([]granule.Processor, error) {
	if len(specs) == 0 {
		return nil, nil
	}
	granules := agg.Granules()
	files := agg.Files()
	procs := make([]granule.Processor, len(granules))
	for i, g := range granules {
		resolved, err := resolveSteps(g, array, specs)
		if err != nil {
			return nil, fmt.Errorf("%s: %s: %w", files[i], array, err)
		}
		p, err := calib.NewPipeline(resolved)
		if err != nil {
			return nil, fmt.Errorf("%s: %s: %w", files[i], array, err)
		}
		procs[i] = p
	}
	return procs, nil
}

func resolveSteps(r granule.Reader, array string, specs []StepSpec) ([]calib.Spec, error) {
	out := make([]calib.Spec, 0, len(specs))
	for _, s := range specs {
		cs := calib.Spec{Kind: s.Kind}

		switch {
		case s.Array != "":
			vals, err := companionValues(r, expandArray(s.Array, array), s.Values)
			if err != nil {
				return nil, err
			}
			cs.Values = vals
		case len(s.Attrs) == 0:
			cs.Values = append([]float64(nil), s.Values...)
		}
		for i, name := range s.Attrs {
			if v, ok := r.Attr(array, name); ok {
				fs, ok := ncread.Float64s(v)
				if !ok {
					return nil, fmt.Errorf("attribute %s is not numeric", name)
				}
				cs.Values = append(cs.Values, fs...)
				continue
			}
			if i >= len(s.Values) {
				return nil, fmt.Errorf("attribute %s missing and no default", name)
			}
			cs.Values = append(cs.Values, s.Values[i])
		}

		if s.LUT != "" {
			table := lutArray(s, array)
			_, shape, err := r.Dims(table)
			if err != nil {
				return nil, fmt.Errorf("lookup table %s: %w", table, err)
			}
			if cs.Table, err = r.Read(table, granule.Full(shape)); err != nil {
				return nil, fmt.Errorf("lookup table %s: %w", table, err)
			}
		}
		out = append(out, cs)
	}
	return out, nil
}

// companionValues reads the leading len(defaults) elements of a parameter
// array such as an IDPS "ReflectanceFactors". A missing array yields the
// defaults.
func companionValues(r granule.Reader, name string, defaults []float64) ([]float64, error) {
	if !r.HasArray(name) {
		return append([]float64(nil), defaults...), nil
	}
	_, shape, err := r.Dims(name)
	if err != nil {
		return nil, fmt.Errorf("parameter array %s: %w", name, err)
	}
	vals, err := r.Read(name, granule.Full(shape))
	if err != nil {
		return nil, fmt.Errorf("parameter array %s: %w", name, err)
	}
	if len(vals) < len(defaults) {
		return nil, fmt.Errorf("parameter array %s holds %d values, need %d", name, len(vals), len(defaults))
	}
	return vals[:len(defaults):len(defaults)], nil
}
