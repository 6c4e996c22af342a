package products

import (
	"fmt"

	"github.com/robert-malhotra/go-swath/swath"
)

// Handlers builds one handler per descriptor, in order, sharing one set of
// options.
func Handlers(ds []Descriptor, opts ...Option) ([]*Handler, error) {
	if err := uniqueNames(ds); err != nil {
		return nil, err
	}
	o := buildOptions(opts)
	shared := func(dst *options) { *dst = *o }
	out := make([]*Handler, 0, len(ds))
	for _, d := range ds {
		h, err := NewHandler(d, shared)
		if err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, nil
}

// Candidates returns the registry entries for ds in order.
func Candidates(ds []Descriptor, opts ...Option) ([]swath.Candidate, error) {
	hs, err := Handlers(ds, opts...)
	if err != nil {
		return nil, err
	}
	out := make([]swath.Candidate, len(hs))
	for i, h := range hs {
		out[i] = h.Candidate()
	}
	return out, nil
}

// NewRegistry returns a resolver over the built-in descriptor table, or the
// table given with WithDescriptors.
func NewRegistry(opts ...Option) (*swath.Registry, error) {
	o := buildOptions(opts)
	ds := o.descriptors
	if ds == nil {
		var err error
		if ds, err = Builtin(); err != nil {
			return nil, fmt.Errorf("built-in descriptors: %w", err)
		}
	}
	cands, err := Candidates(ds, func(dst *options) { *dst = *o })
	if err != nil {
		return nil, err
	}
	return swath.NewRegistry(cands, o.swathOptions()...), nil
}
