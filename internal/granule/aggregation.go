package granule

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"
)

// OpenFunc opens one granule file.
type OpenFunc func(path string) (Reader, error)

// Aggregation presents consecutive granules as one Reader, concatenated along
// the track dimension.
type Aggregation struct {
	files    []string
	granules []Reader
	trackDim string

	mu         sync.RWMutex
	processors map[string][]Processor
}

var _ Reader = (*Aggregation)(nil)

// New aggregates already-open readers. files names them for error messages
// and must be the same length as readers.
func New(files []string, readers []Reader, trackDim string) (*Aggregation, error) {
	if len(readers) == 0 {
		return nil, ErrNoGranules
	}
	if len(files) != len(readers) {
		return nil, fmt.Errorf("granule: %d names for %d readers", len(files), len(readers))
	}
	return &Aggregation{
		files:      append([]string(nil), files...),
		granules:   append([]Reader(nil), readers...),
		trackDim:   trackDim,
		processors: make(map[string][]Processor),
	}, nil
}

// Open opens every file concurrently and aggregates them in the given order.
// If any open fails, the readers already opened are closed and the first
// error is returned.
func Open(ctx context.Context, files []string, trackDim string, open OpenFunc) (*Aggregation, error) {
	if len(files) == 0 {
		return nil, ErrNoGranules
	}

	readers := make([]Reader, len(files))
	g, ctx := errgroup.WithContext(ctx)
	for i, f := range files {
		i, f := i, f
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			r, err := open(f)
			if err != nil {
				return fmt.Errorf("open granule %s: %w", f, err)
			}
			readers[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		for _, r := range readers {
			if r != nil {
				r.Close()
			}
		}
		return nil, err
	}
	return New(files, readers, trackDim)
}

// Files returns the granule file names in read order.
func (a *Aggregation) Files() []string {
	return append([]string(nil), a.files...)
}

// Granules returns the per-granule readers in read order.
func (a *Aggregation) Granules() []Reader {
	return append([]Reader(nil), a.granules...)
}

// TrackDim returns the name of the concatenation dimension.
func (a *Aggregation) TrackDim() string { return a.trackDim }

// SetProcessor installs one processor per granule for array. A nil entry
// leaves that granule's values unchanged.
func (a *Aggregation) SetProcessor(array string, procs []Processor) error {
	if len(procs) != len(a.granules) {
		return fmt.Errorf("granule: %d processors for %d granules", len(procs), len(a.granules))
	}
	a.mu.Lock()
	a.processors[array] = append([]Processor(nil), procs...)
	a.mu.Unlock()
	return nil
}

// HasArray reports whether the first granule has name.
func (a *Aggregation) HasArray(name string) bool {
	return a.granules[0].HasArray(name)
}

// Attr reads an attribute from the first granule.
func (a *Aggregation) Attr(name, attr string) (any, bool) {
	return a.granules[0].Attr(name, attr)
}

// Dims returns the dimension names and aggregated lengths of name. The
// track length is the sum of every granule's track length for that array.
func (a *Aggregation) Dims(name string) ([]string, []int, error) {
	dims, shape, err := a.granules[0].Dims(name)
	if err != nil {
		return nil, nil, err
	}
	ti := indexOf(dims, a.trackDim)
	if ti < 0 || len(a.granules) == 1 {
		return dims, shape, nil
	}
	lengths, err := a.trackLengths(name, ti, len(shape))
	if err != nil {
		return nil, nil, err
	}
	total := 0
	for _, n := range lengths {
		total += n
	}
	shape = append([]int(nil), shape...)
	shape[ti] = total
	return dims, shape, nil
}

func (a *Aggregation) trackLengths(name string, ti, rank int) ([]int, error) {
	lengths := make([]int, len(a.granules))
	for i, g := range a.granules {
		_, shape, err := g.Dims(name)
		if err != nil {
			return nil, fmt.Errorf("granule %s: %w", a.files[i], err)
		}
		if len(shape) != rank {
			return nil, fmt.Errorf("granule %s: %s: %w", a.files[i], name, ErrMismatchedRank)
		}
		lengths[i] = shape[ti]
	}
	return lengths, nil
}

// Read returns the selected values of name across granules. The hyperslab is
// in aggregated coordinates.
func (a *Aggregation) Read(name string, h Hyperslab) ([]float64, error) {
	dims, shape, err := a.Dims(name)
	if err != nil {
		return nil, err
	}
	if err := h.Validate(shape); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	a.mu.RLock()
	procs := a.processors[name]
	a.mu.RUnlock()

	ti := indexOf(dims, a.trackDim)
	if ti < 0 || len(a.granules) == 1 {
		vals, err := a.granules[0].Read(name, h)
		if err != nil {
			return nil, fmt.Errorf("granule %s: %w", a.files[0], err)
		}
		return applyProcessor(procs, 0, vals)
	}

	lengths, err := a.trackLengths(name, ti, len(shape))
	if err != nil {
		return nil, err
	}
	pieces := split(h.Start[ti], h.Count[ti], h.Stride[ti], lengths)

	out := make([]float64, h.Size())
	outer := 1
	for _, c := range h.Count[:ti] {
		outer *= c
	}
	inner := 1
	for _, c := range h.Count[ti+1:] {
		inner *= c
	}
	total := h.Count[ti]

	for _, p := range pieces {
		sub := h.clone()
		sub.Start[ti] = p.start
		sub.Count[ti] = p.count
		vals, err := a.granules[p.granule].Read(name, sub)
		if err != nil {
			return nil, fmt.Errorf("granule %s: %w", a.files[p.granule], err)
		}
		if len(vals) != sub.Size() {
			return nil, fmt.Errorf("granule %s: %s: read %d values, want %d",
				a.files[p.granule], name, len(vals), sub.Size())
		}
		if vals, err = applyProcessor(procs, p.granule, vals); err != nil {
			return nil, err
		}
		block := p.count * inner
		for o := 0; o < outer; o++ {
			dst := o*total*inner + p.offset*inner
			copy(out[dst:dst+block], vals[o*block:(o+1)*block])
		}
	}
	return out, nil
}

// Close closes every granule and joins their errors.
func (a *Aggregation) Close() error {
	var errs []error
	for _, g := range a.granules {
		if err := g.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func applyProcessor(procs []Processor, granule int, vals []float64) ([]float64, error) {
	if granule >= len(procs) || procs[granule] == nil {
		return vals, nil
	}
	return procs[granule].Process(vals)
}

// piece is the part of an along-track selection that falls in one granule.
type piece struct {
	granule int
	start   int // local start index within the granule
	count   int
	offset  int // position of the first value in the aggregated selection
}

// split distributes the indices start, start+stride, ... (count of them)
// across granules with the given track lengths.
func split(start, count, stride int, lengths []int) []piece {
	var pieces []piece
	base := 0
	taken := 0
	for g, n := range lengths {
		if taken == count {
			break
		}
		lo, hi := base, base+n
		base = hi
		next := start + taken*stride
		if next >= hi {
			continue
		}
		c := (hi-1-next)/stride + 1
		if c > count-taken {
			c = count - taken
		}
		pieces = append(pieces, piece{granule: g, start: next - lo, count: c, offset: taken})
		taken += c
	}
	return pieces
}

func indexOf(dims []string, name string) int {
	for i, d := range dims {
		if d == name {
			return i
		}
	}
	return -1
}
