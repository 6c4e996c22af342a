package granule

import (
	"fmt"
	"sort"
	"time"
)

// TimestampFunc extracts the nominal time from a granule file name.
type TimestampFunc func(name string) (time.Time, error)

// UnsortableError reports the first name whose timestamp could not be parsed.
type UnsortableError struct {
	Name string
	Err  error
}

func (e *UnsortableError) Error() string {
	return fmt.Sprintf("granule %s has no parsable timestamp: %v", e.Name, e.Err)
}

func (e *UnsortableError) Unwrap() error { return e.Err }

// Sort returns names ordered by ascending timestamp. Names with equal
// timestamps keep their input order. The input slice is not modified.
func Sort(names []string, parse TimestampFunc) ([]string, error) {
	type entry struct {
		name string
		t    time.Time
	}
	entries := make([]entry, len(names))
	for i, n := range names {
		t, err := parse(n)
		if err != nil {
			return nil, &UnsortableError{Name: n, Err: err}
		}
		entries[i] = entry{name: n, t: t}
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].t.Before(entries[j].t)
	})

	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.name
	}
	return out, nil
}
