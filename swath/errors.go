package swath

import (
	"errors"
	"fmt"
	"strings"
)

// Common errors
var (
	ErrInvalidRange      = errors.New("invalid range")
	ErrOutOfRange        = errors.New("subset exceeds array bounds")
	ErrMissingAncillary  = errors.New("missing ancillary file")
	ErrUpstreamRead      = errors.New("upstream read failed")
	ErrResolutionUnknown = errors.New("resolution unknown")
	ErrUnrecognizedInput = errors.New("no handler recognizes input")
	ErrUnsortableGranule = errors.New("granule timestamp unparsable")
	ErrForeignChoice     = errors.New("choice does not belong to this source")
	ErrClosed            = errors.New("source is closed")
)

// InvalidRangeError reports a malformed (start, stop, stride) triple.
type InvalidRangeError struct {
	Dim                 string
	Start, Stop, Stride int
}

func (e *InvalidRangeError) Error() string {
	return fmt.Sprintf("invalid range for dimension %q: start=%d stop=%d stride=%d",
		e.Dim, e.Start, e.Stop, e.Stride)
}

func (e *InvalidRangeError) Is(target error) bool { return target == ErrInvalidRange }

// OutOfRangeError reports a subset entry that reaches past the end of the
// underlying array dimension.
type OutOfRangeError struct {
	Dim    string
	Range  Range
	Length int
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("dimension %q: range %s exceeds length %d", e.Dim, e.Range, e.Length)
}

func (e *OutOfRangeError) Is(target error) bool { return target == ErrOutOfRange }

// MissingAncillaryError reports a companion file (usually geolocation) that
// could not be matched to a data granule.
type MissingAncillaryError struct {
	File string
	Kind string
}

func (e *MissingAncillaryError) Error() string {
	return fmt.Sprintf("no %s file matches %s", e.Kind, e.File)
}

func (e *MissingAncillaryError) Is(target error) bool { return target == ErrMissingAncillary }

// UpstreamReadError wraps a failure from the reader or adapter layer.
type UpstreamReadError struct {
	Array string
	Err   error
}

func (e *UpstreamReadError) Error() string {
	return fmt.Sprintf("reading %s: %v", e.Array, e.Err)
}

func (e *UpstreamReadError) Unwrap() error { return e.Err }

func (e *UpstreamReadError) Is(target error) bool { return target == ErrUpstreamRead }

// DataError is returned by Source.Fetch. It names the choice and wraps one of
// OutOfRangeError, MissingAncillaryError or UpstreamReadError.
type DataError struct {
	Choice string
	Err    error
}

func (e *DataError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.Choice, e.Err)
}

func (e *DataError) Unwrap() error { return e.Err }

// ResolutionUnknownError is returned when a band has no declared ground
// sample distance.
type ResolutionUnknownError struct {
	Source string
	Choice string
}

func (e *ResolutionUnknownError) Error() string {
	return fmt.Sprintf("%s: no nominal resolution declared for %s", e.Source, e.Choice)
}

func (e *ResolutionUnknownError) Is(target error) bool { return target == ErrResolutionUnknown }

// UnsortableGranuleError reports a granule whose file name yields no timestamp.
type UnsortableGranuleError struct {
	File string
	Err  error
}

func (e *UnsortableGranuleError) Error() string {
	return fmt.Sprintf("cannot order granule %s: %v", e.File, e.Err)
}

func (e *UnsortableGranuleError) Unwrap() error { return e.Err }

func (e *UnsortableGranuleError) Is(target error) bool { return target == ErrUnsortableGranule }

// UnrecognizedInputError is returned by Registry.Resolve when no candidate
// accepts the files. Rejections maps candidate name to the reason it declined.
type UnrecognizedInputError struct {
	Files      []string
	Rejections map[string]error
}

func (e *UnrecognizedInputError) Error() string {
	return fmt.Sprintf("no suitable source found for: %s", strings.Join(e.Files, ", "))
}

func (e *UnrecognizedInputError) Is(target error) bool { return target == ErrUnrecognizedInput }

// Unwrap exposes the per-candidate rejections, so errors.Is can find, say,
// an UnsortableGranuleError raised by the only candidate that matched.
func (e *UnrecognizedInputError) Unwrap() []error {
	errs := make([]error, 0, len(e.Rejections))
	for _, err := range e.Rejections {
		errs = append(errs, err)
	}
	return errs
}

// IOError reports an unreadable input path. Probes propagate it instead of
// answering false.
type IOError struct {
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("reading %s: %v", e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }
