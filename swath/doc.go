// Package swath resolves satellite product files to a Source and exposes the
// source's bands through a uniform selection model.
//
// # Selection
//
// A [Subset] maps dimension names to inclusive (start, stop, stride) ranges.
// Every [Choice] carries a default subset chosen by its adapter, usually a
// decimated full frame. Callers override parts of it with [Subset.Merge]:
//
//	var pick swath.Subset
//	pick.MustSet("Track", 0, 999, 1)
//	sel := choice.Selection().Merge(pick)
//	data, err := src.Fetch(choice, &sel)
//
// # Resolution
//
// A [Registry] holds an ordered table of [Candidate] probe/constructor pairs.
// Resolve tries them in order and returns the first source that constructs
// successfully. Order matters: a broad filename matcher placed early shadows
// narrower ones. Resolved sources are listed in a [Session], which replaces
// any process-wide bookkeeping.
//
// # Groups and geolocation sharing
//
// Bands that sit on the same pixel grid carry the same [Group]. For each
// group a source builds an [AggregateView]. The first successful fetch of any
// sibling publishes that adapter's [Geolocation] into the view and copies it
// onto every other sibling adapter, so geolocation is computed once per group
// for the life of the source. A failed fetch publishes nothing and the next
// fetch tries again.
//
// # Errors
//
// Fetch failures are [*DataError] values wrapping [*OutOfRangeError],
// [*MissingAncillaryError] or [*UpstreamReadError]. Resolution failures are
// [*UnrecognizedInputError]; granule ordering failures surface as
// [*UnsortableGranuleError]. All of them work with errors.Is against the
// sentinel values in this package.
package swath
