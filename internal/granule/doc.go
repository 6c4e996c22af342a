// Package granule orders satellite granule files in time and presents a run
// of consecutive granules as one virtual array file.
//
// # Ordering
//
// [Sort] orders file names by the timestamp each encodes, using a caller
// supplied parser (normally timestamp.Parse). Ordering is stable. A name with
// no recognizable timestamp makes the whole set unsortable; Sort returns an
// [*UnsortableError] and no partial result.
//
// # Aggregation
//
// An [Aggregation] wraps one [Reader] per granule. Arrays that carry the
// along-track dimension are concatenated along it; every other array is
// served from the first granule. Reads are split at granule boundaries:
//
//	granule:   0           1           2
//	track:     [0 ..... 767][768 ..1535][1536 .. 2303]
//	request:        [500 : 1000 : 10]
//	pieces:         g0 [500:760:10]  g1 [2:232:10]
//
// Each piece is read from its granule, passed through the per-granule
// [Processor] registered for that array, and placed into the result at its
// along-track offset. Track lengths are taken per granule and per array, so
// arrays sampled at a different along-track resolution than the reference
// array (geolocation tie points, for example) aggregate correctly.
package granule
