// Package calib converts raw array values to physical quantities.
//
// A [Pipeline] is an ordered list of [Step] values built from [Spec]
// descriptions. Steps run in order over a float64 slice and mark unusable
// samples with NaN rather than removing them, so the output always has the
// input's length and layout.
//
// # Steps
//
//   - fill: values equal to any listed fill value become NaN.
//   - unsigned: negative values are shifted by 2^bits, for unsigned data
//     stored in a signed type.
//   - scale: v*scale + offset, the CF scale_factor/add_offset convention.
//   - valid_range: values outside [min, max] become NaN.
//   - lut: v is truncated to an index into a table, e.g. a radiance to
//     brightness temperature table. Indices outside the table give NaN.
//   - log10: common logarithm, with non-positive values giving NaN. Used for
//     day/night band radiances spanning many orders of magnitude.
//
// Steps are looked up in [Registry] by kind, so products describe their
// calibration declaratively and the granule aggregation runs one pipeline per
// granule. [CorrectReflectance] applies the solar zenith normalization that
// reflective bands need; it takes a second array and is not a step.
package calib
