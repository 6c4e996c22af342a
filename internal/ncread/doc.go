// Package ncread adapts github.com/batchatco/go-native-netcdf to the
// granule.Reader interface.
//
// go-native-netcdf reads both classic CDF and NetCDF-4/HDF5 files in pure Go.
// Its API exposes groups, variables and attributes, and lets callers slice a
// variable along its outermost dimension. This package adds what the swath
// adapters need on top of that:
//
//   - Group-qualified array names ("observation_data/M05") resolved through
//     nested groups, with opened groups cached.
//   - Full shape discovery for multi-dimensional variables.
//   - Strided hyperslab reads: the outer dimension is sliced by the library,
//     inner dimensions are sampled here.
//   - Conversion of any numeric element type to float64.
//   - Attribute lookup with "var@attr" paths and numeric coercion.
//   - A variable walker for discovering arrays by name pattern.
//
// # Paths
//
// Array paths use "/" to separate groups and "@" to name an attribute:
//
//	"/observation_data/M05"             variable M05 in group observation_data
//	"observation_data/M05@scale_factor" attribute of that variable
//	"/@time_coverage_start"             global attribute
package ncread
