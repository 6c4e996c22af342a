// Package h5read serves plain HDF5 granules, such as IDPS sensor data
// records, to the aggregation layer.
//
// HDF5 datasets written by IDPS carry no dimension names, so a Reader names
// them itself: datasets whose rank matches the configured names get those
// names, every other dimension is called phony_dim_N after its position.
// Hyperslab reads fetch the bounding box of the selection from the file and
// decimate it in memory.
package h5read
