package products

import (
	"github.com/robert-malhotra/go-swath/internal/calib"
	"github.com/robert-malhotra/go-swath/internal/granule"
	"github.com/robert-malhotra/go-swath/swath"
)

// SwathAdapter reads one band of a polar-orbiter swath. Its geolocation is
// the longitude/latitude over the default domain, read from the companion
// geolocation granules.
type SwathAdapter struct {
	*adapterBase

	geoData *granule.Aggregation // nil when companions are missing
	geoErr  error
	gd      *GeoDescriptor
}

var _ swath.ArrayAdapter = (*SwathAdapter)(nil)

// Read returns calibrated samples for sel. Reflective bands are normalized
// by the solar zenith angle when the descriptor names one.
func (a *SwathAdapter) Read(sel swath.Subset) (*swath.Data, error) {
	rs, err := a.ranges(sel)
	if err != nil {
		return nil, err
	}
	row, col := a.primaryRanges(rs)

	vals, err := a.readBand(rs)
	if err != nil {
		return nil, err
	}

	if a.kind == swath.KindReflective && a.gd != nil && a.gd.SolarZenith != "" {
		if a.geoData == nil {
			return nil, a.geoErr
		}
		zen, err := a.readGeo(a.gd.SolarZenith, row, col)
		if err != nil {
			return nil, err
		}
		if err := calib.CorrectReflectance(vals, zen); err != nil {
			return nil, &swath.UpstreamReadError{Array: a.gd.SolarZenith, Err: err}
		}
	}

	geo, err := a.locate(row, col, a.navigate)
	if err != nil {
		return nil, err
	}
	return a.result(rs, vals, geo), nil
}

func (a *SwathAdapter) navigate(row, col swath.Range) (*swath.Geolocation, error) {
	if a.geoData == nil {
		return nil, a.geoErr
	}
	lon, err := a.readGeo(a.gd.Longitude, row, col)
	if err != nil {
		return nil, err
	}
	lat, err := a.readGeo(a.gd.Latitude, row, col)
	if err != nil {
		return nil, err
	}
	return &swath.Geolocation{
		CoordSys: &SwathNavigation{
			Lon:   toFloat32(lon),
			Lat:   toFloat32(lat),
			Shape: [2]int{row.Count(), col.Count()},
		},
		Domain: swath.Domain{
			Dims:   []string{a.primary[0], a.primary[1]},
			Ranges: []swath.Range{row, col},
		},
	}, nil
}

// readGeo reads a geolocation-file array over the band's row and column
// ranges. Extra dimensions are pinned to index 0.
func (a *SwathAdapter) readGeo(array string, row, col swath.Range) ([]float64, error) {
	dims, _, err := a.geoData.Dims(array)
	if err != nil {
		return nil, &swath.UpstreamReadError{Array: array, Err: err}
	}
	rs := make([]swath.Range, len(dims))
	for i, d := range dims {
		switch d {
		case a.gd.TrackDim:
			rs[i] = row
		case a.gd.XTrackDim:
			rs[i] = col
		default:
			rs[i] = swath.Range{Start: 0, Stop: 0, Stride: 1}
		}
	}
	vals, err := a.geoData.Read(array, hyperslab(rs))
	if err != nil {
		return nil, &swath.UpstreamReadError{Array: array, Err: err}
	}
	return vals, nil
}
