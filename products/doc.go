// Package products configures the swath core for concrete satellite
// products.
//
// Each product family is a [Descriptor]: file name patterns, the along- and
// cross-track dimension names, companion geolocation naming, and a list of
// bands with their group, wavelength and calibration. The built-in table is
// embedded from descriptors.yaml and covers SIPS VIIRS M-band, I-band and
// day/night band granules and GOES-R ABI multiband cloud and moisture
// imagery. [LoadDescriptorFile] reads additional tables.
//
// A [Handler] turns a descriptor into a swath.Candidate. Its probe looks at
// the first file name only; its constructor orders the granules in time,
// aggregates them, finds companion geolocation granules, and builds one
// array adapter per band present in the data:
//
//	reg, err := products.NewRegistry(products.WithLogger(logger))
//	src, err := reg.Resolve(files)
//	m05 := src.Choice("M05")
//	data, err := src.Fetch(m05, nil)
//
// Swath bands ([SwathAdapter]) geolocate with the longitude and latitude
// arrays of their companion granules and normalize reflectances by the solar
// zenith angle. Grid bands ([GridAdapter]) geolocate with projection
// coordinates and grid-mapping attributes only; no projection math is done
// here.
package products
