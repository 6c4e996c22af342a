// Package timestamp extracts nominal acquisition times from satellite product
// file names.
//
// Product families encode the start of observation in their file names using
// a handful of conventions:
//
//	SDR/EDR (IDPS)      GMODO_npp_d20240115_t0300123_e...h5   YYYYMMDD_tHHMMSS
//	SIPS / MODIS L1/L2  VNP02MOD.A2024015.0300.002...nc       .AYYYYDDD.HHMM
//	GOES-R ABI          OR_ABI-L2-MCMIPF-M6_G16_s20240150300204_e...nc
//	EUMETSAT            AVHR_C_EUMP_20240115030000_...nc      YYYYMMDDHHMM
//	generic             B_2024015_0300.dat                    _YYYYDDD_HHMM
//
// A [Parser] holds an ordered list of [Rule] values. The first rule whose
// pattern matches the base name decides the result; later rules are not
// consulted even if the layout then fails to parse. All times are UTC.
package timestamp
