package timestamp

import (
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseConventions(t *testing.T) {
	tests := []struct {
		name string
		file string
		rule string
		want time.Time
	}{
		{"idps", "GMODO_npp_d20240115_t0300123_e0301365_b63000_c2024.h5", "idps",
			time.Date(2024, 1, 15, 3, 0, 12, 0, time.UTC)},
		{"idps j01", "SVM01_j01_d20231231_t2359590_e0001.h5", "idps",
			time.Date(2023, 12, 31, 23, 59, 59, 0, time.UTC)},
		{"sips", "VNP02MOD.A2024015.0300.002.2024015100000.nc", "sips",
			time.Date(2024, 1, 15, 3, 0, 0, 0, time.UTC)},
		{"sips geolocation", "/data/VJ103IMG.A2024060.1206.021.nc", "sips",
			time.Date(2024, 2, 29, 12, 6, 0, 0, time.UTC)},
		{"modis", "MYD021KM.A2024001.0000.061.hdf", "sips",
			time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
		{"modis fire", "MOD14.A2024032.1715.061.hdf", "modis-fire",
			time.Date(2024, 2, 1, 17, 15, 0, 0, time.UTC)},
		{"abi", "OR_ABI-L2-MCMIPF-M6_G16_s20240150300204_e20240150309512_c2024.nc", "abi",
			time.Date(2024, 1, 15, 3, 0, 20, 0, time.UTC)},
		{"eumetsat", "W_XX-EUMETSAT-Darmstadt,SOUNDING+SATELLITE,METOPB+AVHR_C_EUMP_20240115030000_5_eps_o_l1.nc", "eumetsat",
			time.Date(2024, 1, 15, 3, 0, 0, 0, time.UTC)},
		{"dbrtn", "a1.24015.0300.crefl.hdf", "dbrtn",
			time.Date(2024, 1, 15, 3, 0, 0, 0, time.UTC)},
		{"generic", "B_2024015_0300.dat", "generic",
			time.Date(2024, 1, 15, 3, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rule, got, err := Default.Match(tt.file)
			require.NoError(t, err)
			assert.Equal(t, tt.rule, rule)
			assert.True(t, tt.want.Equal(got), "got %v, want %v", got, tt.want)
		})
	}
}

func TestParseNoTimestamp(t *testing.T) {
	_, err := Parse("notes.txt")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNoTimestamp))
}

func TestParseMatchedButMalformed(t *testing.T) {
	// Day 400 matches the pattern but is not a valid day of year.
	_, err := Parse("VNP02MOD.A2024400.0300.nc")
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrNoTimestamp))
}

func TestCustomRulesOrder(t *testing.T) {
	p := New(
		Rule{Name: "first", Pattern: regexp.MustCompile(`x(\d{4})`), Layout: "2006"},
		Rule{Name: "second", Pattern: regexp.MustCompile(`x(\d{8})`), Layout: "20060102"},
	)
	rule, got, err := p.Match("x20240115")
	require.NoError(t, err)
	assert.Equal(t, "first", rule)
	assert.Equal(t, 2024, got.Year())
}
