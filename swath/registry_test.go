package swath_test

import (
	"errors"
	"io/fs"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robert-malhotra/go-swath/internal/metrics"
	"github.com/robert-malhotra/go-swath/swath"
)

func sourceNamed(desc string) (swath.Source, error) {
	return swath.NewBandSource(swath.SourceInfo{Description: desc},
		[]swath.Band{{Name: "B1", Adapter: newSpy("B1", 0)}}, nil)
}

// prefixCandidate accepts files whose first name starts with prefix.
func prefixCandidate(name, prefix string, probed *[]string) swath.Candidate {
	return swath.Candidate{
		Name: name,
		Probe: func(files []string) (bool, error) {
			if probed != nil {
				*probed = append(*probed, name)
			}
			return strings.HasPrefix(files[0], prefix), nil
		},
		Open: func(files []string) (swath.Source, error) {
			return sourceNamed(name)
		},
	}
}

func TestResolveFirstSuccessWins(t *testing.T) {
	narrow := prefixCandidate("viirs-sdr", "SVM", nil)
	broad := prefixCandidate("anything", "", nil)

	reg := swath.NewRegistry([]swath.Candidate{narrow, broad})
	src, err := reg.Resolve([]string{"SVM05_npp_d20240115_t0300000.h5"})
	require.NoError(t, err)
	assert.Equal(t, "viirs-sdr", src.Description())
	assert.Equal(t, []string{"viirs-sdr", "anything"}, reg.Candidates())

	// Reversing the table lets the broad matcher shadow the narrow one.
	reg = swath.NewRegistry([]swath.Candidate{broad, narrow})
	src, err = reg.Resolve([]string{"SVM05_npp_d20240115_t0300000.h5"})
	require.NoError(t, err)
	assert.Equal(t, "anything", src.Description())
}

func TestResolveFallsThroughFailedConstructor(t *testing.T) {
	broken := swath.Candidate{
		Name:  "broken",
		Probe: func([]string) (bool, error) { return true, nil },
		Open: func([]string) (swath.Source, error) {
			return nil, &swath.UnsortableGranuleError{File: "x.nc", Err: errors.New("no timestamp")}
		},
	}
	reg := swath.NewRegistry([]swath.Candidate{broken, prefixCandidate("fallback", "", nil)})
	src, err := reg.Resolve([]string{"x.nc"})
	require.NoError(t, err)
	assert.Equal(t, "fallback", src.Description())
}

func TestResolveUnrecognized(t *testing.T) {
	broken := swath.Candidate{
		Name:  "broken",
		Probe: func([]string) (bool, error) { return true, nil },
		Open: func([]string) (swath.Source, error) {
			return nil, &swath.UnsortableGranuleError{File: "x.nc", Err: errors.New("no timestamp")}
		},
	}
	reg := swath.NewRegistry([]swath.Candidate{prefixCandidate("abi", "OR_ABI", nil), broken})
	_, err := reg.Resolve([]string{"x.nc"})

	var ue *swath.UnrecognizedInputError
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, []string{"x.nc"}, ue.Files)
	assert.Len(t, ue.Rejections, 2)
	assert.True(t, errors.Is(err, swath.ErrUnrecognizedInput))
	assert.True(t, errors.Is(err, swath.ErrUnsortableGranule))
	assert.Empty(t, reg.Session().Sources())
}

func TestResolveIOErrorAborts(t *testing.T) {
	var probed []string
	unreadable := swath.Candidate{
		Name: "unreadable",
		Probe: func(files []string) (bool, error) {
			probed = append(probed, "unreadable")
			return false, &swath.IOError{Path: files[0], Err: fs.ErrPermission}
		},
	}
	reg := swath.NewRegistry([]swath.Candidate{unreadable, prefixCandidate("later", "", &probed)})
	_, err := reg.Resolve([]string{"locked.nc"})

	var ioErr *swath.IOError
	require.ErrorAs(t, err, &ioErr)
	assert.Equal(t, "locked.nc", ioErr.Path)
	assert.True(t, errors.Is(err, fs.ErrPermission))
	assert.Equal(t, []string{"unreadable"}, probed)
}

func TestResolveRejectsEmptyInput(t *testing.T) {
	reg := swath.NewRegistry([]swath.Candidate{prefixCandidate("any", "", nil)})
	_, err := reg.Resolve(nil)
	assert.True(t, errors.Is(err, swath.ErrUnrecognizedInput))
	_, err = reg.Resolve([]string{"a.nc", ""})
	assert.Error(t, err)
}

func TestSessionTracksResolvedSources(t *testing.T) {
	promReg := prometheus.NewRegistry()
	session := swath.NewSession(swath.WithRegisterer(promReg))
	reg := swath.NewRegistry([]swath.Candidate{
		prefixCandidate("viirs", "VNP", nil),
		prefixCandidate("abi", "OR_ABI", nil),
	}, swath.WithSession(session), swath.WithRegisterer(promReg))
	assert.Same(t, session, reg.Session())

	v1, err := reg.Resolve([]string{"VNP02MOD.A2024015.0300.nc"})
	require.NoError(t, err)
	v2, err := reg.Resolve([]string{"VNP02MOD.A2024015.0306.nc"})
	require.NoError(t, err)
	abi, err := reg.Resolve([]string{"OR_ABI-L2-MCMIPF.nc"})
	require.NoError(t, err)

	assert.Equal(t, []swath.Source{v1, v2, abi}, session.Sources())
	assert.Equal(t, []swath.Source{v1, v2}, reg.ListByDescription("viirs"))
	assert.NotEqual(t, v1.ID(), v2.ID())

	got, ok := session.Lookup(v2.ID())
	require.True(t, ok)
	assert.Same(t, v2, got)

	assert.True(t, reg.Forget(v1))
	assert.False(t, reg.Forget(v1))
	_, ok = session.Lookup(v1.ID())
	assert.False(t, ok)
	assert.Equal(t, []swath.Source{v2}, reg.ListByDescription("viirs"))

	session.Add(v2)
	assert.Len(t, session.Sources(), 2, "adding twice is a no-op")

	c, err := metrics.New(promReg)
	require.NoError(t, err)
	assert.Equal(t, 2.0, testutil.ToFloat64(c.LiveSources))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.Resolutions.WithLabelValues("viirs", "ok")))
}
