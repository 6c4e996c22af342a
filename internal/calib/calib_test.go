package calib

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func nanEqual(t *testing.T, want, got []float64) {
	t.Helper()
	require.Len(t, got, len(want))
	for i := range want {
		if math.IsNaN(want[i]) {
			assert.True(t, math.IsNaN(got[i]), "index %d: want NaN, got %v", i, got[i])
			continue
		}
		assert.InDelta(t, want[i], got[i], 1e-9, "index %d", i)
	}
}

func TestFillUnsignedScale(t *testing.T) {
	// Unsigned 16-bit radiances stored as int16, with fill 65535 (-1 signed).
	p, err := NewPipeline([]Spec{
		{Kind: KindUnsigned, Values: []float64{16}},
		{Kind: KindFill, Values: []float64{65535, 65534}},
		{Kind: KindScale, Values: []float64{0.01, -1}},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"unsigned", "fill", "scale"}, p.Kinds())

	in := []float64{100, -1, -2, -32768}
	got, err := p.Process(in)
	require.NoError(t, err)
	nanEqual(t, []float64{0, math.NaN(), math.NaN(), 326.68}, got)
	assert.Equal(t, []float64{100, -1, -2, -32768}, in, "input must not be modified")
}

func TestValidRange(t *testing.T) {
	p, err := NewPipeline([]Spec{{Kind: KindValidRange, Values: []float64{0, 10}}})
	require.NoError(t, err)
	got, err := p.Process([]float64{-0.5, 0, 5, 10, 10.5})
	require.NoError(t, err)
	nanEqual(t, []float64{math.NaN(), 0, 5, 10, math.NaN()}, got)

	_, err = New(Spec{Kind: KindValidRange, Values: []float64{10, 0}})
	assert.Error(t, err)
}

func TestLUT(t *testing.T) {
	p, err := NewPipeline([]Spec{{Kind: KindLUT, Table: []float64{200, 210, 220}}})
	require.NoError(t, err)
	got, err := p.Process([]float64{0, 2, 1.7, 3, -1, math.NaN()})
	require.NoError(t, err)
	nanEqual(t, []float64{200, 220, 210, math.NaN(), math.NaN(), math.NaN()}, got)

	_, err = New(Spec{Kind: KindLUT})
	assert.Error(t, err)
}

func TestLog10(t *testing.T) {
	p, err := NewPipeline([]Spec{{Kind: KindLog10}})
	require.NoError(t, err)
	got, err := p.Process([]float64{1e-9, 1, 0, -3})
	require.NoError(t, err)
	nanEqual(t, []float64{-9, 0, math.NaN(), math.NaN()}, got)
}

func TestEmptyPipeline(t *testing.T) {
	p, err := NewPipeline(nil)
	require.NoError(t, err)
	assert.True(t, p.Empty())
	assert.Equal(t, 0, p.Len())
	got, err := p.Process([]float64{1, 2})
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2}, got)
}

func TestBadSpecs(t *testing.T) {
	_, err := NewPipeline([]Spec{{Kind: "gamma"}})
	assert.True(t, errors.Is(err, ErrUnknownKind))

	for _, s := range []Spec{
		{Kind: KindFill},
		{Kind: KindUnsigned, Values: []float64{12}},
		{Kind: KindScale, Values: []float64{1}},
	} {
		_, err := New(s)
		assert.Error(t, err, "%+v", s)
	}
}

func TestCorrectReflectance(t *testing.T) {
	v := []float64{0.5, 0.5, 0.5, 0.5}
	z := []float64{0, 60, 80, math.NaN()}
	require.NoError(t, CorrectReflectance(v, z))
	nanEqual(t, []float64{0.5, 1, 0.5, 0.5}, v)

	assert.Error(t, CorrectReflectance([]float64{1}, nil))
}
