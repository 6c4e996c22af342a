package swath_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/robert-malhotra/go-swath/swath"
	"github.com/robert-malhotra/go-swath/swath/mocks"
)

func mockBand(ctrl *gomock.Controller, name string) (*mocks.MockArrayAdapter, swath.Band) {
	m := mocks.NewMockArrayAdapter(ctrl)
	var def swath.Subset
	def.MustSet("Track", 0, 9, 1)
	m.EXPECT().DefaultSubset().Return(def).AnyTimes()
	m.EXPECT().Lengths().Return(map[string]int{"Track": 10}).AnyTimes()
	return m, swath.Band{Name: name, Group: "2KMemis", Adapter: m}
}

func TestPublishInjectsSiblings(t *testing.T) {
	ctrl := gomock.NewController(t)
	c13, b13 := mockBand(ctrl, "C13")
	c14, b14 := mockBand(ctrl, "C14")
	c15, b15 := mockBand(ctrl, "C15")

	src, err := swath.NewBandSource(swath.SourceInfo{Description: "GOES-16 ABI"},
		[]swath.Band{b13, b14, b15}, nil)
	require.NoError(t, err)

	geo := &swath.Geolocation{CoordSys: "fixed grid"}
	gomock.InOrder(
		c14.EXPECT().Read(gomock.Any()).Return(&swath.Data{Values: []float32{1}}, nil),
		c14.EXPECT().Geolocation().Return(geo),
	)
	c13.EXPECT().SetGeolocation(geo).Times(1)
	c15.EXPECT().SetGeolocation(geo).Times(1)

	_, err = src.Fetch(src.Choice("C14"), nil)
	require.NoError(t, err)
	assert.Same(t, geo, src.Aggregates()[0].Geolocation())

	// After publication reads go straight to the adapter.
	c15.EXPECT().Read(gomock.Any()).Return(&swath.Data{Values: []float32{2}}, nil)
	_, err = src.Fetch(src.Choice("C15"), nil)
	require.NoError(t, err)
}

func TestPublishSkipsAdapterWithoutGeolocation(t *testing.T) {
	ctrl := gomock.NewController(t)
	c13, b13 := mockBand(ctrl, "C13")
	_, b14 := mockBand(ctrl, "C14")

	src, err := swath.NewBandSource(swath.SourceInfo{}, []swath.Band{b13, b14}, nil)
	require.NoError(t, err)

	c13.EXPECT().Read(gomock.Any()).Return(&swath.Data{}, nil).Times(2)
	c13.EXPECT().Geolocation().Return(nil).Times(2)

	for i := 0; i < 2; i++ {
		_, err = src.Fetch(src.Choice("C13"), nil)
		require.NoError(t, err)
	}
	assert.Nil(t, src.Aggregates()[0].Geolocation())
}
