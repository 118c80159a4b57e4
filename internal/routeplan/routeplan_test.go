package routeplan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var bins = []Stop{
	{BinID: 1, Latitude: 19.4326, Longitude: -99.1332},
	{BinID: 2, Latitude: 19.5, Longitude: -99.2},
	{BinID: 3, Latitude: 19.45, Longitude: -99.15},
	{BinID: 4, Latitude: 19.41, Longitude: -99.17},
}

func TestBuildURLWithoutWaypoints(t *testing.T) {
	got := BuildURL(bins[0], bins[1], nil, true)
	assert.Equal(t,
		"https://www.google.com/maps/dir/?api=1&origin=19.4326,-99.1332&destination=19.5,-99.2&travelmode=driving",
		got)
}

func TestBuildURLWithWaypoints(t *testing.T) {
	got := BuildURL(bins[0], bins[1], []Stop{bins[2], bins[3]}, false)
	assert.Equal(t,
		"https://www.google.com/maps/dir/?api=1&origin=19.4326,-99.1332&destination=19.5,-99.2&travelmode=driving"+
			"&waypoints=19.45,-99.15|19.41,-99.17",
		got)

	optimized := BuildURL(bins[0], bins[1], []Stop{bins[2]}, true)
	assert.Contains(t, optimized, "&waypoints=optimize:true|19.45,-99.15")
}

func TestPlanDropsEndpointsFromWaypoints(t *testing.T) {
	got, err := Plan(bins, []int64{1, 3, 2, 3, 4}, 1, 2, false)
	require.NoError(t, err)
	assert.Equal(t, BuildURL(bins[0], bins[1], []Stop{bins[2], bins[3]}, false), got)
}

func TestPlanErrors(t *testing.T) {
	_, err := Plan(bins, []int64{1, 2}, 0, 2, false)
	assert.ErrorIs(t, err, ErrNeedsEndpoints)

	_, err = Plan(bins, []int64{1, 2}, 1, 99, false)
	assert.ErrorIs(t, err, ErrUnknownBin)

	_, err = Plan(bins, []int64{1, 2, 42}, 1, 2, false)
	assert.ErrorIs(t, err, ErrUnknownBin)
}
