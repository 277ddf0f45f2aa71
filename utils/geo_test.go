package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDistanceMeters_IdenticalPoints(t *testing.T) {
	assert.InDelta(t, 0, DistanceMeters(-1.2921, 36.8219, -1.2921, 36.8219), 1e-6)
	assert.InDelta(t, 0, DistanceMeters(0, 0, 0, 0), 1e-6)
}

func TestDistanceMeters_Symmetric(t *testing.T) {
	tests := []struct {
		name                   string
		lat1, lon1, lat2, lon2 float64
	}{
		{"nearby points", -1.2921, 36.8219, -1.3032, 36.7073},
		{"across the equator", -4.0435, 39.6682, 0.5143, 35.2698},
		{"antimeridian neighbours", 10, 179.9, 10, -179.9},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			forward := DistanceMeters(tt.lat1, tt.lon1, tt.lat2, tt.lon2)
			backward := DistanceMeters(tt.lat2, tt.lon2, tt.lat1, tt.lon1)
			assert.InDelta(t, forward, backward, 1e-6)
			assert.GreaterOrEqual(t, forward, 0.0)
		})
	}
}

func TestDistanceMeters_KnownDistance(t *testing.T) {
	// One degree of longitude along the equator is roughly 111.19 km
	distance := DistanceMeters(0, 0, 0, 1)
	assert.InDelta(t, 111195, distance, 50)

	// Nairobi CBD to Jomo Kenyatta International Airport, roughly 13.3 km
	distance = DistanceMeters(-1.2864, 36.8172, -1.3192, 36.9278)
	assert.InDelta(t, 12800, distance, 1000)
}

func TestDistanceMeters_OriginIsARealPlace(t *testing.T) {
	// (0,0) is treated as a literal coordinate in the Gulf of Guinea, not as
	// a missing location; a technician stored there ranks by the real
	// distance from the caller.
	distance := DistanceMeters(-1.2921, 36.8219, 0, 0)
	assert.Greater(t, distance, 4_000_000.0)
	assert.Less(t, distance, 4_300_000.0)
}
