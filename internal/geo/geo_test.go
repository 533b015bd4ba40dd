package geo

import (
	"math"
	"testing"
)

func TestDistanceKm(t *testing.T) {
	tests := []struct {
		name       string
		lat1, lng1 float64
		lat2, lng2 float64
		expected   float64
		tolerance  float64
	}{
		{
			name: "same point",
			lat1: 46.6021, lng1: -120.5059,
			lat2: 46.6021, lng2: -120.5059,
			expected:  0,
			tolerance: 1e-9,
		},
		{
			name: "adjacent venues in same city",
			lat1: 46.6, lng1: -120.5,
			lat2: 46.601, lng2: -120.501,
			expected:  0.134,
			tolerance: 0.01,
		},
		{
			name: "across town",
			lat1: 46.6021, lng1: -120.5059,
			lat2: 46.5650, lng2: -120.4690,
			expected:  5.0,
			tolerance: 0.5,
		},
		{
			name: "seattle to yakima",
			lat1: 47.6062, lng1: -122.3321,
			lat2: 46.6021, lng2: -120.5059,
			expected:  176,
			tolerance: 5,
		},
		{
			name: "equator quarter circumference",
			lat1: 0, lng1: 0,
			lat2: 0, lng2: 90,
			expected:  10007.5,
			tolerance: 10,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DistanceKm(tt.lat1, tt.lng1, tt.lat2, tt.lng2)
			if math.Abs(got-tt.expected) > tt.tolerance {
				t.Errorf("DistanceKm() = %v, want %v (±%v)", got, tt.expected, tt.tolerance)
			}
		})
	}
}

func TestDistanceKmSymmetric(t *testing.T) {
	ab := DistanceKm(46.6, -120.5, 47.6, -122.3)
	ba := DistanceKm(47.6, -122.3, 46.6, -120.5)

	if math.Abs(ab-ba) > 1e-9 {
		t.Errorf("DistanceKm not symmetric: %v vs %v", ab, ba)
	}
}
