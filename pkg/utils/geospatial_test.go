package utils

import (
	"math"
	"testing"
)

func TestHaversineDistance(t *testing.T) {
	// Bangalore to Chennai is roughly 290 km great-circle.
	d := HaversineDistance(12.9716, 77.5946, 13.0827, 80.2707)
	if d < 280 || d > 300 {
		t.Errorf("distance = %v km, want ~290", d)
	}
	if HaversineDistance(12.9716, 77.5946, 12.9716, 77.5946) != 0 {
		t.Error("distance to the same point is not zero")
	}
}

func TestBearing(t *testing.T) {
	cases := []struct {
		name                   string
		lat1, lng1, lat2, lng2 float64
		want                   float64
	}{
		{"due north", 10, 77, 11, 77, 0},
		{"due east", 0, 77, 0, 78, 90},
		{"due south", 11, 77, 10, 77, 180},
		{"due west", 0, 78, 0, 77, 270},
	}
	for _, tc := range cases {
		got := Bearing(tc.lat1, tc.lng1, tc.lat2, tc.lng2)
		if math.Abs(got-tc.want) > 1 {
			t.Errorf("%s: bearing = %v, want ~%v", tc.name, got, tc.want)
		}
	}
}

func TestIsWithinRadius(t *testing.T) {
	// Two points ~1.1 km apart along a meridian.
	if !IsWithinRadius(12.97, 77.59, 12.98, 77.59, 2) {
		t.Error("point inside radius reported outside")
	}
	if IsWithinRadius(12.97, 77.59, 12.98, 77.59, 1) {
		t.Error("point outside radius reported inside")
	}
}
