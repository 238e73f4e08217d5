package geo

import "testing"

func TestExpansionRingsCeiling(t *testing.T) {
	level := StorageLevel
	width := ringWidthMeters(level)

	cases := []struct {
		radius float64
		want   int
	}{
		{width * 2, 2},   // exact multiple must not walk an extra ring
		{width * 2.5, 3}, // fractional part rounds up
		{width / 2, 1},
		{0, 1}, // degenerate radius still covers the center's ring
	}
	for _, tc := range cases {
		if got := expansionRings(tc.radius, level); got != tc.want {
			t.Errorf("expansionRings(%v) = %d, want %d", tc.radius, got, tc.want)
		}
	}
}

func TestExpansionRingsCapped(t *testing.T) {
	// The widest radius at the finest ladder level would otherwise ask
	// for hundreds of rings.
	finest := searchLevels[len(searchLevels)-1]
	widest := searchRadiiMeters[len(searchRadiiMeters)-1]
	if got := expansionRings(widest, finest); got != maxExpansionRings {
		t.Errorf("expansionRings(widest, finest) = %d, want cap %d", got, maxExpansionRings)
	}
}
