package geo

import (
	"math"

	"github.com/golang/geo/s2"
)

// StorageLevel is the fixed S2 resolution at which provider locations are
// indexed. Level 11 cells average roughly 4 km across, which suits
// freight-scale search areas.
const StorageLevel = 11

const earthRadiusMeters = 6371010.0

// searchLevels is the ascending ladder of resolutions the finder walks,
// outer loop. Levels finer than StorageLevel are truncated to their
// storage-level ancestor before lookup.
var searchLevels = []int{11, 13, 15}

// searchRadiiMeters is the ascending ladder of target radii, inner loop.
var searchRadiiMeters = []float64{2000, 10000, 50000, 250000}

// maxExpansionRings bounds the neighbor walk for a single (level, radius)
// step so a wide radius at a fine level cannot blow up the frontier.
const maxExpansionRings = 64

// CellKeyAt returns the S2 token of the cell containing the point at the
// given level.
func CellKeyAt(lat, lng float64, level int) string {
	return cellAt(lat, lng, level).ToToken()
}

// StorageCellKey returns the cell key providers are stored under.
func StorageCellKey(lat, lng float64) string {
	return CellKeyAt(lat, lng, StorageLevel)
}

func cellAt(lat, lng float64, level int) s2.CellID {
	return s2.CellIDFromLatLng(s2.LatLngFromDegrees(lat, lng)).Parent(level)
}

// truncateToStorage maps a cell to its storage-level ancestor. Truncation
// on s2.CellID is a pure bit operation, no string surgery.
func truncateToStorage(id s2.CellID) s2.CellID {
	if id.Level() > StorageLevel {
		return id.Parent(StorageLevel)
	}
	return id
}

// ringWidthMeters is the average edge length of a cell at the given
// level, used to convert a target radius into a number of neighbor rings.
func ringWidthMeters(level int) float64 {
	return s2.AvgEdgeMetric.Value(level) * earthRadiusMeters
}

func expansionRings(radiusMeters float64, level int) int {
	rings := int(math.Ceil(radiusMeters / ringWidthMeters(level)))
	if rings < 1 {
		rings = 1
	}
	if rings > maxExpansionRings {
		rings = maxExpansionRings
	}
	return rings
}
