package geo

import (
	"context"

	"github.com/golang/geo/s2"
	"github.com/kgvl/freightbid-backend/internal/models"
)

// DefaultTargetCount is the number of candidates dispatch asks for.
const DefaultTargetCount = 5

// lookupBatchSize caps how many cell keys a single store query carries.
const lookupBatchSize = 500

// LocationStore resolves storage-level cell keys to the available
// providers currently inside those cells.
type LocationStore interface {
	ProvidersInCells(ctx context.Context, cellKeys []string) ([]models.ProviderLocation, error)
}

// Finder locates nearby available providers by expanding outward over the
// hierarchical cell index instead of running an exact geo query.
type Finder struct {
	store LocationStore
}

func NewFinder(store LocationStore) *Finder {
	return &Finder{store: store}
}

// FindNearby returns up to targetCount distinct provider ids around the
// point, best effort. It walks a (level, radius) matrix: each resolution
// level is tried across the whole radius ladder before moving to the next
// level, and the search returns as soon as enough candidates are found.
// An empty provider pool yields an empty result, not an error.
func (f *Finder) FindNearby(ctx context.Context, lat, lng float64, targetCount int) ([]uint, error) {
	if targetCount <= 0 {
		targetCount = DefaultTargetCount
	}

	// Neighbor sets are invariant within one search; cache them per call.
	neighborCache := make(map[s2.CellID][]s2.CellID)
	// Storage-level keys already looked up in an earlier (level, radius)
	// iteration are skipped for the rest of the search.
	visited := make(map[s2.CellID]struct{})

	seen := make(map[uint]struct{})
	var found []uint

	for _, level := range searchLevels {
		for _, radius := range searchRadiiMeters {
			cover := coverDisc(cellAt(lat, lng, level), expansionRings(radius, level), neighborCache)

			var keys []string
			for id := range cover {
				storageID := truncateToStorage(id)
				if _, ok := visited[storageID]; ok {
					continue
				}
				visited[storageID] = struct{}{}
				keys = append(keys, storageID.ToToken())
			}

			for start := 0; start < len(keys); start += lookupBatchSize {
				end := start + lookupBatchSize
				if end > len(keys) {
					end = len(keys)
				}
				locations, err := f.store.ProvidersInCells(ctx, keys[start:end])
				if err != nil {
					return nil, err
				}
				for _, loc := range locations {
					if _, ok := seen[loc.ProviderID]; ok {
						continue
					}
					seen[loc.ProviderID] = struct{}{}
					found = append(found, loc.ProviderID)
					if len(found) >= targetCount {
						return found, nil
					}
				}
			}
		}
	}

	return found, nil
}

// coverDisc approximates a disc of the given ring count around the center
// cell by repeatedly unioning in each frontier cell's edge neighbors.
func coverDisc(center s2.CellID, rings int, neighborCache map[s2.CellID][]s2.CellID) map[s2.CellID]struct{} {
	cover := map[s2.CellID]struct{}{center: {}}
	frontier := []s2.CellID{center}

	for i := 0; i < rings && len(frontier) > 0; i++ {
		var next []s2.CellID
		for _, id := range frontier {
			for _, n := range cachedNeighbors(id, neighborCache) {
				if _, ok := cover[n]; ok {
					continue
				}
				cover[n] = struct{}{}
				next = append(next, n)
			}
		}
		frontier = next
	}
	return cover
}

func cachedNeighbors(id s2.CellID, cache map[s2.CellID][]s2.CellID) []s2.CellID {
	if ns, ok := cache[id]; ok {
		return ns
	}
	edge := id.EdgeNeighbors()
	ns := edge[:]
	cache[id] = ns
	return ns
}
