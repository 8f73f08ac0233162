package geo

import (
	"math"
	"sync"

	"github.com/hanish-rishen/RideShare/internal/models"
)

// Locator is the minimal interface the handlers need to find open requests
// near a point.
type Locator interface {
	Nearby(lat, lon, radiusKm float64, limit int) []models.RideRequest
	Upsert(r models.RideRequest)
	Remove(id string)
}

// DistanceKm returns the great-circle distance in kilometers between two
// points given in degrees. Haversine with R = 6371 km.
func DistanceKm(lat1, lon1, lat2, lon2 float64) float64 {
	const R = 6371.0
	dLat := (lat2 - lat1) * math.Pi / 180
	dLon := (lon2 - lon1) * math.Pi / 180
	a := math.Sin(dLat/2)*math.Sin(dLat/2) + math.Cos(lat1*math.Pi/180)*math.Cos(lat2*math.Pi/180)*math.Sin(dLon/2)*math.Sin(dLon/2)
	// float error can push a just past 1 for near-antipodal points, which
	// would make Sqrt(1-a) NaN
	if a < 0 {
		a = 0
	} else if a > 1 {
		a = 1
	}
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return R * c
}

// Index is an in-memory registry of open request positions. Used when no
// Redis is configured and as the backing for the /nearby read path in tests.
type Index struct {
	mu       sync.RWMutex
	requests map[string]models.RideRequest
}

func NewIndex() *Index {
	return &Index{requests: make(map[string]models.RideRequest)}
}

func (g *Index) Upsert(r models.RideRequest) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.requests[r.ID] = r
}

func (g *Index) Remove(id string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.requests, id)
}

// naive scan; in prod use geo-hash or H3
func (g *Index) Nearby(lat, lon, radiusKm float64, limit int) []models.RideRequest {
	g.mu.RLock()
	defer g.mu.RUnlock()
	type pair struct {
		r    models.RideRequest
		dist float64
	}
	arr := make([]pair, 0, len(g.requests))
	for _, r := range g.requests {
		dist := DistanceKm(lat, lon, r.Loc.Lat, r.Loc.Lon)
		if dist > radiusKm {
			continue
		}
		arr = append(arr, pair{r, dist})
	}
	// partial selection sort for top-N
	n := limit
	if n > len(arr) {
		n = len(arr)
	}
	for i := 0; i < n; i++ {
		minIdx := i
		for j := i + 1; j < len(arr); j++ {
			if arr[j].dist < arr[minIdx].dist {
				minIdx = j
			}
		}
		arr[i], arr[minIdx] = arr[minIdx], arr[i]
	}
	out := make([]models.RideRequest, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, arr[i].r)
	}
	return out
}
