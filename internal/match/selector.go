package match

import "github.com/hanish-rishen/RideShare/internal/models"

// Candidate is a request that passed the filter, with its distance to the
// reference request.
type Candidate struct {
	Request    models.RideRequest
	DistanceKm float64
}

// SelectBest picks the winning candidate: minimum distance, with exact ties
// going to the earlier entry in input order. Input order is the snapshot's
// iteration order, so a fixed snapshot always yields the same winner.
func SelectBest(candidates []Candidate) (Candidate, bool) {
	if len(candidates) == 0 {
		return Candidate{}, false
	}
	best := candidates[0]
	for _, c := range candidates[1:] {
		if c.DistanceKm < best.DistanceKm {
			best = c
		}
	}
	return best, true
}
