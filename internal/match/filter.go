package match

import (
	"time"

	"github.com/hanish-rishen/RideShare/internal/geo"
	"github.com/hanish-rishen/RideShare/internal/models"
)

// DefaultMaxDistanceKm is how far apart two riders may currently be and
// still share a pickup.
const DefaultMaxDistanceKm = 5.0

// Filter decides whether a candidate request can legally pair with a
// reference request. All rules must hold: the candidate's leg starts where
// the reference's ends, the two riders are currently within MaxDistanceKm of
// each other, and they are different riders. MaxAgeGap, when set, also
// bounds how far apart the two requests were created; the zero value leaves
// that rule off, which is the production configuration.
type Filter struct {
	MaxDistanceKm float64
	MaxAgeGap     time.Duration
}

func NewFilter() Filter {
	return Filter{MaxDistanceKm: DefaultMaxDistanceKm}
}

// Eligible reports whether cand may pair with ref, returning the distance in
// km between the two riders when it may.
func (f Filter) Eligible(ref, cand models.RideRequest) (float64, bool) {
	if cand.RiderID == ref.RiderID {
		return 0, false
	}
	// exact, case-sensitive label equality ("Techpark" != "techpark");
	// matches upstream behavior, deliberately not folded
	if cand.Origin != ref.Destination {
		return 0, false
	}
	if f.MaxAgeGap > 0 {
		gap := ref.CreatedAt.Sub(cand.CreatedAt)
		if gap < 0 {
			gap = -gap
		}
		if gap > f.MaxAgeGap {
			return 0, false
		}
	}
	max := f.MaxDistanceKm
	if max <= 0 {
		max = DefaultMaxDistanceKm
	}
	dist := geo.DistanceKm(ref.Loc.Lat, ref.Loc.Lon, cand.Loc.Lat, cand.Loc.Lon)
	if dist > max {
		return 0, false
	}
	return dist, true
}
