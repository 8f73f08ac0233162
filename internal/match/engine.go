package match

import "github.com/hanish-rishen/RideShare/internal/models"

// Snapshot is a point-in-time read of the open requests and known profiles.
// The engine treats Requests order as significant: it defines tie-breaking.
type Snapshot struct {
	Requests []models.RideRequest
	Users    []models.UserProfile
}

// UnknownRider is the display name used when a counterpart has no profile
// row. A missing profile is not an error; the join is best-effort.
const UnknownRider = "Unknown"

// Engine runs matching passes. It performs no I/O and never mutates the
// snapshot; the caller owns loading the snapshot and applying the decision.
type Engine struct {
	Filter Filter
}

func NewEngine(f Filter) *Engine { return &Engine{Filter: f} }

// RunPass computes the match decision for one rider against a snapshot.
//
// If the rider has no open request in the snapshot the pass is a no-op with
// an empty decision; that is the normal "nothing submitted yet" outcome, not
// an error. When a winner is found the decision retires both requests and
// carries exactly one MatchResult. "No match found" is likewise an ordinary
// empty decision.
func (e *Engine) RunPass(snap Snapshot, selfRiderID string) models.MatchDecision {
	var self models.RideRequest
	found := false
	for _, r := range snap.Requests {
		if r.RiderID == selfRiderID {
			self = r
			found = true
			break
		}
	}
	if !found {
		return models.MatchDecision{}
	}

	var candidates []Candidate
	for _, r := range snap.Requests {
		if r.ID == self.ID {
			continue
		}
		if dist, ok := e.Filter.Eligible(self, r); ok {
			candidates = append(candidates, Candidate{Request: r, DistanceKm: dist})
		}
	}

	winner, ok := SelectBest(candidates)
	if !ok {
		return models.MatchDecision{}
	}

	names := make(map[string]string, len(snap.Users))
	for _, u := range snap.Users {
		names[u.ID] = u.DisplayName
	}
	name := names[winner.Request.RiderID]
	if name == "" {
		name = UnknownRider
	}

	return models.MatchDecision{
		Matches: []models.MatchResult{{
			Request:         self,
			Counterpart:     winner.Request,
			CounterpartName: name,
			DistanceKm:      winner.DistanceKm,
		}},
		Retire: []string{self.ID, winner.Request.ID},
	}
}
