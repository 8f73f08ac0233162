package models

import "time"

type Coord struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// RideRequest is one rider's outstanding ask for a shared ride. Origin and
// Destination are free-text place labels; Loc is the rider's position captured
// once when the request is created and immutable after that. A rider has at
// most one open request at a time (enforced at insertion, not here).
type RideRequest struct {
	ID          string    `json:"id"`
	RiderID     string    `json:"rider_id"`
	Origin      string    `json:"origin"`
	Destination string    `json:"destination"`
	Loc         Coord     `json:"loc"`
	Contact     string    `json:"contact,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

type UserProfile struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

// MatchResult pairs a request with its chosen counterpart. Directional:
// Counterpart.Origin equals Request.Destination. Built per pass, never stored.
type MatchResult struct {
	Request         RideRequest `json:"request"`
	Counterpart     RideRequest `json:"counterpart"`
	CounterpartName string      `json:"counterpart_name"`
	DistanceKm      float64     `json:"distance_km"`
	PickupETASec    float64     `json:"pickup_eta_seconds,omitempty"`
}

// MatchDecision is the full output of one matching pass: matches found plus
// the request ids the caller should delete from the store.
type MatchDecision struct {
	Matches []MatchResult `json:"matches"`
	Retire  []string      `json:"retire"`
}

// Empty reports whether the pass found nothing to act on.
func (d MatchDecision) Empty() bool { return len(d.Matches) == 0 && len(d.Retire) == 0 }
