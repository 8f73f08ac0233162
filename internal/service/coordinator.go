package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/hanish-rishen/RideShare/internal/eta"
	"github.com/hanish-rishen/RideShare/internal/match"
	"github.com/hanish-rishen/RideShare/internal/models"
	"github.com/hanish-rishen/RideShare/internal/notify"
	"github.com/hanish-rishen/RideShare/internal/observability"
	"github.com/hanish-rishen/RideShare/internal/storage"
)

// EventPublisher mirrors request lifecycle events onto the ingest stream.
type EventPublisher interface {
	PublishCreated(r models.RideRequest) error
	PublishWithdrawn(r models.RideRequest) error
}

// FareHolder places a manual-capture hold on one rider's fare share.
type FareHolder interface {
	HoldFareShare(ctx context.Context, amount int64, currency, customerID string) (string, error)
}

// Locator keeps a geo index of open requests in sync with the store.
type Locator interface {
	Upsert(r models.RideRequest)
	Remove(id string)
}

// Coordinator drives matching passes and applies their decisions. The engine
// itself is pure; everything with a side effect (snapshot reads, retirement
// deletes, notifications, fare holds, event publishing) lives here.
type Coordinator struct {
	Store    storage.RequestStore
	Engine   *match.Engine
	Notifier notify.Notifier
	Logger   *slog.Logger

	Producer EventPublisher // optional
	Geo      Locator        // optional
	Payments FareHolder     // optional

	ETAClient       eta.Client // optional OSRM client
	ETACache        *eta.Cache // optional ETA cache
	DefaultSpeedMps float64

	FareShareAmount int64 // minor units; 0 disables holds
	FareCurrency    string
}

// SubmitRequest persists a new request and immediately runs a matching pass
// for its rider. This is the "pass on submit" trigger; the poll ticker is
// the other one. Returns the match when the pass paired the rider, nil when
// the request is parked open.
func (c *Coordinator) SubmitRequest(ctx context.Context, r *models.RideRequest) (*models.MatchResult, error) {
	if err := c.Store.InsertRequest(ctx, r); err != nil {
		return nil, err
	}
	if c.Geo != nil {
		c.Geo.Upsert(*r)
	}
	if c.Producer != nil {
		if err := c.Producer.PublishCreated(*r); err != nil {
			c.Logger.Warn("publish request-created failed", "request_id", r.ID, "error", err)
		}
	}
	return c.MatchRider(ctx, r.RiderID)
}

// Withdraw retires a rider's open request without pairing it.
func (c *Coordinator) Withdraw(ctx context.Context, riderID string) error {
	var open *models.RideRequest
	if reqs, err := c.Store.ListOpenRequests(ctx); err == nil {
		for i := range reqs {
			if reqs[i].RiderID == riderID {
				open = &reqs[i]
				break
			}
		}
	}
	if err := c.Store.DeleteByRider(ctx, []string{riderID}); err != nil {
		return err
	}
	if open != nil {
		if c.Geo != nil {
			c.Geo.Remove(open.ID)
		}
		if c.Producer != nil {
			if err := c.Producer.PublishWithdrawn(*open); err != nil {
				c.Logger.Warn("publish request-withdrawn failed", "request_id", open.ID, "error", err)
			}
		}
	}
	return nil
}

// MatchRider runs one matching pass for a rider and applies the decision.
//
// A store read failure aborts the pass with no decision. A decision whose
// requests vanished between snapshot and apply lost a concurrent race and is
// discarded, not retried. A retirement delete failure is logged and the
// match still reported: the requests stay open and a later pass may
// legitimately re-offer the same pairing. Notification and fare holds are
// best-effort and never unwind an applied decision.
func (c *Coordinator) MatchRider(ctx context.Context, riderID string) (*models.MatchResult, error) {
	start := time.Now()
	defer func() {
		observability.PassLatency.Observe(time.Since(start).Seconds())
	}()

	requests, err := c.Store.ListOpenRequests(ctx)
	if err != nil {
		return nil, err
	}
	users, err := c.Store.ListUserProfiles(ctx)
	if err != nil {
		return nil, err
	}

	observability.PassesTotal.Inc()
	observability.OpenRequests.Set(float64(len(requests)))

	decision := c.Engine.RunPass(match.Snapshot{Requests: requests, Users: users}, riderID)
	if decision.Empty() {
		observability.NoMatchTotal.Inc()
		return nil, nil
	}
	res := decision.Matches[0]

	// re-validate before acting: a concurrent pass for the counterpart may
	// have consumed either half of this pair already
	for _, id := range decision.Retire {
		if _, ok, err := c.Store.GetRequest(ctx, id); err != nil {
			return nil, err
		} else if !ok {
			observability.RaceDiscards.Inc()
			c.Logger.Info("pairing lost race, decision discarded", "rider_id", riderID, "request_id", id)
			return nil, nil
		}
	}

	res.PickupETASec = c.pickupETA(res.Request.Loc, res.Counterpart.Loc)

	if err := c.Store.DeleteRequests(ctx, decision.Retire); err != nil {
		observability.RetireFailed.Inc()
		c.Logger.Error("retirement delete failed, requests remain open", "retire", decision.Retire, "error", err)
	}
	observability.MatchesTotal.Inc()

	if c.Geo != nil {
		for _, id := range decision.Retire {
			c.Geo.Remove(id)
		}
	}

	c.notifyBoth(res, users)
	c.holdFares(ctx, res)

	return &res, nil
}

// PollOnce sweeps the open requests in snapshot order, running a pass per
// rider. Riders consumed by an earlier pairing in the same sweep are
// skipped. Returns the number of pairs applied.
func (c *Coordinator) PollOnce(ctx context.Context) (int, error) {
	requests, err := c.Store.ListOpenRequests(ctx)
	if err != nil {
		return 0, err
	}
	matched := 0
	consumed := make(map[string]bool)
	for _, r := range requests {
		if consumed[r.ID] {
			continue
		}
		res, err := c.MatchRider(ctx, r.RiderID)
		if err != nil {
			return matched, err
		}
		if res != nil {
			matched++
			consumed[res.Request.ID] = true
			consumed[res.Counterpart.ID] = true
		}
	}
	return matched, nil
}

func (c *Coordinator) notifyBoth(res models.MatchResult, users []models.UserProfile) {
	if c.Notifier == nil {
		return
	}
	selfName := match.UnknownRider
	for _, u := range users {
		if u.ID == res.Request.RiderID {
			selfName = u.DisplayName
			break
		}
	}
	mirrored := models.MatchResult{
		Request:         res.Counterpart,
		Counterpart:     res.Request,
		CounterpartName: selfName,
		DistanceKm:      res.DistanceKm,
		PickupETASec:    res.PickupETASec,
	}
	if err := c.Notifier.NotifyMatch(res.Request.RiderID, res); err != nil {
		c.Logger.Warn("notify failed", "rider_id", res.Request.RiderID, "error", err)
	}
	if err := c.Notifier.NotifyMatch(res.Counterpart.RiderID, mirrored); err != nil {
		c.Logger.Warn("notify failed", "rider_id", res.Counterpart.RiderID, "error", err)
	}
}

func (c *Coordinator) holdFares(ctx context.Context, res models.MatchResult) {
	if c.Payments == nil || c.FareShareAmount <= 0 {
		return
	}
	currency := c.FareCurrency
	if currency == "" {
		currency = "inr"
	}
	for _, riderID := range []string{res.Request.RiderID, res.Counterpart.RiderID} {
		if _, err := c.Payments.HoldFareShare(ctx, c.FareShareAmount, currency, riderID); err != nil {
			c.Logger.Warn("fare hold failed", "rider_id", riderID, "error", err)
		}
	}
}

func (c *Coordinator) pickupETA(from, to models.Coord) float64 {
	if c.ETACache != nil {
		if v, ok := c.ETACache.Get(from, to); ok {
			return v
		}
	}
	if c.ETAClient != nil {
		if v, err := c.ETAClient.EstimateSeconds(from, to); err == nil {
			if c.ETACache != nil {
				c.ETACache.Set(from, to, v)
			}
			return v
		}
	}
	return eta.EstimateSeconds(from, to, c.DefaultSpeedMps)
}
