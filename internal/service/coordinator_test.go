package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/hanish-rishen/RideShare/internal/match"
	"github.com/hanish-rishen/RideShare/internal/models"
	"github.com/hanish-rishen/RideShare/internal/storage"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newCoordinator(store storage.RequestStore, n *fakeNotifier) *Coordinator {
	return &Coordinator{
		Store:           store,
		Engine:          match.NewEngine(match.NewFilter()),
		Notifier:        n,
		Logger:          testLogger(),
		DefaultSpeedMps: 10,
	}
}

type fakeNotifier struct {
	calls []string
	fail  bool
}

func (f *fakeNotifier) NotifyMatch(riderID string, res models.MatchResult) error {
	f.calls = append(f.calls, riderID)
	if f.fail {
		return errors.New("push provider down")
	}
	return nil
}

// flakyStore wraps a MemoryStore to inject failures and vanishing rows.
type flakyStore struct {
	*storage.MemoryStore
	failDelete  bool
	vanishedIDs map[string]bool
}

func (f *flakyStore) GetRequest(ctx context.Context, id string) (models.RideRequest, bool, error) {
	if f.vanishedIDs[id] {
		return models.RideRequest{}, false, nil
	}
	return f.MemoryStore.GetRequest(ctx, id)
}

func (f *flakyStore) DeleteRequests(ctx context.Context, ids []string) error {
	if f.failDelete {
		return storage.ErrStoreWrite
	}
	return f.MemoryStore.DeleteRequests(ctx, ids)
}

func seedPair(t *testing.T, s storage.RequestStore) {
	t.Helper()
	ctx := context.Background()
	reqs := []models.RideRequest{
		{ID: "r1", RiderID: "u1", Origin: "Techpark", Destination: "Abode", Loc: models.Coord{Lat: 12.93, Lon: 77.61}},
		{ID: "r2", RiderID: "u2", Origin: "Abode", Destination: "Techpark", Loc: models.Coord{Lat: 12.94, Lon: 77.62}},
	}
	for i := range reqs {
		if err := s.InsertRequest(ctx, &reqs[i]); err != nil {
			t.Fatal(err)
		}
	}
}

func TestMatchRiderRetiresAndNotifiesBoth(t *testing.T) {
	store := storage.NewMemoryStore()
	store.PutProfile(models.UserProfile{ID: "u1", DisplayName: "Hanish"})
	store.PutProfile(models.UserProfile{ID: "u2", DisplayName: "Priya"})
	n := &fakeNotifier{}
	c := newCoordinator(store, n)
	seedPair(t, store)

	res, err := c.MatchRider(context.Background(), "u1")
	if err != nil {
		t.Fatal(err)
	}
	if res == nil || res.Counterpart.ID != "r2" || res.CounterpartName != "Priya" {
		t.Fatalf("unexpected result %+v", res)
	}
	if res.PickupETASec <= 0 {
		t.Fatalf("expected a pickup ETA, got %f", res.PickupETASec)
	}

	open, _ := store.ListOpenRequests(context.Background())
	if len(open) != 0 {
		t.Fatalf("both requests should be retired, %d left", len(open))
	}
	if len(n.calls) != 2 || n.calls[0] != "u1" || n.calls[1] != "u2" {
		t.Fatalf("expected both riders notified, got %v", n.calls)
	}
}

func TestMatchRiderNoOpenRequest(t *testing.T) {
	store := storage.NewMemoryStore()
	c := newCoordinator(store, &fakeNotifier{})
	res, err := c.MatchRider(context.Background(), "nobody")
	if err != nil || res != nil {
		t.Fatalf("expected quiet no-op, got res=%v err=%v", res, err)
	}
}

func TestMatchRiderDiscardsLostRace(t *testing.T) {
	mem := storage.NewMemoryStore()
	store := &flakyStore{MemoryStore: mem, vanishedIDs: map[string]bool{"r2": true}}
	n := &fakeNotifier{}
	c := newCoordinator(store, n)
	seedPair(t, mem)

	res, err := c.MatchRider(context.Background(), "u1")
	if err != nil {
		t.Fatal(err)
	}
	if res != nil {
		t.Fatalf("decision from a lost race must be discarded, got %+v", res)
	}
	if len(n.calls) != 0 {
		t.Fatalf("no notifications after a discarded decision, got %v", n.calls)
	}
	// the surviving request is untouched
	if _, ok, _ := mem.GetRequest(context.Background(), "r1"); !ok {
		t.Fatal("r1 must remain open after a discarded decision")
	}
}

func TestMatchRiderReportsMatchDespiteDeleteFailure(t *testing.T) {
	mem := storage.NewMemoryStore()
	store := &flakyStore{MemoryStore: mem, failDelete: true}
	n := &fakeNotifier{}
	c := newCoordinator(store, n)
	seedPair(t, mem)

	res, err := c.MatchRider(context.Background(), "u1")
	if err != nil {
		t.Fatalf("delete failure must not become a pass error: %v", err)
	}
	if res == nil {
		t.Fatal("match must still be reported when retirement fails")
	}
	if len(n.calls) != 2 {
		t.Fatalf("riders still get notified, got %v", n.calls)
	}
}

func TestMatchRiderNotifyFailureNotPropagated(t *testing.T) {
	store := storage.NewMemoryStore()
	n := &fakeNotifier{fail: true}
	c := newCoordinator(store, n)
	seedPair(t, store)

	res, err := c.MatchRider(context.Background(), "u1")
	if err != nil {
		t.Fatalf("notify failure must never propagate: %v", err)
	}
	if res == nil {
		t.Fatal("expected the match regardless of notify failure")
	}
}

func TestSubmitRequestMatchesImmediately(t *testing.T) {
	store := storage.NewMemoryStore()
	c := newCoordinator(store, &fakeNotifier{})

	first := models.RideRequest{RiderID: "u1", Origin: "Techpark", Destination: "Abode", Loc: models.Coord{Lat: 12.93, Lon: 77.61}}
	res, err := c.SubmitRequest(context.Background(), &first)
	if err != nil || res != nil {
		t.Fatalf("first submit should park open, got res=%v err=%v", res, err)
	}

	second := models.RideRequest{RiderID: "u2", Origin: "Abode", Destination: "Techpark", Loc: models.Coord{Lat: 12.94, Lon: 77.62}}
	res, err = c.SubmitRequest(context.Background(), &second)
	if err != nil {
		t.Fatal(err)
	}
	if res == nil || res.Counterpart.RiderID != "u1" {
		t.Fatalf("second submit should pair with the first, got %+v", res)
	}
}

func TestWithdrawDeletesOpenRequest(t *testing.T) {
	store := storage.NewMemoryStore()
	c := newCoordinator(store, &fakeNotifier{})
	seedPair(t, store)

	if err := c.Withdraw(context.Background(), "u1"); err != nil {
		t.Fatal(err)
	}
	open, _ := store.ListOpenRequests(context.Background())
	if len(open) != 1 || open[0].RiderID != "u2" {
		t.Fatalf("expected only u2 open, got %v", open)
	}
	// withdrawing again is a no-op
	if err := c.Withdraw(context.Background(), "u1"); err != nil {
		t.Fatal(err)
	}
}

func TestPollOncePairsAndLeavesOdd(t *testing.T) {
	store := storage.NewMemoryStore()
	c := newCoordinator(store, &fakeNotifier{})
	ctx := context.Background()
	reqs := []models.RideRequest{
		{ID: "r0", RiderID: "u0", Origin: "Techpark", Destination: "Abode", Loc: models.Coord{Lat: 12.930, Lon: 77.610}},
		{ID: "r1", RiderID: "u1", Origin: "Abode", Destination: "Techpark", Loc: models.Coord{Lat: 12.939, Lon: 77.610}},
		{ID: "r2", RiderID: "u2", Origin: "Abode", Destination: "Techpark", Loc: models.Coord{Lat: 12.957, Lon: 77.610}},
	}
	for i := range reqs {
		if err := store.InsertRequest(ctx, &reqs[i]); err != nil {
			t.Fatal(err)
		}
	}

	matched, err := c.PollOnce(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if matched != 1 {
		t.Fatalf("expected exactly one pair, got %d", matched)
	}
	open, _ := store.ListOpenRequests(ctx)
	if len(open) != 1 || open[0].ID != "r2" {
		t.Fatalf("the farther candidate should stay open, got %v", open)
	}
}
