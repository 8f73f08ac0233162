package storage

import (
	"context"
	"testing"

	"github.com/hanish-rishen/RideShare/internal/models"
)

func TestMemoryStoreInsertionOrder(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	for _, id := range []string{"c", "a", "b"} {
		if err := s.InsertRequest(ctx, &models.RideRequest{ID: id, RiderID: "u-" + id}); err != nil {
			t.Fatal(err)
		}
	}
	got, err := s.ListOpenRequests(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 || got[0].ID != "c" || got[1].ID != "a" || got[2].ID != "b" {
		t.Fatalf("expected insertion order, got %v", got)
	}
}

func TestMemoryStoreDeleteIdempotent(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	r := models.RideRequest{ID: "r1", RiderID: "u1"}
	if err := s.InsertRequest(ctx, &r); err != nil {
		t.Fatal(err)
	}
	if err := s.DeleteRequests(ctx, []string{"r1", "never-existed"}); err != nil {
		t.Fatalf("first delete: %v", err)
	}
	// deleting again must be a no-op, not an error
	if err := s.DeleteRequests(ctx, []string{"r1"}); err != nil {
		t.Fatalf("second delete: %v", err)
	}
	if _, ok, _ := s.GetRequest(ctx, "r1"); ok {
		t.Fatal("r1 should be gone")
	}
}

func TestMemoryStoreDeleteByRider(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	_ = s.InsertRequest(ctx, &models.RideRequest{ID: "r1", RiderID: "u1"})
	_ = s.InsertRequest(ctx, &models.RideRequest{ID: "r2", RiderID: "u2"})
	if err := s.DeleteByRider(ctx, []string{"u1", "ghost"}); err != nil {
		t.Fatal(err)
	}
	got, _ := s.ListOpenRequests(ctx)
	if len(got) != 1 || got[0].ID != "r2" {
		t.Fatalf("expected only r2 left, got %v", got)
	}
}

func TestMemoryStoreStampsIDAndTime(t *testing.T) {
	s := NewMemoryStore()
	r := models.RideRequest{RiderID: "u1"}
	if err := s.InsertRequest(context.Background(), &r); err != nil {
		t.Fatal(err)
	}
	if r.ID == "" || r.CreatedAt.IsZero() {
		t.Fatalf("expected minted id and timestamp, got %+v", r)
	}
}
