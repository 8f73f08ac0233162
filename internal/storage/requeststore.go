package storage

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hanish-rishen/RideShare/internal/models"
)

// Store-boundary error kinds. Engine code never sees these; they surface to
// the coordinator and the HTTP layer as transient, user-visible failures.
var (
	ErrStoreRead  = errors.New("store read failed")
	ErrStoreWrite = errors.New("store write failed")
)

// RequestStore is the durable home of ride requests and user profiles.
//
// ListOpenRequests defines the snapshot iteration order the engine's
// tie-break depends on; implementations must keep it stable for a given set
// of rows. All deletes are idempotent: removing an id or rider that no
// longer exists is success, which keeps racing matching passes safe.
type RequestStore interface {
	ListOpenRequests(ctx context.Context) ([]models.RideRequest, error)
	ListUserProfiles(ctx context.Context) ([]models.UserProfile, error)
	GetRequest(ctx context.Context, id string) (models.RideRequest, bool, error)
	InsertRequest(ctx context.Context, r *models.RideRequest) error
	DeleteRequests(ctx context.Context, ids []string) error
	DeleteByRider(ctx context.Context, riderIDs []string) error
}

// MemoryStore keeps everything in process, preserving insertion order for
// ListOpenRequests. Used in tests and when no PG_DSN is configured.
type MemoryStore struct {
	mu       sync.RWMutex
	order    []string
	requests map[string]models.RideRequest
	users    map[string]models.UserProfile
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		requests: make(map[string]models.RideRequest),
		users:    make(map[string]models.UserProfile),
	}
}

func (m *MemoryStore) ListOpenRequests(ctx context.Context) ([]models.RideRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]models.RideRequest, 0, len(m.order))
	for _, id := range m.order {
		if r, ok := m.requests[id]; ok {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *MemoryStore) ListUserProfiles(ctx context.Context) ([]models.UserProfile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]models.UserProfile, 0, len(m.users))
	for _, u := range m.users {
		out = append(out, u)
	}
	return out, nil
}

func (m *MemoryStore) GetRequest(ctx context.Context, id string) (models.RideRequest, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.requests[id]
	return r, ok, nil
}

func (m *MemoryStore) InsertRequest(ctx context.Context, r *models.RideRequest) error {
	stampRequest(r)
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.requests[r.ID]; !exists {
		m.order = append(m.order, r.ID)
	}
	m.requests[r.ID] = *r
	return nil
}

func (m *MemoryStore) DeleteRequests(ctx context.Context, ids []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range ids {
		delete(m.requests, id)
	}
	return nil
}

func (m *MemoryStore) DeleteByRider(ctx context.Context, riderIDs []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, rid := range riderIDs {
		for id, r := range m.requests {
			if r.RiderID == rid {
				delete(m.requests, id)
			}
		}
	}
	return nil
}

// PutProfile is a test/bootstrap helper; profiles have no lifecycle of their
// own in the matching flow.
func (m *MemoryStore) PutProfile(u models.UserProfile) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[u.ID] = u
}

func stampRequest(r *models.RideRequest) {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
}
