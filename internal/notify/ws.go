package notify

import (
	"log"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/hanish-rishen/RideShare/internal/models"
)

// WSSession represents a connected rider session
type WSSession struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (s *WSSession) Send(res models.MatchResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn.WriteJSON(res)
}

// WSRegistry holds rider sessions keyed by rider id.
type WSRegistry struct {
	mu       sync.RWMutex
	sessions map[string]*WSSession
}

func NewWSRegistry() *WSRegistry { return &WSRegistry{sessions: make(map[string]*WSSession)} }

func (r *WSRegistry) Add(riderID string, conn *websocket.Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[riderID] = &WSSession{conn: conn}
}

func (r *WSRegistry) Remove(riderID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, riderID)
}

func (r *WSRegistry) NotifyMatch(riderID string, res models.MatchResult) error {
	r.mu.RLock()
	s, ok := r.sessions[riderID]
	r.mu.RUnlock()
	if !ok {
		return ErrNoSession
	}
	if err := s.Send(res); err != nil {
		log.Printf("ws send error: %v", err)
		return err
	}
	return nil
}

var ErrNoSession = &NoSessionError{}

type NoSessionError struct{}

func (n *NoSessionError) Error() string { return "no ws session" }
