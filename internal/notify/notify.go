package notify

import "github.com/hanish-rishen/RideShare/internal/models"

// Notifier tells a rider their request was paired. Best-effort everywhere:
// callers log failures and move on, they never roll back the match.
type Notifier interface {
	NotifyMatch(riderID string, res models.MatchResult) error
}

// Fanout tries the live websocket first and falls back to push when the
// rider has no open session.
type Fanout struct {
	WS   *WSRegistry
	Push Notifier // optional
}

func (f *Fanout) NotifyMatch(riderID string, res models.MatchResult) error {
	if f.WS != nil {
		if err := f.WS.NotifyMatch(riderID, res); err == nil {
			return nil
		}
	}
	if f.Push != nil {
		return f.Push.NotifyMatch(riderID, res)
	}
	return ErrNoSession
}
