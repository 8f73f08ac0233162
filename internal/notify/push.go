package notify

import (
	"bytes"
	"encoding/json"
	"net/http"
	"time"

	"github.com/hanish-rishen/RideShare/internal/models"
)

// PushNotifier posts a FCM-shaped JSON payload to a push provider endpoint.
// Strictly best-effort: delivery mechanics are the provider's problem and a
// failed post never unwinds a match that was already applied.
type PushNotifier struct {
	Endpoint string
	Key      string
	Client   *http.Client
}

func NewPushNotifier(endpoint, key string) *PushNotifier {
	return &PushNotifier{Endpoint: endpoint, Key: key, Client: &http.Client{Timeout: 3 * time.Second}}
}

func (p *PushNotifier) NotifyMatch(riderID string, res models.MatchResult) error {
	body := map[string]interface{}{"message": map[string]interface{}{
		"token": riderID,
		"data": map[string]interface{}{
			"counterpart": res.CounterpartName,
			"contact":     res.Counterpart.Contact,
			"distance_km": res.DistanceKm,
		},
	}}
	b, _ := json.Marshal(body)
	req, err := http.NewRequest("POST", p.Endpoint, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if p.Key != "" {
		req.Header.Set("Authorization", "Bearer "+p.Key)
	}
	resp, err := p.Client.Do(req)
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}
