package httpapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/hanish-rishen/RideShare/internal/config"
	"github.com/hanish-rishen/RideShare/internal/logging"
)

func testServer() *Server {
	cfg := config.ServerConfig{MatchRadiusKm: 5.0, NearbyLimit: 8, DefaultSpeedMps: 10}
	return NewServer(cfg, logging.NewLogger("error"))
}

func postRequest(t *testing.T, s *Server, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest("POST", "/api/v1/requests", strings.NewReader(body))
	w := httptest.NewRecorder()
	s.ServeHTTP(w, req)
	return w
}

func TestSubmitThenMatchOverHTTP(t *testing.T) {
	s := testServer()

	w := postRequest(t, s, `{"rider_id":"u1","origin":"Techpark","destination":"Abode","loc":{"lat":12.93,"lon":77.61}}`)
	if w.Code != http.StatusAccepted {
		t.Fatalf("first submit: expected 202, got %d: %s", w.Code, w.Body.String())
	}

	w = postRequest(t, s, `{"rider_id":"u2","origin":"Abode","destination":"Techpark","loc":{"lat":12.94,"lon":77.62}}`)
	if w.Code != http.StatusOK {
		t.Fatalf("second submit: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp struct {
		Status string `json:"status"`
		Match  struct {
			Counterpart struct {
				RiderID string `json:"rider_id"`
			} `json:"counterpart"`
		} `json:"match"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Status != "matched" || resp.Match.Counterpart.RiderID != "u1" {
		t.Fatalf("unexpected response %s", w.Body.String())
	}
}

func TestSubmitRejectsIncompleteRequest(t *testing.T) {
	s := testServer()
	w := postRequest(t, s, `{"rider_id":"u1"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestWithdrawOverHTTP(t *testing.T) {
	s := testServer()
	postRequest(t, s, `{"rider_id":"u1","origin":"Techpark","destination":"Abode","loc":{"lat":12.93,"lon":77.61}}`)

	req := httptest.NewRequest("DELETE", "/api/v1/requests/u1", nil)
	w := httptest.NewRecorder()
	s.ServeHTTP(w, req)
	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", w.Code)
	}
}

func TestNearbyOverHTTP(t *testing.T) {
	s := testServer()
	postRequest(t, s, `{"rider_id":"u1","origin":"Techpark","destination":"Abode","loc":{"lat":12.93,"lon":77.61}}`)

	req := httptest.NewRequest("GET", "/api/v1/requests/nearby?lat=12.931&lon=77.611", nil)
	w := httptest.NewRecorder()
	s.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var resp struct {
		Requests []struct {
			RiderID string `json:"rider_id"`
		} `json:"requests"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Requests) != 1 || resp.Requests[0].RiderID != "u1" {
		t.Fatalf("unexpected nearby response %s", w.Body.String())
	}
}

func TestNearbyRequiresCoords(t *testing.T) {
	s := testServer()
	req := httptest.NewRequest("GET", "/api/v1/requests/nearby", nil)
	w := httptest.NewRecorder()
	s.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}
