package httpapi

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hanish-rishen/RideShare/internal/config"
	"github.com/hanish-rishen/RideShare/internal/eta"
	"github.com/hanish-rishen/RideShare/internal/geo"
	"github.com/hanish-rishen/RideShare/internal/ingest"
	"github.com/hanish-rishen/RideShare/internal/match"
	"github.com/hanish-rishen/RideShare/internal/models"
	"github.com/hanish-rishen/RideShare/internal/notify"
	"github.com/hanish-rishen/RideShare/internal/payments"
	"github.com/hanish-rishen/RideShare/internal/service"
	"github.com/hanish-rishen/RideShare/internal/storage"
)

type Server struct {
	Coordinator *service.Coordinator
	Geo         geo.Locator
	WSReg       *notify.WSRegistry
	Kafka       *ingest.KafkaProducer

	cfg         config.ServerConfig
	nearbyLimit int
	mux         *mux.Router
	logger      *slog.Logger
}

// NewServer wires the full dependency graph from config: Redis-backed geo
// when REDIS_ADDR is set, Postgres when PG_DSN is set, Kafka and Stripe when
// configured, in-memory fallbacks otherwise.
func NewServer(cfg config.ServerConfig, logger *slog.Logger) *Server {
	var locator geo.Locator
	if cfg.RedisAddr != "" {
		locator = geo.NewRedisGeo(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisGeoKey)
	} else {
		locator = geo.NewIndex()
	}

	var store storage.RequestStore
	if cfg.PGDSN != "" {
		if ps, err := storage.NewPostgresStore(cfg.PGDSN); err == nil {
			store = ps
		} else {
			logger.Error("postgres unavailable, falling back to memory store", "error", err)
		}
	}
	if store == nil {
		store = storage.NewMemoryStore()
	}

	var kp *ingest.KafkaProducer
	if len(cfg.KafkaBrokers) > 0 {
		kp = ingest.NewKafkaProducer(cfg.KafkaBrokers, cfg.KafkaTopic)
	}

	wsreg := notify.NewWSRegistry()
	var push notify.Notifier
	if cfg.PushEndpoint != "" {
		push = notify.NewPushNotifier(cfg.PushEndpoint, cfg.PushKey)
	}

	var etaClient eta.Client
	if cfg.OSRMEndpoint != "" {
		etaClient = eta.NewOSRMClient(cfg.OSRMEndpoint)
	}

	coord := &service.Coordinator{
		Store:           store,
		Engine:          match.NewEngine(match.Filter{MaxDistanceKm: cfg.MatchRadiusKm, MaxAgeGap: cfg.MaxPairAgeGap}),
		Notifier:        &notify.Fanout{WS: wsreg, Push: push},
		Logger:          logger,
		Geo:             locator,
		ETAClient:       etaClient,
		DefaultSpeedMps: cfg.DefaultSpeedMps,
	}
	if kp != nil {
		coord.Producer = kp
	}
	if cfg.FareSplitEnabled {
		coord.Payments = payments.NewStripeClient()
		coord.FareShareAmount = 5000 // minor units, flat share until pricing lands
	}

	s := &Server{
		Coordinator: coord,
		Geo:         locator,
		WSReg:       wsreg,
		Kafka:       kp,
		cfg:         cfg,
		nearbyLimit: cfg.NearbyLimit,
		mux:         mux.NewRouter(),
		logger:      logger,
	}
	s.registerMiddleware()
	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("/api/v1/requests", s.handleSubmitRequest).Methods("POST")
	s.mux.HandleFunc("/api/v1/requests/nearby", s.handleNearby).Methods("GET")
	s.mux.HandleFunc("/api/v1/requests/{rider_id}", s.handleWithdraw).Methods("DELETE")
	s.mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); w.Write([]byte("ok")) }).Methods("GET")
	s.mux.Handle("/metrics", promhttp.Handler())
	s.mux.HandleFunc("/ws/{rider_id}", s.handleWS)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { s.mux.ServeHTTP(w, r) }

func (s *Server) handleSubmitRequest(w http.ResponseWriter, r *http.Request) {
	var req models.RideRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.RiderID == "" || req.Origin == "" || req.Destination == "" {
		http.Error(w, "rider_id, origin and destination are required", http.StatusBadRequest)
		return
	}
	res, err := s.Coordinator.SubmitRequest(r.Context(), &req)
	if err != nil {
		s.logger.Error("submit failed", "rider_id", req.RiderID, "error", err)
		status := http.StatusServiceUnavailable
		if !errors.Is(err, storage.ErrStoreRead) && !errors.Is(err, storage.ErrStoreWrite) {
			status = http.StatusInternalServerError
		}
		http.Error(w, "could not find a ride, try again", status)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if res == nil {
		w.WriteHeader(http.StatusAccepted)
		json.NewEncoder(w).Encode(map[string]any{"request_id": req.ID, "status": "searching"})
		return
	}
	json.NewEncoder(w).Encode(map[string]any{"request_id": req.ID, "status": "matched", "match": res})
}

func (s *Server) handleWithdraw(w http.ResponseWriter, r *http.Request) {
	riderID := mux.Vars(r)["rider_id"]
	if err := s.Coordinator.Withdraw(r.Context(), riderID); err != nil {
		s.logger.Error("withdraw failed", "rider_id", riderID, "error", err)
		http.Error(w, "could not withdraw, try again", http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleNearby(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	lat, errLat := strconv.ParseFloat(q.Get("lat"), 64)
	lon, errLon := strconv.ParseFloat(q.Get("lon"), 64)
	if errLat != nil || errLon != nil {
		http.Error(w, "lat and lon are required", http.StatusBadRequest)
		return
	}
	radius := s.cfg.MatchRadiusKm
	if v := q.Get("radius_km"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
			radius = f
		}
	}
	out := s.Geo.Nearby(lat, lon, radius, s.nearbyLimit)
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"requests": out})
}

var upgrader = websocket.Upgrader{}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["rider_id"]
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		http.Error(w, "upgrade failed", http.StatusBadRequest)
		return
	}
	s.WSReg.Add(id, conn)
}

func newID() string { b := make([]byte, 8); _, _ = rand.Read(b); return hex.EncodeToString(b) }
