package api

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"beacon-alarm.klederson.com/internal/beacon"
	"beacon-alarm.klederson.com/internal/metrics"
)

// BeaconLister is implemented by the visibility cache.
type BeaconLister interface {
	Visible(window time.Duration) []beacon.Beacon
	Window() time.Duration
}

// RegionReporter is implemented by the beacon manager.
type RegionReporter interface {
	Region() beacon.Region
	State() beacon.RegionState
	Ranging() bool
	Monitoring() bool
}

// BeaconResponse is one visible beacon.
type BeaconResponse struct {
	ID           string    `json:"id"`
	Address      string    `json:"address"`
	Name         string    `json:"name,omitempty"`
	RSSI         int16     `json:"rssi"`
	Distance     float64   `json:"distance_m"`
	CompanyID    uint16    `json:"company_id,omitempty"`
	Manufacturer string    `json:"manufacturer,omitempty"`
	LastSeen     time.Time `json:"last_seen"`
}

// BeaconsResponse is the body of GET /api/v1/beacons.
type BeaconsResponse struct {
	Window  string           `json:"window"`
	Count   int              `json:"count"`
	Beacons []BeaconResponse `json:"beacons"`
}

// RegionResponse is the body of GET /api/v1/region.
type RegionResponse struct {
	ID         string `json:"id"`
	State      string `json:"state"`
	Ranging    bool   `json:"ranging"`
	Monitoring bool   `json:"monitoring"`
}

// ErrorResponse is returned with every non-2xx status.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Handler serves the status API.
type Handler struct {
	beacons BeaconLister
	region  RegionReporter
}

// NewHandler creates a Handler.
func NewHandler(beacons BeaconLister, region RegionReporter) *Handler {
	return &Handler{beacons: beacons, region: region}
}

// Router wires the API routes and the Prometheus endpoint.
func (h *Handler) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/api/v1/beacons", h.GetBeacons).Methods(http.MethodGet)
	r.HandleFunc("/api/v1/region", h.GetRegion).Methods(http.MethodGet)
	r.HandleFunc("/healthz", h.Health).Methods(http.MethodGet)
	r.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)
	return r
}

// GetBeacons handles GET /api/v1/beacons[?window=5s]
func (h *Handler) GetBeacons(w http.ResponseWriter, r *http.Request) {
	window := h.beacons.Window()
	if raw := r.URL.Query().Get("window"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil || d <= 0 {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "window must be a positive duration such as 10s"})
			return
		}
		window = d
	}

	visible := h.beacons.Visible(window)
	beacon.SortByDistance(visible)

	resp := BeaconsResponse{
		Window:  window.String(),
		Count:   len(visible),
		Beacons: make([]BeaconResponse, len(visible)),
	}
	for i, b := range visible {
		resp.Beacons[i] = BeaconResponse{
			ID:           b.ID,
			Address:      b.Address,
			Name:         b.Name,
			RSSI:         b.RSSI,
			Distance:     b.Distance,
			CompanyID:    b.CompanyID,
			Manufacturer: b.Manufacturer,
			LastSeen:     b.LastSeen,
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// GetRegion handles GET /api/v1/region
func (h *Handler) GetRegion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, RegionResponse{
		ID:         h.region.Region().ID,
		State:      h.region.State().String(),
		Ranging:    h.region.Ranging(),
		Monitoring: h.region.Monitoring(),
	})
}

// Health handles GET /healthz
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.WithField("component", "api").WithError(err).Warn("encode response")
	}
}

// Server runs the API on a listen address.
type Server struct {
	srv *http.Server
	ln  net.Listener
}

// Listen binds addr and returns a server ready to Serve.
func Listen(addr string, h *Handler) (*Server, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	return &Server{
		srv: &http.Server{
			Handler:           h.Router(),
			ReadHeaderTimeout: 5 * time.Second,
		},
		ln: ln,
	}, nil
}

// Addr returns the bound address.
func (s *Server) Addr() string {
	return s.ln.Addr().String()
}

// Serve blocks until Shutdown.
func (s *Server) Serve() error {
	log.WithFields(log.Fields{"component": "api", "addr": s.Addr()}).Info("serving status API")
	if err := s.srv.Serve(s.ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting requests and waits for in-flight ones.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
