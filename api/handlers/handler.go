package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/jusunglee/bikeshare-go/internal/models"
	"github.com/jusunglee/bikeshare-go/internal/observability"
	"github.com/jusunglee/bikeshare-go/internal/traffic"
	"github.com/jusunglee/bikeshare-go/pkg/bikeshare"
)

const defaultLocationLimit = 5

// Handler handles HTTP requests
type Handler struct {
	client   bikeshare.Client
	upgrader *websocket.Upgrader
}

// NewHandler creates a new HTTP handler. allowedOrigins restricts which browser
// origins may open the slider WebSocket; none allows any origin.
func NewHandler(client bikeshare.Client, allowedOrigins ...string) *Handler {
	return &Handler{
		client:   client,
		upgrader: newUpgrader(newOriginPolicy(allowedOrigins)),
	}
}

// RegisterRoutes registers all routes
func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/", h.handleIndex).Methods("GET")
	r.HandleFunc("/health", h.handleHealth).Methods("GET")
	r.HandleFunc("/traffic", h.handleTraffic).Methods("GET")
	r.HandleFunc("/stations/by-location", h.handleByLocation).Methods("GET")
	r.HandleFunc("/stations/by-id/{ids}", h.handleByID).Methods("GET")
	r.HandleFunc("/ws", h.handleSlider).Methods("GET")
	r.Handle("/metrics", observability.Handler()).Methods("GET")
}

// ResponseMetadata carries dataset freshness on every response
type ResponseMetadata struct {
	Minute  int    `json:"minute"`
	Label   string `json:"label"`
	Updated string `json:"updated,omitempty"`
}

// StationsResponse wraps station lookups
type StationsResponse struct {
	Data []models.StationResponse `json:"data"`
	ResponseMetadata
}

// HealthResponse reports whether the dataset is loaded
type HealthResponse struct {
	Status string              `json:"status"`
	Stats  models.DatasetStats `json:"stats"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
}

func (h *Handler) handleIndex(w http.ResponseWriter, r *http.Request) {
	response := map[string]string{
		"title":  "bikeshare-go",
		"readme": "GET /traffic?minute=480 for station traffic between 7:00 and 9:00 AM",
	}
	h.writeJSON(w, response)
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	stats := h.client.Stats()
	response := HealthResponse{Status: "ok", Stats: stats}
	if stats.LastUpdate.IsZero() {
		response.Status = "loading"
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		json.NewEncoder(w).Encode(response)
		return
	}
	h.writeJSON(w, response)
}

func (h *Handler) handleTraffic(w http.ResponseWriter, r *http.Request) {
	minute, err := parseMinute(r)
	if err != nil {
		h.writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	snapshot, err := h.snapshot(minute)
	if err != nil {
		h.writeClientError(w, err, http.StatusInternalServerError)
		return
	}

	if strings.Contains(r.Header.Get("Accept"), models.ProtoContentType) {
		w.Header().Set("Content-Type", models.ProtoContentType)
		w.Write(snapshot.MarshalProto())
		return
	}
	h.writeJSON(w, snapshot)
}

func (h *Handler) handleByLocation(w http.ResponseWriter, r *http.Request) {
	latStr := r.URL.Query().Get("lat")
	lonStr := r.URL.Query().Get("lon")

	if latStr == "" || lonStr == "" {
		h.writeError(w, "Missing lat/lon parameter", http.StatusBadRequest)
		return
	}

	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil {
		h.writeError(w, "Invalid lat parameter", http.StatusBadRequest)
		return
	}

	lon, err := strconv.ParseFloat(lonStr, 64)
	if err != nil {
		h.writeError(w, "Invalid lon parameter", http.StatusBadRequest)
		return
	}

	limit := defaultLocationLimit
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		limit, err = strconv.Atoi(limitStr)
		if err != nil || limit <= 0 {
			h.writeError(w, "Invalid limit parameter", http.StatusBadRequest)
			return
		}
	}

	minute, err := parseMinute(r)
	if err != nil {
		h.writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	stations, err := h.client.GetStationsByLocation(lat, lon, limit, minute)
	if err != nil {
		h.writeClientError(w, err, http.StatusInternalServerError)
		return
	}

	h.writeStationsResponse(w, stations, minute)
}

func (h *Handler) handleByID(w http.ResponseWriter, r *http.Request) {
	idsStr := mux.Vars(r)["ids"]
	ids := strings.Split(idsStr, ",")

	minute, err := parseMinute(r)
	if err != nil {
		h.writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	stations, err := h.client.GetStationsByIDs(ids, minute)
	if err != nil {
		h.writeClientError(w, err, http.StatusNotFound)
		return
	}

	h.writeStationsResponse(w, stations, minute)
}

// snapshot runs one aggregation pass and shapes it for the map
func (h *Handler) snapshot(minute int) (*models.TrafficSnapshot, error) {
	stations, err := h.client.Traffic(minute)
	if err != nil {
		return nil, err
	}

	maxTraffic := h.client.MaxTraffic()
	scale := traffic.NewRadiusScale(maxTraffic, minute)

	data := make([]models.StationResponse, len(stations))
	for i := range stations {
		data[i] = stations[i].ConvertToResponse(scale)
	}

	snap := &models.TrafficSnapshot{
		Minute:     minute,
		Label:      traffic.FormatMinute(minute),
		MaxTraffic: maxTraffic,
		Stations:   data,
		Updated:    h.client.GetLastUpdate(),
	}
	if minute != traffic.AnyTime {
		start, end := traffic.Window(minute)
		snap.Window = &models.Window{Start: start, End: end}
	}
	return snap, nil
}

func (h *Handler) getResponseMetadata(minute int) ResponseMetadata {
	meta := ResponseMetadata{
		Minute: minute,
		Label:  traffic.FormatMinute(minute),
	}
	if updated := h.client.GetLastUpdate(); !updated.IsZero() {
		meta.Updated = updated.Format(time.RFC3339)
	}
	return meta
}

func (h *Handler) writeStationsResponse(w http.ResponseWriter, stations []models.Station, minute int) {
	scale := traffic.NewRadiusScale(h.client.MaxTraffic(), minute)

	data := make([]models.StationResponse, len(stations))
	for i := range stations {
		data[i] = stations[i].ConvertToResponse(scale)
	}

	h.writeJSON(w, StationsResponse{
		Data:             data,
		ResponseMetadata: h.getResponseMetadata(minute),
	})
}

// parseMinute reads the minute query parameter; a missing value means any time
func parseMinute(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("minute")
	if raw == "" {
		return traffic.AnyTime, nil
	}
	minute, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.New("Invalid minute parameter")
	}
	if err := traffic.CheckMinute(minute); err != nil {
		return 0, err
	}
	return minute, nil
}

func (h *Handler) writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.writeError(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// writeClientError maps client errors to status codes, falling back to status
func (h *Handler) writeClientError(w http.ResponseWriter, err error, status int) {
	switch {
	case errors.Is(err, bikeshare.ErrNotLoaded):
		status = http.StatusServiceUnavailable
	case errors.Is(err, bikeshare.ErrInvalidMinute), errors.Is(err, bikeshare.ErrInvalidLimit):
		status = http.StatusBadRequest
	}
	h.writeError(w, err.Error(), status)
}

func (h *Handler) writeError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(ErrorResponse{Error: message})
}
