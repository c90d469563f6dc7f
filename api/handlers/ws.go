package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/jusunglee/bikeshare-go/internal/models"
	"github.com/jusunglee/bikeshare-go/internal/observability"
	"github.com/jusunglee/bikeshare-go/internal/traffic"
)

const (
	sliderReadLimit = 512
	sliderWriteWait = 10 * time.Second
	sliderIdle      = 5 * time.Minute
)

func newUpgrader(origins originPolicy) *websocket.Upgrader {
	return &websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024 * 16,
		CheckOrigin: func(r *http.Request) bool {
			// Non-browser clients send no Origin
			origin := r.Header.Get("Origin")
			return origin == "" || origins.allows(origin)
		},
	}
}

// SliderRequest is one slider position sent by the client
type SliderRequest struct {
	Minute *int `json:"minute"`
}

// handleSlider streams a traffic snapshot for every slider position received.
// Messages are answered in arrival order, so the last reply always matches the
// last position sent.
func (h *Handler) handleSlider(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error
		slog.Warn("WebSocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	observability.DefaultMetrics.WSSessions.Inc()
	defer observability.DefaultMetrics.WSSessions.Dec()

	conn.SetReadLimit(sliderReadLimit)

	for {
		conn.SetReadDeadline(time.Now().Add(sliderIdle))

		var req SliderRequest
		if err := conn.ReadJSON(&req); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				slog.Debug("Slider session ended", "error", err)
			}
			return
		}

		reply, err := h.sliderReply(req)
		conn.SetWriteDeadline(time.Now().Add(sliderWriteWait))
		if err != nil {
			if werr := conn.WriteJSON(ErrorResponse{Error: err.Error()}); werr != nil {
				return
			}
			continue
		}
		if err := conn.WriteJSON(reply); err != nil {
			return
		}
	}
}

// sliderReply builds the snapshot for a slider position; a missing minute means any time
func (h *Handler) sliderReply(req SliderRequest) (*models.TrafficSnapshot, error) {
	minute := traffic.AnyTime
	if req.Minute != nil {
		minute = *req.Minute
	}
	if err := traffic.CheckMinute(minute); err != nil {
		return nil, err
	}
	return h.snapshot(minute)
}
