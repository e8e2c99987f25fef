package gateway

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"
)

// RoomCounter reports how many rooms are open.
type RoomCounter interface {
	Len() int
}

// Stats is the body of the /ws/stats endpoint.
type Stats struct {
	TotalConnections int `json:"total_connections"`
	ActiveRooms      int `json:"active_rooms"`
}

// WebSocketHandler handles WebSocket upgrade requests for game connections
type WebSocketHandler struct {
	connectionManager *ConnectionManager
	rooms             RoomCounter
}

// NewWebSocketHandler creates a new WebSocket handler. rooms may be nil.
func NewWebSocketHandler(cm *ConnectionManager, rooms RoomCounter) *WebSocketHandler {
	return &WebSocketHandler{
		connectionManager: cm,
		rooms:             rooms,
	}
}

// HandleConnection upgrades the request and hands the socket to the manager
func (h *WebSocketHandler) HandleConnection(w http.ResponseWriter, r *http.Request) {
	if _, err := h.connectionManager.UpgradeConnection(w, r); err != nil {
		// The upgrader has already written the HTTP error response.
		log.Error().
			Err(err).
			Str("remote_addr", r.RemoteAddr).
			Msg("failed to upgrade WebSocket connection")
	}
}

// Stats returns statistics about active connections and rooms
func (h *WebSocketHandler) Stats() Stats {
	stats := Stats{TotalConnections: h.connectionManager.ConnectionCount()}
	if h.rooms != nil {
		stats.ActiveRooms = h.rooms.Len()
	}
	return stats
}

// HandleConnectionStats writes Stats as JSON
func (h *WebSocketHandler) HandleConnectionStats(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(h.Stats()); err != nil {
		log.Error().Err(err).Msg("failed to encode connection stats")
	}
}

// RegisterRoutes registers WebSocket routes with an HTTP mux
func (h *WebSocketHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/ws", h.HandleConnection)
	mux.HandleFunc("/ws/stats", h.HandleConnectionStats)
}

// OriginChecker allows requests without an Origin header and requests whose
// origin is in allowed. A "*" entry allows every origin.
func OriginChecker(allowed []string) func(r *http.Request) bool {
	set := make(map[string]bool, len(allowed))
	for _, o := range allowed {
		set[o] = true
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" || set["*"] || set[origin] {
			return true
		}
		log.Warn().Str("origin", origin).Msg("rejected websocket origin")
		return false
	}
}
