package gateway

import (
	"context"
	"net/http"

	"github.com/rs/zerolog/log"
)

// Service is the websocket front door: it owns the connections and routes
// their frames to a Dispatcher.
type Service struct {
	connectionManager *ConnectionManager
	wsHandler         *WebSocketHandler
}

// Config holds configuration for the gateway service
type Config struct {
	ConnectionConfig ConnectionConfig
}

// DefaultConfig returns default configuration for the gateway
func DefaultConfig() Config {
	return Config{
		ConnectionConfig: DefaultConnectionConfig(),
	}
}

// NewService creates a gateway. The dispatcher can be attached later with
// SetDispatcher, since the dispatcher usually needs the service as its
// emitter.
func NewService(config Config, rooms RoomCounter) *Service {
	cm := NewConnectionManager(config.ConnectionConfig, nil)
	return &Service{
		connectionManager: cm,
		wsHandler:         NewWebSocketHandler(cm, rooms),
	}
}

// SetDispatcher attaches the event dispatcher.
func (s *Service) SetDispatcher(d Dispatcher) {
	s.connectionManager.SetDispatcher(d)
}

// Emitter returns the connection manager, which delivers outbound frames.
func (s *Service) Emitter() *ConnectionManager {
	return s.connectionManager
}

// Start runs the gateway until ctx is cancelled
func (s *Service) Start(ctx context.Context) {
	log.Info().Msg("starting gateway service")
	s.connectionManager.Start(ctx)
	log.Info().Msg("gateway service stopped")
}

// RegisterRoutes registers the WebSocket HTTP routes
func (s *Service) RegisterRoutes(mux *http.ServeMux) {
	s.wsHandler.RegisterRoutes(mux)
	log.Info().Msg("gateway routes registered")
}

// Stats returns statistics about the gateway service
func (s *Service) Stats() Stats {
	return s.wsHandler.Stats()
}
