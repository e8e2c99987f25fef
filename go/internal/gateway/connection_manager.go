package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/mcdev12/truthbid/go/internal/events"
	"github.com/rs/zerolog/log"
)

// Dispatcher receives the events read from every connection.
type Dispatcher interface {
	HandleEvent(ctx context.Context, connectionID string, in events.Inbound)
	Disconnect(connectionID string)
}

// ConnectionManager manages WebSocket connections for game rooms
type ConnectionManager struct {
	connections map[string]*Connection
	mu          sync.RWMutex

	upgrader   websocket.Upgrader
	config     ConnectionConfig
	dispatcher Dispatcher

	// Outbound frames in emission order
	sendCh chan outboundMessage
}

// Connection represents a WebSocket connection to a client
type Connection struct {
	ID      string
	Conn    *websocket.Conn
	Send    chan []byte
	Manager *ConnectionManager

	ConnectedAt time.Time
}

// ConnectionConfig holds configuration for WebSocket connections
type ConnectionConfig struct {
	WriteTimeout    time.Duration
	ReadTimeout     time.Duration
	PingInterval    time.Duration
	MaxMessageSize  int64
	ReadBufferSize  int
	WriteBufferSize int
	SendBufferSize  int
	QueueSize       int
	CheckOrigin     func(r *http.Request) bool
}

type outboundMessage struct {
	connectionID string
	event        *events.Outbound
}

// DefaultConnectionConfig returns default WebSocket configuration
func DefaultConnectionConfig() ConnectionConfig {
	return ConnectionConfig{
		WriteTimeout:    10 * time.Second,
		ReadTimeout:     60 * time.Second,
		PingInterval:    30 * time.Second,
		MaxMessageSize:  8 * 1024,
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		SendBufferSize:  256,
		QueueSize:       4096,
		CheckOrigin: func(r *http.Request) bool {
			return true
		},
	}
}

// NewConnectionManager creates a new WebSocket connection manager
func NewConnectionManager(config ConnectionConfig, dispatcher Dispatcher) *ConnectionManager {
	return &ConnectionManager{
		connections: make(map[string]*Connection),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  config.ReadBufferSize,
			WriteBufferSize: config.WriteBufferSize,
			CheckOrigin:     config.CheckOrigin,
		},
		config:     config,
		dispatcher: dispatcher,
		sendCh:     make(chan outboundMessage, config.QueueSize),
	}
}

// SetDispatcher sets the dispatcher for connections accepted from now on.
func (cm *ConnectionManager) SetDispatcher(d Dispatcher) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	cm.dispatcher = d
}

// Start delivers queued frames until ctx is cancelled
func (cm *ConnectionManager) Start(ctx context.Context) {
	log.Info().Msg("connection manager started")

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("connection manager shutting down")
			cm.closeAll()
			return
		case message := <-cm.sendCh:
			cm.deliver(message)
		}
	}
}

// Send queues event for connectionID. It never blocks; frames are delivered
// in the order Send was called. If the queue is full the connection is
// closed, so the client reconnects instead of silently missing a frame.
func (cm *ConnectionManager) Send(connectionID string, event *events.Outbound) {
	select {
	case cm.sendCh <- outboundMessage{connectionID: connectionID, event: event}:
	default:
		log.Warn().
			Str("connection_id", connectionID).
			Str("event_type", event.Event).
			Msg("send queue full, closing connection")
		cm.closeConnection(connectionID)
	}
}

// closeConnection drops connectionID and closes its socket. The read pump
// then reports the disconnect to the dispatcher.
func (cm *ConnectionManager) closeConnection(connectionID string) {
	cm.mu.RLock()
	conn, ok := cm.connections[connectionID]
	cm.mu.RUnlock()
	if !ok {
		return
	}
	cm.unregisterConnection(conn)
	conn.Conn.Close()
}

// UpgradeConnection upgrades an HTTP connection to WebSocket
func (cm *ConnectionManager) UpgradeConnection(w http.ResponseWriter, r *http.Request) (string, error) {
	conn, err := cm.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return "", fmt.Errorf("failed to upgrade connection: %w", err)
	}

	connection := &Connection{
		ID:          uuid.New().String(),
		Conn:        conn,
		Send:        make(chan []byte, cm.config.SendBufferSize),
		Manager:     cm,
		ConnectedAt: time.Now(),
	}

	cm.registerConnection(connection)

	go connection.writePump()
	go connection.readPump()

	log.Info().
		Str("connection_id", connection.ID).
		Str("remote_addr", r.RemoteAddr).
		Msg("WebSocket connection established")

	return connection.ID, nil
}

func (cm *ConnectionManager) registerConnection(conn *Connection) {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	cm.connections[conn.ID] = conn

	log.Debug().
		Str("connection_id", conn.ID).
		Int("total_connections", len(cm.connections)).
		Msg("connection registered")
}

// unregisterConnection removes a connection and closes its send channel. It
// reports whether the connection was still registered.
func (cm *ConnectionManager) unregisterConnection(conn *Connection) bool {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	if cm.connections[conn.ID] != conn {
		return false
	}
	delete(cm.connections, conn.ID)
	close(conn.Send)

	log.Info().
		Str("connection_id", conn.ID).
		Int("total_connections", len(cm.connections)).
		Msg("connection unregistered")
	return true
}

func (cm *ConnectionManager) deliver(message outboundMessage) {
	data, err := json.Marshal(message.event)
	if err != nil {
		log.Error().Err(err).Str("event_type", message.event.Event).Msg("failed to marshal event")
		return
	}

	cm.mu.RLock()
	conn, ok := cm.connections[message.connectionID]
	var full bool
	if ok {
		select {
		case conn.Send <- data:
		default:
			full = true
		}
	}
	cm.mu.RUnlock()

	if !ok {
		log.Debug().
			Str("connection_id", message.connectionID).
			Str("event_type", message.event.Event).
			Msg("connection gone, dropping message")
		return
	}
	if full {
		// Connection is slow/dead, close it
		log.Warn().
			Str("connection_id", conn.ID).
			Msg("connection send buffer full, closing connection")
		cm.closeConnection(conn.ID)
	}
}

func (cm *ConnectionManager) closeAll() {
	cm.mu.RLock()
	conns := make([]*Connection, 0, len(cm.connections))
	for _, c := range cm.connections {
		conns = append(conns, c)
	}
	cm.mu.RUnlock()

	for _, c := range conns {
		c.Conn.Close()
	}
}

// ConnectionCount returns the number of open connections.
func (cm *ConnectionManager) ConnectionCount() int {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return len(cm.connections)
}

// writePump handles sending messages to the WebSocket connection
func (c *Connection) writePump() {
	ticker := time.NewTicker(c.Manager.config.PingInterval)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(c.Manager.config.WriteTimeout))
			if !ok {
				// Channel was closed
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Error().
					Err(err).
					Str("connection_id", c.ID).
					Msg("failed to write message to WebSocket")
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(c.Manager.config.WriteTimeout))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Error().
					Err(err).
					Str("connection_id", c.ID).
					Msg("failed to send ping")
				return
			}
		}
	}
}

// readPump reads client frames and hands them to the dispatcher in order.
// When the socket closes the dispatcher is told the connection is gone.
func (c *Connection) readPump() {
	ctx, cancel := context.WithCancel(context.Background())
	c.Manager.mu.RLock()
	dispatcher := c.Manager.dispatcher
	c.Manager.mu.RUnlock()

	defer func() {
		cancel()
		c.Manager.unregisterConnection(c)
		c.Conn.Close()
		if dispatcher != nil {
			dispatcher.Disconnect(c.ID)
		}
	}()

	c.Conn.SetReadLimit(c.Manager.config.MaxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(c.Manager.config.ReadTimeout))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(c.Manager.config.ReadTimeout))
		return nil
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNormalClosure) {
				log.Error().
					Err(err).
					Str("connection_id", c.ID).
					Msg("unexpected WebSocket close error")
			}
			break
		}

		c.handleClientMessage(ctx, dispatcher, message)
		c.Conn.SetReadDeadline(time.Now().Add(c.Manager.config.ReadTimeout))
	}
}

// handleClientMessage decodes one frame and dispatches it
func (c *Connection) handleClientMessage(ctx context.Context, dispatcher Dispatcher, message []byte) {
	var in events.Inbound
	if err := json.Unmarshal(message, &in); err != nil || in.Event == "" {
		log.Warn().
			Err(err).
			Str("connection_id", c.ID).
			Msg("invalid client frame")
		c.Manager.Send(c.ID, events.New(events.Error, events.ErrorPayload{Message: "Invalid request"}))
		return
	}
	if dispatcher == nil {
		return
	}
	dispatcher.HandleEvent(ctx, c.ID, in)
}
