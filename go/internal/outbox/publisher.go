package outbox

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/rs/zerolog/log"
)

// Publisher delivers a domain event to one destination.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// LogPublisher writes events to the log. Used when no broker is configured.
type LogPublisher struct{}

func NewLogPublisher() *LogPublisher {
	return &LogPublisher{}
}

func (p *LogPublisher) Publish(ctx context.Context, event Event) error {
	log.Info().
		Str("event_id", event.ID.String()).
		Str("event_type", event.EventType).
		Str("room_code", event.RoomCode).
		RawJSON("payload", event.Payload).
		Msg("publishing event")
	return nil
}

// envelope is the wire format of a published event.
type envelope struct {
	EventID   string          `json:"eventId"`
	EventType string          `json:"eventType"`
	RoomCode  string          `json:"roomCode"`
	Timestamp time.Time       `json:"timestamp"`
	Payload   json.RawMessage `json:"payload"`
}

func marshalEnvelope(event Event) ([]byte, error) {
	return json.Marshal(envelope{
		EventID:   event.ID.String(),
		EventType: event.EventType,
		RoomCode:  event.RoomCode,
		Timestamp: event.CreatedAt,
		Payload:   event.Payload,
	})
}

// NATSConfig holds configuration for the JetStream publisher
type NATSConfig struct {
	URL           string
	StreamName    string
	SubjectPrefix string
	MaxReconnects int
	ReconnectWait time.Duration
}

// DefaultNATSConfig returns default JetStream publisher configuration
func DefaultNATSConfig() NATSConfig {
	return NATSConfig{
		URL:           nats.DefaultURL,
		StreamName:    "TRUTHBID_EVENTS",
		SubjectPrefix: "truthbid",
		MaxReconnects: -1, // Infinite
		ReconnectWait: 2 * time.Second,
	}
}

// NATSPublisher publishes events to a JetStream stream under
// "<prefix>.room.<EventType>".
type NATSPublisher struct {
	nc     *nats.Conn
	js     jetstream.JetStream
	config NATSConfig
}

// NewNATSPublisher connects to NATS and ensures the event stream exists.
func NewNATSPublisher(ctx context.Context, config NATSConfig) (*NATSPublisher, error) {
	opts := []nats.Option{
		nats.Name("truthbid-outbox"),
		nats.MaxReconnects(config.MaxReconnects),
		nats.ReconnectWait(config.ReconnectWait),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			log.Error().Err(err).Msg("NATS disconnected")
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info().Str("url", nc.ConnectedUrl()).Msg("NATS reconnected")
		}),
	}

	nc, err := nats.Connect(config.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("create JetStream context: %w", err)
	}

	_, err = js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:        config.StreamName,
		Description: "Game room domain events",
		Subjects:    []string{config.SubjectPrefix + ".room.>"},
		MaxAge:      24 * time.Hour,
	})
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("ensure stream: %w", err)
	}

	log.Info().
		Str("stream", config.StreamName).
		Str("url", config.URL).
		Msg("NATS publisher ready")

	return &NATSPublisher{nc: nc, js: js, config: config}, nil
}

// Subject returns the subject an event type is published on.
func (p *NATSPublisher) Subject(eventType string) string {
	return fmt.Sprintf("%s.room.%s", p.config.SubjectPrefix, eventType)
}

func (p *NATSPublisher) Publish(ctx context.Context, event Event) error {
	data, err := marshalEnvelope(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	_, err = p.js.Publish(ctx, p.Subject(event.EventType), data, jetstream.WithMsgID(event.ID.String()))
	if err != nil {
		return fmt.Errorf("publish to JetStream: %w", err)
	}
	return nil
}

// Close drains the NATS connection.
func (p *NATSPublisher) Close() {
	if p.nc != nil {
		if err := p.nc.Drain(); err != nil {
			log.Error().Err(err).Msg("failed to drain NATS connection")
		}
	}
}

// Connected reports whether the NATS connection is currently up.
func (p *NATSPublisher) Connected() bool {
	return p.nc != nil && p.nc.IsConnected()
}
