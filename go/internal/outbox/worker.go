package outbox

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

type Config struct {
	BufferSize int
	MaxRetries int
	RetryDelay time.Duration
}

func DefaultConfig() Config {
	return Config{
		BufferSize: 1024,
		MaxRetries: 3,
		RetryDelay: time.Second,
	}
}

// Worker publishes recorded domain events in the background so that event
// handling never waits on a broker or database.
type Worker struct {
	publishers []Publisher
	config     Config
	clock      clockwork.Clock
	queue      chan Event

	mu       sync.Mutex
	running  bool
	stopChan chan struct{}
	wg       sync.WaitGroup

	published atomic.Uint64
	failed    atomic.Uint64
	dropped   atomic.Uint64
	lastMu    sync.Mutex
	lastEvent time.Time
}

// WorkerStats counts the worker's results since it was created.
type WorkerStats struct {
	Published uint64    `json:"published"`
	Failed    uint64    `json:"failed"`
	Dropped   uint64    `json:"dropped"`
	Pending   int       `json:"pending"`
	Running   bool      `json:"running"`
	LastEvent time.Time `json:"last_event,omitempty"`
}

func NewWorker(cfg Config, publishers ...Publisher) *Worker {
	return &Worker{
		publishers: publishers,
		config:     cfg,
		clock:      clockwork.NewRealClock(),
		queue:      make(chan Event, cfg.BufferSize),
		stopChan:   make(chan struct{}),
	}
}

// Record enqueues a domain event. It never blocks; when the queue is full
// the event is dropped and logged.
func (w *Worker) Record(roomCode, eventType string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		log.Error().Err(err).Str("event_type", eventType).Msg("failed to marshal domain event")
		return
	}

	event := Event{
		ID:        uuid.New(),
		RoomCode:  roomCode,
		EventType: eventType,
		Payload:   data,
		CreatedAt: w.clock.Now().UTC(),
	}

	select {
	case w.queue <- event:
	default:
		w.dropped.Add(1)
		log.Warn().
			Str("room_code", roomCode).
			Str("event_type", eventType).
			Msg("outbox queue full, dropping event")
	}
}

func (w *Worker) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return fmt.Errorf("outbox worker already running")
	}
	w.running = true
	w.mu.Unlock()

	w.wg.Add(1)
	go w.run(ctx)

	log.Info().
		Int("publishers", len(w.publishers)).
		Int("buffer_size", w.config.BufferSize).
		Msg("outbox worker started")

	return nil
}

func (w *Worker) Stop() error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return fmt.Errorf("outbox worker not running")
	}
	w.running = false
	w.mu.Unlock()

	close(w.stopChan)
	w.wg.Wait()

	log.Info().Msg("outbox worker stopped")
	return nil
}

func (w *Worker) run(ctx context.Context) {
	defer w.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopChan:
			w.drain(ctx)
			return
		case event := <-w.queue:
			w.publish(ctx, event)
		}
	}
}

// drain publishes whatever is already queued.
func (w *Worker) drain(ctx context.Context) {
	for {
		select {
		case event := <-w.queue:
			w.publish(ctx, event)
		default:
			return
		}
	}
}

func (w *Worker) publish(ctx context.Context, event Event) {
	ok := true
	for _, p := range w.publishers {
		if err := w.publishWithRetry(ctx, p, event); err != nil {
			ok = false
			log.Error().
				Err(err).
				Str("event_id", event.ID.String()).
				Str("event_type", event.EventType).
				Str("room_code", event.RoomCode).
				Msg("failed to publish event")
		}
	}

	if !ok {
		w.failed.Add(1)
		return
	}
	w.published.Add(1)
	w.lastMu.Lock()
	w.lastEvent = w.clock.Now()
	w.lastMu.Unlock()
}

// Stats returns the worker's counters.
func (w *Worker) Stats() WorkerStats {
	w.mu.Lock()
	running := w.running
	w.mu.Unlock()
	w.lastMu.Lock()
	last := w.lastEvent
	w.lastMu.Unlock()

	return WorkerStats{
		Published: w.published.Load(),
		Failed:    w.failed.Load(),
		Dropped:   w.dropped.Load(),
		Pending:   len(w.queue),
		Running:   running,
		LastEvent: last,
	}
}

func (w *Worker) publishWithRetry(ctx context.Context, p Publisher, event Event) error {
	var lastErr error

	for attempt := 0; attempt <= w.config.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-w.clock.After(w.config.RetryDelay * time.Duration(attempt)):
			}
		}

		if err := p.Publish(ctx, event); err != nil {
			lastErr = err
			log.Warn().
				Err(err).
				Str("event_id", event.ID.String()).
				Int("attempt", attempt+1).
				Msg("failed to publish event, retrying")
			continue
		}

		return nil
	}

	return fmt.Errorf("max retries exceeded: %w", lastErr)
}
