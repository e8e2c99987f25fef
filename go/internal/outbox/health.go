package outbox

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
)

// Pinger is implemented by database pools.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthStatus reports whether domain events are flowing.
type HealthStatus struct {
	Healthy           bool        `json:"healthy"`
	Worker            WorkerStats `json:"worker"`
	NATSConnected     *bool       `json:"nats_connected,omitempty"`
	DatabaseConnected *bool       `json:"database_connected,omitempty"`
	Errors            []string    `json:"errors"`
}

// HealthChecker checks the worker and the sinks it publishes to.
type HealthChecker struct {
	worker *Worker
	nats   *NATSPublisher
	db     Pinger
}

// NewHealthChecker creates a checker. nats and db may be nil when that sink
// is not configured.
func NewHealthChecker(worker *Worker, nats *NATSPublisher, db Pinger) *HealthChecker {
	return &HealthChecker{worker: worker, nats: nats, db: db}
}

func (h *HealthChecker) Check(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Healthy: true,
		Worker:  h.worker.Stats(),
		Errors:  []string{},
	}

	if !status.Worker.Running {
		status.Healthy = false
		status.Errors = append(status.Errors, "worker not running")
	}

	if h.nats != nil {
		connected := h.nats.Connected()
		status.NATSConnected = &connected
		if !connected {
			status.Healthy = false
			status.Errors = append(status.Errors, "NATS disconnected")
		}
	}

	if h.db != nil {
		connected := true
		if err := h.db.Ping(ctx); err != nil {
			connected = false
			status.Healthy = false
			status.Errors = append(status.Errors, fmt.Sprintf("database ping failed: %v", err))
		}
		status.DatabaseConnected = &connected
	}

	if status.Worker.Pending > cap(h.worker.queue)/2 {
		status.Errors = append(status.Errors, fmt.Sprintf("high pending event count: %d", status.Worker.Pending))
	}

	return status
}

func (h *HealthChecker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := h.Check(ctx)

	w.Header().Set("Content-Type", "application/json")
	if !status.Healthy {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	if err := json.NewEncoder(w).Encode(status); err != nil {
		log.Error().Err(err).Msg("failed to encode outbox health")
	}
}
