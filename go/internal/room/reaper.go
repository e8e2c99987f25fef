package room

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

// ReaperConfig holds configuration for the expiry reaper.
type ReaperConfig struct {
	Interval time.Duration
	Policy   ExpiryPolicy
}

// DefaultReaperConfig sweeps every fifteen minutes with the default policy.
func DefaultReaperConfig() ReaperConfig {
	return ReaperConfig{
		Interval: 15 * time.Minute,
		Policy:   DefaultExpiryPolicy(),
	}
}

// Reaper periodically evicts aged and idle sessions.
type Reaper struct {
	registry *Registry
	clock    clockwork.Clock
	config   ReaperConfig
	notify   func(Expiry)
}

// NewReaper creates a reaper that calls notify for each session before
// removing it.
func NewReaper(registry *Registry, config ReaperConfig, notify func(Expiry)) *Reaper {
	return &Reaper{
		registry: registry,
		clock:    registry.Clock(),
		config:   config,
		notify:   notify,
	}
}

// Run sweeps on every interval until ctx is cancelled.
func (r *Reaper) Run(ctx context.Context) {
	ticker := r.clock.NewTicker(r.config.Interval)
	defer ticker.Stop()

	log.Info().Dur("interval", r.config.Interval).Msg("expiry reaper started")

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("expiry reaper shutting down")
			return
		case <-ticker.Chan():
			r.SweepNow()
		}
	}
}

// SweepNow runs a single sweep at the current clock time.
func (r *Reaper) SweepNow() []Expiry {
	swept := r.registry.Sweep(r.clock.Now(), r.config.Policy, r.notify)
	if len(swept) > 0 {
		log.Info().
			Int("removed", len(swept)).
			Int("remaining", r.registry.Len()).
			Msg("expiry sweep complete")
	}
	return swept
}
