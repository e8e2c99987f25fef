package main

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mcdev12/truthbid/go/internal/config"
	"github.com/mcdev12/truthbid/go/internal/game"
	"github.com/mcdev12/truthbid/go/internal/gateway"
	"github.com/mcdev12/truthbid/go/internal/history"
	"github.com/mcdev12/truthbid/go/internal/orchestrator"
	"github.com/mcdev12/truthbid/go/internal/outbox"
	"github.com/mcdev12/truthbid/go/internal/room"
	"github.com/rs/zerolog/log"
)

type Services struct {
	Registry     *room.Registry
	Gateway      *gateway.Service
	Orchestrator *orchestrator.Orchestrator
	Reaper       *room.Reaper
	Outbox       *outbox.Worker
	Archive      *history.Archive
	Health       *outbox.HealthChecker

	pool *pgxpool.Pool
	nats *outbox.NATSPublisher
}

func setupServices(ctx context.Context, cfg *config.Config) (*Services, error) {
	// Wire up the chain
	// Registry → Engine → Gateway (emitter) → Orchestrator → Reaper
	s := &Services{}

	s.Registry = room.NewRegistry()
	engine := game.NewEngine(cfg.Rules)

	var publishers []outbox.Publisher
	if cfg.NATSURL != "" {
		natsCfg := outbox.DefaultNATSConfig()
		natsCfg.URL = cfg.NATSURL
		natsCfg.SubjectPrefix = cfg.NATSSubjectPrefix
		pub, err := outbox.NewNATSPublisher(ctx, natsCfg)
		if err != nil {
			return nil, fmt.Errorf("failed to create NATS publisher: %w", err)
		}
		s.nats = pub
		publishers = append(publishers, pub)
	}
	if cfg.DatabaseURL != "" {
		pool, archive, err := history.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			s.closeClients()
			return nil, fmt.Errorf("failed to connect game archive: %w", err)
		}
		s.pool = pool
		s.Archive = archive
		publishers = append(publishers, archive)
	}
	if len(publishers) == 0 {
		log.Info().Msg("no NATS or database configured, logging domain events")
		publishers = append(publishers, outbox.NewLogPublisher())
	}
	s.Outbox = outbox.NewWorker(outbox.DefaultConfig(), publishers...)
	var db outbox.Pinger
	if s.pool != nil {
		db = s.pool
	}
	s.Health = outbox.NewHealthChecker(s.Outbox, s.nats, db)

	gatewayConfig := gateway.DefaultConfig()
	gatewayConfig.ConnectionConfig.CheckOrigin = gateway.OriginChecker(cfg.AllowedOrigins)
	s.Gateway = gateway.NewService(gatewayConfig, s.Registry)
	s.Orchestrator = orchestrator.NewOrchestrator(
		s.Registry,
		engine,
		s.Gateway.Emitter(),
		s.Outbox,
		orchestrator.Config{NewRoundDelay: cfg.NewRoundDelay},
	)
	s.Gateway.SetDispatcher(s.Orchestrator)

	s.Reaper = room.NewReaper(s.Registry, room.ReaperConfig{
		Interval: cfg.SweepInterval,
		Policy: room.ExpiryPolicy{
			MaxAge:  cfg.MaxSessionAge,
			MaxIdle: cfg.MaxIdle,
		},
	}, s.Orchestrator.NotifyExpired)

	log.Info().
		Int("starting_tokens", cfg.Rules.StartingTokens).
		Int("round_bonus", cfg.Rules.RoundBonus).
		Int("publishers", len(publishers)).
		Msg("services ready")

	return s, nil
}

// Start launches the background loops. They stop when ctx is cancelled.
func (s *Services) Start(ctx context.Context) {
	if err := s.Outbox.Start(ctx); err != nil {
		log.Error().Err(err).Msg("failed to start outbox worker")
	}
	go s.Gateway.Start(ctx)
	go s.Reaper.Run(ctx)
}

// Stop flushes the outbox and closes external clients.
func (s *Services) Stop() {
	if err := s.Outbox.Stop(); err != nil {
		log.Error().Err(err).Msg("failed to stop outbox worker")
	}
	s.closeClients()
}

func (s *Services) closeClients() {
	if s.nats != nil {
		s.nats.Close()
	}
	if s.pool != nil {
		s.pool.Close()
	}
}
