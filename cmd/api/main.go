// Leadgate is a multi-tenant lead capture gateway: a query-string action API
// backed by MongoDB or Redis, with admin sessions, webhook notifications, and
// optional upstream forwarding.
package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/salonkit/leadgate/internal/api"
	"github.com/salonkit/leadgate/internal/api/handler"
	"github.com/salonkit/leadgate/internal/core/ports"
	"github.com/salonkit/leadgate/internal/core/service"
	"github.com/salonkit/leadgate/internal/infrastructure/config"
	mongodb "github.com/salonkit/leadgate/internal/infrastructure/db/mongo"
	redisdb "github.com/salonkit/leadgate/internal/infrastructure/db/redis"
	"github.com/salonkit/leadgate/internal/infrastructure/notify"
	"github.com/salonkit/leadgate/internal/infrastructure/queue"
	"github.com/salonkit/leadgate/internal/infrastructure/upstream"
	"github.com/salonkit/leadgate/pkg/logger"
)

const shutdownGrace = 10 * time.Second

// @title        Leadgate API
// @version      1.0
// @description  Multi-tenant lead capture gateway.
// @BasePath     /
func main() {
	cfg := config.Load()

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  !cfg.IsProduction(),
		Service: "leadgate",
	})

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Backing stores ---
	healthChecks := map[string]handler.HealthCheck{}

	rdb, err := redisdb.Connect(rootCtx, redisdb.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection failed")
	}
	defer rdb.Close()
	healthChecks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }

	var repo ports.LeadRepository
	switch cfg.LeadStore {
	case "redis":
		repo = redisdb.NewLeadRepository(rdb)
	case "mongo":
		client, db, err := mongodb.Connect(rootCtx, mongodb.Config{
			URI:      cfg.Mongo.URI,
			Database: cfg.Mongo.Database,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("mongo connection failed")
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = client.Disconnect(ctx)
		}()
		healthChecks["mongo"] = func(ctx context.Context) error { return client.Ping(ctx, nil) }
		repo = mongodb.NewLeadRepository(db)
	default:
		log.Fatal().Str("store", cfg.LeadStore).Msg("unknown LEAD_STORE")
	}

	if err := repo.EnsureSchema(rootCtx); err != nil {
		log.Warn().Err(err).Msg("schema bootstrap failed, continuing")
	}

	// --- Notifications ---
	var dispatcher service.Dispatcher
	if cfg.WebhookURL != "" {
		webhook := notify.NewWebhookNotifier(cfg.WebhookURL, log)
		dedup := redisdb.NewNotifyDedup(rdb)
		d := queue.NewDispatcher(cfg.NotifyWorkers, webhook, dedup, log)
		d.Start(rootCtx)
		dispatcher = d
	}

	// --- Core services ---
	pools := service.NewCredentialPools(cfg.APIKeys, cfg.AdminKeys)
	auth := service.NewAuthService(pools, cfg.SessionSecret, cfg.SessionTTL)
	leads := service.NewLeadService(repo, dispatcher, log)
	resolver := service.TenantResolver{
		Default:    cfg.DefaultTenant,
		HostMarker: cfg.TenantHostMarker,
	}

	// --- Upstream proxy ---
	var forwarder ports.Forwarder
	if cfg.UpstreamURL != "" {
		fwd, err := upstream.New(cfg.UpstreamURL, cfg.UpstreamAPIKey, cfg.UpstreamTimeout, log)
		if err != nil {
			log.Fatal().Err(err).Msg("invalid upstream url")
		}
		forwarder = fwd
	}

	// --- HTTP ---
	e := api.NewRouter(api.RouterDeps{
		Leads:         leads,
		Auth:          auth,
		Resolver:      resolver,
		Catalog:       cfg.TenantCatalog(),
		Forwarder:     forwarder,
		ProxyPaths:    cfg.UpstreamPaths,
		HealthChecks:  healthChecks,
		SecureCookies: cfg.IsProduction(),
		Logger:        log,
	})

	go func() {
		log.Info().Str("port", cfg.Port).Str("store", cfg.LeadStore).Msg("starting server")
		if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server stopped")
		}
	}()

	<-rootCtx.Done()
	log.Info().Msg("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}
