// Copyright (c) 2026 John Earle
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Billscout — Monitor Service
//
// Entry point for the utility-bill monitor. It:
//  1. Loads configuration from config.yaml
//  2. Connects to PostgreSQL and Redis
//  3. Loads the registered utility services from the registry
//  4. Runs the polling coordinator: per cycle, fetches recent inbox
//     messages over IMAP, finds the newest billing email per service,
//     extracts its attributes, and publishes the result to Redis
//  5. Serves /health and /services endpoints
//  6. Handles graceful shutdown on SIGTERM/SIGINT
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/billscout/monitor/internal/config"
	"github.com/billscout/monitor/internal/coordinator"
	"github.com/billscout/monitor/internal/dedup"
	"github.com/billscout/monitor/internal/httpapi"
	"github.com/billscout/monitor/internal/mailbox"
	"github.com/billscout/monitor/internal/models"
	"github.com/billscout/monitor/internal/queue"
	"github.com/billscout/monitor/internal/registry"
)

func main() {
	// Structured JSON logging
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	slog.Info("starting billscout monitor service")

	// --- Load Configuration ---
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("configuration loaded",
		"imap_server", cfg.IMAP.Server,
		"poll_interval", cfg.PollInterval,
		"scan_depth", cfg.ScanDepth,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// --- Connect to PostgreSQL ---
	pgPool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to create Postgres pool", "error", err)
		os.Exit(1)
	}
	defer pgPool.Close()

	if err := pgPool.Ping(ctx); err != nil {
		slog.Error("failed to connect to PostgreSQL", "error", err)
		os.Exit(1)
	}
	slog.Info("connected to PostgreSQL")

	// --- Connect to Redis ---
	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		slog.Error("invalid REDIS_URL", "error", err)
		os.Exit(1)
	}
	rdb := redis.NewClient(opt)

	publisher := queue.NewPublisher(rdb, cfg.StatesQueue)
	if err := publisher.Ping(ctx); err != nil {
		slog.Error("failed to connect to Redis", "error", err)
		os.Exit(1)
	}
	slog.Info("connected to Redis")

	// --- Dedup Filter ---
	filter := dedup.NewFilter(rdb)

	// --- Service Registry (Postgres) ---
	store, err := registry.NewStore(ctx, pgPool)
	if err != nil {
		slog.Error("failed to initialise service registry", "error", err)
		os.Exit(1)
	}

	// --- Mailbox credentials ---
	creds := mailboxCredentials(ctx, cfg)

	// --- Coordinator ---
	coord := coordinator.New(coordinator.Config{
		Dial: func() (coordinator.Source, error) {
			return mailbox.Dial(cfg.IMAP.Server, cfg.IMAP.Port, creds)
		},
		Registry:  store,
		Publisher: publisher,
		Dedup:     filter,
		Interval:  cfg.PollInterval,
		ScanDepth: cfg.ScanDepth,
	})

	// --- HTTP API ---
	handler := &httpapi.Handler{
		Services: &registryLister{store: store},
		Checks: map[string]httpapi.HealthChecker{
			"redis":    publisher,
			"postgres": pgPool,
		},
	}
	ready, err := httpapi.Serve(ctx, cfg.Port, handler)
	if err != nil {
		slog.Error("failed to start http server", "error", err)
		os.Exit(1)
	}
	<-ready

	// --- Graceful Shutdown ---
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)
		sig := <-sigCh

		slog.Info("received shutdown signal", "signal", sig)
		cancel() // Stop the coordinator and the http server
	}()

	coord.Run(ctx)

	rdb.Close()
	slog.Info("monitor service stopped")
}

// mailboxCredentials builds the IMAP credentials: OAUTHBEARER via
// client credentials when an OAuth2 client is configured, password
// LOGIN otherwise.
func mailboxCredentials(ctx context.Context, cfg *config.Config) mailbox.Credentials {
	creds := mailbox.Credentials{
		Address:  cfg.IMAP.Address,
		Password: cfg.IMAP.Password,
	}
	if cfg.OAuth2.ClientID != "" {
		cc := &clientcredentials.Config{
			ClientID:     cfg.OAuth2.ClientID,
			ClientSecret: cfg.OAuth2.ClientSecret,
			TokenURL:     cfg.OAuth2.TokenURL,
			Scopes:       cfg.OAuth2.Scopes,
		}
		creds.TokenSource = oauth2.ReuseTokenSource(nil, cc.TokenSource(ctx))
	}
	return creds
}

// registryLister adapts registry.Store to the httpapi.ServiceLister
// interface.
type registryLister struct {
	store *registry.Store
}

func (l *registryLister) ListServices(ctx context.Context) ([]models.DetectedService, error) {
	records, err := l.store.List(ctx)
	if err != nil {
		return nil, err
	}
	services := make([]models.DetectedService, 0, len(records))
	for _, r := range records {
		services = append(services, r.Service)
	}
	return services, nil
}
