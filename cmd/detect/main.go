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

// Billscout — Service Detection CLI
//
// Scans the configured inbox for utility billing emails and reports the
// service providers found, ranked by how many bills each one sent. Run
// it once when setting up a new mailbox to discover which services to
// register, then re-run with -register to persist them:
//
//	detect -limit 200
//	detect -register
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/billscout/monitor/internal/config"
	"github.com/billscout/monitor/internal/detect"
	"github.com/billscout/monitor/internal/mailbox"
	"github.com/billscout/monitor/internal/registry"
)

func main() {
	var (
		limit    = flag.Int("limit", 100, "How many of the newest inbox messages to scan")
		register = flag.Bool("register", false, "Persist the detected services to the registry")
	)
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

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

	slog.Info("scanning inbox for utility services",
		"server", cfg.IMAP.Server,
		"address", cfg.IMAP.Address,
		"limit", *limit,
	)

	client, err := mailbox.Dial(cfg.IMAP.Server, cfg.IMAP.Port, creds)
	if err != nil {
		slog.Error("failed to connect to mailbox", "error", err)
		os.Exit(1)
	}
	defer client.Close()

	msgs, err := client.FetchRecent(*limit)
	if err != nil {
		slog.Error("failed to fetch messages", "error", err)
		os.Exit(1)
	}
	slog.Info("fetched messages", "count", len(msgs))

	services := detect.Scan(msgs)
	if len(services) == 0 {
		fmt.Println("No utility services detected.")
		return
	}

	for _, svc := range services {
		fmt.Printf("%-28s %-12s %-40s %d email(s)\n",
			svc.ServiceName, svc.ServiceType, svc.ServiceID, svc.EmailCount)
	}

	if !*register {
		return
	}

	pgPool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to create Postgres pool", "error", err)
		os.Exit(1)
	}
	defer pgPool.Close()

	store, err := registry.NewStore(ctx, pgPool)
	if err != nil {
		slog.Error("failed to initialise service registry", "error", err)
		os.Exit(1)
	}

	registered := 0
	for _, svc := range services {
		if err := store.Upsert(ctx, svc); err != nil {
			slog.Error("failed to register service", "service_id", svc.ServiceID, "error", err)
			continue
		}
		registered++
	}
	slog.Info("registered services", "count", registered, "total", len(services))
}
