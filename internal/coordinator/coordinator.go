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

// Package coordinator runs the background loop that periodically polls
// the inbox, finds the newest billing email per registered service,
// and publishes the extracted attribute record.
package coordinator

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/billscout/monitor/internal/extract"
	"github.com/billscout/monitor/internal/models"
	"github.com/billscout/monitor/internal/normalize"
	"github.com/billscout/monitor/internal/registry"
)

// Source is one authenticated mailbox connection. Implemented by
// mailbox.Client.
type Source interface {
	FetchRecent(limit int) ([]models.Email, error)
	Close() error
}

// Registry lists the configured services. Implemented by registry.Store.
type Registry interface {
	List(ctx context.Context) ([]registry.Record, error)
	TouchMatched(ctx context.Context, serviceID string) error
}

// Publisher delivers extraction results downstream. Implemented by
// queue.Publisher.
type Publisher interface {
	PublishRecord(ctx context.Context, svc models.DetectedService, rec models.Record) error
	PublishStatus(ctx context.Context, status string) error
}

// Deduper suppresses republishing an already-seen bill. Implemented by
// dedup.Filter.
type Deduper interface {
	IsNew(ctx context.Context, key string) (bool, error)
}

// Config holds the coordinator dependencies.
type Config struct {
	// Dial opens a fresh mailbox connection; one is opened per refresh
	// and closed when the refresh completes.
	Dial      func() (Source, error)
	Registry  Registry
	Publisher Publisher
	Dedup     Deduper
	Interval  time.Duration
	ScanDepth int // how many of the newest inbox messages to examine
}

// Coordinator periodically refreshes every registered service.
type Coordinator struct {
	cfg Config
}

// New creates a coordinator. Interval and ScanDepth must be positive.
func New(cfg Config) *Coordinator {
	return &Coordinator{cfg: cfg}
}

// Run starts the polling loop. It blocks until the context is cancelled.
func (c *Coordinator) Run(ctx context.Context) {
	slog.Info("coordinator starting",
		"interval", c.cfg.Interval,
		"scan_depth", c.cfg.ScanDepth,
	)

	// Do an initial refresh immediately
	c.Refresh(ctx)

	ticker := time.NewTicker(c.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("coordinator stopping")
			return
		case <-ticker.C:
			c.Refresh(ctx)
		}
	}
}

// Refresh performs one polling cycle. Connection problems degrade to a
// "Problem" status update; they never abort the loop.
func (c *Coordinator) Refresh(ctx context.Context) {
	src, err := c.cfg.Dial()
	if err != nil {
		slog.Error("mailbox connection failed", "error", err)
		c.publishStatus(ctx, "Problem")
		return
	}
	defer src.Close()

	msgs, err := src.FetchRecent(c.cfg.ScanDepth)
	if err != nil {
		slog.Error("mailbox fetch failed", "error", err)
		c.publishStatus(ctx, "Problem")
		return
	}
	c.publishStatus(ctx, "OK")

	// Bodies are normalized once per message, then shared across the
	// per-service matching below.
	bodies := make([]string, len(msgs))
	for i, m := range msgs {
		bodies[i] = normalize.Body(m.Parts)
	}

	services, err := c.cfg.Registry.List(ctx)
	if err != nil {
		slog.Error("failed to list services", "error", err)
		return
	}

	for _, rec := range services {
		c.refreshService(ctx, rec.Service, msgs, bodies)
	}
}

// refreshService finds the newest matching email for one service and
// publishes its extraction result.
func (c *Coordinator) refreshService(ctx context.Context, svc models.DetectedService, msgs []models.Email, bodies []string) {
	idx := latestMatch(svc, msgs, bodies)
	if idx < 0 {
		slog.Warn("no matching email found for service",
			"service_id", svc.ServiceID,
			"service_name", svc.ServiceName,
			"scanned", len(msgs),
		)
		return
	}

	msg := msgs[idx]
	key := billKey(svc.ServiceID, msg)
	isNew, err := c.cfg.Dedup.IsNew(ctx, key)
	if err != nil {
		slog.Error("dedup check failed", "service_id", svc.ServiceID, "error", err)
		return
	}
	if !isNew {
		slog.Debug("latest bill already published",
			"service_id", svc.ServiceID,
			"message_id", msg.MessageID,
		)
		return
	}

	record := extract.Extract(svc.ServiceType, msg.Subject, bodies[idx], msg.Date)
	record[models.AttrServiceName] = svc.ServiceName

	if err := c.cfg.Publisher.PublishRecord(ctx, svc, record); err != nil {
		slog.Error("failed to publish record", "service_id", svc.ServiceID, "error", err)
		return
	}
	if err := c.cfg.Registry.TouchMatched(ctx, svc.ServiceID); err != nil {
		slog.Error("failed to mark service matched", "service_id", svc.ServiceID, "error", err)
	}
}

// latestMatch returns the index of the newest message matching the
// service, or -1. Bills always carry a PDF attachment, so messages
// without attachments never match.
func latestMatch(svc models.DetectedService, msgs []models.Email, bodies []string) int {
	best := -1
	var bestDate time.Time
	for i, msg := range msgs {
		if !msg.HasAttachments {
			continue
		}
		if !matchesService(svc, msg, bodies[i]) {
			continue
		}
		if msg.Date.IsZero() {
			continue
		}
		if best < 0 || msg.Date.After(bestDate) {
			best = i
			bestDate = msg.Date
		}
	}
	return best
}

// publishStatus reports mailbox connectivity, logging but otherwise
// ignoring publish failures.
func (c *Coordinator) publishStatus(ctx context.Context, status string) {
	if err := c.cfg.Publisher.PublishStatus(ctx, status); err != nil {
		slog.Error("failed to publish connection status", "status", status, "error", err)
	}
}

// billKey identifies one bill for deduplication. Message-ID is unique
// per email; messages without one fall back to the send timestamp.
func billKey(serviceID string, msg models.Email) string {
	if msg.MessageID != "" {
		return serviceID + ":" + msg.MessageID
	}
	return fmt.Sprintf("%s:%d", serviceID, msg.Date.Unix())
}
