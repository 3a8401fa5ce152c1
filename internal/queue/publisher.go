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

// Package queue publishes extraction results to Redis for the display
// and automation consumers downstream.
package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/billscout/monitor/internal/models"
)

// Publisher sends service state updates to a Redis list.
type Publisher struct {
	rdb       *redis.Client
	queueName string
}

// NewPublisher creates a new Redis publisher targeting the specified queue.
func NewPublisher(rdb *redis.Client, queueName string) *Publisher {
	return &Publisher{
		rdb:       rdb,
		queueName: queueName,
	}
}

// stateUpdate is the wire format consumers read from the queue. The
// attribute mapping carries only present fields: attributes a typed
// extractor explicitly cleared never appear here.
type stateUpdate struct {
	ID          string         `json:"id"`
	Kind        string         `json:"kind"` // "service_state" or "connection_status"
	ServiceID   string         `json:"service_id,omitempty"`
	ServiceName string         `json:"service_name,omitempty"`
	Status      string         `json:"status,omitempty"`
	Attributes  map[string]any `json:"attributes,omitempty"`
	PublishedAt string         `json:"published_at"`
}

// PublishRecord serialises an attribute record and pushes it onto the
// state queue.
func (p *Publisher) PublishRecord(ctx context.Context, svc models.DetectedService, rec models.Record) error {
	update := stateUpdate{
		ID:          uuid.New().String(),
		Kind:        "service_state",
		ServiceID:   svc.ServiceID,
		ServiceName: svc.ServiceName,
		Attributes:  rec.Display(),
		PublishedAt: time.Now().UTC().Format(time.RFC3339),
	}

	payload, err := json.Marshal(update)
	if err != nil {
		return fmt.Errorf("marshal state update: %w", err)
	}

	if err := p.rdb.LPush(ctx, p.queueName, payload).Err(); err != nil {
		return fmt.Errorf("redis LPUSH: %w", err)
	}

	slog.Info("published service state",
		"update_id", update.ID,
		"service_id", svc.ServiceID,
		"attributes", len(update.Attributes),
		"queue", p.queueName,
	)
	return nil
}

// PublishStatus reports the mailbox connection status ("OK"/"Problem")
// so consumers can surface connectivity separately from bill data.
func (p *Publisher) PublishStatus(ctx context.Context, status string) error {
	update := stateUpdate{
		ID:          uuid.New().String(),
		Kind:        "connection_status",
		Status:      status,
		PublishedAt: time.Now().UTC().Format(time.RFC3339),
	}

	payload, err := json.Marshal(update)
	if err != nil {
		return fmt.Errorf("marshal status update: %w", err)
	}
	if err := p.rdb.LPush(ctx, p.queueName, payload).Err(); err != nil {
		return fmt.Errorf("redis LPUSH: %w", err)
	}
	return nil
}

// Ping checks the Redis connection.
func (p *Publisher) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return p.rdb.Ping(ctx).Err()
}
