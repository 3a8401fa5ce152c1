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

// Package registry provides a Postgres-backed store for detected
// utility services. The extraction pipeline only ever reads these
// records; adding and removing services is a configuration action.
package registry

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/billscout/monitor/internal/classify"
	"github.com/billscout/monitor/internal/models"
)

// Record is one detected service persisted in Postgres.
type Record struct {
	ID          int64
	Service     models.DetectedService
	LastMatched *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Store provides CRUD operations for detected services in Postgres.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore creates a registry store backed by the given Postgres pool.
// It ensures the services table exists on creation.
func NewStore(ctx context.Context, pool *pgxpool.Pool) (*Store, error) {
	s := &Store{pool: pool}
	if err := s.ensureSchema(ctx); err != nil {
		return nil, fmt.Errorf("ensure services schema: %w", err)
	}
	slog.Info("service registry initialised")
	return s, nil
}

func (s *Store) ensureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS services (
			id             BIGSERIAL PRIMARY KEY,
			service_id     TEXT NOT NULL UNIQUE,
			service_name   TEXT NOT NULL,
			service_type   TEXT DEFAULT '',
			sample_from    TEXT DEFAULT '',
			sample_subject TEXT DEFAULT '',
			email_count    INTEGER DEFAULT 0,
			last_matched   TIMESTAMPTZ,
			created_at     TIMESTAMPTZ DEFAULT NOW(),
			updated_at     TIMESTAMPTZ DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS idx_services_type ON services(service_type);
	`)
	return err
}

// Upsert inserts or refreshes a detected service keyed on service_id.
// Sample headers are only written on first insert: they anchor the
// original classification and must stay stable.
func (s *Store) Upsert(ctx context.Context, svc models.DetectedService) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO services
			(service_id, service_name, service_type, sample_from, sample_subject, email_count)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (service_id) DO UPDATE SET
			service_name = EXCLUDED.service_name,
			service_type = EXCLUDED.service_type,
			email_count  = EXCLUDED.email_count,
			updated_at   = NOW()
	`, svc.ServiceID, svc.ServiceName, string(svc.ServiceType), svc.SampleFrom, svc.SampleSubject, svc.EmailCount)
	return err
}

// Get retrieves a single service by its stable identifier.
func (s *Store) Get(ctx context.Context, serviceID string) (*Record, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, service_id, service_name, service_type, sample_from,
		       sample_subject, email_count, last_matched, created_at, updated_at
		FROM services
		WHERE service_id = $1
	`, serviceID)
	return scanRecord(row)
}

// List returns all registered services ordered by name.
func (s *Store) List(ctx context.Context) ([]Record, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, service_id, service_name, service_type, sample_from,
		       sample_subject, email_count, last_matched, created_at, updated_at
		FROM services
		ORDER BY service_name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var r Record
		var serviceType string
		if err := rows.Scan(
			&r.ID, &r.Service.ServiceID, &r.Service.ServiceName, &serviceType,
			&r.Service.SampleFrom, &r.Service.SampleSubject, &r.Service.EmailCount,
			&r.LastMatched, &r.CreatedAt, &r.UpdatedAt,
		); err != nil {
			return nil, err
		}
		r.Service.ServiceType = effectiveType(serviceType, r.Service)
		records = append(records, r)
	}
	return records, rows.Err()
}

// TouchMatched records that a billing email was matched for a service.
func (s *Store) TouchMatched(ctx context.Context, serviceID string) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE services
		SET last_matched = NOW(), updated_at = NOW()
		WHERE service_id = $1
	`, serviceID)
	return err
}

// Delete removes a registered service.
func (s *Store) Delete(ctx context.Context, serviceID string) error {
	_, err := s.pool.Exec(ctx, `
		DELETE FROM services WHERE service_id = $1
	`, serviceID)
	return err
}

// scanRecord scans a single row into a Record.
func scanRecord(row pgx.Row) (*Record, error) {
	var r Record
	var serviceType string
	err := row.Scan(
		&r.ID, &r.Service.ServiceID, &r.Service.ServiceName, &serviceType,
		&r.Service.SampleFrom, &r.Service.SampleSubject, &r.Service.EmailCount,
		&r.LastMatched, &r.CreatedAt, &r.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	r.Service.ServiceType = effectiveType(serviceType, r.Service)
	return &r, nil
}

// effectiveType resolves the service type on read. Rows written before
// type tracking existed have an empty type and are re-classified from
// their sample headers every time; the derived value is never written
// back.
func effectiveType(stored string, svc models.DetectedService) models.ServiceType {
	if stored != "" {
		return models.ParseServiceType(stored)
	}
	return classify.ServiceTypeOf(svc.SampleFrom, svc.SampleSubject)
}
