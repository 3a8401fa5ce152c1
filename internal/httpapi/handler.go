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

// Package httpapi serves the monitor's operational HTTP surface: a
// health probe and a read-only listing of registered services.
package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/http"

	"github.com/billscout/monitor/internal/models"
)

// ServiceLister exposes the registered services. Implemented by
// registry.Store via a thin adapter in cmd/server.
type ServiceLister interface {
	ListServices(ctx context.Context) ([]models.DetectedService, error)
}

// HealthChecker reports dependency health. Implemented by queue.Publisher
// (Redis) and pgxpool.Pool (Postgres).
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// Handler serves the operational endpoints.
type Handler struct {
	Services ServiceLister
	Checks   map[string]HealthChecker // name → dependency
}

// ServeHealth responds 200 when every dependency answers a ping, 503
// with the failing dependency's name otherwise.
func (h *Handler) ServeHealth(w http.ResponseWriter, r *http.Request) {
	for name, check := range h.Checks {
		if err := check.Ping(r.Context()); err != nil {
			slog.Warn("health check failed", "dependency", name, "error", err)
			http.Error(w, fmt.Sprintf("%s unhealthy", name), http.StatusServiceUnavailable)
			return
		}
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status": "healthy"}`))
}

// ServeServices lists the registered services as JSON.
func (h *Handler) ServeServices(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if h.Services == nil {
		http.Error(w, "registry unavailable", http.StatusServiceUnavailable)
		return
	}

	services, err := h.Services.ListServices(r.Context())
	if err != nil {
		slog.Error("failed to list services", "error", err)
		http.Error(w, "registry unavailable", http.StatusServiceUnavailable)
		return
	}
	if services == nil {
		services = []models.DetectedService{}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(services); err != nil {
		slog.Error("failed to encode services", "error", err)
	}
}

// Serve starts the HTTP server on the given port. The returned channel
// closes once the listener is accepting connections.
func Serve(ctx context.Context, port int, handler *Handler) (<-chan struct{}, error) {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", handler.ServeHealth)
	mux.HandleFunc("/services", handler.ServeServices)

	server := &http.Server{
		Handler: mux,
	}

	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
	if err != nil {
		return nil, fmt.Errorf("bind http port %d: %w", port, err)
	}

	ready := make(chan struct{})

	go func() {
		<-ctx.Done()
		slog.Info("http server shutting down")
		server.Close()
	}()

	go func() {
		slog.Info("http server listening", "port", port)
		close(ready)
		if err := server.Serve(ln); err != http.ErrServerClosed {
			slog.Error("http server error", "error", err)
		}
	}()

	return ready, nil
}
