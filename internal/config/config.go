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

// Package config loads configuration from config.yaml and environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// IMAPConfig holds connection settings for the monitored inbox.
type IMAPConfig struct {
	Server   string `yaml:"server"`
	Port     int    `yaml:"port"`
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
}

// OAuth2Config holds optional client-credentials settings for mailboxes
// that require OAUTHBEARER instead of password login.
type OAuth2Config struct {
	ClientID     string   `yaml:"client_id"`
	ClientSecret string   `yaml:"client_secret"`
	TokenURL     string   `yaml:"token_url"`
	Scopes       []string `yaml:"scopes"`
}

// Config holds all configuration for the monitor service.
type Config struct {
	IMAP   IMAPConfig
	OAuth2 OAuth2Config

	// Polling
	PollInterval time.Duration
	ScanDepth    int

	// Redis
	RedisURL    string
	StatesQueue string

	// Postgres
	DatabaseURL string

	// Server (health check only)
	Port int
}

// rawConfig mirrors the YAML structure for unmarshalling.
type rawConfig struct {
	IMAP   IMAPConfig   `yaml:"imap"`
	OAuth2 OAuth2Config `yaml:"oauth2"`
	Redis  struct {
		URL    string `yaml:"url"`
		Queues struct {
			States string `yaml:"states"`
		} `yaml:"queues"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
}

// Load reads configuration from config.yaml (with env var expansion) and
// environment variables for non-YAML settings.
func Load() (*Config, error) {
	configPath := envOrDefault("CONFIG_PATH", "/app/config/config.yaml")

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("read config file %s: %w", configPath, err)
	}

	// Expand ${VAR} references in the YAML
	expanded := os.ExpandEnv(string(data))

	var raw rawConfig
	if err := yaml.Unmarshal([]byte(expanded), &raw); err != nil {
		return nil, fmt.Errorf("parse config YAML: %w", err)
	}

	cfg := &Config{
		IMAP:         raw.IMAP,
		OAuth2:       raw.OAuth2,
		PollInterval: envOrDefaultDuration("POLL_INTERVAL", 30*time.Minute),
		ScanDepth:    envOrDefaultInt("SCAN_DEPTH", 100),
		RedisURL:     firstNonEmpty(raw.Redis.URL, envOrDefault("REDIS_URL", "redis://localhost:6379/0")),
		StatesQueue:  firstNonEmpty(raw.Redis.Queues.States, envOrDefault("STATES_QUEUE", "service_states")),
		DatabaseURL:  firstNonEmpty(raw.Postgres.URL, os.Getenv("DATABASE_URL")),
		Port:         envOrDefaultInt("PORT", 8080),
	}

	if cfg.IMAP.Server == "" || cfg.IMAP.Address == "" {
		return nil, fmt.Errorf("imap.server and imap.address are required, check config.yaml")
	}
	if cfg.IMAP.Port == 0 {
		cfg.IMAP.Port = 993
	}
	if cfg.IMAP.Password == "" && cfg.OAuth2.ClientID == "" {
		return nil, fmt.Errorf("either imap.password or an oauth2 client must be configured")
	}
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("postgres.url (or DATABASE_URL) is required")
	}

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envOrDefaultInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envOrDefaultDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
