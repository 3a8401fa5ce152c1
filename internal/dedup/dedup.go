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

// Package dedup provides event deduplication using a Redis SET with TTL.
// This prevents the same bill from being republished on every polling
// cycle while its email is still the newest match in the inbox.
package dedup

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// DefaultTTL is how long we remember a published bill. Utility
	// bills arrive monthly, so 35 days covers a full cycle plus slack.
	DefaultTTL = 35 * 24 * time.Hour

	// keyPrefix namespaces dedup keys in Redis.
	keyPrefix = "billscout:seen:"
)

// Filter tracks which bills have already been published.
type Filter struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewFilter creates a dedup filter backed by Redis.
func NewFilter(rdb *redis.Client) *Filter {
	return &Filter{
		rdb: rdb,
		ttl: DefaultTTL,
	}
}

// IsNew returns true if the key has NOT been seen before.
// If true, the key is marked as seen atomically (SETNX).
func (f *Filter) IsNew(ctx context.Context, key string) (bool, error) {
	set, err := f.rdb.SetNX(ctx, fmt.Sprintf("%s%s", keyPrefix, key), 1, f.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("dedup SETNX: %w", err)
	}
	return set, nil
}
