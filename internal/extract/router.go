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

package extract

import (
	"time"

	"github.com/billscout/monitor/internal/models"
)

// Extract runs the full pipeline for one email: the generic pass over
// subject and normalized body, then the type-specific extractor for
// the classified service type (identity when none is registered). The
// returned record always carries the service type and is a pure
// function of its inputs; re-running on the same email yields an
// identical record.
func Extract(serviceType models.ServiceType, subject, body string, sentAt time.Time) models.Record {
	rec := Generic(subject, body, sentAt)
	if ex, ok := registry[serviceType]; ok {
		rec.Apply(ex.Extract(body, rec))
	}
	rec[models.AttrServiceType] = string(serviceType)
	return rec
}
