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

// Package detect scans fetched inbox messages for utility-service
// billing emails and groups them into detected services.
package detect

import (
	"log/slog"
	"sort"

	"github.com/billscout/monitor/internal/classify"
	"github.com/billscout/monitor/internal/models"
	"github.com/billscout/monitor/internal/normalize"
)

// scanBodyLimit caps how much body text the billing prefilter looks at.
const scanBodyLimit = 5000

// Scan inspects messages and returns one DetectedService per distinct
// provider found, with a count of matching emails. Bills arrive with an
// attached PDF, so messages without attachments are skipped, as are
// messages with no billing vocabulary in their headers or body. The
// first matching email's headers are kept as classification samples.
func Scan(msgs []models.Email) []models.DetectedService {
	found := map[string]*models.DetectedService{}

	for _, msg := range msgs {
		if !msg.HasAttachments {
			continue
		}

		body := normalize.Body(msg.Parts)
		if len(body) > scanBodyLimit {
			body = body[:scanBodyLimit]
		}
		if !classify.IsBillingEmail(msg.FromAddress, msg.Subject, body) {
			continue
		}

		svc := classify.Classify(msg.FromAddress, msg.Subject)
		if svc.ID == "" {
			continue
		}

		if existing, ok := found[svc.ID]; ok {
			existing.EmailCount++
			continue
		}
		found[svc.ID] = &models.DetectedService{
			ServiceName:   svc.Name,
			ServiceID:     svc.ID,
			ServiceType:   svc.Type,
			SampleFrom:    msg.FromAddress,
			SampleSubject: msg.Subject,
			EmailCount:    1,
		}
	}

	services := make([]models.DetectedService, 0, len(found))
	for _, svc := range found {
		services = append(services, *svc)
	}
	sort.Slice(services, func(i, j int) bool {
		if services[i].EmailCount != services[j].EmailCount {
			return services[i].EmailCount > services[j].EmailCount
		}
		return services[i].ServiceID < services[j].ServiceID
	})

	slog.Info("inbox scan complete",
		"messages", len(msgs),
		"services", len(services),
	)
	return services
}
