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

package coordinator

import (
	"regexp"
	"strings"

	"github.com/billscout/monitor/internal/models"
)

var senderDomainRe = regexp.MustCompile(`@([a-zA-Z0-9\-]+)\.[a-zA-Z]`)

// matchesService decides whether an email belongs to a registered
// service. Three tests run in order of reliability: the sender domain
// taken from the stored sample From header, the service name's
// significant keywords, and finally a loose pattern derived from the
// service_id.
func matchesService(svc models.DetectedService, msg models.Email, body string) bool {
	combined := strings.ToLower(msg.FromAddress + " " + msg.Subject + " " + body)

	if m := senderDomainRe.FindStringSubmatch(svc.SampleFrom); m != nil {
		if strings.Contains(strings.ToLower(msg.FromAddress), strings.ToLower(m[1])) {
			return true
		}
	}

	if svc.ServiceName != "" {
		var significant, hits int
		for _, word := range strings.Fields(strings.ToLower(svc.ServiceName)) {
			if len(word) <= 3 {
				continue
			}
			significant++
			if strings.Contains(combined, word) {
				hits++
			}
		}
		if significant > 0 && hits == significant {
			return true
		}
	}

	if svc.ServiceID != "" {
		pattern := strings.ReplaceAll(regexp.QuoteMeta(svc.ServiceID), "_", ".*")
		if re, err := regexp.Compile(`(?i)` + pattern); err == nil && re.MatchString(combined) {
			return true
		}
	}

	return false
}
