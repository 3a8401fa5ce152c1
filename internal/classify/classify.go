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

// Package classify maps an email's From and Subject headers onto a
// known utility provider and its service type. The rule table is a
// fixed, ordered list; the first matching rule wins.
package classify

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/billscout/monitor/internal/models"
)

// Service is the outcome of classifying one email.
type Service struct {
	Name string
	ID   string
	Type models.ServiceType
}

var (
	domainRe        = regexp.MustCompile(`@([a-zA-Z0-9\-]+)\.[a-zA-Z]`)
	domainPrefixRe  = regexp.MustCompile(`(?i)^(admin|noreply|no-reply|info|facturacion|dte)`)
	domainSuffixRe  = regexp.MustCompile(`(?i)(admin|cl)$`)
	companyNameRe   = regexp.MustCompile(`\b[A-ZÁÉÍÓÚÑ]{2,}(?:\s+[A-ZÁÉÍÓÚÑ]{2,}){0,3}\s+S\.?A\.?`)
	companySuffixRe = regexp.MustCompile(`\s+S\.?A\.?$`)
	slugRe          = regexp.MustCompile(`[^a-z0-9]+`)
	domainSepRe     = regexp.MustCompile(`[-_]`)
)

// Classify determines the provider identity and service type for an
// email. A missing or malformed From header is treated as an empty
// string and can only reach the unknown fallback. When no rule matches,
// the result has Type unknown and a best-effort Name derived from the
// sender domain or an uppercase company name in the subject; Name and
// ID stay empty when nothing at all is derivable.
func Classify(fromAddress, subject string) Service {
	for _, r := range rules {
		if !ruleMatches(r, fromAddress, subject) {
			continue
		}
		return Service{Name: r.Name, ID: r.ID, Type: r.Type}
	}
	return unknownService(fromAddress, subject)
}

// ServiceTypeOf runs only the type portion of classification. It is
// the fallback path for stored services created before service-type
// tracking existed: such records are re-classified on every read and
// never rewritten in storage.
func ServiceTypeOf(fromAddress, subject string) models.ServiceType {
	for _, r := range rules {
		if ruleMatches(r, fromAddress, subject) {
			return r.Type
		}
	}
	return models.ServiceTypeUnknown
}

// IsBillingEmail reports whether the headers and body look like a
// billing/service email. Used as a prefilter during inbox scans.
func IsBillingEmail(fromAddress, subject, body string) bool {
	combined := fromAddress + " " + subject + " " + body
	for _, re := range billingIndicators {
		if re.MatchString(combined) {
			return true
		}
	}
	return false
}

// ruleMatches applies one rule. Several providers bill through generic
// DTE relay addresses, so the sender matcher also gets a shot at the
// subject line; the optional subject matcher only ever sees the subject.
func ruleMatches(r Rule, fromAddress, subject string) bool {
	if !r.Sender.MatchString(fromAddress) && !r.Sender.MatchString(subject) {
		return false
	}
	if r.Subject != nil && !r.Subject.MatchString(subject) {
		return false
	}
	return true
}

// unknownService builds the terminal unknown classification.
func unknownService(fromAddress, subject string) Service {
	if m := domainRe.FindStringSubmatch(fromAddress); m != nil {
		domain := m[1]
		domain = domainPrefixRe.ReplaceAllString(domain, "")
		domain = domainSuffixRe.ReplaceAllString(domain, "")
		domain = strings.Trim(domain, "-_")
		if len(domain) > 3 {
			words := domainSepRe.Split(domain, -1)
			for i, w := range words {
				if w != "" {
					words[i] = strings.ToUpper(w[:1]) + w[1:]
				}
			}
			return Service{
				Name: strings.Join(words, " "),
				ID:   Slugify(domain),
				Type: models.ServiceTypeUnknown,
			}
		}
	}

	// Uppercase "COMPANY NAME S.A." in the subject is the last resort.
	if m := companyNameRe.FindString(subject); m != "" {
		name := strings.TrimSpace(companySuffixRe.ReplaceAllString(m, ""))
		return Service{
			Name: titleCase(name),
			ID:   Slugify(name),
			Type: models.ServiceTypeUnknown,
		}
	}

	return Service{Type: models.ServiceTypeUnknown}
}

// Slugify normalizes a provider name into a stable service_id.
func Slugify(s string) string {
	return strings.Trim(slugRe.ReplaceAllString(strings.ToLower(s), "_"), "_")
}

func titleCase(s string) string {
	words := strings.Fields(strings.ToLower(s))
	for i, w := range words {
		r := []rune(w)
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}
