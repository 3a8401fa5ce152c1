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

// Package extract turns a normalized billing email into an attribute
// record. A service-type-agnostic pass runs first; a type-specific
// extractor then overrides or augments the result for providers whose
// layout the generic patterns get wrong.
package extract

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/billscout/monitor/internal/models"
)

// folioPatterns run against the subject line in priority order; the
// first match wins. This ordering is the contract: a subject matching
// several patterns always yields the earliest pattern's capture.
var folioPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)Nro\.?\s*(\d{6,})`),
	regexp.MustCompile(`(?i)N[°º]\s*(\d{6,})`),
	regexp.MustCompile(`(?i)Boleta\D{0,20}?(\d{6,})`),
	regexp.MustCompile(`(?i)Folio\s*:?\s*(\d{6,})`),
}

const dateExpr = `\d{1,2}[/-]\d{1,2}[/-]\d{2,4}`

var (
	customerRe = regexp.MustCompile(`(?i)N[úu]mero\s+(?:de\s+)?(?:Cliente|Cuenta)\s*:?\s*([0-9][0-9.]*(?:-[0-9kK])?)`)
	addressRe  = regexp.MustCompile(`(?i)Direcci[óo]n\s*:\s*([^\n]+)`)
	totalRe    = regexp.MustCompile(`(?i)Total\s+a\s+pagar\s*:?\s*\$?\s*([0-9](?:[0-9.,]*[0-9])?)`)
	periodRe   = regexp.MustCompile(`(?i)Per[íi]odo\s+de\s+(?:facturaci[óo]n|consumo)\s*:?\s*(` + dateExpr + `)\s+al\s+(` + dateExpr + `)`)
	dueDateRe  = regexp.MustCompile(`(?i)Fecha\s+de\s+vencimiento\s*:?\s*(` + dateExpr + `)`)
	anyDateRe  = regexp.MustCompile(dateExpr)
)

// Generic applies the service-type-agnostic patterns. Every field is
// independent and tolerant: a failed match leaves the key absent, so
// partial extraction is always possible and no input raises an error.
func Generic(subject, body string, sentAt time.Time) models.Record {
	rec := models.Record{}

	for _, re := range folioPatterns {
		if m := re.FindStringSubmatch(subject); m != nil {
			rec[models.AttrFolio] = m[1]
			break
		}
	}

	if m := customerRe.FindStringSubmatch(body); m != nil {
		rec[models.AttrCustomerNumber] = m[1]
	}
	if m := addressRe.FindStringSubmatch(body); m != nil {
		rec[models.AttrAddress] = strings.TrimSpace(m[1])
	}
	if m := totalRe.FindStringSubmatch(body); m != nil {
		if n, ok := parseNumber(m[1]); ok {
			rec[models.AttrTotalAmount] = n
		}
	}

	if m := periodRe.FindStringSubmatch(body); m != nil {
		if start, ok := parseDate(m[1]); ok {
			rec[models.AttrBillingPeriodStart] = start
		}
		if end, ok := parseDate(m[2]); ok {
			rec[models.AttrBillingPeriodEnd] = end
		}
	} else if dates := anyDateRe.FindAllString(body, 2); len(dates) == 2 {
		// No labelled period: fall back to the first two dates in the
		// body. Type-specific extractors clear this guess for layouts
		// where those dates mean something else.
		if start, ok := parseDate(dates[0]); ok {
			rec[models.AttrBillingPeriodStart] = start
		}
		if end, ok := parseDate(dates[1]); ok {
			rec[models.AttrBillingPeriodEnd] = end
		}
	}

	if m := dueDateRe.FindStringSubmatch(body); m != nil {
		if due, ok := parseDate(m[1]); ok {
			rec[models.AttrDueDate] = due
		}
	}

	if !sentAt.IsZero() {
		rec[models.AttrLastUpdated] = sentAt
	}

	return rec
}

// dateLayouts accept both zero-padded and bare day/month digits, with
// slash or dash separators, four- or two-digit years.
var dateLayouts = []string{"2/1/2006", "2/1/06", "2-1-2006", "2-1-06"}

// parseDate converts a day/month/year token to a date. Returns false
// on anything unparseable so callers can leave the field absent.
func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// parseNumber normalizes a Chilean-formatted numeric token: dots are
// thousands separators and a comma is the decimal mark ($24.580 means
// twenty-four thousand five hundred eighty pesos). Integral values come
// back as int64, fractional ones as float64.
func parseNumber(s string) (any, bool) {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, ".", "")
	s = strings.ReplaceAll(s, ",", ".")
	if s == "" || s == "." {
		return nil, false
	}
	if !strings.Contains(s, ".") {
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, false
		}
		return n, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, false
	}
	return f, true
}
