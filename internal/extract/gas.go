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
	"regexp"
	"strings"

	"github.com/billscout/monitor/internal/models"
)

var (
	// This provider prints the total as a bare number, no currency
	// symbol: "Total a pagar: 24580".
	gasTotalRe       = regexp.MustCompile(`(?i)Total\s+a\s+pagar\s*:?\s*([0-9](?:[0-9.]*[0-9])?)\b`)
	gasMetropuntosRe = regexp.MustCompile(`(?i)metropuntos\D{0,30}?([0-9][0-9.]*)`)
	// Consumption needs an explicit label. The real consumption figure
	// lives only in the attached PDF, so a bare number near "m3" is
	// never trusted.
	gasConsumptionRe = regexp.MustCompile(`(?i)consumo(?:\s+del?\s+per[íi]odo)?\s*:\s*([0-9][0-9.,]*)\s*m3\b`)
)

type gasExtractor struct{}

func (gasExtractor) Extract(body string, base models.Record) models.Overrides {
	o := models.Overrides{}

	if m := gasTotalRe.FindStringSubmatch(body); m != nil {
		if n, ok := parseNumber(m[1]); ok {
			o[models.AttrTotalAmount] = n
		}
	}
	if m := gasMetropuntosRe.FindStringSubmatch(body); m != nil {
		if n, ok := parseNumber(m[1]); ok {
			o[models.AttrMetropuntos] = n
		}
	}
	if m := gasConsumptionRe.FindStringSubmatch(body); m != nil {
		if n, ok := parseNumber(strings.TrimSpace(m[1])); ok {
			o[models.AttrConsumptionM3] = n
		}
	}

	return o
}
