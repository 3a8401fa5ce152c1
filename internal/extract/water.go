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

// The water provider renders its summary as a two-column table whose
// right-hand column is one packed paragraph holding every value in
// fixed order: ADDRESS ACCOUNT_NUMBER DATE_START al DATE_END. The
// address is an ALL-CAPS segment (digits allowed, e.g. street numbers)
// and the account number always has the shape \d{5,}-\d, which is the
// anchor that splits the packed string.
var waterPackedRe = regexp.MustCompile(
	`([A-ZÁÉÍÓÚÑ][A-ZÁÉÍÓÚÑ0-9 .]*?)\s+(\d{5,}-\d)\b\s+(` + dateExpr + `)\s+al\s+(` + dateExpr + `)`)

var (
	waterConsumptionRe  = regexp.MustCompile(`(?i)consumo\D{0,30}?([0-9][0-9.,]*)\s*m3\b`)
	waterMeterReadingRe = regexp.MustCompile(`(?i)lectura\s+actual\D{0,10}?(\d+)`)
	waterMeterNumberRe  = regexp.MustCompile(`(?i)\bmedidor\s*(?:n[°º]\s*)?:?\s*([A-Z0-9][A-Z0-9-]*)`)
)

type waterExtractor struct{}

func (waterExtractor) Extract(body string, base models.Record) models.Overrides {
	o := models.Overrides{}

	if m := waterPackedRe.FindStringSubmatch(body); m != nil {
		// The generic Dirección/Número de Cliente matches hit the
		// left-hand label column in this layout, so the packed values
		// override them rather than merely filling gaps.
		o[models.AttrAddress] = strings.TrimSpace(m[1])
		o[models.AttrCustomerNumber] = m[2]
		if start, ok := parseDate(m[3]); ok {
			o[models.AttrBillingPeriodStart] = start
		}
		if end, ok := parseDate(m[4]); ok {
			o[models.AttrBillingPeriodEnd] = end
		}
	}

	if m := waterConsumptionRe.FindStringSubmatch(body); m != nil {
		if n, ok := parseNumber(m[1]); ok {
			o[models.AttrConsumptionM3] = n
		}
	}
	if m := waterMeterReadingRe.FindStringSubmatch(body); m != nil {
		if n, ok := parseNumber(m[1]); ok {
			o[models.AttrMeterReading] = n
		}
	}
	if m := waterMeterNumberRe.FindStringSubmatch(body); m != nil {
		o[models.AttrMeterNumber] = m[1]
	}

	return o
}
