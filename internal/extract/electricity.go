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
	// In-body invoice sentence, e.g. "boleta N° 12345678 del 05/01/2026".
	// Distinct from the subject-based generic folio.
	elecBoletaRe = regexp.MustCompile(`(?i)\bboleta\s+(?:electr[óo]nica\s+)?N[°º]?\.?\s*(\d{6,})\D{0,20}?(` + dateExpr + `)`)
	// The service address appears in prose: "... ubicado en AV EJEMPLO 123, Santiago".
	elecAddressRe    = regexp.MustCompile(`(?i)ubicad[oa]\s+en\s+([^,.\n]+)`)
	elecNextPeriodRe = regexp.MustCompile(`(?i)Pr[óo]ximo\s+per[íi]odo\s+de\s+facturaci[óo]n\s*:?\s*(` + dateExpr + `)\s+al\s+(` + dateExpr + `)`)
	elecConsTypeRe   = regexp.MustCompile(`(?i)consumo\s+(real|estimado)`)
	elecKWhLabeledRe = regexp.MustCompile(`(?i)consumo\D{0,30}?([0-9][0-9.,]*)\s*kWh\b`)
	elecKWhBareRe    = regexp.MustCompile(`(?i)\b([0-9][0-9.,]*)\s*kWh\b`)
)

type electricityExtractor struct{}

func (electricityExtractor) Extract(body string, base models.Record) models.Overrides {
	o := models.Overrides{
		// The first two dates in this provider's body are the boleta
		// date and the due date, not a billing period. Clearing beats
		// an incorrect guess.
		models.AttrBillingPeriodStart: models.Absent,
		models.AttrBillingPeriodEnd:   models.Absent,
	}

	if m := elecBoletaRe.FindStringSubmatch(body); m != nil {
		o[models.AttrFolio] = m[1]
		if d, ok := parseDate(m[2]); ok {
			o[models.AttrBoletaDate] = d
		}
	}
	if m := elecAddressRe.FindStringSubmatch(body); m != nil {
		o[models.AttrAddress] = strings.TrimSpace(m[1])
	}
	if m := elecNextPeriodRe.FindStringSubmatch(body); m != nil {
		if start, ok := parseDate(m[1]); ok {
			o[models.AttrNextPeriodStart] = start
		}
		if end, ok := parseDate(m[2]); ok {
			o[models.AttrNextPeriodEnd] = end
		}
	}
	if m := elecConsTypeRe.FindStringSubmatch(body); m != nil {
		o[models.AttrConsumptionType] = strings.ToLower(m[1])
	}
	if m := elecKWhLabeledRe.FindStringSubmatch(body); m != nil {
		if n, ok := parseNumber(m[1]); ok {
			o[models.AttrConsumptionKWh] = n
		}
	} else if m := elecKWhBareRe.FindStringSubmatch(body); m != nil {
		if n, ok := parseNumber(m[1]); ok {
			o[models.AttrConsumptionKWh] = n
		}
	}

	return o
}
