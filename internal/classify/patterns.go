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

package classify

import (
	"regexp"

	"github.com/billscout/monitor/internal/models"
)

// Rule is one classification rule. Rules are evaluated in slice order
// and the first match wins; the provider identity comes from the rule,
// never from captured text, so classification is stable across subject
// variations from the same provider.
type Rule struct {
	// Sender must match the From header. Required.
	Sender *regexp.Regexp
	// Subject, when non-nil, must also match the Subject header.
	Subject *regexp.Regexp

	Name string
	ID   string
	Type models.ServiceType
}

// rules is the fixed, ordered classification table. It is initialised
// once and never mutated.
var rules = []Rule{
	// Water utilities
	// \s* rather than \s+: sender domains pack the words together
	// (noreply@aguasandinas.cl) while subjects space them out.
	{Sender: reI(`aguas?\s*andinas?`), Name: "Aguas Andinas", ID: "aguas_andinas", Type: models.ServiceTypeWater},
	{Sender: reI(`essbio|esval|nuevo\s*sur`), Name: "Agua", ID: "agua", Type: models.ServiceTypeWater},
	// Electricity utilities
	{Sender: reI(`enel|chilectra|cge\s*distribuci[oó]n`), Name: "Enel", ID: "enel", Type: models.ServiceTypeElectricity},
	// Gas utilities
	{Sender: reI(`metrogas`), Name: "Metrogas", ID: "metrogas", Type: models.ServiceTypeGas},
	{Sender: reI(`lipigas|gasco`), Name: "Gas", ID: "gas", Type: models.ServiceTypeGas},
	// Telecom
	{Sender: reI(`movistar|entel|claro|wom|vtr`), Name: "Telecomunicaciones", ID: "telecomunicaciones", Type: models.ServiceTypeTelecom},
	{Sender: reI(`mundo.*pac[íi]fico|gtd|telefonica`), Name: "Internet/TV", ID: "internet_tv", Type: models.ServiceTypeTelecom},
	// Generic company-name fallbacks
	{Sender: reI(`compa[ñn][íi]a\s+de\s+agua`), Name: "Agua", ID: "agua", Type: models.ServiceTypeWater},
	{Sender: reI(`compa[ñn][íi]a\s+de\s+electricidad`), Name: "Electricidad", ID: "electricidad", Type: models.ServiceTypeElectricity},
	{Sender: reI(`compa[ñn][íi]a\s+de\s+gas`), Name: "Gas", ID: "gas", Type: models.ServiceTypeGas},
}

// billingIndicators flag a message as a billing/service email during
// inbox scans, before any provider rule is consulted.
var billingIndicators = []*regexp.Regexp{
	reI(`factura|boleta|cuenta|cuota|pago|cobro|consumo`),
	reI(`invoice|bill|payment|statement`),
	reI(`folio|n[úu]mero de cuenta|nº de cliente`),
	reI(`vencimiento|fecha de pago|total a pagar|monto`),
	reI(`due date|amount due|total due`),
	reI(`dte|documento tributario|electronica`),
}

func reI(expr string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)` + expr)
}
