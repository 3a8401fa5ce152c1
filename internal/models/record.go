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

package models

import "time"

// Attribute keys every extraction produces when the source email carries
// the corresponding field. Type-specific extractors may add further keys.
const (
	AttrServiceName        = "service_name"
	AttrServiceType        = "service_type"
	AttrFolio              = "folio"
	AttrBoletaDate         = "boleta_date"
	AttrCustomerNumber     = "customer_number"
	AttrAddress            = "address"
	AttrTotalAmount        = "total_amount"
	AttrBillingPeriodStart = "billing_period_start"
	AttrBillingPeriodEnd   = "billing_period_end"
	AttrNextPeriodStart    = "next_billing_period_start"
	AttrNextPeriodEnd      = "next_billing_period_end"
	AttrDueDate            = "due_date"
	AttrLastUpdated        = "last_updated_datetime"
	AttrConsumptionM3      = "consumption_m3"
	AttrConsumptionKWh     = "consumption_kwh"
	AttrConsumptionType    = "consumption_type"
	AttrMetropuntos        = "metropuntos"
	AttrMeterNumber        = "meter_number"
	AttrMeterReading       = "meter_reading"
)

// Absent marks an attribute a type-specific extractor has explicitly
// cleared because the generic value is known to be wrong for that
// provider. Absent attributes are excluded from Display output, unlike
// keys that were simply never set.
var Absent = absentValue{}

type absentValue struct{}

// Record is one extraction result: a mapping from attribute name to
// value (string, number or time.Time). Records are built fresh per
// message and never cached.
type Record map[string]any

// Overrides is the output of a type-specific extractor, merged on top
// of the generic record. A value of Absent clears the generic value.
type Overrides map[string]any

// Apply merges typed-extractor overrides into the record. Override
// values replace, new keys add, Absent markers are stored as-is so the
// cleared attribute can never fall back to a stale generic value.
func (r Record) Apply(o Overrides) {
	for k, v := range o {
		if v == nil {
			r[k] = Absent
			continue
		}
		r[k] = v
	}
}

// Display returns the record as published to the external display
// collaborator: Absent attributes omitted, dates rendered as ISO-8601.
func (r Record) Display() map[string]any {
	out := make(map[string]any, len(r))
	for k, v := range r {
		if v == Absent || v == nil {
			continue
		}
		out[k] = displayValue(v)
	}
	return out
}

func displayValue(v any) any {
	t, ok := v.(time.Time)
	if !ok {
		return v
	}
	// Date-only values (midnight, no offset information worth keeping)
	// render as a calendar date; real timestamps keep their time.
	if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0 {
		return t.Format("2006-01-02")
	}
	return t.Format(time.RFC3339)
}
