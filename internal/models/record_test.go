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

import (
	"testing"
	"time"
)

// TestRecord_ApplyOverrides verifies that overrides replace existing
// values, add new keys, and leave untouched keys alone.
func TestRecord_ApplyOverrides(t *testing.T) {
	rec := Record{
		AttrFolio:       "123456",
		AttrTotalAmount: int64(10000),
		AttrAddress:     "CALLE FALSA 123",
	}

	rec.Apply(Overrides{
		AttrTotalAmount:    int64(24580),  // replace
		AttrConsumptionM3:  float64(12.5), // add
		AttrCustomerNumber: nil,           // nil converts to Absent
	})

	if rec[AttrFolio] != "123456" {
		t.Errorf("folio changed unexpectedly: %v", rec[AttrFolio])
	}
	if rec[AttrTotalAmount] != int64(24580) {
		t.Errorf("total_amount = %v, want 24580", rec[AttrTotalAmount])
	}
	if rec[AttrConsumptionM3] != float64(12.5) {
		t.Errorf("consumption_m3 = %v, want 12.5", rec[AttrConsumptionM3])
	}
	if rec[AttrCustomerNumber] != Absent {
		t.Errorf("nil override should store Absent, got %v", rec[AttrCustomerNumber])
	}
}

// TestRecord_ApplyAbsentClears verifies an explicit Absent marker
// replaces a generic value and stays stored on the record.
func TestRecord_ApplyAbsentClears(t *testing.T) {
	rec := Record{
		AttrBillingPeriodStart: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		AttrBillingPeriodEnd:   time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC),
	}

	rec.Apply(Overrides{
		AttrBillingPeriodStart: Absent,
		AttrBillingPeriodEnd:   Absent,
	})

	if rec[AttrBillingPeriodStart] != Absent {
		t.Errorf("billing_period_start = %v, want Absent", rec[AttrBillingPeriodStart])
	}
	if rec[AttrBillingPeriodEnd] != Absent {
		t.Errorf("billing_period_end = %v, want Absent", rec[AttrBillingPeriodEnd])
	}
}

// TestRecord_DisplayOmitsAbsent verifies Absent attributes never reach
// the published view, while set attributes do.
func TestRecord_DisplayOmitsAbsent(t *testing.T) {
	rec := Record{
		AttrFolio:              "61778648",
		AttrBillingPeriodStart: Absent,
		AttrTotalAmount:        int64(24580),
	}

	out := rec.Display()

	if _, ok := out[AttrBillingPeriodStart]; ok {
		t.Error("Absent attribute leaked into display output")
	}
	if out[AttrFolio] != "61778648" {
		t.Errorf("folio = %v, want 61778648", out[AttrFolio])
	}
	if out[AttrTotalAmount] != int64(24580) {
		t.Errorf("total_amount = %v, want 24580", out[AttrTotalAmount])
	}
}

// TestRecord_DisplayDateFormats verifies date-only values render as a
// calendar date and real timestamps keep their time portion.
func TestRecord_DisplayDateFormats(t *testing.T) {
	tests := []struct {
		name  string
		value time.Time
		want  string
	}{
		{
			name:  "date only",
			value: time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC),
			want:  "2026-01-15",
		},
		{
			name:  "full timestamp",
			value: time.Date(2026, 1, 15, 14, 30, 5, 0, time.UTC),
			want:  "2026-01-15T14:30:05Z",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := Record{AttrDueDate: tt.value}
			got := rec.Display()[AttrDueDate]
			if got != tt.want {
				t.Errorf("display value = %v, want %q", got, tt.want)
			}
		})
	}
}

// TestParseServiceType verifies stored-string round trips and the
// unknown fallback for unrecognised or empty input.
func TestParseServiceType(t *testing.T) {
	tests := []struct {
		in   string
		want ServiceType
	}{
		{"water", ServiceTypeWater},
		{"gas", ServiceTypeGas},
		{"electricity", ServiceTypeElectricity},
		{"telecom", ServiceTypeTelecom},
		{"unknown", ServiceTypeUnknown},
		{"", ServiceTypeUnknown},
		{"WATER", ServiceTypeUnknown},
		{"internet", ServiceTypeUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := ParseServiceType(tt.in); got != tt.want {
				t.Errorf("ParseServiceType(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
