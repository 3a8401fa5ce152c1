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
	"testing"
	"time"

	"github.com/billscout/monitor/internal/models"
)

// TestWater_PackedColumn verifies splitting the provider's packed
// value column: ADDRESS ACCOUNT START al END in one run of text, with
// the account-number shape as the only separator.
func TestWater_PackedColumn(t *testing.T) {
	body := `Detalle de su cuenta
AV SIEMPRE VIVA 742 12345-6 01/01/2026 al 31/01/2026
Total a pagar: $18.990`

	o := waterExtractor{}.Extract(body, models.Record{})

	if got := o[models.AttrAddress]; got != "AV SIEMPRE VIVA 742" {
		t.Errorf("address = %v, want AV SIEMPRE VIVA 742", got)
	}
	if got := o[models.AttrCustomerNumber]; got != "12345-6" {
		t.Errorf("customer_number = %v, want 12345-6", got)
	}
	wantStart := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	if got := o[models.AttrBillingPeriodStart]; got != wantStart {
		t.Errorf("billing_period_start = %v, want %v", got, wantStart)
	}
	wantEnd := time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC)
	if got := o[models.AttrBillingPeriodEnd]; got != wantEnd {
		t.Errorf("billing_period_end = %v, want %v", got, wantEnd)
	}
}

// TestWater_PackedOverridesGeneric verifies the packed values replace
// what the generic pass matched from the label column of the same table.
func TestWater_PackedOverridesGeneric(t *testing.T) {
	body := `Dirección: Cliente
AV SIEMPRE VIVA 742 12345-6 01/01/2026 al 31/01/2026`

	rec := Generic("Boleta Nro. 700123", body, time.Time{})
	rec.Apply(waterExtractor{}.Extract(body, rec))

	if got := rec[models.AttrAddress]; got != "AV SIEMPRE VIVA 742" {
		t.Errorf("address = %v, want packed value to override the label column", got)
	}
	if got := rec[models.AttrCustomerNumber]; got != "12345-6" {
		t.Errorf("customer_number = %v, want 12345-6", got)
	}
	if got := rec[models.AttrFolio]; got != "700123" {
		t.Errorf("folio = %v, untouched generic value expected", got)
	}
}

// TestWater_ConsumptionFields verifies the meter-related patterns.
func TestWater_ConsumptionFields(t *testing.T) {
	body := `Consumo del período: 14 m3
Lectura actual: 1250
Medidor N° A123-X`

	o := waterExtractor{}.Extract(body, models.Record{})

	if got := o[models.AttrConsumptionM3]; got != int64(14) {
		t.Errorf("consumption_m3 = %v (%T), want int64 14", got, got)
	}
	if got := o[models.AttrMeterReading]; got != int64(1250) {
		t.Errorf("meter_reading = %v, want 1250", got)
	}
	if got := o[models.AttrMeterNumber]; got != "A123-X" {
		t.Errorf("meter_number = %v, want A123-X", got)
	}
}

// TestWater_NoPackedMatch verifies an email without the packed column
// contributes nothing, so generic values survive the merge.
func TestWater_NoPackedMatch(t *testing.T) {
	body := "Le informamos que su boleta está disponible en nuestro sitio."

	o := waterExtractor{}.Extract(body, models.Record{})

	if len(o) != 0 {
		t.Errorf("expected empty overrides, got %v", o)
	}
}
