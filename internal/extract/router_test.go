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
	"reflect"
	"testing"
	"time"

	"github.com/billscout/monitor/internal/models"
)

// TestExtract_UnknownTypeIsGenericOnly verifies service types without a
// registered extractor get exactly the generic result plus the type tag.
func TestExtract_UnknownTypeIsGenericOnly(t *testing.T) {
	subject := "Boleta Nro. 61778648"
	body := "Total a pagar: $12.990\nFecha de vencimiento: 10/02/2026"
	sent := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)

	got := Extract(models.ServiceTypeUnknown, subject, body, sent)

	want := Generic(subject, body, sent)
	want[models.AttrServiceType] = "unknown"

	if !reflect.DeepEqual(got, want) {
		t.Errorf("Extract = %v, want generic result %v", got, want)
	}
}

// TestExtract_TelecomHasNoExtractor verifies telecom is generic-only.
func TestExtract_TelecomHasNoExtractor(t *testing.T) {
	rec := Extract(models.ServiceTypeTelecom, "Tu cuenta Movistar N° 445566778", "", time.Time{})

	if got := rec[models.AttrServiceType]; got != "telecom" {
		t.Errorf("service_type = %v, want telecom", got)
	}
	if got := rec[models.AttrFolio]; got != "445566778" {
		t.Errorf("folio = %v, want 445566778", got)
	}
}

// TestExtract_Idempotent verifies re-running extraction on the same
// email yields an identical record.
func TestExtract_Idempotent(t *testing.T) {
	subject := "Boleta Metrogas Nro. 0000000061778648"
	body := "Total a pagar: 24580\nMetropuntos: 320"
	sent := time.Date(2026, 2, 1, 8, 0, 0, 0, time.UTC)

	first := Extract(models.ServiceTypeGas, subject, body, sent)
	second := Extract(models.ServiceTypeGas, subject, body, sent)

	if !reflect.DeepEqual(first, second) {
		t.Errorf("repeated extraction differs:\nfirst:  %v\nsecond: %v", first, second)
	}
}

// TestExtract_TypedOverridesWin verifies merge semantics end to end:
// typed values replace generic ones, generic-only keys survive, and
// Absent markers clear.
func TestExtract_TypedOverridesWin(t *testing.T) {
	subject := "Llegó tu boleta Enel"
	body := `Tu boleta N° 87654321 del 05/01/2026 para el suministro ubicado en AV LAS CONDES 9000, Santiago.
Dirección: Casilla de correo 100
Fecha de vencimiento: 20/01/2026
Consumo real del período: 245 kWh`

	rec := Extract(models.ServiceTypeElectricity, subject, body, time.Time{})

	// Typed address beats the generic Dirección match.
	if got := rec[models.AttrAddress]; got != "AV LAS CONDES 9000" {
		t.Errorf("address = %v, want typed override", got)
	}
	// Typed in-body folio wins over the (absent) subject folio.
	if got := rec[models.AttrFolio]; got != "87654321" {
		t.Errorf("folio = %v, want 87654321", got)
	}
	// Generic-only field survives the merge.
	wantDue := time.Date(2026, 1, 20, 0, 0, 0, 0, time.UTC)
	if got := rec[models.AttrDueDate]; got != wantDue {
		t.Errorf("due_date = %v, want %v", got, wantDue)
	}
	// The guessed period is cleared.
	if got := rec[models.AttrBillingPeriodStart]; got != models.Absent {
		t.Errorf("billing_period_start = %v, want Absent", got)
	}
	if got := rec[models.AttrConsumptionKWh]; got != int64(245) {
		t.Errorf("consumption_kwh = %v, want 245", got)
	}
	if got := rec[models.AttrConsumptionType]; got != "real" {
		t.Errorf("consumption_type = %v, want real", got)
	}
}
