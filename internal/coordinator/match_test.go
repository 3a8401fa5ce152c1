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

package coordinator

import (
	"testing"

	"github.com/billscout/monitor/internal/models"
)

// TestMatchesService covers the three matching strategies in order of
// reliability: sample sender domain, service-name keywords, and the
// service_id-derived pattern.
func TestMatchesService(t *testing.T) {
	tests := []struct {
		name string
		svc  models.DetectedService
		msg  models.Email
		body string
		want bool
	}{
		{
			name: "sender domain from sample",
			svc: models.DetectedService{
				ServiceID:  "metrogas",
				SampleFrom: "contacto@metrogas.cl",
			},
			msg:  models.Email{FromAddress: "boletas@metrogas.cl"},
			want: true,
		},
		{
			name: "service name keywords in subject",
			svc: models.DetectedService{
				ServiceName: "Aguas Andinas",
				ServiceID:   "aguas_andinas",
				SampleFrom:  "noreply@aguasandinas.cl",
			},
			msg: models.Email{
				FromAddress: "dte@relay-facturas.cl",
				Subject:     "Boleta Aguas Andinas disponible",
			},
			want: true,
		},
		{
			name: "short name words are not keywords",
			svc: models.DetectedService{
				// "TV" is too short to count; only "internet" must hit.
				ServiceName: "Internet TV",
				ServiceID:   "internet_tv",
			},
			msg: models.Email{
				FromAddress: "cobranza@proveedor.cl",
				Subject:     "Tu cuenta de internet",
			},
			want: true,
		},
		{
			name: "service id pattern in body",
			svc: models.DetectedService{
				ServiceID: "energia_austral",
			},
			msg:  models.Email{FromAddress: "dte@relay.cl"},
			body: "Boleta emitida por Energia Austral SpA",
			want: true,
		},
		{
			name: "unrelated email",
			svc: models.DetectedService{
				ServiceName: "Metrogas",
				ServiceID:   "metrogas",
				SampleFrom:  "contacto@metrogas.cl",
			},
			msg: models.Email{
				FromAddress: "news@tienda.cl",
				Subject:     "Ofertas de la semana",
			},
			body: "Grandes descuentos",
			want: false,
		},
		{
			name: "empty service never matches",
			svc:  models.DetectedService{},
			msg:  models.Email{FromAddress: "contacto@metrogas.cl"},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := matchesService(tt.svc, tt.msg, tt.body); got != tt.want {
				t.Errorf("matchesService = %v, want %v", got, tt.want)
			}
		})
	}
}
