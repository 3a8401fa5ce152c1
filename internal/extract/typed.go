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

import "github.com/billscout/monitor/internal/models"

// Extractor is a type-specific extractor tuned to one provider's email
// layout. It receives the normalized body together with the generic
// base record and returns overrides to merge on top of it. Extractors
// never fail: a missing label means the corresponding key is simply
// not in the overrides, and a models.Absent value explicitly clears a
// generic guess known to be wrong for the provider.
type Extractor interface {
	Extract(body string, base models.Record) models.Overrides
}

// registry maps each service type to its extractor. Telecom and
// unknown services have no registered extractor and keep the generic
// record untouched.
var registry = map[models.ServiceType]Extractor{
	models.ServiceTypeWater:       waterExtractor{},
	models.ServiceTypeGas:         gasExtractor{},
	models.ServiceTypeElectricity: electricityExtractor{},
}
