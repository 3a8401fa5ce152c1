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

// Package models defines the data structures shared across the monitor service.
package models

import "time"

// ServiceType classifies a utility account.
type ServiceType string

const (
	ServiceTypeWater       ServiceType = "water"
	ServiceTypeGas         ServiceType = "gas"
	ServiceTypeElectricity ServiceType = "electricity"
	ServiceTypeTelecom     ServiceType = "telecom"
	ServiceTypeUnknown     ServiceType = "unknown"
)

// ParseServiceType maps a stored string onto a ServiceType. Anything
// unrecognised (including the empty string of pre-type records) maps
// to ServiceTypeUnknown.
func ParseServiceType(s string) ServiceType {
	switch ServiceType(s) {
	case ServiceTypeWater, ServiceTypeGas, ServiceTypeElectricity, ServiceTypeTelecom:
		return ServiceType(s)
	default:
		return ServiceTypeUnknown
	}
}

// DetectedService identifies one utility account discovered in the inbox.
// Records are immutable once stored; removal is a configuration action,
// never something the extraction pipeline does.
type DetectedService struct {
	ServiceName string      `json:"service_name"`
	ServiceID   string      `json:"service_id"`
	ServiceType ServiceType `json:"service_type"`

	// Sample headers retained for diagnostics and for re-classifying
	// records stored before service-type tracking existed.
	SampleFrom    string `json:"sample_from"`
	SampleSubject string `json:"sample_subject"`

	EmailCount int `json:"email_count,omitempty"`
}

// BodyPart is one MIME part of a fetched message.
type BodyPart struct {
	ContentType string
	Content     string
}

// Email represents a fetched message ready for classification and
// attribute extraction. Parts preserve the original MIME order.
type Email struct {
	MessageID      string
	FromAddress    string
	FromName       string
	Subject        string
	Date           time.Time
	Parts          []BodyPart
	HasAttachments bool
}
