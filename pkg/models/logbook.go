/*
 * Copyright 2025 Skytrace Systems.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package models

import (
	"math"
	"time"
)

// LogbookEntry is one derived flight. An entry is incomplete when either
// the takeoff or the landing half is missing; such entries are still
// persisted so no recorded event is silently dropped.
type LogbookEntry struct {
	ID               int64      `json:"id"`
	DeviceID         *int64     `json:"device_id,omitempty"`
	UserID           *int64     `json:"user_id,omitempty"` // nil when the pilot is unmapped
	PilotName        *string    `json:"pilot_name,omitempty"`
	Date             time.Time  `json:"date"`
	DepartureAirport *string    `json:"departure_airport,omitempty"`
	ArrivalAirport   *string    `json:"arrival_airport,omitempty"`
	TakeoffTime      *time.Time `json:"takeoff_time,omitempty"`
	LandingTime      *time.Time `json:"landing_time,omitempty"`
	FlightTime       *float64   `json:"flight_time,omitempty"` // hours, derived from takeoff/landing
	Remarks          string     `json:"remarks,omitempty"`
	Synced           bool       `json:"synced"` // true when produced by the sync engine
	Edited           bool       `json:"edited"` // true once a user touches the entry
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// Complete reports whether both halves of the flight are present.
func (e *LogbookEntry) Complete() bool {
	return e.TakeoffTime != nil && e.LandingTime != nil
}

// ComputeFlightTime returns the flight duration in hours between a takeoff
// and landing time-of-day. A landing numerically earlier than the takeoff
// means the flight crossed midnight, so a day is added before subtracting.
func ComputeFlightTime(takeoff, landing time.Time) float64 {
	if landing.Before(takeoff) {
		landing = landing.Add(24 * time.Hour)
	}

	hours := landing.Sub(takeoff).Hours()

	return math.Round(hours*100) / 100
}
