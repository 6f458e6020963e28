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

// Package logbook derives flight logbook entries from a device's telemetry
// event stream by pairing takeoff and landing events.
package logbook

import (
	"sort"
	"time"

	"github.com/skytrace/flightsync/pkg/models"
)

// Result is the outcome of deriving one device's event suffix.
//
// ClosedThroughPage is the highest page address fully consumed into closed
// (complete or abandoned) entries. It deliberately lags behind the last
// event seen: an open takeoff and everything after it stay beyond the
// cursor, so the next cycle re-reads them and the flight is completed once
// its landing arrives. Replaying the suffix beyond ClosedThroughPage from
// an idle state reproduces exactly the open flight and no already-emitted
// entries.
type Result struct {
	Entries           []models.LogbookEntry
	OpenTakeoff       *models.Event
	ClosedThroughPage int64
}

// Derive runs the pairing state machine over a device's events, ordered by
// page address. fromCursor is the device's current logger cursor; events
// at or below it must already have been consumed and are skipped.
//
// The machine has two states: idle and airborne. A takeoff while airborne
// abandons the open flight as an incomplete entry so no event is silently
// dropped. An event carrying both the takeoff and the landing bit is an
// instantaneous touch-and-go: while airborne it closes the open flight and
// immediately opens a new one; while idle it only opens (its landing half
// has nothing to close, and emitting an orphan would duplicate entries on
// replay since the event stays beyond the cursor as the open takeoff).
func Derive(deviceID, fromCursor int64, events []models.Event) Result {
	sorted := make([]models.Event, 0, len(events))

	for _, e := range events {
		if e.PageAddress > fromCursor {
			sorted = append(sorted, e)
		}
	}

	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].PageAddress < sorted[j].PageAddress
	})

	result := Result{ClosedThroughPage: fromCursor}

	var open *models.Event

	prevPage := fromCursor

	for i := range sorted {
		event := &sorted[i]

		takeoff := event.Flags.IsTakeoff()
		landing := event.Flags.IsLanding()

		switch {
		case takeoff && landing:
			if open != nil {
				result.Entries = append(result.Entries, completeEntry(deviceID, open, event))
				result.ClosedThroughPage = prevPage
			}

			open = event

		case takeoff:
			if open != nil {
				// No landing was ever recorded for the open flight.
				result.Entries = append(result.Entries, abandonedEntry(deviceID, open))
				result.ClosedThroughPage = prevPage
			}

			open = event

		case landing:
			if open != nil {
				result.Entries = append(result.Entries, completeEntry(deviceID, open, event))
			} else {
				result.Entries = append(result.Entries, orphanLandingEntry(deviceID, event))
			}

			open = nil
			result.ClosedThroughPage = event.PageAddress

		default:
			// Engine, flying and alarm events carry no pairing role. While
			// idle they are fully consumed; while airborne they ride along
			// with the open flight.
			if open == nil {
				result.ClosedThroughPage = event.PageAddress
			}
		}

		prevPage = event.PageAddress
	}

	// An open flight at end of stream is not emitted; it stays beyond the
	// cursor and is completed on a later cycle.
	result.OpenTakeoff = open

	return result
}

func completeEntry(deviceID int64, takeoff, landing *models.Event) models.LogbookEntry {
	entry := models.LogbookEntry{
		DeviceID:    &deviceID,
		TakeoffTime: takeoff.Timestamp,
		LandingTime: landing.Timestamp,
		Synced:      true,
	}

	if takeoff.Timestamp != nil {
		entry.Date = dateOf(*takeoff.Timestamp)
	} else if landing.Timestamp != nil {
		entry.Date = dateOf(*landing.Timestamp)
	}

	if takeoff.Timestamp != nil && landing.Timestamp != nil {
		hours := models.ComputeFlightTime(*takeoff.Timestamp, *landing.Timestamp)
		entry.FlightTime = &hours
	}

	if name := pilotName(takeoff, landing); name != "" {
		entry.PilotName = &name
	}

	return entry
}

func abandonedEntry(deviceID int64, takeoff *models.Event) models.LogbookEntry {
	entry := models.LogbookEntry{
		DeviceID:    &deviceID,
		TakeoffTime: takeoff.Timestamp,
		Synced:      true,
	}

	if takeoff.Timestamp != nil {
		entry.Date = dateOf(*takeoff.Timestamp)
	}

	if takeoff.PilotName != "" {
		name := takeoff.PilotName
		entry.PilotName = &name
	}

	return entry
}

func orphanLandingEntry(deviceID int64, landing *models.Event) models.LogbookEntry {
	entry := models.LogbookEntry{
		DeviceID:    &deviceID,
		LandingTime: landing.Timestamp,
		Synced:      true,
	}

	if landing.Timestamp != nil {
		entry.Date = dateOf(*landing.Timestamp)
	}

	if landing.PilotName != "" {
		name := landing.PilotName
		entry.PilotName = &name
	}

	return entry
}

func dateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// pilotName prefers the takeoff event's pilot attribution, falling back to
// the landing's.
func pilotName(takeoff, landing *models.Event) string {
	if takeoff.PilotName != "" {
		return takeoff.PilotName
	}

	return landing.PilotName
}
