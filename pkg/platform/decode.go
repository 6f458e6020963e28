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

package platform

import (
	"fmt"
	"strings"
	"time"

	"github.com/skytrace/flightsync/pkg/models"
)

// timestampFormats lists the layouts devices have been observed to emit.
// The logger writes local time without a zone; timestamps are interpreted
// as UTC.
var timestampFormats = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"02.01.2006 15:04:05",
}

// DecodeEvent turns a raw platform record into a typed event. The bitfield
// is carried verbatim, including bits this build does not recognise, so
// future event kinds survive a round trip through storage. An event with
// neither a timestamp nor a page address cannot be ordered and is rejected
// with ErrMalformedEvent.
func DecodeEvent(deviceID int64, raw *RawEvent) (models.Event, error) {
	if raw.DateTime == nil && raw.PageAddress == nil {
		return models.Event{}, fmt.Errorf("%w: no timestamp and no page address", ErrMalformedEvent)
	}

	event := models.Event{
		DeviceID:   deviceID,
		TotalTime:  raw.TotalTime,
		Flags:      models.EventFlags(raw.Bitfield),
		LoggerPage: raw.LoggerPage,
		PilotName:  strings.TrimSpace(raw.PilotName),
		Message:    raw.Message,
	}

	if raw.PageAddress != nil {
		event.PageAddress = *raw.PageAddress
	}

	if raw.DateTime != nil {
		ts, err := parseTimestamp(*raw.DateTime)
		if err != nil {
			if raw.PageAddress == nil {
				return models.Event{}, fmt.Errorf("%w: %w", ErrMalformedEvent, err)
			}

			// Page address alone still orders the event; keep it with no
			// wall-clock time.
			return event, nil
		}

		event.Timestamp = &ts
	}

	return event, nil
}

func parseTimestamp(value string) (time.Time, error) {
	value = strings.TrimSpace(value)

	for _, layout := range timestampFormats {
		if ts, err := time.Parse(layout, value); err == nil {
			return ts.UTC(), nil
		}
	}

	return time.Time{}, fmt.Errorf("unrecognised timestamp %q", value)
}
