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
	"fmt"
	"strings"
	"time"
)

// EventFlags is the bitfield recorded by the device logger with each event.
// Bits not listed here are reserved by the instrument firmware and must be
// stored verbatim.
type EventFlags uint32

const (
	FlagEngineStart  EventFlags = 1 << 0  // any engine start condition
	FlagTakeoff      EventFlags = 1 << 1  // takeoff condition detected
	FlagLanding      EventFlags = 1 << 2  // aircraft has landed
	FlagEngineStop   EventFlags = 1 << 3  // last engine stop condition
	FlagFlying       EventFlags = 1 << 4  // aircraft is flying
	FlagEngineRun1   EventFlags = 1 << 5  // engine 1 running
	FlagEngineRun2   EventFlags = 1 << 6  // engine 2 running
	FlagAlarm        EventFlags = 1 << 7  // alarm condition
	FlagFlushAndLink EventFlags = 1 << 31 // logger flush and link operation
)

var flagNames = []struct {
	flag EventFlags
	name string
}{
	{FlagEngineStart, "EngineStart"},
	{FlagTakeoff, "Takeoff"},
	{FlagLanding, "Landing"},
	{FlagEngineStop, "EngineStop"},
	{FlagFlying, "Flying"},
	{FlagEngineRun1, "EngineRun1"},
	{FlagEngineRun2, "EngineRun2"},
	{FlagAlarm, "Alarm"},
	{FlagFlushAndLink, "FlushAndLink"},
}

// Has reports whether all bits in flag are set.
func (f EventFlags) Has(flag EventFlags) bool {
	return f&flag != 0
}

// IsTakeoff reports whether the takeoff bit is set.
func (f EventFlags) IsTakeoff() bool {
	return f.Has(FlagTakeoff)
}

// IsLanding reports whether the landing bit is set.
func (f EventFlags) IsLanding() bool {
	return f.Has(FlagLanding)
}

// Names returns the names of all recognised bits that are set.
func (f EventFlags) Names() []string {
	var names []string

	for _, fn := range flagNames {
		if f.Has(fn.flag) {
			names = append(names, fn.name)
		}
	}

	return names
}

func (f EventFlags) String() string {
	names := f.Names()
	if len(names) == 0 {
		return "None"
	}

	return strings.Join(names, ",")
}

// Event is one decoded telemetry record from a device's onboard logger.
// Events are immutable once stored. PageAddress is the canonical ordering
// key for a device; the wall-clock timestamp can be absent when the device
// had no time fix.
type Event struct {
	ID          int64      `json:"id"`
	DeviceID    int64      `json:"device_id"`
	Timestamp   *time.Time `json:"timestamp,omitempty"`
	PageAddress int64      `json:"page_address"`
	TotalTime   int64      `json:"total_time"` // milliseconds since power-on
	Flags       EventFlags `json:"bitfield"`
	LoggerPage  int64      `json:"logger_page"` // device write cursor at capture time
	PilotName   string     `json:"pilot_name,omitempty"`
	Message     string     `json:"message,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// LogTime formats the power-on counter as H:MM:SS.
func (e *Event) LogTime() string {
	totalSeconds := e.TotalTime / 1000

	hours := totalSeconds / 3600
	minutes := (totalSeconds % 3600) / 60
	seconds := totalSeconds % 60

	return fmt.Sprintf("%d:%02d:%02d", hours, minutes, seconds)
}
