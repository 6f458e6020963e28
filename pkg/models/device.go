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

import "time"

// Device is a physical flight-recording instrument claimed by a user. The
// sync engine treats devices as read-only except for the logger cursor.
type Device struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Model        string    `json:"model,omitempty"`
	Registration string    `json:"registration,omitempty"` // aircraft registration
	ExternalID   string    `json:"external_id"`            // device ID on the telemetry platform
	LoggerCursor int64     `json:"logger_cursor"`          // highest page address fully consumed into closed entries
	Active       bool      `json:"active"`
	UserID       int64     `json:"user_id"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Syncable reports whether the device participates in telemetry sync.
func (d *Device) Syncable() bool {
	return d.Active && d.ExternalID != ""
}

// Pilot maps a free-text pilot name recorded by a device to a registered
// user. The (pilot_name, device) pair is unique among active mappings.
type Pilot struct {
	ID        int64     `json:"id"`
	PilotName string    `json:"pilot_name"`
	DeviceID  int64     `json:"device_id"`
	UserID    int64     `json:"user_id"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
