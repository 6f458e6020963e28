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

// AuthStatus is a read-only snapshot of the platform session state.
type AuthStatus struct {
	Authenticated bool      `json:"authenticated"`
	TokenExpiry   time.Time `json:"token_expiry,omitempty"`
	LastCheck     time.Time `json:"last_check,omitempty"`
	LastError     string    `json:"last_error,omitempty"`
}

// DeviceSyncResult summarises one device's portion of a sync cycle.
type DeviceSyncResult struct {
	DeviceID          int64    `json:"device_id"`
	ExternalID        string   `json:"external_id"`
	DeviceName        string   `json:"device_name"`
	EventsFetched     int      `json:"events_fetched"`
	EventsSkipped     int      `json:"events_skipped"` // malformed events dropped during decode
	NewEntries        int      `json:"new_entries"`
	IncompleteEntries int      `json:"incomplete_entries"`
	Cursor            int64    `json:"cursor"`
	Errors            []string `json:"errors,omitempty"`
}

// SyncReport aggregates the outcome of one sync cycle across all devices.
// It is serialised as-is for the triggering web layer.
type SyncReport struct {
	CycleID           string             `json:"cycle_id"`
	StartedAt         time.Time          `json:"started_at"`
	FinishedAt        time.Time          `json:"finished_at"`
	TotalDevices      int                `json:"total_devices"`
	SyncedDevices     int                `json:"synced_devices"`
	NewEntries        int                `json:"new_entries"`
	IncompleteEntries int                `json:"incomplete_entries"`
	Devices           []DeviceSyncResult `json:"devices,omitempty"`
	Errors            []string           `json:"errors,omitempty"`
}
