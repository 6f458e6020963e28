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

package db

import (
	"context"
	"errors"

	"github.com/skytrace/flightsync/pkg/models"
)

var (
	errNilConfig = errors.New("database config is nil")

	// ErrTxFailed wraps transaction failures so callers can classify
	// persistence errors without inspecting pgx internals.
	ErrTxFailed = errors.New("transaction failed")
)

// DeviceBatch is everything one device produced during a sync cycle. It is
// committed in a single transaction: the cursor advances only together
// with the events and entries that permit it.
type DeviceBatch struct {
	DeviceID  int64
	Events    []models.Event
	Entries   []models.LogbookEntry
	NewCursor int64
}

// Store is the persistence surface consumed by the sync engine.
type Store interface {
	// ActiveSyncDevices returns active devices with an external platform ID.
	ActiveSyncDevices(ctx context.Context) ([]models.Device, error)

	// EventsSincePage returns a device's stored events with a page address
	// strictly greater than fromPage, ascending.
	EventsSincePage(ctx context.Context, deviceID, fromPage int64) ([]models.Event, error)

	// SaveDeviceBatch commits a device's cycle output atomically.
	// Re-delivered events (same device and page address) are skipped, not
	// duplicated.
	SaveDeviceBatch(ctx context.Context, batch *DeviceBatch) error

	// ActivePilot returns the active pilot mapping for a device and
	// free-text pilot name, or nil when no mapping exists.
	ActivePilot(ctx context.Context, deviceID int64, pilotName string) (*models.Pilot, error)

	// EntriesForDevice returns all logbook entries linked to a device,
	// including entries whose pilot could not be mapped to a user.
	EntriesForDevice(ctx context.Context, deviceID int64) ([]models.LogbookEntry, error)

	// EntriesForUser returns logbook entries attributed to a user.
	EntriesForUser(ctx context.Context, userID int64) ([]models.LogbookEntry, error)

	// ClearSyncedEntries deletes a device's synced, never-edited entries
	// and resets its events and cursor. Destructive; never called by the
	// sync path.
	ClearSyncedEntries(ctx context.Context, deviceID int64) (int64, error)

	Close()
}
