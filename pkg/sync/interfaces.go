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

package sync

import (
	"context"

	"github.com/skytrace/flightsync/pkg/models"
	"github.com/skytrace/flightsync/pkg/platform"
)

// EventSource retrieves raw telemetry events for a device beyond a page
// cursor.
type EventSource interface {
	FetchNewEvents(ctx context.Context, externalID string, fromPage int64) ([]platform.RawEvent, error)
}

// SessionManager exposes the shared platform authentication state.
type SessionManager interface {
	EnsureAuthenticated(ctx context.Context) (string, error)
	Status() models.AuthStatus
}

// EntryPublisher is notified of newly derived logbook entries. A nil
// publisher disables notifications.
type EntryPublisher interface {
	EntryCreated(ctx context.Context, entry *models.LogbookEntry)
}

// Resolver maps a device's free-text pilot names onto user accounts for a
// batch of derived entries.
type Resolver interface {
	Apply(ctx context.Context, deviceID int64, entries []models.LogbookEntry) error
}
