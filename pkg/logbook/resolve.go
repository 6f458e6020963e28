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

package logbook

import (
	"context"
	"fmt"

	"github.com/skytrace/flightsync/pkg/logger"
	"github.com/skytrace/flightsync/pkg/models"
)

// PilotLookup is the slice of the store the resolver needs.
type PilotLookup interface {
	ActivePilot(ctx context.Context, deviceID int64, pilotName string) (*models.Pilot, error)
}

// Resolver maps free-text pilot names recorded by a device to registered
// users via the device's active pilot mappings.
type Resolver struct {
	lookup PilotLookup
	logger logger.Logger
}

// NewResolver creates a pilot resolver backed by the given lookup.
func NewResolver(lookup PilotLookup, log logger.Logger) *Resolver {
	return &Resolver{lookup: lookup, logger: log}
}

// Resolve returns the user ID mapped to (device, pilotName), or nil when
// no name is given or no active mapping exists. An unknown pilot is never
// attributed to the device owner; the entry stays unassigned with the free
// text preserved.
func (r *Resolver) Resolve(ctx context.Context, deviceID int64, pilotName string) (*int64, error) {
	if pilotName == "" {
		return nil, nil
	}

	pilot, err := r.lookup.ActivePilot(ctx, deviceID, pilotName)
	if err != nil {
		return nil, fmt.Errorf("resolve pilot %q: %w", pilotName, err)
	}

	if pilot == nil {
		r.logger.Debug().
			Int64("device_id", deviceID).
			Str("pilot_name", pilotName).
			Msg("No pilot mapping, leaving entry unassigned")

		return nil, nil
	}

	userID := pilot.UserID

	return &userID, nil
}

// Apply resolves pilot attribution for each derived entry in place.
func (r *Resolver) Apply(ctx context.Context, deviceID int64, entries []models.LogbookEntry) error {
	for i := range entries {
		entry := &entries[i]

		if entry.PilotName == nil {
			continue
		}

		userID, err := r.Resolve(ctx, deviceID, *entry.PilotName)
		if err != nil {
			return err
		}

		entry.UserID = userID
	}

	return nil
}
