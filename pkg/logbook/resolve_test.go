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
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skytrace/flightsync/pkg/logger"
	"github.com/skytrace/flightsync/pkg/models"
)

type fakeLookup struct {
	pilots map[string]*models.Pilot
	err    error
	calls  int
}

func (f *fakeLookup) ActivePilot(_ context.Context, _ int64, name string) (*models.Pilot, error) {
	f.calls++

	if f.err != nil {
		return nil, f.err
	}

	return f.pilots[name], nil
}

func TestResolveMappedPilot(t *testing.T) {
	lookup := &fakeLookup{pilots: map[string]*models.Pilot{
		"J. Kos": {ID: 1, DeviceID: 7, UserID: 42, PilotName: "J. Kos"},
	}}
	r := NewResolver(lookup, logger.NewTestLogger())

	userID, err := r.Resolve(context.Background(), 7, "J. Kos")
	require.NoError(t, err)
	require.NotNil(t, userID)
	assert.Equal(t, int64(42), *userID)
}

func TestResolveUnknownPilotStaysUnassigned(t *testing.T) {
	r := NewResolver(&fakeLookup{pilots: map[string]*models.Pilot{}}, logger.NewTestLogger())

	userID, err := r.Resolve(context.Background(), 7, "Stranger")
	require.NoError(t, err)
	assert.Nil(t, userID)
}

func TestResolveEmptyNameSkipsLookup(t *testing.T) {
	lookup := &fakeLookup{}
	r := NewResolver(lookup, logger.NewTestLogger())

	userID, err := r.Resolve(context.Background(), 7, "")
	require.NoError(t, err)
	assert.Nil(t, userID)
	assert.Zero(t, lookup.calls)
}

func TestResolveLookupError(t *testing.T) {
	r := NewResolver(&fakeLookup{err: errors.New("db down")}, logger.NewTestLogger())

	_, err := r.Resolve(context.Background(), 7, "J. Kos")
	assert.Error(t, err)
}

func TestApplySetsUserIDsInPlace(t *testing.T) {
	lookup := &fakeLookup{pilots: map[string]*models.Pilot{
		"Mapped": {ID: 1, DeviceID: 7, UserID: 42, PilotName: "Mapped"},
	}}
	r := NewResolver(lookup, logger.NewTestLogger())

	mapped := "Mapped"
	unknown := "Unknown"

	entries := []models.LogbookEntry{
		{PilotName: &mapped},
		{PilotName: &unknown},
		{}, // no pilot recorded
	}

	require.NoError(t, r.Apply(context.Background(), 7, entries))

	require.NotNil(t, entries[0].UserID)
	assert.Equal(t, int64(42), *entries[0].UserID)
	assert.Nil(t, entries[1].UserID)
	assert.Nil(t, entries[2].UserID)
	assert.Equal(t, 2, lookup.calls)
}
