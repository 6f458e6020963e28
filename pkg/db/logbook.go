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
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/skytrace/flightsync/pkg/models"
)

const selectEntries = `
	SELECT id, device_id, user_id, pilot_name, flight_date,
	       departure_airport, arrival_airport, takeoff_time, landing_time,
	       flight_time, COALESCE(remarks, ''), synced, edited,
	       created_at, updated_at
	FROM logbook_entries`

// EntriesForDevice returns every logbook entry linked to a device,
// including entries with an unmapped pilot (nil user).
func (s *PostgresStore) EntriesForDevice(ctx context.Context, deviceID int64) ([]models.LogbookEntry, error) {
	rows, err := s.pool.Query(ctx,
		selectEntries+` WHERE device_id = $1 ORDER BY flight_date, takeoff_time`, deviceID)
	if err != nil {
		return nil, fmt.Errorf("db: query device entries: %w", err)
	}

	return scanEntries(rows)
}

// EntriesForUser returns logbook entries attributed to a user. Entries
// with an unresolved pilot never appear here.
func (s *PostgresStore) EntriesForUser(ctx context.Context, userID int64) ([]models.LogbookEntry, error) {
	rows, err := s.pool.Query(ctx,
		selectEntries+` WHERE user_id = $1 ORDER BY flight_date, takeoff_time`, userID)
	if err != nil {
		return nil, fmt.Errorf("db: query user entries: %w", err)
	}

	return scanEntries(rows)
}

func scanEntries(rows pgx.Rows) ([]models.LogbookEntry, error) {
	defer rows.Close()

	var entries []models.LogbookEntry

	for rows.Next() {
		var e models.LogbookEntry

		if err := rows.Scan(&e.ID, &e.DeviceID, &e.UserID, &e.PilotName,
			&e.Date, &e.DepartureAirport, &e.ArrivalAirport,
			&e.TakeoffTime, &e.LandingTime, &e.FlightTime, &e.Remarks,
			&e.Synced, &e.Edited, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, fmt.Errorf("db: scan logbook entry: %w", err)
		}

		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db: iterate logbook entries: %w", err)
	}

	return entries, nil
}
