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

	"github.com/skytrace/flightsync/pkg/models"
)

const selectEventsSincePage = `
	SELECT id, device_id, ts, page_address, total_time, bitfield,
	       logger_page, COALESCE(pilot_name, ''), COALESCE(message, ''),
	       created_at
	FROM events
	WHERE device_id = $1 AND page_address > $2
	ORDER BY page_address ASC`

// EventsSincePage returns a device's stored events beyond fromPage in page
// order. Events belonging to a still-open flight live here between cycles.
func (s *PostgresStore) EventsSincePage(ctx context.Context, deviceID, fromPage int64) ([]models.Event, error) {
	rows, err := s.pool.Query(ctx, selectEventsSincePage, deviceID, fromPage)
	if err != nil {
		return nil, fmt.Errorf("db: query events: %w", err)
	}
	defer rows.Close()

	var events []models.Event

	for rows.Next() {
		var (
			e        models.Event
			bitfield int64
		)

		if err := rows.Scan(&e.ID, &e.DeviceID, &e.Timestamp, &e.PageAddress,
			&e.TotalTime, &bitfield, &e.LoggerPage, &e.PilotName,
			&e.Message, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("db: scan event: %w", err)
		}

		e.Flags = models.EventFlags(uint32(bitfield))
		events = append(events, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db: iterate events: %w", err)
	}

	return events, nil
}
