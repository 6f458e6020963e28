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

const selectActiveSyncDevices = `
	SELECT id, name, COALESCE(model, ''), COALESCE(registration, ''),
	       COALESCE(external_id, ''), logger_cursor, active, user_id,
	       created_at, updated_at
	FROM devices
	WHERE active AND external_id IS NOT NULL AND external_id <> ''
	ORDER BY id`

// ActiveSyncDevices returns all devices that participate in telemetry sync.
func (s *PostgresStore) ActiveSyncDevices(ctx context.Context) ([]models.Device, error) {
	rows, err := s.pool.Query(ctx, selectActiveSyncDevices)
	if err != nil {
		return nil, fmt.Errorf("db: query active devices: %w", err)
	}
	defer rows.Close()

	var devices []models.Device

	for rows.Next() {
		var d models.Device

		if err := rows.Scan(&d.ID, &d.Name, &d.Model, &d.Registration,
			&d.ExternalID, &d.LoggerCursor, &d.Active, &d.UserID,
			&d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, fmt.Errorf("db: scan device: %w", err)
		}

		devices = append(devices, d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db: iterate devices: %w", err)
	}

	return devices, nil
}
