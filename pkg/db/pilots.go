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
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/skytrace/flightsync/pkg/models"
)

const selectActivePilot = `
	SELECT id, pilot_name, device_id, user_id, active, created_at, updated_at
	FROM pilots
	WHERE device_id = $1 AND pilot_name = $2 AND active`

// ActivePilot returns the active pilot mapping for a device and free-text
// pilot name, or nil when no mapping exists.
func (s *PostgresStore) ActivePilot(ctx context.Context, deviceID int64, pilotName string) (*models.Pilot, error) {
	var p models.Pilot

	err := s.pool.QueryRow(ctx, selectActivePilot, deviceID, pilotName).
		Scan(&p.ID, &p.PilotName, &p.DeviceID, &p.UserID, &p.Active,
			&p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}

	if err != nil {
		return nil, fmt.Errorf("db: query pilot mapping: %w", err)
	}

	return &p, nil
}
