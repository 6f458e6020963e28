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
)

const (
	insertEvent = `
		INSERT INTO events (device_id, ts, page_address, total_time,
		                    bitfield, logger_page, pilot_name, message)
		VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, ''), NULLIF($8, ''))
		ON CONFLICT (device_id, page_address) DO NOTHING`

	insertEntry = `
		INSERT INTO logbook_entries (device_id, user_id, pilot_name,
		                             flight_date, departure_airport,
		                             arrival_airport, takeoff_time,
		                             landing_time, flight_time, remarks,
		                             synced)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, TRUE)`

	advanceCursor = `
		UPDATE devices
		SET logger_cursor = $2, updated_at = now()
		WHERE id = $1 AND logger_cursor < $2`
)

// SaveDeviceBatch commits one device's cycle output in a single
// transaction. A crash mid-batch therefore cannot leave the cursor ahead
// of the entries that justify it; the same events are simply refetched
// next cycle.
func (s *PostgresStore) SaveDeviceBatch(ctx context.Context, batch *DeviceBatch) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("%w: begin: %w", ErrTxFailed, err)
	}

	defer func() {
		if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			s.logger.Warn().Err(err).Int64("device_id", batch.DeviceID).Msg("Rollback failed")
		}
	}()

	for i := range batch.Events {
		e := &batch.Events[i]

		if _, err := tx.Exec(ctx, insertEvent, batch.DeviceID, e.Timestamp,
			e.PageAddress, e.TotalTime, int64(e.Flags), e.LoggerPage,
			e.PilotName, e.Message); err != nil {
			return fmt.Errorf("%w: insert event page %d: %w", ErrTxFailed, e.PageAddress, err)
		}
	}

	for i := range batch.Entries {
		entry := &batch.Entries[i]

		if _, err := tx.Exec(ctx, insertEntry, entry.DeviceID, entry.UserID,
			entry.PilotName, entry.Date, entry.DepartureAirport,
			entry.ArrivalAirport, entry.TakeoffTime, entry.LandingTime,
			entry.FlightTime, entry.Remarks); err != nil {
			return fmt.Errorf("%w: insert logbook entry: %w", ErrTxFailed, err)
		}
	}

	if batch.NewCursor > 0 {
		if _, err := tx.Exec(ctx, advanceCursor, batch.DeviceID, batch.NewCursor); err != nil {
			return fmt.Errorf("%w: advance cursor: %w", ErrTxFailed, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("%w: commit: %w", ErrTxFailed, err)
	}

	return nil
}

// ClearSyncedEntries deletes a device's synced, never-edited logbook
// entries, removes its stored events and resets the cursor to zero.
// Explicit destructive reset, outside the normal sync path.
func (s *PostgresStore) ClearSyncedEntries(ctx context.Context, deviceID int64) (int64, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("%w: begin: %w", ErrTxFailed, err)
	}

	defer func() {
		if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			s.logger.Warn().Err(err).Int64("device_id", deviceID).Msg("Rollback failed")
		}
	}()

	tag, err := tx.Exec(ctx,
		`DELETE FROM logbook_entries WHERE device_id = $1 AND synced AND NOT edited`, deviceID)
	if err != nil {
		return 0, fmt.Errorf("%w: delete entries: %w", ErrTxFailed, err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM events WHERE device_id = $1`, deviceID); err != nil {
		return 0, fmt.Errorf("%w: delete events: %w", ErrTxFailed, err)
	}

	if _, err := tx.Exec(ctx,
		`UPDATE devices SET logger_cursor = 0, updated_at = now() WHERE id = $1`, deviceID); err != nil {
		return 0, fmt.Errorf("%w: reset cursor: %w", ErrTxFailed, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("%w: commit: %w", ErrTxFailed, err)
	}

	return tag.RowsAffected(), nil
}
