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

// Package notify publishes logbook notifications to NATS. The publisher is
// optional; a nil *Publisher is a no-op so callers can skip wiring it when
// no NATS URL is configured.
package notify

import (
	"context"
	"encoding/json"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/skytrace/flightsync/pkg/logger"
	"github.com/skytrace/flightsync/pkg/models"
)

// SubjectEntryCreated is the subject new logbook entries are published on.
const SubjectEntryCreated = "flightsync.logbook.created"

const connectTimeout = 5 * time.Second

// Publisher emits logbook events to NATS. Publishing is fire-and-forget:
// failures are logged, never propagated, so a broker outage cannot stall
// a sync cycle.
type Publisher struct {
	conn   *nats.Conn
	logger logger.Logger
}

// entryCreatedMessage is the wire payload for SubjectEntryCreated.
type entryCreatedMessage struct {
	EntryID    int64      `json:"entry_id"`
	DeviceID   *int64     `json:"device_id,omitempty"`
	UserID     *int64     `json:"user_id,omitempty"`
	PilotName  string     `json:"pilot_name,omitempty"`
	Date       string     `json:"date"`
	Takeoff    *time.Time `json:"takeoff,omitempty"`
	Landing    *time.Time `json:"landing,omitempty"`
	FlightTime *float64   `json:"flight_time,omitempty"`
	Complete   bool       `json:"complete"`
}

// New connects to the NATS server at url and returns a publisher bound to it.
func New(url string, log logger.Logger) (*Publisher, error) {
	conn, err := nats.Connect(url,
		nats.Name("flightsync-notify"),
		nats.Timeout(connectTimeout),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			log.Warn().Err(err).Msg("NATS disconnected")
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info().Str("url", nc.ConnectedUrl()).Msg("NATS reconnected")
		}),
	)
	if err != nil {
		return nil, err
	}

	return &Publisher{conn: conn, logger: log}, nil
}

// EntryCreated publishes a notification for a newly derived logbook entry.
// Safe to call on a nil receiver.
func (p *Publisher) EntryCreated(_ context.Context, entry *models.LogbookEntry) {
	if p == nil || entry == nil {
		return
	}

	msg := entryCreatedMessage{
		EntryID:    entry.ID,
		DeviceID:   entry.DeviceID,
		UserID:     entry.UserID,
		Date:       entry.Date.Format("2006-01-02"),
		Takeoff:    entry.TakeoffTime,
		Landing:    entry.LandingTime,
		FlightTime: entry.FlightTime,
		Complete:   entry.Complete(),
	}
	if entry.PilotName != nil {
		msg.PilotName = *entry.PilotName
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		p.logger.Error().Err(err).Int64("entry_id", entry.ID).Msg("Failed to encode entry notification")
		return
	}

	if err := p.conn.Publish(SubjectEntryCreated, payload); err != nil {
		p.logger.Warn().Err(err).Int64("entry_id", entry.ID).Msg("Failed to publish entry notification")
	}
}

// Close drains the connection, flushing any buffered notifications.
func (p *Publisher) Close() {
	if p == nil || p.conn == nil {
		return
	}

	if err := p.conn.Drain(); err != nil {
		p.logger.Warn().Err(err).Msg("Failed to drain NATS connection")
	}
}
