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

// Package sync orchestrates the telemetry sync cycle: authenticate once,
// fetch and decode new events per device, derive logbook entries, resolve
// pilots and persist each device's batch in its own transaction.
package sync

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/skytrace/flightsync/pkg/db"
	"github.com/skytrace/flightsync/pkg/logbook"
	"github.com/skytrace/flightsync/pkg/logger"
	"github.com/skytrace/flightsync/pkg/models"
	"github.com/skytrace/flightsync/pkg/platform"
)

// ErrCycleRunning is returned when a cycle is triggered while another one
// is still in flight. Cycles never interleave for the same device set.
var ErrCycleRunning = errors.New("a sync cycle is already running")

// Service runs sync cycles across all active devices.
type Service struct {
	config    *Config
	store     db.Store
	source    EventSource
	session   SessionManager
	resolver  Resolver
	publisher EntryPublisher
	logger    logger.Logger

	running atomic.Bool

	mu         sync.RWMutex
	lastReport *models.SyncReport
}

// NewService wires the orchestrator. publisher may be nil.
func NewService(cfg *Config, store db.Store, source EventSource, session SessionManager,
	resolver Resolver, publisher EntryPublisher, log logger.Logger) *Service {
	return &Service{
		config:    cfg,
		store:     store,
		source:    source,
		session:   session,
		resolver:  resolver,
		publisher: publisher,
		logger:    log,
	}
}

// Start runs an initial cycle immediately, then one per poll interval
// until the context is cancelled.
func (s *Service) Start(ctx context.Context) error {
	s.logger.Info().
		Dur("poll_interval", time.Duration(s.config.PollInterval)).
		Msg("Starting sync service")

	s.runAndLog(ctx)

	ticker := time.NewTicker(time.Duration(s.config.PollInterval))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("Sync service stopping")
			return ctx.Err()
		case <-ticker.C:
			s.runAndLog(ctx)
		}
	}
}

func (s *Service) runAndLog(ctx context.Context) {
	report, err := s.RunCycle(ctx)
	if err != nil {
		if errors.Is(err, ErrCycleRunning) {
			s.logger.Warn().Msg("Skipping scheduled cycle, previous one still running")
			return
		}

		s.logger.Error().Err(err).Msg("Sync cycle failed")

		return
	}

	s.logger.Info().
		Str("cycle_id", report.CycleID).
		Int("devices", report.SyncedDevices).
		Int("new_entries", report.NewEntries).
		Int("errors", len(report.Errors)).
		Msg("Sync cycle completed")
}

// RunCycle executes one end-to-end sync cycle. It is safe to trigger at
// any time: a concurrent trigger gets ErrCycleRunning, and re-running with
// no new upstream events is a no-op. Failures inside the cycle are
// reported, never returned as faults.
func (s *Service) RunCycle(ctx context.Context) (*models.SyncReport, error) {
	if !s.running.CompareAndSwap(false, true) {
		return nil, ErrCycleRunning
	}
	defer s.running.Store(false)

	report := &models.SyncReport{
		CycleID:   uuid.NewString(),
		StartedAt: time.Now(),
	}

	// One authentication per cycle, shared by all device workers. A
	// failure here skips device processing entirely for this cycle.
	if _, err := s.session.EnsureAuthenticated(ctx); err != nil {
		report.Errors = append(report.Errors, fmt.Sprintf("authentication: %v", err))

		return s.finish(report), nil
	}

	devices, err := s.store.ActiveSyncDevices(ctx)
	if err != nil {
		report.Errors = append(report.Errors, fmt.Sprintf("list devices: %v", err))

		return s.finish(report), nil
	}

	report.TotalDevices = len(devices)

	results := make([]models.DeviceSyncResult, len(devices))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.config.MaxConcurrent)

	for i := range devices {
		i := i

		g.Go(func() error {
			if gctx.Err() != nil {
				results[i] = models.DeviceSyncResult{
					DeviceID:   devices[i].ID,
					ExternalID: devices[i].ExternalID,
					DeviceName: devices[i].Name,
					Errors:     []string{gctx.Err().Error()},
				}

				return nil
			}

			results[i] = s.syncDevice(gctx, &devices[i])

			return nil
		})
	}

	// Workers never return errors; per-device failures live in their
	// results.
	_ = g.Wait()

	for i := range results {
		res := &results[i]

		report.Devices = append(report.Devices, *res)

		if len(res.Errors) == 0 {
			report.SyncedDevices++
		}

		report.NewEntries += res.NewEntries
		report.IncompleteEntries += res.IncompleteEntries

		for _, e := range res.Errors {
			report.Errors = append(report.Errors, fmt.Sprintf("device %s: %s", res.DeviceName, e))
		}
	}

	return s.finish(report), nil
}

func (s *Service) finish(report *models.SyncReport) *models.SyncReport {
	report.FinishedAt = time.Now()

	s.mu.Lock()
	s.lastReport = report
	s.mu.Unlock()

	return report
}

// syncDevice runs the fetch-decode-derive-resolve-persist pipeline for a
// single device. All failures are captured in the result so one device
// never aborts the others.
func (s *Service) syncDevice(ctx context.Context, device *models.Device) models.DeviceSyncResult {
	res := models.DeviceSyncResult{
		DeviceID:   device.ID,
		ExternalID: device.ExternalID,
		DeviceName: device.Name,
		Cursor:     device.LoggerCursor,
	}

	raws, err := s.source.FetchNewEvents(ctx, device.ExternalID, device.LoggerCursor)
	if err != nil {
		res.Errors = append(res.Errors, fmt.Sprintf("fetch events: %v", err))
		return res
	}

	res.EventsFetched = len(raws)

	fetched := make([]models.Event, 0, len(raws))

	for i := range raws {
		event, err := platform.DecodeEvent(device.ID, &raws[i])
		if err != nil {
			res.EventsSkipped++

			s.logger.Warn().Err(err).
				Int64("device_id", device.ID).
				Msg("Skipping malformed event")

			continue
		}

		fetched = append(fetched, event)
	}

	// Events from a still-open flight were stored in earlier cycles but
	// sit beyond the cursor. Merge them with the fresh batch so the state
	// machine sees the full unconsumed suffix.
	stored, err := s.store.EventsSincePage(ctx, device.ID, device.LoggerCursor)
	if err != nil {
		res.Errors = append(res.Errors, fmt.Sprintf("read stored events: %v", err))
		return res
	}

	merged := mergeEvents(stored, fetched)

	if len(merged) == 0 {
		return res
	}

	result := logbook.Derive(device.ID, device.LoggerCursor, merged)

	if err := s.resolver.Apply(ctx, device.ID, result.Entries); err != nil {
		res.Errors = append(res.Errors, fmt.Sprintf("resolve pilots: %v", err))
		return res
	}

	batch := &db.DeviceBatch{
		DeviceID:  device.ID,
		Events:    fetched,
		Entries:   result.Entries,
		NewCursor: result.ClosedThroughPage,
	}

	// A shutdown request must not abort the transaction mid-write; the
	// device finishes its batch and the loop exits afterwards.
	if err := s.store.SaveDeviceBatch(context.WithoutCancel(ctx), batch); err != nil {
		res.Errors = append(res.Errors, fmt.Sprintf("persist batch: %v", err))
		return res
	}

	res.Cursor = result.ClosedThroughPage
	res.NewEntries = len(result.Entries)

	for i := range result.Entries {
		if !result.Entries[i].Complete() {
			res.IncompleteEntries++
		}
	}

	if s.publisher != nil {
		for i := range result.Entries {
			s.publisher.EntryCreated(ctx, &result.Entries[i])
		}
	}

	if result.OpenTakeoff != nil {
		s.logger.Debug().
			Int64("device_id", device.ID).
			Int64("takeoff_page", result.OpenTakeoff.PageAddress).
			Msg("Flight still open, cursor held back")
	}

	return res
}

// mergeEvents combines stored and freshly fetched events, deduplicating by
// page address. Stored copies win so database IDs are preserved.
func mergeEvents(stored, fetched []models.Event) []models.Event {
	seen := make(map[int64]struct{}, len(stored))
	merged := make([]models.Event, 0, len(stored)+len(fetched))

	for _, e := range stored {
		seen[e.PageAddress] = struct{}{}
		merged = append(merged, e)
	}

	for _, e := range fetched {
		if _, ok := seen[e.PageAddress]; ok {
			continue
		}

		merged = append(merged, e)
	}

	return merged
}

// Status reports authentication state and the most recent cycle report for
// the web layer.
func (s *Service) Status() (models.AuthStatus, *models.SyncReport) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.session.Status(), s.lastReport
}

// Running reports whether a cycle is currently in flight.
func (s *Service) Running() bool {
	return s.running.Load()
}
