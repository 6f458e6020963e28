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

// Package api exposes the sync engine over a small HTTP surface: trigger a
// cycle, inspect the last report, read a device's logbook and reset a
// device's synced history.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/skytrace/flightsync/pkg/logger"
	"github.com/skytrace/flightsync/pkg/models"
	syncsvc "github.com/skytrace/flightsync/pkg/sync"
)

const (
	readHeaderTimeout = 10 * time.Second
	shutdownTimeout   = 10 * time.Second
	requestTimeout    = 5 * time.Minute // manual cycles block until done
)

// SyncRunner is the sync-engine surface the API exposes.
type SyncRunner interface {
	RunCycle(ctx context.Context) (*models.SyncReport, error)
	Status() (models.AuthStatus, *models.SyncReport)
	Running() bool
}

// EntryReader serves logbook reads and resets.
type EntryReader interface {
	EntriesForDevice(ctx context.Context, deviceID int64) ([]models.LogbookEntry, error)
	EntriesForUser(ctx context.Context, userID int64) ([]models.LogbookEntry, error)
	ClearSyncedEntries(ctx context.Context, deviceID int64) (int64, error)
}

// Server is the admin HTTP server.
type Server struct {
	runner  SyncRunner
	entries EntryReader
	logger  logger.Logger
	srv     *http.Server
}

// NewServer wires the API around a sync runner and a store.
func NewServer(addr string, runner SyncRunner, entries EntryReader, log logger.Logger) *Server {
	s := &Server{
		runner:  runner,
		entries: entries,
		logger:  log,
	}
	s.srv = &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	return s
}

// Router builds the chi router. Exposed so tests can drive handlers
// without binding a socket.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(requestTimeout))
	r.Use(s.requestLogger)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		r.Post("/sync", s.handleTriggerSync)
		r.Get("/sync/status", s.handleSyncStatus)

		r.Get("/devices/{id}/logbook", s.handleDeviceLogbook)
		r.Post("/devices/{id}/logbook/clear", s.handleClearLogbook)

		r.Get("/users/{id}/logbook", s.handleUserLogbook)
	})

	return r
}

// Start serves until ctx is canceled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		s.logger.Info().Str("addr", s.srv.Addr).Msg("API server listening")

		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	return s.srv.Shutdown(shutdownCtx)
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		s.logger.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("duration", time.Since(start)).
			Msg("Handled request")
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

// handleTriggerSync runs a full cycle synchronously and returns its report.
// A cycle already in flight yields 409 rather than queueing a second one.
func (s *Server) handleTriggerSync(w http.ResponseWriter, r *http.Request) {
	report, err := s.runner.RunCycle(r.Context())
	if err != nil {
		if errors.Is(err, syncsvc.ErrCycleRunning) {
			writeError(w, http.StatusConflict, "a sync cycle is already running")
			return
		}

		s.logger.Error().Err(err).Msg("Manual sync cycle failed")
		writeError(w, http.StatusInternalServerError, err.Error())

		return
	}

	writeJSON(w, http.StatusOK, report)
}

type statusResponse struct {
	Running    bool               `json:"running"`
	Auth       models.AuthStatus  `json:"auth"`
	LastReport *models.SyncReport `json:"last_report,omitempty"`
}

func (s *Server) handleSyncStatus(w http.ResponseWriter, _ *http.Request) {
	auth, report := s.runner.Status()

	writeJSON(w, http.StatusOK, statusResponse{
		Running:    s.runner.Running(),
		Auth:       auth,
		LastReport: report,
	})
}

func (s *Server) handleDeviceLogbook(w http.ResponseWriter, r *http.Request) {
	deviceID, ok := deviceIDParam(w, r)
	if !ok {
		return
	}

	entries, err := s.entries.EntriesForDevice(r.Context(), deviceID)
	if err != nil {
		s.logger.Error().Err(err).Int64("device_id", deviceID).Msg("Failed to load logbook entries")
		writeError(w, http.StatusInternalServerError, "failed to load logbook entries")

		return
	}

	if entries == nil {
		entries = []models.LogbookEntry{}
	}

	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) handleUserLogbook(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || userID <= 0 {
		writeError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	entries, err := s.entries.EntriesForUser(r.Context(), userID)
	if err != nil {
		s.logger.Error().Err(err).Int64("user_id", userID).Msg("Failed to load logbook entries")
		writeError(w, http.StatusInternalServerError, "failed to load logbook entries")

		return
	}

	if entries == nil {
		entries = []models.LogbookEntry{}
	}

	writeJSON(w, http.StatusOK, entries)
}

// handleClearLogbook removes a device's machine-generated entries and
// rewinds its cursor so the next cycle re-imports from scratch. Entries a
// user has edited survive.
func (s *Server) handleClearLogbook(w http.ResponseWriter, r *http.Request) {
	deviceID, ok := deviceIDParam(w, r)
	if !ok {
		return
	}

	removed, err := s.entries.ClearSyncedEntries(r.Context(), deviceID)
	if err != nil {
		s.logger.Error().Err(err).Int64("device_id", deviceID).Msg("Failed to clear synced entries")
		writeError(w, http.StatusInternalServerError, "failed to clear synced entries")

		return
	}

	s.logger.Info().Int64("device_id", deviceID).Int64("removed", removed).Msg("Cleared synced logbook entries")

	writeJSON(w, http.StatusOK, map[string]int64{"removed": removed})
}

func deviceIDParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid device id")
		return 0, false
	}

	return id, true
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
