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

package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/skytrace/flightsync/pkg/logger"
	"github.com/skytrace/flightsync/pkg/models"
)

// refreshSkew controls how long before the token's exp claim a refresh is
// forced.
const refreshSkew = time.Minute

// fallbackTokenTTL is used when the platform issues a token without a
// readable exp claim.
const fallbackTokenTTL = 45 * time.Minute

// Session manages the bearer token for the telemetry platform. It caches
// the token until near expiry and refreshes it under a single critical
// section so concurrent device workers never trigger a login storm.
type Session struct {
	endpoint   string
	username   string
	password   string
	httpClient *http.Client
	logger     logger.Logger

	mu        sync.RWMutex
	token     string
	expiry    time.Time
	lastCheck time.Time
	lastError string
}

// NewSession creates a session manager for the given platform config.
func NewSession(cfg *models.PlatformConfig, log logger.Logger) *Session {
	timeout := time.Duration(cfg.Timeout)
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	return &Session{
		endpoint:   cfg.Endpoint,
		username:   cfg.Username,
		password:   cfg.Password,
		httpClient: &http.Client{Timeout: timeout},
		logger:     log,
	}
}

// EnsureAuthenticated returns a valid bearer token, logging in when no
// token is cached or the cached one is expired or near expiry.
func (s *Session) EnsureAuthenticated(ctx context.Context) (string, error) {
	s.mu.RLock()
	if s.token != "" && time.Now().Add(refreshSkew).Before(s.expiry) {
		token := s.token
		s.mu.RUnlock()

		return token, nil
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	// Another worker may have refreshed while we waited for the lock.
	if s.token != "" && time.Now().Add(refreshSkew).Before(s.expiry) {
		return s.token, nil
	}

	token, expiry, err := s.login(ctx)

	s.lastCheck = time.Now()

	if err != nil {
		s.token = ""
		s.lastError = err.Error()

		return "", err
	}

	s.token = token
	s.expiry = expiry
	s.lastError = ""

	s.logger.Debug().Time("expiry", expiry).Msg("Obtained platform access token")

	return token, nil
}

// Invalidate clears the cached token. Called when the platform answers 401
// on a request that carried the token.
func (s *Session) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.token = ""
	s.expiry = time.Time{}
}

// Status returns a read-only snapshot of the session state.
func (s *Session) Status() models.AuthStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return models.AuthStatus{
		Authenticated: s.token != "" && time.Now().Before(s.expiry),
		TokenExpiry:   s.expiry,
		LastCheck:     s.lastCheck,
		LastError:     s.lastError,
	}
}

func (s *Session) login(ctx context.Context) (string, time.Time, error) {
	body, err := json.Marshal(loginRequest{Username: s.username, Password: s.password})
	if err != nil {
		return "", time.Time{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		s.endpoint+"/api/auth/login", bytes.NewReader(body))
	if err != nil {
		return "", time.Time{}, err
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("%w: %w", ErrAuthUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return "", time.Time{}, ErrInvalidCredentials
	case resp.StatusCode != http.StatusOK:
		bodyBytes, _ := io.ReadAll(resp.Body)

		return "", time.Time{}, fmt.Errorf("%w: login: %d, response: %s",
			errUnexpectedStatusCode, resp.StatusCode, string(bodyBytes))
	}

	var loginResp loginResponse

	if err := json.NewDecoder(resp.Body).Decode(&loginResp); err != nil {
		return "", time.Time{}, fmt.Errorf("%w: decode login response: %w", ErrAuthUnavailable, err)
	}

	if loginResp.Token == "" {
		return "", time.Time{}, ErrInvalidCredentials
	}

	return loginResp.Token, tokenExpiry(loginResp.Token), nil
}

// tokenExpiry reads the exp claim from the issued JWT. The signature is
// not verified here; the token only schedules our own refresh.
func tokenExpiry(token string) time.Time {
	parser := jwt.NewParser()

	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return time.Now().Add(fallbackTokenTTL)
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Now().Add(fallbackTokenTTL)
	}

	return exp.Time
}
