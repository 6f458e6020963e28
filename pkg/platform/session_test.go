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
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skytrace/flightsync/pkg/logger"
	"github.com/skytrace/flightsync/pkg/models"
)

func signedToken(t *testing.T, ttl time.Duration) string {
	t.Helper()

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"exp": time.Now().Add(ttl).Unix(),
	})

	signed, err := tok.SignedString([]byte("test-secret"))
	require.NoError(t, err)

	return signed
}

func newLoginServer(t *testing.T, token string, logins *atomic.Int32) *httptest.Server {
	t.Helper()

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/auth/login", r.URL.Path)
		require.Equal(t, http.MethodPost, r.Method)

		var req loginRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		if req.Password != "good" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}

		logins.Add(1)

		_ = json.NewEncoder(w).Encode(loginResponse{Token: token})
	}))
}

func sessionConfig(endpoint, password string) *models.PlatformConfig {
	return &models.PlatformConfig{
		Endpoint: endpoint,
		Username: "sync@skytrace.io",
		Password: password,
	}
}

func TestSessionCachesToken(t *testing.T) {
	var logins atomic.Int32

	token := signedToken(t, time.Hour)
	srv := newLoginServer(t, token, &logins)

	defer srv.Close()

	s := NewSession(sessionConfig(srv.URL, "good"), logger.NewTestLogger())

	got, err := s.EnsureAuthenticated(context.Background())
	require.NoError(t, err)
	assert.Equal(t, token, got)

	got, err = s.EnsureAuthenticated(context.Background())
	require.NoError(t, err)
	assert.Equal(t, token, got)

	assert.Equal(t, int32(1), logins.Load())
}

func TestSessionRefreshesNearExpiry(t *testing.T) {
	var logins atomic.Int32

	// Token expires inside the refresh skew, so every call must re-login.
	srv := newLoginServer(t, signedToken(t, 10*time.Second), &logins)
	defer srv.Close()

	s := NewSession(sessionConfig(srv.URL, "good"), logger.NewTestLogger())

	_, err := s.EnsureAuthenticated(context.Background())
	require.NoError(t, err)

	_, err = s.EnsureAuthenticated(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int32(2), logins.Load())
}

func TestSessionInvalidCredentials(t *testing.T) {
	var logins atomic.Int32

	srv := newLoginServer(t, signedToken(t, time.Hour), &logins)
	defer srv.Close()

	s := NewSession(sessionConfig(srv.URL, "bad"), logger.NewTestLogger())

	_, err := s.EnsureAuthenticated(context.Background())
	require.ErrorIs(t, err, ErrInvalidCredentials)

	status := s.Status()
	assert.False(t, status.Authenticated)
	assert.NotEmpty(t, status.LastError)
}

func TestSessionTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close() // connection refused from here on

	s := NewSession(sessionConfig(srv.URL, "good"), logger.NewTestLogger())

	_, err := s.EnsureAuthenticated(context.Background())
	require.ErrorIs(t, err, ErrAuthUnavailable)
}

func TestSessionInvalidateForcesRelogin(t *testing.T) {
	var logins atomic.Int32

	srv := newLoginServer(t, signedToken(t, time.Hour), &logins)
	defer srv.Close()

	s := NewSession(sessionConfig(srv.URL, "good"), logger.NewTestLogger())

	_, err := s.EnsureAuthenticated(context.Background())
	require.NoError(t, err)

	s.Invalidate()
	assert.False(t, s.Status().Authenticated)

	_, err = s.EnsureAuthenticated(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(2), logins.Load())
}

func TestSessionSingleLoginUnderConcurrency(t *testing.T) {
	var logins atomic.Int32

	srv := newLoginServer(t, signedToken(t, time.Hour), &logins)
	defer srv.Close()

	s := NewSession(sessionConfig(srv.URL, "good"), logger.NewTestLogger())

	var wg sync.WaitGroup

	for i := 0; i < 8; i++ {
		wg.Add(1)

		go func() {
			defer wg.Done()

			_, err := s.EnsureAuthenticated(context.Background())
			assert.NoError(t, err)
		}()
	}

	wg.Wait()

	assert.Equal(t, int32(1), logins.Load())
}

func TestTokenExpiryFallsBackForOpaqueTokens(t *testing.T) {
	expiry := tokenExpiry("not-a-jwt")

	assert.WithinDuration(t, time.Now().Add(fallbackTokenTTL), expiry, time.Minute)
}
