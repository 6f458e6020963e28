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
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skytrace/flightsync/pkg/logger"
	"github.com/skytrace/flightsync/pkg/models"
)

// fakePlatform serves the login and events endpoints with configurable
// behavior per request.
type fakePlatform struct {
	t            *testing.T
	pages        map[int64]eventsPage // keyed by from_page
	failuresLeft int                  // serve this many 500s before answering
	rejectTokens map[string]bool      // tokens answered with 401
	tokenSeq     int
	eventCalls   int
	loginCalls   int
}

func (f *fakePlatform) handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/auth/login", func(w http.ResponseWriter, _ *http.Request) {
		f.loginCalls++
		f.tokenSeq++

		_ = json.NewEncoder(w).Encode(loginResponse{Token: "token-" + strconv.Itoa(f.tokenSeq)})
	})

	mux.HandleFunc("/api/events", func(w http.ResponseWriter, r *http.Request) {
		f.eventCalls++

		if f.failuresLeft > 0 {
			f.failuresLeft--
			w.WriteHeader(http.StatusInternalServerError)

			return
		}

		token := r.Header.Get("X-Authorization")
		if f.rejectTokens[token] {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}

		fromPage, err := strconv.ParseInt(r.URL.Query().Get("from_page"), 10, 64)
		require.NoError(f.t, err)

		page, ok := f.pages[fromPage]
		if !ok {
			page = eventsPage{}
		}

		_ = json.NewEncoder(w).Encode(page)
	})

	return mux
}

func pageAddr(p int64) *int64 { return &p }

func rawEvt(page int64, bitfield uint32) RawEvent {
	at := "2025-06-01 10:00:00"

	return RawEvent{DateTime: &at, PageAddress: pageAddr(page), Bitfield: bitfield}
}

func newTestClient(t *testing.T, endpoint string) *Client {
	t.Helper()

	cfg := &models.PlatformConfig{
		Endpoint:     endpoint,
		Username:     "sync@skytrace.io",
		Password:     "good",
		PageSize:     2,
		Retries:      3,
		RetryBackoff: models.Duration(time.Millisecond),
	}

	session := NewSession(cfg, logger.NewTestLogger())

	return NewClient(cfg, session, logger.NewTestLogger())
}

func TestFetchNewEventsPaginates(t *testing.T) {
	fake := &fakePlatform{
		t: t,
		pages: map[int64]eventsPage{
			0: {Data: []RawEvent{rawEvt(1, 2), rawEvt(2, 4)}, HasNext: true},
			2: {Data: []RawEvent{rawEvt(3, 8)}, HasNext: false},
		},
	}

	srv := httptest.NewServer(fake.handler())
	defer srv.Close()

	c := newTestClient(t, srv.URL)

	events, err := c.FetchNewEvents(context.Background(), "dev-1", 0)
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, int64(3), *events[2].PageAddress)
	assert.Equal(t, 2, fake.eventCalls)
	assert.Equal(t, 1, fake.loginCalls)
}

func TestFetchNewEventsEmpty(t *testing.T) {
	fake := &fakePlatform{t: t}

	srv := httptest.NewServer(fake.handler())
	defer srv.Close()

	c := newTestClient(t, srv.URL)

	events, err := c.FetchNewEvents(context.Background(), "dev-1", 99)
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestFetchNewEventsRefreshesExpiredTokenOnce(t *testing.T) {
	fake := &fakePlatform{
		t: t,
		pages: map[int64]eventsPage{
			0: {Data: []RawEvent{rawEvt(1, 2)}},
		},
		// The first issued token is rejected, simulating server-side expiry.
		rejectTokens: map[string]bool{"Bearer token-1": true},
	}

	srv := httptest.NewServer(fake.handler())
	defer srv.Close()

	c := newTestClient(t, srv.URL)

	events, err := c.FetchNewEvents(context.Background(), "dev-1", 0)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, 2, fake.loginCalls)
}

func TestFetchNewEventsRetriesTransientFailures(t *testing.T) {
	fake := &fakePlatform{
		t:            t,
		failuresLeft: 2,
		pages: map[int64]eventsPage{
			0: {Data: []RawEvent{rawEvt(1, 2)}},
		},
	}

	srv := httptest.NewServer(fake.handler())
	defer srv.Close()

	c := newTestClient(t, srv.URL)

	events, err := c.FetchNewEvents(context.Background(), "dev-1", 0)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, 3, fake.eventCalls)
}

func TestFetchNewEventsRetryBudgetExhausted(t *testing.T) {
	fake := &fakePlatform{t: t, failuresLeft: 10}

	srv := httptest.NewServer(fake.handler())
	defer srv.Close()

	c := newTestClient(t, srv.URL)

	_, err := c.FetchNewEvents(context.Background(), "dev-1", 0)
	require.ErrorIs(t, err, ErrUnavailable)
	assert.Equal(t, 3, fake.eventCalls)
}

func TestFetchNewEventsClientErrorNotRetried(t *testing.T) {
	calls := 0

	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/login", func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(loginResponse{Token: "token-1"})
	})
	mux.HandleFunc("/api/events", func(w http.ResponseWriter, _ *http.Request) {
		calls++

		w.WriteHeader(http.StatusBadRequest)
	})

	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := newTestClient(t, srv.URL)

	_, err := c.FetchNewEvents(context.Background(), "dev-1", 0)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrUnavailable)
	assert.Equal(t, 1, calls)
}
