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

// Package platform is the HTTP client for the telemetry platform that
// fronts the flight-recording instruments: bearer-token login and
// paginated, cursor-based event retrieval.
package platform

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/skytrace/flightsync/pkg/logger"
	"github.com/skytrace/flightsync/pkg/models"
)

const (
	defaultPageSize = 100
	defaultRetries  = 3
	defaultBackoff  = 500 * time.Millisecond
)

// Client fetches telemetry events from the platform.
type Client struct {
	session    *Session
	endpoint   string
	tenantID   string
	pageSize   int
	retries    int
	backoff    time.Duration
	httpClient *http.Client
	logger     logger.Logger
}

// NewClient creates a platform client sharing the given session.
func NewClient(cfg *models.PlatformConfig, session *Session, log logger.Logger) *Client {
	timeout := time.Duration(cfg.Timeout)
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	pageSize := cfg.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}

	retries := cfg.Retries
	if retries <= 0 {
		retries = defaultRetries
	}

	backoff := time.Duration(cfg.RetryBackoff)
	if backoff <= 0 {
		backoff = defaultBackoff
	}

	return &Client{
		session:    session,
		endpoint:   cfg.Endpoint,
		tenantID:   cfg.TenantID,
		pageSize:   pageSize,
		retries:    retries,
		backoff:    backoff,
		httpClient: &http.Client{Timeout: timeout},
		logger:     log,
	}
}

// Session returns the shared bearer session.
func (c *Client) Session() *Session {
	return c.session
}

// FetchNewEvents retrieves all events for a device with a page address
// strictly greater than fromPage, ascending, paginating until the platform
// reports no further pages. No new data yields an empty slice, not an
// error.
func (c *Client) FetchNewEvents(ctx context.Context, externalID string, fromPage int64) ([]RawEvent, error) {
	var events []RawEvent

	next := fromPage

	for {
		page, err := c.fetchEventsPage(ctx, externalID, next)
		if err != nil {
			return nil, err
		}

		events = append(events, page.Data...)

		if !page.HasNext || len(page.Data) == 0 {
			break
		}

		last := page.Data[len(page.Data)-1]
		if last.PageAddress == nil {
			break
		}

		next = *last.PageAddress
	}

	c.logger.Debug().
		Str("device", externalID).
		Int64("from_page", fromPage).
		Int("events", len(events)).
		Msg("Fetched events")

	return events, nil
}

// fetchEventsPage requests a single page. Authorization failures trigger
// exactly one token refresh and retry; transient failures are retried with
// fibonacci backoff up to the configured attempt budget.
func (c *Client) fetchEventsPage(ctx context.Context, externalID string, fromPage int64) (*eventsPage, error) {
	page, err := c.doEventsRequest(ctx, externalID, fromPage)
	if !errors.Is(err, ErrUnauthorized) {
		return page, err
	}

	// Token may have expired server-side; refresh once and retry the same
	// page. A second authorization failure is surfaced.
	c.session.Invalidate()

	if _, err := c.session.EnsureAuthenticated(ctx); err != nil {
		return nil, fmt.Errorf("%w: token refresh failed: %w", ErrUnauthorized, err)
	}

	return c.doEventsRequest(ctx, externalID, fromPage)
}

func (c *Client) doEventsRequest(ctx context.Context, externalID string, fromPage int64) (*eventsPage, error) {
	var page *eventsPage

	backoff := retry.WithMaxRetries(uint64(c.retries-1), retry.NewFibonacci(c.backoff))

	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		var attemptErr error

		page, attemptErr = c.requestEventsPage(ctx, externalID, fromPage)
		if attemptErr == nil {
			return nil
		}

		if errors.Is(attemptErr, ErrUnavailable) {
			return retry.RetryableError(attemptErr)
		}

		return attemptErr
	})
	if err != nil {
		return nil, err
	}

	return page, nil
}

func (c *Client) requestEventsPage(ctx context.Context, externalID string, fromPage int64) (*eventsPage, error) {
	token, err := c.session.EnsureAuthenticated(ctx)
	if err != nil {
		return nil, err
	}

	query := url.Values{}
	query.Set("device", externalID)
	query.Set("from_page", strconv.FormatInt(fromPage, 10))
	query.Set("page_size", strconv.Itoa(c.pageSize))

	if c.tenantID != "" {
		query.Set("tenant", c.tenantID)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.endpoint+"/api/events?"+query.Encode(), http.NoBody)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, ErrUnauthorized
	case resp.StatusCode >= http.StatusInternalServerError:
		return nil, fmt.Errorf("%w: %w: %d", ErrUnavailable, errUnexpectedStatusCode, resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		bodyBytes, _ := io.ReadAll(resp.Body)

		return nil, fmt.Errorf("%w: %d, response: %s",
			errUnexpectedStatusCode, resp.StatusCode, string(bodyBytes))
	}

	var page eventsPage

	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, fmt.Errorf("%w: decode events page: %w", ErrUnavailable, err)
	}

	return &page, nil
}
