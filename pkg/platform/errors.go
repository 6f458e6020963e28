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

import "errors"

var (
	// ErrInvalidCredentials means the platform rejected the configured
	// login. Non-fatal: the orchestrator reports it and skips the cycle.
	ErrInvalidCredentials = errors.New("platform rejected credentials")

	// ErrAuthUnavailable means the login endpoint could not be reached.
	ErrAuthUnavailable = errors.New("authentication endpoint unavailable")

	// ErrUnauthorized means an event request failed authorization even
	// after one token refresh.
	ErrUnauthorized = errors.New("unauthorized after token refresh")

	// ErrUnavailable means the event endpoint kept failing after bounded
	// retries.
	ErrUnavailable = errors.New("platform unavailable")

	// ErrMalformedEvent means a raw event carried neither a timestamp nor
	// a page address and cannot be placed in the device's log.
	ErrMalformedEvent = errors.New("malformed event payload")

	errUnexpectedStatusCode = errors.New("unexpected status code")
)
