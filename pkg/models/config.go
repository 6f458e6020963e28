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

package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

var errInvalidDuration = errors.New("duration must be a string or a number of nanoseconds")

// Duration wraps time.Duration so configs can use human-readable values
// like "30s" or "5m".
type Duration time.Duration

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}

	switch value := v.(type) {
	case float64:
		// parse numeric as nanoseconds
		*d = Duration(time.Duration(value))
		return nil
	case string:
		dur, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid duration: %w", err)
		}

		*d = Duration(dur)

		return nil
	default:
		return errInvalidDuration
	}
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

// PlatformConfig describes the external device-management platform the sync
// engine talks to.
type PlatformConfig struct {
	Endpoint     string   `json:"endpoint"`      // e.g., https://telemetry.example.com:8088
	Username     string   `json:"username"`      // platform account
	Password     string   `json:"password"`      // overridable via FLIGHTSYNC_PLATFORM_PASSWORD
	TenantID     string   `json:"tenant_id"`     // optional tenant scoping
	Timeout      Duration `json:"timeout"`       // per-request timeout
	Retries      int      `json:"retries"`       // attempts for transient failures
	RetryBackoff Duration `json:"retry_backoff"` // initial backoff between attempts
	PageSize     int      `json:"page_size"`     // events per page request
}

// DatabaseConfig describes the postgres store holding devices, events and
// logbook entries.
type DatabaseConfig struct {
	Host            string   `json:"host"`
	Port            int      `json:"port"`
	Database        string   `json:"database"`
	Username        string   `json:"username"`
	Password        string   `json:"password"`
	SSLMode         string   `json:"ssl_mode"`
	MaxConnections  int32    `json:"max_connections"`
	MinConnections  int32    `json:"min_connections"`
	MaxConnLifetime Duration `json:"max_conn_lifetime"`
	ApplicationName string   `json:"application_name"`
}
