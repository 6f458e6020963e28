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

package sync

import (
	"errors"
	"os"
	"time"

	"github.com/skytrace/flightsync/pkg/logger"
	"github.com/skytrace/flightsync/pkg/models"
)

const (
	defaultPollInterval  = 15 * time.Minute
	defaultMaxConcurrent = 4
	defaultListenAddr    = ":8090"
)

var (
	errMissingPlatform = errors.New("platform endpoint and username are required")
	errMissingDatabase = errors.New("database host and database name are required")
)

// Config is the sync service configuration.
type Config struct {
	Platform      *models.PlatformConfig `json:"platform"`
	Database      *models.DatabaseConfig `json:"database"`
	ListenAddr    string                 `json:"listen_addr"`         // admin/trigger HTTP API
	NATSURL       string                 `json:"nats_url,omitempty"`  // optional entry-created notifications
	PollInterval  models.Duration        `json:"poll_interval"`       // scheduled cycle interval
	MaxConcurrent int                    `json:"max_concurrent"`      // device worker pool size
	Logging       *logger.Config         `json:"logging,omitempty"`
}

func (c *Config) Validate() error {
	if c.Platform == nil || c.Platform.Endpoint == "" || c.Platform.Username == "" {
		return errMissingPlatform
	}

	if c.Database == nil || c.Database.Host == "" || c.Database.Database == "" {
		return errMissingDatabase
	}

	if time.Duration(c.PollInterval) == 0 {
		c.PollInterval = models.Duration(defaultPollInterval)
	}

	if c.MaxConcurrent <= 0 {
		c.MaxConcurrent = defaultMaxConcurrent
	}

	if c.ListenAddr == "" {
		c.ListenAddr = defaultListenAddr
	}

	return nil
}

// ApplyEnvOverrides pulls secrets from the environment so credentials can
// stay out of config files.
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("FLIGHTSYNC_PLATFORM_PASSWORD"); v != "" && c.Platform != nil {
		c.Platform.Password = v
	}

	if v := os.Getenv("FLIGHTSYNC_DB_PASSWORD"); v != "" && c.Database != nil {
		c.Database.Password = v
	}
}
