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

package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/skytrace/flightsync/pkg/logger"
	"github.com/skytrace/flightsync/pkg/models"
)

// PostgresStore implements Store on top of a pgx pool.
type PostgresStore struct {
	pool   *pgxpool.Pool
	logger logger.Logger
}

// NewStore creates a store, connects to postgres and applies pending
// migrations.
func NewStore(ctx context.Context, cfg *models.DatabaseConfig, log logger.Logger) (*PostgresStore, error) {
	pool, err := Connect(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	if err := RunMigrations(ctx, pool, log); err != nil {
		pool.Close()
		return nil, fmt.Errorf("db: migrations: %w", err)
	}

	return &PostgresStore{pool: pool, logger: log}, nil
}

// NewStoreWithPool wraps an existing pool. Used by tests and tooling that
// manage the pool themselves.
func NewStoreWithPool(pool *pgxpool.Pool, log logger.Logger) *PostgresStore {
	return &PostgresStore{pool: pool, logger: log}
}

func (s *PostgresStore) Close() {
	s.pool.Close()
}
