// Package postgres provides a PostgreSQL implementation of the profile store.
// This file contains test helpers only available during testing.
package postgres

import (
	"context"
	"fmt"
)

// TruncateForTest removes all rows from the profile tables.
func (s *ProfileStore) TruncateForTest(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, "TRUNCATE TABLE agent_profiles, performance_records RESTART IDENTITY")
	if err != nil {
		return fmt.Errorf("postgres: failed to truncate profile tables: %w", err)
	}
	return nil
}
