// Package storage provides the storage capabilities the coaching engine
// depends on.
//
// The engine only needs to read a stored memory strength; everything else
// (saving profiles, keeping a performance log) is persistence of the engine's
// outputs. The interfaces are kept small so backends and test doubles can
// implement just what they serve.
package storage

import (
	"context"

	"github.com/scrypster/memorykeeper/pkg/types"
)

// StrengthStore reads the stored memory strength for a user.
type StrengthStore interface {
	// ReadStrength returns the stored strength for userID.
	// Returns ErrNotFound if nothing is stored for the user.
	ReadStrength(ctx context.Context, userID string) (int, error)
}

// ProfileStore persists agent profiles and the performance log behind them.
type ProfileStore interface {
	StrengthStore

	// SaveProfile upserts the profile row (strength, persona, last interaction).
	// The performance history is persisted separately via AppendPerformance.
	SaveProfile(ctx context.Context, profile *types.AgentProfile) error

	// AppendPerformance adds one record to the user's performance log.
	AppendPerformance(ctx context.Context, userID string, record types.PerformanceRecord) error

	// ListPerformance returns up to limit of the user's most recent records,
	// oldest first. A limit <= 0 returns the whole log.
	ListPerformance(ctx context.Context, userID string, limit int) ([]types.PerformanceRecord, error)

	// Close releases any resources held by the store.
	Close() error
}
