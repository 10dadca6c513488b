// Package memory provides a process-local profile store. It backs the
// "memory" storage engine and doubles as a fake in tests.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/scrypster/memorykeeper/internal/storage"
	"github.com/scrypster/memorykeeper/pkg/types"
)

var _ storage.ProfileStore = (*ProfileStore)(nil)

// ProfileStore keeps profiles and performance logs in maps guarded by a RWMutex.
type ProfileStore struct {
	mu       sync.RWMutex
	profiles map[string]types.AgentProfile
	records  map[string][]types.PerformanceRecord
}

// NewProfileStore returns an empty store.
func NewProfileStore() *ProfileStore {
	return &ProfileStore{
		profiles: make(map[string]types.AgentProfile),
		records:  make(map[string][]types.PerformanceRecord),
	}
}

// ReadStrength returns the stored strength for userID.
func (s *ProfileStore) ReadStrength(ctx context.Context, userID string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if userID == "" {
		return 0, fmt.Errorf("%w: user ID is required", storage.ErrInvalidInput)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.profiles[userID]
	if !ok {
		return 0, storage.ErrNotFound
	}
	return p.MemoryStrength, nil
}

// SaveProfile stores a copy of the profile without its history.
func (s *ProfileStore) SaveProfile(ctx context.Context, profile *types.AgentProfile) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := storage.ValidateProfile(profile); err != nil {
		return err
	}

	p := *profile
	p.PerformanceHistory = nil

	s.mu.Lock()
	s.profiles[p.UserID] = p
	s.mu.Unlock()
	return nil
}

// AppendPerformance adds one record to the user's performance log.
func (s *ProfileStore) AppendPerformance(ctx context.Context, userID string, record types.PerformanceRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := storage.ValidateRecord(userID, record); err != nil {
		return err
	}
	if record.Timestamp.IsZero() {
		record.Timestamp = time.Now()
	}

	s.mu.Lock()
	s.records[userID] = append(s.records[userID], record)
	s.mu.Unlock()
	return nil
}

// ListPerformance returns up to limit of the user's most recent records, oldest first.
func (s *ProfileStore) ListPerformance(ctx context.Context, userID string, limit int) ([]types.PerformanceRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if userID == "" {
		return nil, fmt.Errorf("%w: user ID is required", storage.ErrInvalidInput)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	all := s.records[userID]
	start := 0
	if limit > 0 && len(all) > limit {
		start = len(all) - limit
	}
	out := make([]types.PerformanceRecord, len(all)-start)
	copy(out, all[start:])
	return out, nil
}

// SetStrength seeds a stored strength for userID.
func (s *ProfileStore) SetStrength(userID string, strength int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.profiles[userID]
	p.UserID = userID
	p.MemoryStrength = strength
	s.profiles[userID] = p
}

// Close is a no-op.
func (s *ProfileStore) Close() error {
	return nil
}
