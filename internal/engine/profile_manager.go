package engine

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/scrypster/memorykeeper/internal/storage"
	"github.com/scrypster/memorykeeper/pkg/types"
)

// fallbackPersona is used when the store lookup fails outright.
const fallbackPersona = types.PersonaCoach

// defaultLookupTimeout bounds a single strength-store read.
const defaultLookupTimeout = 2 * time.Second

// ProfileManagerConfig configures profile lookups.
type ProfileManagerConfig struct {
	// LookupTimeout bounds each store read (default: 2s).
	LookupTimeout time.Duration

	// Breaker configures the circuit around the store.
	Breaker BreakerConfig
}

// ProfileManager creates and replaces agent profiles. It never fails a lookup:
// any store error produces the default profile and a warning log.
type ProfileManager struct {
	store   *StoreBreaker
	timeout time.Duration
	group   singleflight.Group
	logger  *zap.Logger
	now     func() time.Time
}

// NewProfileManager returns a manager reading strengths from store. A nil
// store behaves as an empty store: every user starts at the default strength.
func NewProfileManager(store storage.StrengthStore, cfg ProfileManagerConfig, logger *zap.Logger) *ProfileManager {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.LookupTimeout <= 0 {
		cfg.LookupTimeout = defaultLookupTimeout
	}
	if store == nil {
		store = emptyStore{}
	}
	return &ProfileManager{
		store:   NewStoreBreaker(store, cfg.Breaker, logger),
		timeout: cfg.LookupTimeout,
		logger:  logger,
		now:     time.Now,
	}
}

// GetOrCreate returns a fresh profile for userID seeded from the stored
// strength. A missing value starts at 50 with the persona derived from it.
// A failed, slow or malformed lookup yields strength 50 with the coach persona.
// Concurrent lookups for the same user share one store read.
func (m *ProfileManager) GetOrCreate(ctx context.Context, userID string) *types.AgentProfile {
	p, _ := m.getOrCreate(ctx, userID)
	return p
}

// lookupResult is the value shared by a singleflight group.
type lookupResult struct {
	profile *types.AgentProfile
	// seeded is false when the profile is the fallback default rather than
	// the stored or missing value.
	seeded bool
}

// getOrCreate is GetOrCreate that also reports whether the profile reflects
// the store. The shared read ignores the leading caller's cancellation so one
// dropped request cannot hand the fallback to everyone waiting on it; it is
// still bounded by the lookup timeout.
func (m *ProfileManager) getOrCreate(ctx context.Context, userID string) (*types.AgentProfile, bool) {
	v, _, _ := m.group.Do(userID, func() (interface{}, error) {
		return m.lookup(context.WithoutCancel(ctx), userID), nil
	})
	r := v.(lookupResult)
	// Each caller gets its own copy of the shared result.
	return r.profile.Clone(), r.seeded
}

func (m *ProfileManager) lookup(ctx context.Context, userID string) lookupResult {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	strength, err := m.store.ReadStrength(ctx, userID)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return lookupResult{m.newProfile(userID, types.DefaultMemoryStrength, PersonaForStrength(types.DefaultMemoryStrength)), true}
	case err != nil:
		m.logger.Warn("strength lookup failed, using default profile",
			zap.String("user_id", userID),
			zap.String("breaker", m.store.State()),
			zap.Error(err))
		return lookupResult{m.fallback(userID), false}
	case strength < types.MinMemoryStrength || strength > types.MaxMemoryStrength:
		m.logger.Warn("stored strength out of range, using default profile",
			zap.String("user_id", userID),
			zap.Int("strength", strength))
		return lookupResult{m.fallback(userID), false}
	}

	return lookupResult{m.newProfile(userID, strength, PersonaForStrength(strength)), true}
}

func (m *ProfileManager) fallback(userID string) *types.AgentProfile {
	return m.newProfile(userID, types.DefaultMemoryStrength, fallbackPersona)
}

func (m *ProfileManager) newProfile(userID string, strength int, persona types.AgentPersona) *types.AgentProfile {
	return &types.AgentProfile{
		UserID:          userID,
		CurrentPersona:  persona,
		MemoryStrength:  strength,
		LastInteraction: m.now(),
	}
}

// RecordCompletion returns a new profile with record applied.
func (m *ProfileManager) RecordCompletion(profile *types.AgentProfile, record types.PerformanceRecord) *types.AgentProfile {
	return RecordCompletion(profile, record, m.now())
}

// BreakerState reports the store breaker state.
func (m *ProfileManager) BreakerState() string {
	return m.store.State()
}

// RecordCompletion appends record to the profile's history (keeping the most
// recent 20), recomputes strength and persona, and stamps now as the last
// interaction. The input profile is not modified.
func RecordCompletion(profile *types.AgentProfile, record types.PerformanceRecord, now time.Time) *types.AgentProfile {
	prev := profile
	if prev == nil {
		prev = &types.AgentProfile{MemoryStrength: types.DefaultMemoryStrength}
	}

	history := make([]types.PerformanceRecord, 0, types.MaxPerformanceHistory)
	old := prev.PerformanceHistory
	if keep := types.MaxPerformanceHistory - 1; len(old) > keep {
		old = old[len(old)-keep:]
	}
	history = append(history, old...)
	history = append(history, record)

	strength := NextStrength(ClampStrength(prev.MemoryStrength), record)

	return &types.AgentProfile{
		UserID:             prev.UserID,
		CurrentPersona:     PersonaForStrength(strength),
		PerformanceHistory: history,
		MemoryStrength:     strength,
		LastInteraction:    now,
	}
}

// emptyStore stores nothing.
type emptyStore struct{}

func (emptyStore) ReadStrength(context.Context, string) (int, error) {
	return 0, storage.ErrNotFound
}
