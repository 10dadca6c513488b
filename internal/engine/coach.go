package engine

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/scrypster/memorykeeper/internal/storage"
	"github.com/scrypster/memorykeeper/pkg/types"
)

// Config configures a Coach.
type Config struct {
	// Profiles configures strength lookups.
	Profiles ProfileManagerConfig

	// Catalog overrides the built-in settings catalog when non-nil.
	Catalog *SettingsCatalog

	// PersistTimeout bounds saving a profile after a completed game (default: 5s).
	PersistTimeout time.Duration
}

// Coach is the engine's entry point for the UI layer. It carries everything
// the engine needs explicitly: the store, the session slots and the catalog.
type Coach struct {
	store     storage.ProfileStore
	profiles  *ProfileManager
	decisions *DecisionEngine
	catalog   atomic.Pointer[SettingsCatalog]
	sessions  *SessionRegistry
	logger    *zap.Logger

	persistTimeout time.Duration
}

// NewCoach wires a Coach over store. store may be nil, in which case every
// user starts from the default strength and nothing is persisted.
func NewCoach(store storage.ProfileStore, cfg Config, logger *zap.Logger) *Coach {
	if logger == nil {
		logger = zap.NewNop()
	}
	catalog := cfg.Catalog
	if catalog == nil {
		catalog = DefaultSettingsCatalog()
	}
	if cfg.PersistTimeout <= 0 {
		cfg.PersistTimeout = 5 * time.Second
	}

	c := &Coach{
		store:          store,
		profiles:       NewProfileManager(store, cfg.Profiles, logger.Named("profiles")),
		decisions:      NewDecisionEngine(),
		sessions:       NewSessionRegistry(),
		logger:         logger,
		persistTimeout: cfg.PersistTimeout,
	}
	c.catalog.Store(catalog)
	return c
}

// SetCatalog swaps the settings catalog. Lookups already in flight finish
// against the previous catalog. A nil catalog is ignored.
func (c *Coach) SetCatalog(catalog *SettingsCatalog) {
	if catalog != nil {
		c.catalog.Store(catalog)
	}
}

// GetOrCreateProfile reads the stored strength and builds a fresh profile.
// It never fails; see ProfileManager.GetOrCreate.
func (c *Coach) GetOrCreateProfile(ctx context.Context, userID string) *types.AgentProfile {
	return c.profiles.GetOrCreate(ctx, userID)
}

// ErrProfileNotSeeded is returned by CompleteGame when the store could not be
// read, so the updated strength was built on the default and was not saved.
var ErrProfileNotSeeded = errors.New("profile not loaded from store, strength not saved")

// Profile returns the user's active session profile, creating and installing
// one on first access. When the store lookup fails the default profile is
// returned without being installed, and the next call retries the lookup.
func (c *Coach) Profile(ctx context.Context, userID string) *types.AgentProfile {
	p, _ := c.session(ctx, userID)
	return p
}

// session is Profile that also reports whether the profile is installed.
func (c *Coach) session(ctx context.Context, userID string) (*types.AgentProfile, bool) {
	if p := c.sessions.Load(userID); p != nil {
		return p, true
	}
	p, seeded := c.profiles.getOrCreate(ctx, userID)
	if !seeded {
		return p, false
	}
	return c.sessions.Install(p), true
}

// EndSession drops the user's session profile.
func (c *Coach) EndSession(userID string) {
	c.sessions.Remove(userID)
}

// ClassifyDifficulty maps a strength to a tier.
func (c *Coach) ClassifyDifficulty(strength int) types.DifficultyTier {
	return StrengthToDifficulty(strength)
}

// ClassifyFromHistory maps a performance history to a tier.
func (c *Coach) ClassifyFromHistory(history []types.PerformanceRecord) types.DifficultyTier {
	return PerformanceToDifficulty(history)
}

// RecommendDifficulty combines strength and history.
func (c *Coach) RecommendDifficulty(strength int, history []types.PerformanceRecord) types.DifficultyTier {
	return RecommendedDifficulty(strength, history)
}

// DifficultySettings returns the catalog entry for tier and gameType.
func (c *Coach) DifficultySettings(tier types.DifficultyTier, gameType types.GameType) ParameterSet {
	return c.catalog.Load().Settings(tier, gameType)
}

// Decide runs the coaching rules for gc.
func (c *Coach) Decide(gc types.GameContext) types.AgentDecision {
	return c.decisions.Decide(gc)
}

// RequestHint answers a manual request for help.
func (c *Coach) RequestHint(gc types.GameContext) types.AgentDecision {
	return c.decisions.RequestHint(gc)
}

// RecordCompletion applies record to profile and returns the new profile.
func (c *Coach) RecordCompletion(profile *types.AgentProfile, record types.PerformanceRecord) *types.AgentProfile {
	return c.profiles.RecordCompletion(profile, record)
}

// SessionPlan is what the next game should be played with.
type SessionPlan struct {
	Difficulty types.DifficultyTier `json:"difficulty"`
	Persona    types.AgentPersona   `json:"persona"`
	Settings   ParameterSet         `json:"settings"`
}

// NextSession recommends the tier and settings for the user's next game.
func (c *Coach) NextSession(ctx context.Context, userID string, gameType types.GameType) SessionPlan {
	p := c.Profile(ctx, userID)
	tier := RecommendedDifficulty(p.MemoryStrength, p.PerformanceHistory)
	return SessionPlan{
		Difficulty: tier,
		Persona:    p.CurrentPersona,
		Settings:   c.catalog.Load().Settings(tier, gameType),
	}
}

// BuildContext composes a GameContext from live telemetry and the user's
// session profile. mem may be nil.
func (c *Coach) BuildContext(ctx context.Context, userID string, t types.GameTelemetry, mem *types.Memory) types.GameContext {
	p := c.Profile(ctx, userID)
	difficulty := t.Difficulty
	if !difficulty.Valid() {
		difficulty = StrengthToDifficulty(p.MemoryStrength)
	}
	return types.GameContext{
		UserID:             userID,
		GameID:             t.GameID,
		Difficulty:         difficulty,
		CurrentTimeSeconds: t.ElapsedSeconds,
		Moves:              t.Moves,
		Mistakes:           t.Mistakes,
		Streak:             t.Streak,
		MemoryStrength:     p.MemoryStrength,
		PerformanceHistory: p.PerformanceHistory,
		CurrentMemory:      mem,
		AgentProfile:       p,
	}
}

// CompleteGame applies record to the user's session profile and persists the
// result. The slot is replaced with compare-and-swap, retrying if another
// completion landed first, so no update is lost. The returned profile is
// always valid; a non-nil error means only that persisting it failed.
//
// If the stored strength could not be read, the record is still appended but
// the profile is neither installed nor saved, and the error wraps
// ErrProfileNotSeeded.
func (c *Coach) CompleteGame(ctx context.Context, userID string, record types.PerformanceRecord) (*types.AgentProfile, error) {
	if err := record.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", storage.ErrInvalidInput, err)
	}
	if record.Timestamp.IsZero() {
		record.Timestamp = time.Now()
	}

	var next *types.AgentProfile
	var installed bool
	for {
		var prev *types.AgentProfile
		prev, installed = c.session(ctx, userID)
		next = c.profiles.RecordCompletion(prev, record)
		if !installed || c.sessions.Replace(prev, next) {
			break
		}
	}

	var err error
	if installed {
		err = c.persist(ctx, userID, next, record)
	} else {
		err = errors.Join(ErrProfileNotSeeded, c.appendRecord(ctx, userID, record))
	}
	if err != nil {
		c.logger.Warn("failed to persist profile",
			zap.String("user_id", userID),
			zap.Int("strength", next.MemoryStrength),
			zap.Error(err))
		return next, err
	}
	return next, nil
}

func (c *Coach) appendRecord(ctx context.Context, userID string, record types.PerformanceRecord) error {
	if c.store == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, c.persistTimeout)
	defer cancel()

	return c.store.AppendPerformance(ctx, userID, record)
}

func (c *Coach) persist(ctx context.Context, userID string, profile *types.AgentProfile, record types.PerformanceRecord) error {
	if c.store == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, c.persistTimeout)
	defer cancel()

	return errors.Join(
		c.store.AppendPerformance(ctx, userID, record),
		c.store.SaveProfile(ctx, profile),
	)
}

// ActiveSessions returns how many users have a session profile.
func (c *Coach) ActiveSessions() int {
	return c.sessions.Len()
}

// BreakerState reports the strength store breaker state.
func (c *Coach) BreakerState() string {
	return c.profiles.BreakerState()
}
