package engine

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/scrypster/memorykeeper/internal/storage"
)

// ErrStoreUnavailable is returned when the breaker is open and rejects a
// store read without calling the store.
var ErrStoreUnavailable = errors.New("strength store unavailable: circuit breaker is open")

// BreakerConfig holds the configuration for the store circuit breaker.
type BreakerConfig struct {
	// MaxFailures is the number of consecutive failures required to trip the circuit.
	// Default: 3
	MaxFailures uint32

	// Timeout is how long the circuit stays open before letting a probe through.
	// Default: 30 seconds
	Timeout time.Duration

	// HalfOpenMaxSuccesses is the number of probe successes needed to close it again.
	// Default: 1
	HalfOpenMaxSuccesses uint32
}

// DefaultBreakerConfig returns the breaker defaults.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		MaxFailures:          3,
		Timeout:              30 * time.Second,
		HalfOpenMaxSuccesses: 1,
	}
}

// BreakerMetrics counts reads that went through the breaker.
type BreakerMetrics struct {
	TotalReads    uint64
	TotalFailures uint64
	Rejected      uint64 // Reads refused while open
}

// StoreBreaker wraps a StrengthStore in a gobreaker circuit so a failing or
// slow store is skipped quickly instead of being hit on every lookup.
// storage.ErrNotFound is an answer, not a failure, and does not count
// towards tripping the circuit.
type StoreBreaker struct {
	store   storage.StrengthStore
	breaker *gobreaker.CircuitBreaker
	logger  *zap.Logger

	mu      sync.Mutex
	metrics BreakerMetrics
}

// NewStoreBreaker wraps store. A zero-valued cfg field takes its default.
func NewStoreBreaker(store storage.StrengthStore, cfg BreakerConfig, logger *zap.Logger) *StoreBreaker {
	def := DefaultBreakerConfig()
	if cfg.MaxFailures == 0 {
		cfg.MaxFailures = def.MaxFailures
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.HalfOpenMaxSuccesses == 0 {
		cfg.HalfOpenMaxSuccesses = def.HalfOpenMaxSuccesses
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	sb := &StoreBreaker{store: store, logger: logger}
	sb.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "StrengthStore",
		MaxRequests: cfg.HalfOpenMaxSuccesses,
		Interval:    0, // Don't clear counts periodically
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.MaxFailures
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, storage.ErrNotFound)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("strength store breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	})
	return sb
}

// ReadStrength reads through the breaker. It satisfies storage.StrengthStore.
func (sb *StoreBreaker) ReadStrength(ctx context.Context, userID string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	result, err := sb.breaker.Execute(func() (interface{}, error) {
		return sb.store.ReadStrength(ctx, userID)
	})

	sb.mu.Lock()
	sb.metrics.TotalReads++
	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		sb.metrics.Rejected++
	case err != nil && !errors.Is(err, storage.ErrNotFound):
		sb.metrics.TotalFailures++
	}
	sb.mu.Unlock()

	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return 0, ErrStoreUnavailable
	}
	if err != nil {
		return 0, err
	}
	return result.(int), nil
}

// State returns the breaker state: "closed", "open" or "half-open".
func (sb *StoreBreaker) State() string {
	return sb.breaker.State().String()
}

// Metrics returns a snapshot of the read counters.
func (sb *StoreBreaker) Metrics() BreakerMetrics {
	sb.mu.Lock()
	defer sb.mu.Unlock()
	return sb.metrics
}
