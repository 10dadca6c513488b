package types

import "time"

// PerformanceRecord captures one completed (or failed / timed-out) game attempt.
// Records are values: once built they are only ever appended to a history.
type PerformanceRecord struct {
	GameID                string         `json:"game_id"`                 // Game type that was played
	Difficulty            DifficultyTier `json:"difficulty"`              // Tier active during the attempt
	CompletionTimeSeconds float64        `json:"completion_time_seconds"` // Wall-clock time to finish or fail
	Moves                 int            `json:"moves"`                   // Discrete user actions (flips, placements, answers)
	Success               bool           `json:"success"`                 // Whether the attempt ended in a win state
	Timestamp             time.Time      `json:"timestamp"`               // When the attempt concluded
}

// Validate checks that the record can be applied to a profile.
func (r PerformanceRecord) Validate() error {
	if r.GameID == "" {
		return errorf("game_id is required")
	}
	if !r.Difficulty.Valid() {
		return errorf("invalid difficulty %q", r.Difficulty)
	}
	if r.CompletionTimeSeconds < 0 {
		return errorf("completion_time_seconds must be non-negative")
	}
	if r.Moves < 0 {
		return errorf("moves must be non-negative")
	}
	return nil
}
