// Package engine implements the adaptive difficulty and agent coaching engine:
// memory strength scoring, difficulty classification, persona selection,
// profile lifecycle and the in-game decision procedure.
package engine

import (
	"github.com/scrypster/memorykeeper/pkg/types"
)

const (
	// hardStrengthThreshold and mediumStrengthThreshold split the 1-100
	// strength scale into difficulty tiers.
	hardStrengthThreshold   = 80
	mediumStrengthThreshold = 60

	// minHistoryForClassification is the fewest records that carry any signal.
	minHistoryForClassification = 3

	// performanceWindow is how many of the most recent records are examined.
	performanceWindow = 5

	hardSuccessRate   = 0.8
	mediumSuccessRate = 0.6

	// fastCompletionSeconds is the average time under which a strong
	// success rate is promoted to hard.
	fastCompletionSeconds = 60.0
)

// ClampStrength bounds a strength value to [1, 100]. Classifier inputs are
// derived values, so out-of-range inputs are clamped rather than rejected.
func ClampStrength(strength int) int {
	if strength < types.MinMemoryStrength {
		return types.MinMemoryStrength
	}
	if strength > types.MaxMemoryStrength {
		return types.MaxMemoryStrength
	}
	return strength
}

// StrengthToDifficulty maps a memory strength to a difficulty tier:
// >= 80 hard, 60-79 medium, below 60 easy.
func StrengthToDifficulty(strength int) types.DifficultyTier {
	strength = ClampStrength(strength)
	switch {
	case strength >= hardStrengthThreshold:
		return types.DifficultyHard
	case strength >= mediumStrengthThreshold:
		return types.DifficultyMedium
	default:
		return types.DifficultyEasy
	}
}

// PerformanceToDifficulty classifies a recent performance window.
//
// Fewer than three records carry no signal and yield medium. Otherwise the
// last five records are examined. The success rate is always taken over five
// slots, so three wins out of three count as 0.6. A rate of at least 0.8
// with an average completion time under 60s is hard, a rate of at least 0.6
// is medium, anything lower is easy.
//
// Records are pooled across game types; completion times from different
// games are averaged together.
func PerformanceToDifficulty(history []types.PerformanceRecord) types.DifficultyTier {
	if len(history) < minHistoryForClassification {
		return types.DifficultyMedium
	}

	recent := history
	if len(recent) > performanceWindow {
		recent = recent[len(recent)-performanceWindow:]
	}

	var successes int
	var totalTime float64
	for _, r := range recent {
		if r.Success {
			successes++
		}
		totalTime += r.CompletionTimeSeconds
	}

	successRate := float64(successes) / performanceWindow
	avgTime := totalTime / float64(len(recent))

	switch {
	case successRate >= hardSuccessRate && avgTime < fastCompletionSeconds:
		return types.DifficultyHard
	case successRate >= mediumSuccessRate:
		return types.DifficultyMedium
	default:
		return types.DifficultyEasy
	}
}

// RecommendedDifficulty combines both classifiers conservatively: hard and
// easy need both to agree, any disagreement lands on medium.
func RecommendedDifficulty(strength int, history []types.PerformanceRecord) types.DifficultyTier {
	byStrength := StrengthToDifficulty(strength)
	byHistory := PerformanceToDifficulty(history)

	if byStrength == byHistory && byStrength != types.DifficultyMedium {
		return byStrength
	}
	return types.DifficultyMedium
}
