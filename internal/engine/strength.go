package engine

import (
	"math"

	"github.com/scrypster/memorykeeper/pkg/types"
)

const (
	successAdjustment = 2.0
	failureAdjustment = -1.0

	hardSuccessScale = 1.5
	hardFailureScale = 0.5
	easySuccessScale = 0.7
	easyFailureScale = 1.3

	// quickWinSeconds and slowLossSeconds bound the speed bonus and the
	// slowness penalty.
	quickWinSeconds = 60.0
	slowLossSeconds = 180.0
	speedAdjustment = 1.0
)

// NextStrength returns the memory strength after applying one performance
// record to the current strength.
//
// A win adds 2 and a loss subtracts 1. Hard games scale wins by 1.5 and
// losses by 0.5; easy games scale wins by 0.7 and losses by 1.3. A win in
// under 60s earns one more point, a loss after more than 180s costs one more.
// The result is clamped to [1, 100] and rounded half-up.
func NextStrength(current int, record types.PerformanceRecord) int {
	adjustment := failureAdjustment
	if record.Success {
		adjustment = successAdjustment
	}

	switch record.Difficulty {
	case types.DifficultyHard:
		if record.Success {
			adjustment *= hardSuccessScale
		} else {
			adjustment *= hardFailureScale
		}
	case types.DifficultyEasy:
		if record.Success {
			adjustment *= easySuccessScale
		} else {
			adjustment *= easyFailureScale
		}
	}

	if record.Success && record.CompletionTimeSeconds < quickWinSeconds {
		adjustment += speedAdjustment
	}
	if !record.Success && record.CompletionTimeSeconds > slowLossSeconds {
		adjustment -= speedAdjustment
	}

	next := float64(current) + adjustment
	next = math.Min(math.Max(next, types.MinMemoryStrength), types.MaxMemoryStrength)

	return int(math.Floor(next + 0.5))
}
