package engine

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/scrypster/memorykeeper/pkg/types"
)

// Decision thresholds.
const (
	timePressureSeconds     = 60.0
	mistakeThreshold        = 3
	streakThreshold         = 3
	spikeMovesThreshold     = 5
	spikeMistakesThreshold  = 2
	mistakeMessageThreshold = 2
	lowStrengthThreshold    = 40
	highStrengthThreshold   = 80
)

// Hint priorities per trigger.
const (
	timePressurePriority  = 5
	mistakePriority       = 7
	manualRequestPriority = 6
)

// idNamespace scopes the name-based IDs given to hints and scaffolding, so
// the same context always yields the same IDs.
var idNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://memorykeeper.app/coach"))

// DecisionEngine turns a live game context into a coaching decision. It is
// stateless and safe for concurrent use.
type DecisionEngine struct{}

// NewDecisionEngine returns a DecisionEngine.
func NewDecisionEngine() *DecisionEngine {
	return &DecisionEngine{}
}

// Decide evaluates the coaching rules in order. Later rules overwrite the
// fields earlier rules set:
//
//  1. time pressure: not easy and over 60s -> verbal hint, priority 5
//  2. mistakes: 3 or more -> strategic hint, priority 7
//  3. streak break: streak >= 3 with a mistake -> reassurance message
//  4. difficulty spike: hard, > 5 moves, > 2 mistakes -> step-by-step scaffolding
//  5. strength below 40 forces scaffolding (a memory cue if none yet);
//     strength above 80 turns hints and scaffolding off entirely
//
// The persona always comes from the profile.
func (e *DecisionEngine) Decide(gc types.GameContext) types.AgentDecision {
	var d types.AgentDecision

	if gc.Difficulty != types.DifficultyEasy && gc.CurrentTimeSeconds > timePressureSeconds {
		d.ShouldProvideHint = true
		d.Hint = newHint(gc, types.HintVerbal, types.TriggerTimePressure, timePressurePriority,
			hintText(timePressureHints, gc.Difficulty))
	}

	if gc.Mistakes >= mistakeThreshold {
		d.ShouldProvideHint = true
		d.Hint = newHint(gc, types.HintStrategic, types.TriggerMistakeThreshold, mistakePriority,
			hintText(mistakeRecoveryHints, gc.Difficulty))
	}

	if gc.Streak >= streakThreshold && gc.Mistakes > 0 {
		d.ShouldProvideHint = true
		d.AgentMessage = reassuranceMessage
	}

	if gc.Difficulty == types.DifficultyHard && gc.Moves > spikeMovesThreshold && gc.Mistakes > spikeMistakesThreshold {
		d.ShouldProvideScaffolding = true
		d.Scaffolding = newScaffolding(gc, types.ScaffoldingStepByStep, types.LevelSubstantial, stepByStepScaffolding)
	}

	switch {
	case gc.MemoryStrength < lowStrengthThreshold:
		d.ShouldProvideScaffolding = true
		if d.Scaffolding == nil {
			d.Scaffolding = newScaffolding(gc, types.ScaffoldingMemoryCue, types.LevelModerate, memoryCueText(gc.CurrentMemory))
		}
	case gc.MemoryStrength > highStrengthThreshold:
		// Confident users are not interrupted.
		d.ShouldProvideHint = false
		d.ShouldProvideScaffolding = false
		d.Hint = nil
		d.Scaffolding = nil
	}

	d.AgentType = personaOf(gc)
	return d
}

// RequestHint answers an explicit request for help. It skips the rule
// cascade: hinting is always on, there is no scaffolding, and the message is
// the persona's message for the current context.
func (e *DecisionEngine) RequestHint(gc types.GameContext) types.AgentDecision {
	return types.AgentDecision{
		ShouldProvideHint: true,
		Hint: newHint(gc, types.HintContextual, types.TriggerManualRequest, manualRequestPriority,
			manualHintText(gc)),
		AgentMessage: e.GenerateAgentMessage(gc),
		AgentType:    personaOf(gc),
	}
}

// GenerateAgentMessage picks the persona's message for the context: streak
// celebration, encouragement after mistakes, or general progress.
func (e *DecisionEngine) GenerateAgentMessage(gc types.GameContext) string {
	return agentMessage(personaOf(gc), bucketFor(gc))
}

// personaOf returns the profile's persona, deriving one from the context's
// strength when no profile is attached.
func personaOf(gc types.GameContext) types.AgentPersona {
	if gc.AgentProfile != nil && gc.AgentProfile.CurrentPersona.Valid() {
		return gc.AgentProfile.CurrentPersona
	}
	return PersonaForStrength(gc.MemoryStrength)
}

func newHint(gc types.GameContext, typ types.HintType, trigger types.HintTrigger, priority int, content string) *types.AgentHint {
	return &types.AgentHint{
		ID:          contentID("hint", string(trigger), gc),
		Type:        typ,
		Content:     content,
		Priority:    priority,
		TriggeredBy: trigger,
		GameID:      gc.GameID,
	}
}

func newScaffolding(gc types.GameContext, typ types.ScaffoldingType, level types.ScaffoldingLevel, content string) *types.AgentScaffolding {
	return &types.AgentScaffolding{
		ID:      contentID("scaffold", string(typ), gc),
		Type:    typ,
		Content: content,
		Level:   level,
		GameID:  gc.GameID,
	}
}

func contentID(kind, reason string, gc types.GameContext) string {
	name := fmt.Sprintf("%s|%s|%s|%s|%s|%d|%d|%d|%.0f",
		kind, reason, gc.UserID, gc.GameID, gc.Difficulty, gc.Moves, gc.Mistakes, gc.Streak, gc.CurrentTimeSeconds)
	return uuid.NewSHA1(idNamespace, []byte(name)).String()
}
