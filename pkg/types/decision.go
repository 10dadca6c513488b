package types

// HintType describes how a hint is presented.
type HintType string

// HintTrigger names the in-game condition that produced a hint.
type HintTrigger string

// ScaffoldingType describes the kind of structured support offered.
type ScaffoldingType string

// ScaffoldingLevel is how much of the task the scaffolding does for the user.
type ScaffoldingLevel string

// Hint type constants
const (
	HintVisual     HintType = "visual"
	HintVerbal     HintType = "verbal"
	HintContextual HintType = "contextual"
	HintStrategic  HintType = "strategic"
)

// Hint trigger constants
const (
	TriggerTimePressure     HintTrigger = "time_pressure"
	TriggerMistakeThreshold HintTrigger = "mistake_threshold"
	TriggerStreakBreak      HintTrigger = "streak_break"
	TriggerDifficultySpike  HintTrigger = "difficulty_spike"
	TriggerManualRequest    HintTrigger = "manual_request"
)

// Scaffolding type constants
const (
	ScaffoldingMemoryCue          ScaffoldingType = "memory_cue"
	ScaffoldingStepByStep         ScaffoldingType = "step_by_step"
	ScaffoldingPatternRecognition ScaffoldingType = "pattern_recognition"
	ScaffoldingStrategySuggestion ScaffoldingType = "strategy_suggestion"
)

// Scaffolding level constants
const (
	LevelMinimal     ScaffoldingLevel = "minimal"
	LevelModerate    ScaffoldingLevel = "moderate"
	LevelSubstantial ScaffoldingLevel = "substantial"
)

// Valid reports whether t is one of the known hint types.
func (t HintType) Valid() bool {
	switch t {
	case HintVisual, HintVerbal, HintContextual, HintStrategic:
		return true
	}
	return false
}

// Valid reports whether t is one of the known hint triggers.
func (t HintTrigger) Valid() bool {
	switch t {
	case TriggerTimePressure, TriggerMistakeThreshold, TriggerStreakBreak, TriggerDifficultySpike, TriggerManualRequest:
		return true
	}
	return false
}

// Valid reports whether t is one of the known scaffolding types.
func (t ScaffoldingType) Valid() bool {
	switch t {
	case ScaffoldingMemoryCue, ScaffoldingStepByStep, ScaffoldingPatternRecognition, ScaffoldingStrategySuggestion:
		return true
	}
	return false
}

// Valid reports whether l is one of the known scaffolding levels.
func (l ScaffoldingLevel) Valid() bool {
	switch l {
	case LevelMinimal, LevelModerate, LevelSubstantial:
		return true
	}
	return false
}

// AutoShowPriority is the hint priority at which the UI surfaces a decision
// without waiting for the user to ask.
const AutoShowPriority = 7

// AgentHint is a short reactive suggestion.
type AgentHint struct {
	ID          string      `json:"id"`
	Type        HintType    `json:"type"`
	Content     string      `json:"content"`
	Priority    int         `json:"priority"` // 1-10
	TriggeredBy HintTrigger `json:"triggered_by"`
	GameID      string      `json:"game_id"`
}

// AgentScaffolding is a larger structured support payload.
type AgentScaffolding struct {
	ID      string           `json:"id"`
	Type    ScaffoldingType  `json:"type"`
	Content string           `json:"content"`
	Level   ScaffoldingLevel `json:"level"`
	GameID  string           `json:"game_id"`
}

// AgentDecision is the engine's output for one game context. It is
// recomputed on every context change and never persisted.
type AgentDecision struct {
	ShouldProvideHint        bool              `json:"should_provide_hint"`
	ShouldProvideScaffolding bool              `json:"should_provide_scaffolding"`
	Hint                     *AgentHint        `json:"hint,omitempty"`
	Scaffolding              *AgentScaffolding `json:"scaffolding,omitempty"`
	AgentMessage             string            `json:"agent_message,omitempty"`
	AgentType                AgentPersona      `json:"agent_type,omitempty"`
}

// ShouldAutoShow reports whether the UI should surface the decision
// immediately rather than waiting for a manual request.
func (d AgentDecision) ShouldAutoShow() bool {
	return d.ShouldProvideHint && d.Hint != nil && d.Hint.Priority >= AutoShowPriority
}

// GameTelemetry is the live progress the game screen reports while playing.
type GameTelemetry struct {
	GameID         string         `json:"game_id"`
	Difficulty     DifficultyTier `json:"difficulty"`
	ElapsedSeconds float64        `json:"elapsed_seconds"`
	Moves          int            `json:"moves"`
	Mistakes       int            `json:"mistakes"`
	Streak         int            `json:"streak"`
}

// GameContext is a read-only view over one live game session. It borrows
// everything from the profile and the UI state and owns nothing.
type GameContext struct {
	UserID             string
	GameID             string
	Difficulty         DifficultyTier
	CurrentTimeSeconds float64
	Moves              int
	Mistakes           int
	Streak             int
	MemoryStrength     int
	PerformanceHistory []PerformanceRecord
	CurrentMemory      *Memory // optional
	AgentProfile       *AgentProfile
}
