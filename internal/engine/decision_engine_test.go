package engine

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scrypster/memorykeeper/pkg/types"
)

// newGameContext returns a quiet context: nothing should fire.
func newGameContext(strength int, difficulty types.DifficultyTier) types.GameContext {
	return types.GameContext{
		UserID:         "user-1",
		GameID:         string(types.GameMemoryMatch),
		Difficulty:     difficulty,
		MemoryStrength: strength,
		AgentProfile: &types.AgentProfile{
			UserID:         "user-1",
			CurrentPersona: PersonaForStrength(strength),
			MemoryStrength: strength,
		},
	}
}

func TestDecide_QuietContext(t *testing.T) {
	d := NewDecisionEngine().Decide(newGameContext(50, types.DifficultyMedium))

	assert.False(t, d.ShouldProvideHint)
	assert.False(t, d.ShouldProvideScaffolding)
	assert.Nil(t, d.Hint)
	assert.Nil(t, d.Scaffolding)
	assert.Empty(t, d.AgentMessage)
	assert.Equal(t, types.PersonaInstructor, d.AgentType)
}

func TestDecide_TimePressure(t *testing.T) {
	gc := newGameContext(50, types.DifficultyMedium)
	gc.CurrentTimeSeconds = 61

	d := NewDecisionEngine().Decide(gc)

	require.True(t, d.ShouldProvideHint)
	require.NotNil(t, d.Hint)
	assert.Equal(t, types.TriggerTimePressure, d.Hint.TriggeredBy)
	assert.Equal(t, types.HintVerbal, d.Hint.Type)
	assert.Equal(t, 5, d.Hint.Priority)
	assert.Equal(t, gc.GameID, d.Hint.GameID)
	assert.Equal(t, timePressureHints[types.DifficultyMedium], d.Hint.Content)
	assert.False(t, d.ShouldAutoShow(), "priority 5 waits for the user")
}

func TestDecide_NoTimePressureOnEasyOrAtSixtySeconds(t *testing.T) {
	gc := newGameContext(50, types.DifficultyEasy)
	gc.CurrentTimeSeconds = 500
	assert.False(t, NewDecisionEngine().Decide(gc).ShouldProvideHint)

	gc = newGameContext(50, types.DifficultyHard)
	gc.CurrentTimeSeconds = 60
	assert.False(t, NewDecisionEngine().Decide(gc).ShouldProvideHint)
}

func TestDecide_MistakeThreshold(t *testing.T) {
	gc := newGameContext(50, types.DifficultyMedium)
	gc.Mistakes = 3

	d := NewDecisionEngine().Decide(gc)

	require.True(t, d.ShouldProvideHint)
	require.NotNil(t, d.Hint)
	assert.Equal(t, types.TriggerMistakeThreshold, d.Hint.TriggeredBy)
	assert.Equal(t, 7, d.Hint.Priority)
	assert.True(t, d.ShouldAutoShow())
}

func TestDecide_MistakeHintOverwritesTimePressure(t *testing.T) {
	gc := newGameContext(50, types.DifficultyHard)
	gc.CurrentTimeSeconds = 120
	gc.Mistakes = 4

	d := NewDecisionEngine().Decide(gc)

	require.NotNil(t, d.Hint)
	assert.Equal(t, types.TriggerMistakeThreshold, d.Hint.TriggeredBy)
	assert.Equal(t, mistakeRecoveryHints[types.DifficultyHard], d.Hint.Content)
}

func TestDecide_StreakBreak(t *testing.T) {
	gc := newGameContext(50, types.DifficultyEasy)
	gc.Streak = 4
	gc.Mistakes = 1

	d := NewDecisionEngine().Decide(gc)

	assert.True(t, d.ShouldProvideHint)
	assert.Nil(t, d.Hint, "streak break does not touch the hint")
	assert.Equal(t, reassuranceMessage, d.AgentMessage)
}

func TestDecide_StreakWithoutMistakes(t *testing.T) {
	gc := newGameContext(50, types.DifficultyEasy)
	gc.Streak = 5

	d := NewDecisionEngine().Decide(gc)
	assert.False(t, d.ShouldProvideHint)
	assert.Empty(t, d.AgentMessage)
}

func TestDecide_DifficultySpike(t *testing.T) {
	gc := newGameContext(50, types.DifficultyHard)
	gc.Moves = 6
	gc.Mistakes = 3

	d := NewDecisionEngine().Decide(gc)

	require.True(t, d.ShouldProvideScaffolding)
	require.NotNil(t, d.Scaffolding)
	assert.Equal(t, types.ScaffoldingStepByStep, d.Scaffolding.Type)
	assert.Equal(t, types.LevelSubstantial, d.Scaffolding.Level)
	assert.True(t, d.ShouldProvideHint, "mistake rule fires as well")
}

func TestDecide_NoSpikeBelowThresholds(t *testing.T) {
	gc := newGameContext(50, types.DifficultyHard)
	gc.Moves = 5
	gc.Mistakes = 3
	assert.False(t, NewDecisionEngine().Decide(gc).ShouldProvideScaffolding)

	gc = newGameContext(50, types.DifficultyMedium)
	gc.Moves = 10
	gc.Mistakes = 5
	assert.False(t, NewDecisionEngine().Decide(gc).ShouldProvideScaffolding)
}

func TestDecide_LowStrengthMemoryCue(t *testing.T) {
	gc := newGameContext(30, types.DifficultyEasy)
	gc.CurrentMemory = &types.Memory{ID: "m1", Prompt: "Where did you spend your summers?"}

	d := NewDecisionEngine().Decide(gc)

	require.True(t, d.ShouldProvideScaffolding)
	require.NotNil(t, d.Scaffolding)
	assert.Equal(t, types.ScaffoldingMemoryCue, d.Scaffolding.Type)
	assert.Equal(t, types.LevelModerate, d.Scaffolding.Level)
	assert.Contains(t, d.Scaffolding.Content, "Where did you spend your summers?")
	assert.Equal(t, types.PersonaEncourager, d.AgentType)
}

func TestDecide_LowStrengthWithoutMemory(t *testing.T) {
	d := NewDecisionEngine().Decide(newGameContext(10, types.DifficultyEasy))

	require.NotNil(t, d.Scaffolding)
	assert.Equal(t, types.ScaffoldingMemoryCue, d.Scaffolding.Type)
	assert.NotContains(t, d.Scaffolding.Content, "You were asked")
	assert.NotEmpty(t, d.Scaffolding.Content)
}

func TestDecide_LowStrengthKeepsSpikeScaffolding(t *testing.T) {
	gc := newGameContext(20, types.DifficultyHard)
	gc.Moves = 8
	gc.Mistakes = 3

	d := NewDecisionEngine().Decide(gc)

	require.NotNil(t, d.Scaffolding)
	assert.Equal(t, types.ScaffoldingStepByStep, d.Scaffolding.Type)
}

func TestDecide_StrengthBoundariesDoNotOverride(t *testing.T) {
	gc := newGameContext(40, types.DifficultyEasy)
	assert.False(t, NewDecisionEngine().Decide(gc).ShouldProvideScaffolding, "40 is not low")

	gc = newGameContext(80, types.DifficultyMedium)
	gc.Mistakes = 3
	assert.True(t, NewDecisionEngine().Decide(gc).ShouldProvideHint, "80 is not high")
}

func TestDecide_ConfidentUsersAreNotInterrupted(t *testing.T) {
	gc := newGameContext(95, types.DifficultyHard)
	gc.Mistakes = 5
	gc.CurrentTimeSeconds = 200
	gc.Moves = 30
	gc.Streak = 3

	d := NewDecisionEngine().Decide(gc)

	assert.False(t, d.ShouldProvideHint)
	assert.False(t, d.ShouldProvideScaffolding)
	assert.Nil(t, d.Hint)
	assert.Nil(t, d.Scaffolding)
	assert.False(t, d.ShouldAutoShow())
	assert.Equal(t, types.PersonaMentor, d.AgentType)
}

func TestDecide_AgentTypeComesFromProfile(t *testing.T) {
	gc := newGameContext(90, types.DifficultyMedium)
	gc.AgentProfile.CurrentPersona = types.PersonaEncourager

	assert.Equal(t, types.PersonaEncourager, NewDecisionEngine().Decide(gc).AgentType)

	gc.AgentProfile = nil
	assert.Equal(t, types.PersonaMentor, NewDecisionEngine().Decide(gc).AgentType)
}

func TestDecide_Deterministic(t *testing.T) {
	gc := newGameContext(35, types.DifficultyHard)
	gc.Moves = 9
	gc.Mistakes = 4
	gc.CurrentTimeSeconds = 75

	e := NewDecisionEngine()
	first := e.Decide(gc)
	second := e.Decide(gc)

	assert.Equal(t, first, second)
	require.NotNil(t, first.Hint)
	assert.NotEqual(t, first.Hint.ID, first.Scaffolding.ID)
}

func TestRequestHint_BypassesRules(t *testing.T) {
	gc := newGameContext(95, types.DifficultyHard)
	gc.Mistakes = 5

	e := NewDecisionEngine()
	d := e.RequestHint(gc)

	assert.True(t, d.ShouldProvideHint)
	assert.False(t, d.ShouldProvideScaffolding)
	assert.Nil(t, d.Scaffolding)
	require.NotNil(t, d.Hint)
	assert.Equal(t, types.TriggerManualRequest, d.Hint.TriggeredBy)
	assert.Equal(t, types.HintContextual, d.Hint.Type)
	assert.Equal(t, e.GenerateAgentMessage(gc), d.AgentMessage)
	assert.Equal(t, types.PersonaMentor, d.AgentType)
}

func TestRequestHint_QuotesCurrentMemory(t *testing.T) {
	gc := newGameContext(50, types.DifficultyMedium)
	gc.CurrentMemory = &types.Memory{Prompt: "What was your first job?"}

	d := NewDecisionEngine().RequestHint(gc)
	require.NotNil(t, d.Hint)
	assert.Contains(t, d.Hint.Content, "What was your first job?")
}

func TestGenerateAgentMessage_BucketSelection(t *testing.T) {
	e := NewDecisionEngine()

	for _, persona := range types.ValidPersonas {
		gc := newGameContext(50, types.DifficultyMedium)
		gc.AgentProfile.CurrentPersona = persona

		gc.Streak, gc.Mistakes = 3, 5
		assert.Equal(t, agentMessages[persona][bucketStreak], e.GenerateAgentMessage(gc), "streak wins over mistakes")

		gc.Streak, gc.Mistakes = 0, 3
		assert.Equal(t, agentMessages[persona][bucketMistakes], e.GenerateAgentMessage(gc))

		gc.Streak, gc.Mistakes = 2, 2
		assert.Equal(t, agentMessages[persona][bucketProgress], e.GenerateAgentMessage(gc))
	}
}

func TestAgentMessages_OneDistinctMessagePerPersonaPerBucket(t *testing.T) {
	seen := make(map[string]bool)
	require.Len(t, agentMessages, len(types.ValidPersonas))

	for _, persona := range types.ValidPersonas {
		msgs, ok := agentMessages[persona]
		require.True(t, ok, "missing messages for %s", persona)
		for _, m := range msgs {
			require.NotEmpty(t, strings.TrimSpace(m))
			assert.False(t, seen[m], "duplicate message %q", m)
			seen[m] = true
		}
	}
	assert.Len(t, seen, 12)
}
