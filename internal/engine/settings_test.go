package engine

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scrypster/memorykeeper/pkg/types"
)

func TestDifficultySettings_FullyEnumerated(t *testing.T) {
	for _, game := range types.SupportedGameTypes {
		for _, tier := range types.ValidDifficultyTiers {
			p := DifficultySettings(tier, game)
			assert.Equal(t, game, p.GameType)
			assert.Equal(t, tier, p.Difficulty)
			assert.NotEmpty(t, p.HintFrequency, "%s/%s missing hint frequency", game, tier)

			switch game {
			case types.GameMemoryMatch:
				assert.Positive(t, p.PairCount)
				assert.Positive(t, p.WordSample)
			case types.GameTimeline:
				assert.Positive(t, p.EventCount)
			case types.GameQuiz:
				assert.Positive(t, p.QuestionCount)
				assert.Positive(t, p.ChoiceCount)
			case types.GameJigsaw:
				assert.Positive(t, p.PieceCount)
			}
		}
	}
}

func TestDifficultySettings_HarderMeansMore(t *testing.T) {
	easy := DifficultySettings(types.DifficultyEasy, types.GameMemoryMatch)
	medium := DifficultySettings(types.DifficultyMedium, types.GameMemoryMatch)
	hard := DifficultySettings(types.DifficultyHard, types.GameMemoryMatch)

	assert.Less(t, easy.PairCount, medium.PairCount)
	assert.Less(t, medium.PairCount, hard.PairCount)
	assert.False(t, easy.TimeLimited(), "easy memory-match is untimed")
	assert.True(t, hard.TimeLimited())
	assert.Equal(t, HintFrequencyHigh, easy.HintFrequency)
	assert.Equal(t, HintFrequencyLow, hard.HintFrequency)
}

func TestDifficultySettings_UnknownGameFallsBackToGeneric(t *testing.T) {
	p := DifficultySettings(types.DifficultyHard, "word-search")

	assert.Equal(t, types.GameType("word-search"), p.GameType)
	assert.Equal(t, 60, p.TimeLimitSeconds)
	assert.Equal(t, HintFrequencyLow, p.HintFrequency)
	assert.Zero(t, p.PairCount)
}

func TestDifficultySettings_UnknownTierIsMedium(t *testing.T) {
	p := DifficultySettings("legendary", types.GameQuiz)

	assert.Equal(t, types.DifficultyMedium, p.Difficulty)
	assert.Equal(t, DifficultySettings(types.DifficultyMedium, types.GameQuiz), p)
}

func TestParseSettingsCatalog_Overrides(t *testing.T) {
	data := []byte(`
games:
  memory-match:
    hard: {pair_count: 10, time_limit_seconds: 75, hint_frequency: low, word_sample: 9}
  word-search:
    easy: {time_limit_seconds: 0, hint_frequency: high}
generic:
  medium: {time_limit_seconds: 150, hint_frequency: medium}
`)

	catalog, err := ParseSettingsCatalog(data)
	require.NoError(t, err)

	hard := catalog.Settings(types.DifficultyHard, types.GameMemoryMatch)
	assert.Equal(t, 10, hard.PairCount)
	assert.Equal(t, 75, hard.TimeLimitSeconds)

	// Untouched entries keep their defaults.
	assert.Equal(t, DifficultySettings(types.DifficultyEasy, types.GameMemoryMatch), catalog.Settings(types.DifficultyEasy, types.GameMemoryMatch))

	// New game type: overridden tier plus generic defaults for the rest.
	ws := catalog.Settings(types.DifficultyEasy, "word-search")
	assert.False(t, ws.TimeLimited())
	assert.Equal(t, 60, catalog.Settings(types.DifficultyHard, "word-search").TimeLimitSeconds)

	assert.Equal(t, 150, catalog.Settings(types.DifficultyMedium, "anything").TimeLimitSeconds)

	// The package default is unaffected.
	assert.Equal(t, 8, DifficultySettings(types.DifficultyHard, types.GameMemoryMatch).PairCount)
}

func TestParseSettingsCatalog_Errors(t *testing.T) {
	tests := map[string]string{
		"bad yaml":       "games: [",
		"unknown tier":   "games:\n  quiz:\n    expert: {hint_frequency: low}\n",
		"bad frequency":  "generic:\n  easy: {hint_frequency: sometimes}\n",
		"negative count": "games:\n  jigsaw:\n    easy: {piece_count: -4, hint_frequency: high}\n",
	}

	for name, data := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ParseSettingsCatalog([]byte(data))
			assert.Error(t, err)
		})
	}
}

func TestLoadSettingsCatalog_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte("games:\n  quiz:\n    easy: {question_count: 2, choice_count: 2, hint_frequency: high}\n"), 0o600))

	catalog, err := LoadSettingsCatalog(path)
	require.NoError(t, err)
	assert.Equal(t, 2, catalog.Settings(types.DifficultyEasy, types.GameQuiz).QuestionCount)

	_, err = LoadSettingsCatalog(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
