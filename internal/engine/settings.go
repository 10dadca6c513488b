package engine

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/scrypster/memorykeeper/pkg/types"
)

// HintFrequency is how eagerly a game offers hints at a tier.
type HintFrequency string

// Hint frequency constants
const (
	HintFrequencyHigh   HintFrequency = "high"
	HintFrequencyMedium HintFrequency = "medium"
	HintFrequencyLow    HintFrequency = "low"
)

// ParameterSet is the bag of tunables a game reads for one tier. Fields a
// game type does not use are left zero.
type ParameterSet struct {
	GameType   types.GameType       `json:"game_type" yaml:"-"`
	Difficulty types.DifficultyTier `json:"difficulty" yaml:"-"`

	TimeLimitSeconds int           `json:"time_limit_seconds,omitempty" yaml:"time_limit_seconds"` // 0 = untimed
	HintFrequency    HintFrequency `json:"hint_frequency" yaml:"hint_frequency"`

	// memory-match
	PairCount  int `json:"pair_count,omitempty" yaml:"pair_count,omitempty"`
	WordSample int `json:"word_sample,omitempty" yaml:"word_sample,omitempty"` // Words sampled from each journal response

	// timeline
	EventCount int `json:"event_count,omitempty" yaml:"event_count,omitempty"`

	// quiz
	QuestionCount int `json:"question_count,omitempty" yaml:"question_count,omitempty"`
	ChoiceCount   int `json:"choice_count,omitempty" yaml:"choice_count,omitempty"`

	// jigsaw
	PieceCount  int  `json:"piece_count,omitempty" yaml:"piece_count,omitempty"`
	ShowPreview bool `json:"show_preview,omitempty" yaml:"show_preview,omitempty"`
}

// TimeLimited reports whether the tier imposes a time limit.
func (p ParameterSet) TimeLimited() bool {
	return p.TimeLimitSeconds > 0
}

// tierTable holds one ParameterSet per difficulty tier.
type tierTable map[types.DifficultyTier]ParameterSet

// SettingsCatalog maps game types to per-tier parameter sets. Lookups for
// game types without a table fall back to the generic table.
type SettingsCatalog struct {
	games   map[types.GameType]tierTable
	generic tierTable
}

// DefaultSettingsCatalog returns the built-in catalog. Every supported game
// type has an entry for every tier.
func DefaultSettingsCatalog() *SettingsCatalog {
	return &SettingsCatalog{
		games: map[types.GameType]tierTable{
			types.GameMemoryMatch: {
				types.DifficultyEasy:   {PairCount: 4, TimeLimitSeconds: 0, HintFrequency: HintFrequencyHigh, WordSample: 3},
				types.DifficultyMedium: {PairCount: 6, TimeLimitSeconds: 120, HintFrequency: HintFrequencyMedium, WordSample: 5},
				types.DifficultyHard:   {PairCount: 8, TimeLimitSeconds: 90, HintFrequency: HintFrequencyLow, WordSample: 8},
			},
			types.GameTimeline: {
				types.DifficultyEasy:   {EventCount: 3, TimeLimitSeconds: 0, HintFrequency: HintFrequencyHigh},
				types.DifficultyMedium: {EventCount: 5, TimeLimitSeconds: 180, HintFrequency: HintFrequencyMedium},
				types.DifficultyHard:   {EventCount: 7, TimeLimitSeconds: 120, HintFrequency: HintFrequencyLow},
			},
			types.GameQuiz: {
				types.DifficultyEasy:   {QuestionCount: 3, ChoiceCount: 2, TimeLimitSeconds: 0, HintFrequency: HintFrequencyHigh},
				types.DifficultyMedium: {QuestionCount: 5, ChoiceCount: 3, TimeLimitSeconds: 30, HintFrequency: HintFrequencyMedium},
				types.DifficultyHard:   {QuestionCount: 8, ChoiceCount: 4, TimeLimitSeconds: 20, HintFrequency: HintFrequencyLow},
			},
			types.GameJigsaw: {
				types.DifficultyEasy:   {PieceCount: 4, ShowPreview: true, TimeLimitSeconds: 0, HintFrequency: HintFrequencyHigh},
				types.DifficultyMedium: {PieceCount: 9, ShowPreview: true, TimeLimitSeconds: 300, HintFrequency: HintFrequencyMedium},
				types.DifficultyHard:   {PieceCount: 16, ShowPreview: false, TimeLimitSeconds: 180, HintFrequency: HintFrequencyLow},
			},
		},
		generic: tierTable{
			types.DifficultyEasy:   {TimeLimitSeconds: 180, HintFrequency: HintFrequencyHigh},
			types.DifficultyMedium: {TimeLimitSeconds: 120, HintFrequency: HintFrequencyMedium},
			types.DifficultyHard:   {TimeLimitSeconds: 60, HintFrequency: HintFrequencyLow},
		},
	}
}

// Settings returns the parameter set for tier and gameType. Unknown game
// types use the generic table; an unknown tier is treated as medium.
func (c *SettingsCatalog) Settings(tier types.DifficultyTier, gameType types.GameType) ParameterSet {
	if !tier.Valid() {
		tier = types.DifficultyMedium
	}

	table, ok := c.games[gameType]
	if !ok {
		table = c.generic
	}

	p := table[tier]
	p.GameType = gameType
	p.Difficulty = tier
	return p
}

var defaultCatalog = DefaultSettingsCatalog()

// DifficultySettings looks up tier and gameType in the built-in catalog.
func DifficultySettings(tier types.DifficultyTier, gameType types.GameType) ParameterSet {
	return defaultCatalog.Settings(tier, gameType)
}

// catalogFile is the YAML layout accepted by LoadSettingsCatalog:
//
//	games:
//	  memory-match:
//	    hard: {pair_count: 10, time_limit_seconds: 75, hint_frequency: low, word_sample: 8}
//	generic:
//	  easy: {time_limit_seconds: 240, hint_frequency: high}
type catalogFile struct {
	Games   map[string]map[string]ParameterSet `yaml:"games"`
	Generic map[string]ParameterSet            `yaml:"generic"`
}

// LoadSettingsCatalog reads YAML overrides from path on top of the built-in
// catalog. Each (game, tier) entry replaces the built-in entry as a whole;
// entries not mentioned keep their defaults. New game types may be added.
func LoadSettingsCatalog(path string) (*SettingsCatalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("engine: failed to read settings catalog: %w", err)
	}
	return ParseSettingsCatalog(data)
}

// ParseSettingsCatalog applies YAML overrides in data to the built-in catalog.
func ParseSettingsCatalog(data []byte) (*SettingsCatalog, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("engine: failed to parse settings catalog: %w", err)
	}

	catalog := DefaultSettingsCatalog()

	for game, tiers := range file.Games {
		if game == "" {
			return nil, fmt.Errorf("engine: settings catalog has an empty game type")
		}
		gt := types.GameType(game)
		table, ok := catalog.games[gt]
		if !ok {
			// A new game type starts from the generic table so every tier resolves.
			table = tierTable{}
			for tier, p := range catalog.generic {
				table[tier] = p
			}
			catalog.games[gt] = table
		}
		if err := applyOverrides(table, tiers, game); err != nil {
			return nil, err
		}
	}

	if err := applyOverrides(catalog.generic, file.Generic, "generic"); err != nil {
		return nil, err
	}

	return catalog, nil
}

func applyOverrides(table tierTable, overrides map[string]ParameterSet, section string) error {
	for name, p := range overrides {
		tier, err := types.ParseDifficulty(name)
		if err != nil {
			return fmt.Errorf("engine: settings catalog %s: %w", section, err)
		}
		if err := validateParameterSet(p); err != nil {
			return fmt.Errorf("engine: settings catalog %s/%s: %w", section, tier, err)
		}
		table[tier] = p
	}
	return nil
}

func validateParameterSet(p ParameterSet) error {
	switch p.HintFrequency {
	case HintFrequencyHigh, HintFrequencyMedium, HintFrequencyLow:
	default:
		return fmt.Errorf("invalid hint_frequency %q", p.HintFrequency)
	}
	for name, v := range map[string]int{
		"time_limit_seconds": p.TimeLimitSeconds,
		"pair_count":         p.PairCount,
		"word_sample":        p.WordSample,
		"event_count":        p.EventCount,
		"question_count":     p.QuestionCount,
		"choice_count":       p.ChoiceCount,
		"piece_count":        p.PieceCount,
	} {
		if v < 0 {
			return fmt.Errorf("%s must be non-negative", name)
		}
	}
	return nil
}
