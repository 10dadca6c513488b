// Package types defines the core data structures for the MemoryKeeper coaching
// engine. These types describe game attempts, agent profiles, live game
// context and the coaching decisions produced for the UI.
package types

import (
	"fmt"
	"strings"
)

// DifficultyTier is the discrete difficulty a game is played at.
type DifficultyTier string

// AgentPersona governs the tone and verbosity of coaching messages.
type AgentPersona string

// GameType identifies which game a session or record belongs to.
type GameType string

// Difficulty tier constants
const (
	DifficultyEasy   DifficultyTier = "easy"
	DifficultyMedium DifficultyTier = "medium"
	DifficultyHard   DifficultyTier = "hard"
)

// Persona constants, ordered from most to least supportive.
const (
	// PersonaEncourager gives maximal emotional support (strength < 40)
	PersonaEncourager AgentPersona = "encourager"

	// PersonaInstructor explains what to do next (strength 40-59)
	PersonaInstructor AgentPersona = "instructor"

	// PersonaCoach nudges towards better strategy (strength 60-79)
	PersonaCoach AgentPersona = "coach"

	// PersonaMentor gives minimal guidance (strength >= 80)
	PersonaMentor AgentPersona = "mentor"
)

// Game type constants
const (
	GameMemoryMatch GameType = "memory-match"
	GameTimeline    GameType = "timeline"
	GameQuiz        GameType = "quiz"
	GameJigsaw      GameType = "jigsaw"
)

// ValidDifficultyTiers lists every difficulty tier, easiest first.
var ValidDifficultyTiers = []DifficultyTier{DifficultyEasy, DifficultyMedium, DifficultyHard}

// ValidPersonas lists every persona.
var ValidPersonas = []AgentPersona{PersonaEncourager, PersonaInstructor, PersonaCoach, PersonaMentor}

// SupportedGameTypes lists the game types with a dedicated settings table.
var SupportedGameTypes = []GameType{GameMemoryMatch, GameTimeline, GameQuiz, GameJigsaw}

// Valid reports whether d is one of the known tiers.
func (d DifficultyTier) Valid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

// Valid reports whether p is one of the known personas.
func (p AgentPersona) Valid() bool {
	switch p {
	case PersonaEncourager, PersonaInstructor, PersonaCoach, PersonaMentor:
		return true
	}
	return false
}

// Supported reports whether g has a dedicated settings table.
func (g GameType) Supported() bool {
	switch g {
	case GameMemoryMatch, GameTimeline, GameQuiz, GameJigsaw:
		return true
	}
	return false
}

// ParseDifficulty parses a tier name (case-insensitive).
func ParseDifficulty(s string) (DifficultyTier, error) {
	d := DifficultyTier(strings.ToLower(strings.TrimSpace(s)))
	if !d.Valid() {
		return "", fmt.Errorf("unknown difficulty tier %q", s)
	}
	return d, nil
}

// ParsePersona parses a persona name (case-insensitive).
func ParsePersona(s string) (AgentPersona, error) {
	p := AgentPersona(strings.ToLower(strings.TrimSpace(s)))
	if !p.Valid() {
		return "", fmt.Errorf("unknown agent persona %q", s)
	}
	return p, nil
}

// ParseGameType normalises a game type name. Any non-empty name is accepted;
// names without a dedicated table resolve to the generic settings.
func ParseGameType(s string) (GameType, error) {
	g := GameType(strings.ToLower(strings.TrimSpace(s)))
	if g == "" {
		return "", fmt.Errorf("game type is required")
	}
	return g, nil
}
