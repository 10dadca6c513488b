package engine

import "github.com/scrypster/memorykeeper/pkg/types"

// Persona thresholds on the strength scale. They differ from the difficulty
// thresholds: personas step down in support as strength rises.
const (
	mentorThreshold     = 80
	coachThreshold      = 60
	instructorThreshold = 40
)

// PersonaForStrength maps a memory strength to the agent persona:
// >= 80 mentor, 60-79 coach, 40-59 instructor, below 40 encourager.
func PersonaForStrength(strength int) types.AgentPersona {
	strength = ClampStrength(strength)
	switch {
	case strength >= mentorThreshold:
		return types.PersonaMentor
	case strength >= coachThreshold:
		return types.PersonaCoach
	case strength >= instructorThreshold:
		return types.PersonaInstructor
	default:
		return types.PersonaEncourager
	}
}
