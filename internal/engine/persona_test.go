package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/scrypster/memorykeeper/pkg/types"
)

func TestPersonaForStrength_Boundaries(t *testing.T) {
	tests := []struct {
		strength int
		want     types.AgentPersona
	}{
		{100, types.PersonaMentor},
		{80, types.PersonaMentor},
		{79, types.PersonaCoach},
		{60, types.PersonaCoach},
		{59, types.PersonaInstructor},
		{40, types.PersonaInstructor},
		{39, types.PersonaEncourager},
		{1, types.PersonaEncourager},
		{0, types.PersonaEncourager},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, PersonaForStrength(tt.strength), "strength %d", tt.strength)
	}
}
