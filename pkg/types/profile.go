package types

import "time"

// MaxPerformanceHistory is the number of records an AgentProfile keeps.
const MaxPerformanceHistory = 20

// Strength bounds and the value used when nothing is stored for a user.
const (
	MinMemoryStrength     = 1
	MaxMemoryStrength     = 100
	DefaultMemoryStrength = 50
)

// AgentProfile is the per-user coaching state. Profiles are replaced, never
// mutated: every update builds a new value, so a published *AgentProfile can
// be read concurrently without locking.
type AgentProfile struct {
	UserID             string              `json:"user_id"`
	CurrentPersona     AgentPersona        `json:"current_persona"`
	PerformanceHistory []PerformanceRecord `json:"performance_history"` // Oldest first, at most MaxPerformanceHistory
	MemoryStrength     int                 `json:"memory_strength"`     // 1-100
	LastInteraction    time.Time           `json:"last_interaction"`
}

// History returns a copy of the performance history.
func (p *AgentProfile) History() []PerformanceRecord {
	if p == nil || len(p.PerformanceHistory) == 0 {
		return nil
	}
	out := make([]PerformanceRecord, len(p.PerformanceHistory))
	copy(out, p.PerformanceHistory)
	return out
}

// Clone returns a deep copy of the profile.
func (p *AgentProfile) Clone() *AgentProfile {
	if p == nil {
		return nil
	}
	c := *p
	c.PerformanceHistory = p.History()
	return &c
}
