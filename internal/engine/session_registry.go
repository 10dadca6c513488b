package engine

import (
	"sync"
	"sync/atomic"

	"github.com/scrypster/memorykeeper/pkg/types"
)

// SessionRegistry holds one profile slot per active user. A slot is only ever
// replaced as a whole, so readers never observe a partially updated profile.
type SessionRegistry struct {
	slots sync.Map // userID -> *atomic.Pointer[types.AgentProfile]
}

// NewSessionRegistry returns an empty registry.
func NewSessionRegistry() *SessionRegistry {
	return &SessionRegistry{}
}

func (r *SessionRegistry) slot(userID string) *atomic.Pointer[types.AgentProfile] {
	if s, ok := r.slots.Load(userID); ok {
		return s.(*atomic.Pointer[types.AgentProfile])
	}
	s, _ := r.slots.LoadOrStore(userID, new(atomic.Pointer[types.AgentProfile]))
	return s.(*atomic.Pointer[types.AgentProfile])
}

// Load returns the current profile for userID, or nil.
func (r *SessionRegistry) Load(userID string) *types.AgentProfile {
	s, ok := r.slots.Load(userID)
	if !ok {
		return nil
	}
	return s.(*atomic.Pointer[types.AgentProfile]).Load()
}

// Install publishes profile if the slot is empty and returns whichever
// profile ends up in the slot.
func (r *SessionRegistry) Install(profile *types.AgentProfile) *types.AgentProfile {
	s := r.slot(profile.UserID)
	if s.CompareAndSwap(nil, profile) {
		return profile
	}
	return s.Load()
}

// Replace swaps old for next. It fails if another writer replaced old first.
func (r *SessionRegistry) Replace(old, next *types.AgentProfile) bool {
	return r.slot(next.UserID).CompareAndSwap(old, next)
}

// Remove drops the slot for userID.
func (r *SessionRegistry) Remove(userID string) {
	r.slots.Delete(userID)
}

// Len returns the number of active slots.
func (r *SessionRegistry) Len() int {
	n := 0
	r.slots.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}
