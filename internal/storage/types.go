package storage

import (
	"errors"
	"fmt"

	"github.com/scrypster/memorykeeper/pkg/types"
)

var (
	// ErrNotFound indicates that the requested resource was not found.
	ErrNotFound = errors.New("resource not found")

	// ErrInvalidInput indicates that the input parameters are invalid.
	ErrInvalidInput = errors.New("invalid input")
)

// ValidateProfile checks a profile before it is written by any backend.
func ValidateProfile(profile *types.AgentProfile) error {
	if profile == nil {
		return ErrInvalidInput
	}
	if profile.UserID == "" {
		return fmt.Errorf("%w: user ID is required", ErrInvalidInput)
	}
	if profile.MemoryStrength < types.MinMemoryStrength || profile.MemoryStrength > types.MaxMemoryStrength {
		return fmt.Errorf("%w: memory strength %d out of range", ErrInvalidInput, profile.MemoryStrength)
	}
	if !profile.CurrentPersona.Valid() {
		return fmt.Errorf("%w: invalid persona %q", ErrInvalidInput, profile.CurrentPersona)
	}
	return nil
}

// ValidateRecord checks a performance record before it is appended.
func ValidateRecord(userID string, record types.PerformanceRecord) error {
	if userID == "" {
		return fmt.Errorf("%w: user ID is required", ErrInvalidInput)
	}
	if err := record.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return nil
}
