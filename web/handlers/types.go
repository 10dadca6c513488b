package handlers

import (
	"github.com/scrypster/memorykeeper/internal/engine"
	"github.com/scrypster/memorykeeper/pkg/types"
)

// ErrorResponse is the standard error response format for the API.
type ErrorResponse struct {
	Error   string                 `json:"error"`
	Code    string                 `json:"code"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// ProfileResponse is the response format for GET /api/profiles/{userID}.
type ProfileResponse struct {
	Profile               *types.AgentProfile  `json:"profile"`
	RecommendedDifficulty types.DifficultyTier `json:"recommended_difficulty"`
}

// DecideRequest carries live game telemetry and, optionally, the memory the
// game is built around.
type DecideRequest struct {
	types.GameTelemetry
	Memory *types.Memory `json:"memory,omitempty"`
}

// DecisionResponse wraps a coaching decision for the UI.
type DecisionResponse struct {
	Decision   types.AgentDecision  `json:"decision"`
	AutoShow   bool                 `json:"auto_show"`
	Difficulty types.DifficultyTier `json:"difficulty"`
}

// CompletionResponse is returned after a finished game is recorded.
// Persisted is false when the profile was updated in memory but could not be
// saved to the store.
type CompletionResponse struct {
	Profile        *types.AgentProfile  `json:"profile"`
	NextDifficulty types.DifficultyTier `json:"next_difficulty"`
	Persisted      bool                 `json:"persisted"`
}

// DifficultyResponse is the response format for GET /api/difficulty.
type DifficultyResponse struct {
	Strength   int                  `json:"strength"`
	Difficulty types.DifficultyTier `json:"difficulty"`
	Persona    types.AgentPersona   `json:"persona"`
}

// SessionPlanResponse is the response format for GET /api/profiles/{userID}/next.
type SessionPlanResponse = engine.SessionPlan

// HealthResponse is the response format for GET /health.
type HealthResponse struct {
	Status         string `json:"status"`
	ActiveSessions int    `json:"active_sessions"`
	StoreBreaker   string `json:"store_breaker"`
}

// Coach socket frame types.
const (
	FrameTelemetry   = "telemetry"
	FrameHintRequest = "hint_request"
	FrameComplete    = "complete"

	FrameDecision = "decision"
	FrameProfile  = "profile"
	FrameError    = "error"
)

// ClientFrame is a message sent by the game screen over the coach socket.
type ClientFrame struct {
	Type      string                   `json:"type"`
	Telemetry *types.GameTelemetry     `json:"telemetry,omitempty"`
	Memory    *types.Memory            `json:"memory,omitempty"`
	Record    *types.PerformanceRecord `json:"record,omitempty"`
}

// ServerFrame is a message pushed to the game screen over the coach socket.
type ServerFrame struct {
	Type     string               `json:"type"`
	Decision *types.AgentDecision `json:"decision,omitempty"`
	AutoShow bool                 `json:"auto_show,omitempty"`
	Profile  *types.AgentProfile  `json:"profile,omitempty"`
	Error    string               `json:"error,omitempty"`
}
