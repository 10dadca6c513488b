package types

import "time"

// Memory is a journal entry recorded by the user. The coaching engine only
// reads it: the prompt and response feed memory-cue scaffolding.
type Memory struct {
	ID        string    `json:"id"`
	Prompt    string    `json:"prompt"`             // Question the user answered (e.g. "Where did you grow up?")
	Response  string    `json:"response,omitempty"` // The user's recorded answer
	CreatedAt time.Time `json:"created_at"`
}
