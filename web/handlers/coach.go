package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/scrypster/memorykeeper/internal/engine"
	"github.com/scrypster/memorykeeper/internal/storage"
	"github.com/scrypster/memorykeeper/pkg/types"
)

// CoachHandlers exposes the coaching engine over HTTP.
type CoachHandlers struct {
	coach  *engine.Coach
	hub    *CoachHub
	logger *zap.Logger
}

// NewCoachHandlers creates handlers backed by coach. hub may be nil, in which
// case completions are not pushed to open coach sockets.
func NewCoachHandlers(coach *engine.Coach, hub *CoachHub, logger *zap.Logger) *CoachHandlers {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CoachHandlers{coach: coach, hub: hub, logger: logger}
}

// RegisterRoutes mounts the coaching API on r.
func (h *CoachHandlers) RegisterRoutes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Get("/difficulty", h.GetDifficulty)
		r.Get("/settings/{tier}/{gameType}", h.GetSettings)

		r.Route("/profiles/{userID}", func(r chi.Router) {
			r.Get("/", h.GetProfile)
			r.Post("/decide", h.Decide)
			r.Post("/hint", h.RequestHint)
			r.Post("/completions", h.CompleteGame)
			r.Get("/next", h.NextSession)
			r.Delete("/session", h.EndSession)
		})
	})
}

// GetProfile handles GET /api/profiles/{userID}.
func (h *CoachHandlers) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	p := h.coach.Profile(r.Context(), userID)
	respondJSON(w, http.StatusOK, ProfileResponse{
		Profile:               p,
		RecommendedDifficulty: engine.RecommendedDifficulty(p.MemoryStrength, p.PerformanceHistory),
	})
}

// Decide handles POST /api/profiles/{userID}/decide.
func (h *CoachHandlers) Decide(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, h.coach.Decide)
}

// RequestHint handles POST /api/profiles/{userID}/hint - the player asked for help.
func (h *CoachHandlers) RequestHint(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, h.coach.RequestHint)
}

func (h *CoachHandlers) decide(w http.ResponseWriter, r *http.Request, fn func(types.GameContext) types.AgentDecision) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req DecideRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if req.Difficulty != "" && !req.Difficulty.Valid() {
		respondError(w, http.StatusBadRequest, "unknown difficulty tier", nil)
		return
	}

	gc := h.coach.BuildContext(r.Context(), userID, req.GameTelemetry, req.Memory)
	d := fn(gc)
	respondJSON(w, http.StatusOK, DecisionResponse{
		Decision:   d,
		AutoShow:   d.ShouldAutoShow(),
		Difficulty: gc.Difficulty,
	})
}

// CompleteGame handles POST /api/profiles/{userID}/completions.
func (h *CoachHandlers) CompleteGame(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var rec types.PerformanceRecord
	if err := decodeJSON(r, &rec); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	p, err := h.coach.CompleteGame(r.Context(), userID, rec)
	if err != nil && errors.Is(err, storage.ErrInvalidInput) {
		respondError(w, http.StatusBadRequest, "invalid performance record", err)
		return
	}

	if h.hub != nil {
		h.hub.Publish(userID, ServerFrame{Type: FrameProfile, Profile: p})
	}
	respondJSON(w, http.StatusOK, CompletionResponse{
		Profile:        p,
		NextDifficulty: engine.RecommendedDifficulty(p.MemoryStrength, p.PerformanceHistory),
		Persisted:      err == nil,
	})
}

// NextSession handles GET /api/profiles/{userID}/next?game=memory-match.
func (h *CoachHandlers) NextSession(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	game, err := types.ParseGameType(r.URL.Query().Get("game"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "game query parameter is required", err)
		return
	}
	respondJSON(w, http.StatusOK, h.coach.NextSession(r.Context(), userID, game))
}

// EndSession handles DELETE /api/profiles/{userID}/session.
func (h *CoachHandlers) EndSession(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	h.coach.EndSession(userID)
	w.WriteHeader(http.StatusNoContent)
}

// GetDifficulty handles GET /api/difficulty?strength=N.
func (h *CoachHandlers) GetDifficulty(w http.ResponseWriter, r *http.Request) {
	strength, err := strconv.Atoi(r.URL.Query().Get("strength"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "strength must be an integer", err)
		return
	}

	strength = engine.ClampStrength(strength)
	respondJSON(w, http.StatusOK, DifficultyResponse{
		Strength:   strength,
		Difficulty: h.coach.ClassifyDifficulty(strength),
		Persona:    engine.PersonaForStrength(strength),
	})
}

// GetSettings handles GET /api/settings/{tier}/{gameType}.
func (h *CoachHandlers) GetSettings(w http.ResponseWriter, r *http.Request) {
	tier, err := types.ParseDifficulty(extractID(r, "tier"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "unknown difficulty tier", err)
		return
	}

	game, err := types.ParseGameType(extractID(r, "gameType"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "game type is required", err)
		return
	}
	respondJSON(w, http.StatusOK, h.coach.DifficultySettings(tier, game))
}

// Health handles GET /health.
func (h *CoachHandlers) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, HealthResponse{
		Status:         "healthy",
		ActiveSessions: h.coach.ActiveSessions(),
		StoreBreaker:   h.coach.BreakerState(),
	})
}

func requireUserID(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID := strings.TrimSpace(extractID(r, "userID"))
	if userID == "" {
		respondError(w, http.StatusBadRequest, "user ID is required", nil)
		return "", false
	}
	return userID, true
}
