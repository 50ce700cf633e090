package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/mindwell/wellness-api/internal/database"
	"github.com/mindwell/wellness-api/internal/scheduler"
	"github.com/mindwell/wellness-api/internal/services/ai"
	"github.com/mindwell/wellness-api/internal/validation"
	"go.uber.org/zap"
)

// NoRecommendationMessage is returned when a user has no stored recommendation
const NoRecommendationMessage = "Getting to know your preferences. Keep exploring!"

// RecommendationHandler handles recommendation retrieval and service control
type RecommendationHandler struct {
	recRepo database.RecommendationRepositoryInterface
	service *scheduler.Service
	logger  *zap.Logger
}

// NewRecommendationHandler creates a new recommendation handler
func NewRecommendationHandler(recRepo database.RecommendationRepositoryInterface, service *scheduler.Service, logger *zap.Logger) *RecommendationHandler {
	return &RecommendationHandler{
		recRepo: recRepo,
		service: service,
		logger:  logger,
	}
}

// RegisterRoutes registers recommendation routes on the given router
func (h *RecommendationHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/get-recommendation", h.GetRecommendation).Methods("GET")
	r.HandleFunc("/accept-recommendation", h.AcceptRecommendation).Methods("POST")
	r.HandleFunc("/start-recommendation-service", h.StartService).Methods("POST")
	r.HandleFunc("/stop-recommendation-service", h.StopService).Methods("POST")
	r.HandleFunc("/recommendation-status", h.Status).Methods("GET")
}

// AcceptRecommendationRequest represents an accept recommendation request
type AcceptRecommendationRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// GetRecommendation returns the stored recommendation for a user, if one is
// live. Expired recommendations are deleted on read.
func (h *RecommendationHandler) GetRecommendation(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	if err := validation.Validate.Var(email, "required,email"); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "A valid email query parameter is required")
		return
	}

	ctx := r.Context()
	rec, err := h.recRepo.GetByEmail(ctx, email)
	if err != nil {
		h.logger.Error("recommendation_read_failed",
			zap.String("email_hash", ai.HashEmail(email)),
			zap.Error(err),
		)
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to get recommendation")
		return
	}

	if rec != nil && rec.Expired(time.Now()) {
		if err := h.recRepo.Delete(ctx, email); err != nil {
			h.logger.Warn("expired_recommendation_delete_failed",
				zap.String("email_hash", ai.HashEmail(email)),
				zap.Error(err),
			)
		}
		rec = nil
	}

	if rec == nil {
		writeJSON(w, http.StatusOK, map[string]any{
			"has_recommendation": false,
			"message":            NoRecommendationMessage,
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"has_recommendation": true,
		"recommendation": map[string]any{
			"page":              rec.Payload.Page,
			"page_display_name": rec.Payload.PageDisplayName,
			"frontend_url":      rec.Payload.FrontendURL,
			"message":           rec.Payload.Message,
			"features":          rec.Payload.Features,
			"confidence":        rec.Payload.Confidence,
			"generated_at":      rec.GeneratedAt.UTC().Format(time.RFC3339),
		},
	})
}

// AcceptRecommendation marks a recommendation as used by deleting it
func (h *RecommendationHandler) AcceptRecommendation(w http.ResponseWriter, r *http.Request) {
	var req AcceptRecommendationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid JSON body")
		return
	}
	if err := validation.Validate.Struct(&req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "A valid email is required")
		return
	}

	if err := h.recRepo.Delete(r.Context(), req.Email); err != nil {
		h.logger.Error("recommendation_accept_failed",
			zap.String("email_hash", ai.HashEmail(req.Email)),
			zap.Error(err),
		)
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to process recommendation acceptance")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Recommendation accepted",
	})
}

// StartService starts the background recommendation service. Idempotent.
func (h *RecommendationHandler) StartService(w http.ResponseWriter, _ *http.Request) {
	h.service.Start()
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Recommendation service started",
	})
}

// StopService stops the background recommendation service. Idempotent.
func (h *RecommendationHandler) StopService(w http.ResponseWriter, _ *http.Request) {
	h.service.Stop()
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Recommendation service stopped",
	})
}

// Status reports whether the background service is running
func (h *RecommendationHandler) Status(w http.ResponseWriter, _ *http.Request) {
	running := h.service.Running()
	state := "stopped"
	if running {
		state = "running"
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"service_running": running,
		"message":         "Recommendation service is " + state,
	})
}
