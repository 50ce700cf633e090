package handlers

import (
	"encoding/json"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/mindwell/wellness-api/internal/auth"
	"github.com/mindwell/wellness-api/internal/database"
	"github.com/mindwell/wellness-api/internal/engine"
	"github.com/mindwell/wellness-api/internal/models"
	"github.com/mindwell/wellness-api/internal/services/ai"
	"github.com/mindwell/wellness-api/internal/validation"
	"go.uber.org/zap"
)

// TrackingHandler handles visit telemetry sync and on-demand analysis
type TrackingHandler struct {
	trackingRepo   database.TrackingRepositoryInterface
	chatRepo       database.ChatRepositoryInterface
	engine         *engine.Engine
	promptProvider ai.PromptProvider
	verifier       *auth.Verifier
	logger         *zap.Logger
}

// NewTrackingHandler creates a new tracking handler
func NewTrackingHandler(
	trackingRepo database.TrackingRepositoryInterface,
	chatRepo database.ChatRepositoryInterface,
	eng *engine.Engine,
	promptProvider ai.PromptProvider,
	verifier *auth.Verifier,
	logger *zap.Logger,
) *TrackingHandler {
	return &TrackingHandler{
		trackingRepo:   trackingRepo,
		chatRepo:       chatRepo,
		engine:         eng,
		promptProvider: promptProvider,
		verifier:       verifier,
		logger:         logger,
	}
}

// RegisterRoutes registers tracking routes on the given router
func (h *TrackingHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/sync-tracking-data", h.SyncTrackingData).Methods("POST")
	r.HandleFunc("/tracking/smart-recommendation/{email}", h.SmartRecommendation).Methods("GET")
	r.HandleFunc("/tracking/intelligent-recommendation", h.IntelligentRecommendation).Methods("POST")
}

// RegisterDiagnosticRoutes registers routes meant for operators and the
// analysis tooling. Mounted behind bearer auth in the server.
func (h *TrackingHandler) RegisterDiagnosticRoutes(r *mux.Router) {
	r.HandleFunc("/get-combined-tracking", h.GetCombinedTracking).Methods("GET")
}

// PageTracking is the per-page payload the frontend accumulates locally
type PageTracking struct {
	TotalTime float64 `json:"totalTime"`
}

// SyncTrackingRequest represents a tracking sync request
type SyncTrackingRequest struct {
	UserEmail    string                  `json:"userEmail" validate:"required,email"`
	PageTracking map[string]PageTracking `json:"pageTracking" validate:"required"`
}

// SyncTrackingData merges frontend page tracking into the user's visit history
func (h *TrackingHandler) SyncTrackingData(w http.ResponseWriter, r *http.Request) {
	var req SyncTrackingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid JSON body")
		return
	}
	if err := validation.Validate.Struct(&req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "No pageTracking data provided")
		return
	}

	ctx := r.Context()
	doc, err := h.trackingRepo.GetByEmail(ctx, req.UserEmail)
	if err != nil {
		h.logger.Error("tracking_read_failed",
			zap.String("email_hash", ai.HashEmail(req.UserEmail)),
			zap.Error(err),
		)
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to sync tracking data")
		return
	}
	if doc == nil {
		doc = &models.TrackingDocument{Email: req.UserEmail}
	}

	// Deterministic merge order regardless of map iteration.
	pages := make([]string, 0, len(req.PageTracking))
	for page := range req.PageTracking {
		pages = append(pages, page)
	}
	sort.Strings(pages)

	now := time.Now().UTC()
	for _, page := range pages {
		if validation.ValidatePagePath(page) != nil {
			continue
		}
		doc.MergeVisit(models.VisitRecord{
			Page:      page,
			TimeSpent: formatSeconds(req.PageTracking[page].TotalTime),
			Timestamp: now.Format(time.RFC3339),
		})
	}

	if err := h.trackingRepo.Upsert(ctx, doc); err != nil {
		h.logger.Error("tracking_write_failed",
			zap.String("email_hash", ai.HashEmail(req.UserEmail)),
			zap.Error(err),
		)
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to sync tracking data")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":      true,
		"message":      "Tracking data synced successfully",
		"pages_synced": len(req.PageTracking),
	})
}

// GetCombinedTracking returns the user's stored visit history in the shape
// the analysis tooling consumes
func (h *TrackingHandler) GetCombinedTracking(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	if err := validation.Validate.Var(email, "required,email"); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "A valid email query parameter is required")
		return
	}

	doc, err := h.trackingRepo.GetByEmail(r.Context(), email)
	if err != nil {
		h.logger.Error("tracking_read_failed",
			zap.String("email_hash", ai.HashEmail(email)),
			zap.Error(err),
		)
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to get tracking data")
		return
	}

	visits := []models.VisitGroup{}
	if doc != nil {
		visits = doc.UserVisits
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"data": map[string]any{
			"email":               email,
			"user_visits":         visits,
			"total_pages_tracked": len(visits),
			"last_updated":        time.Now().UTC().Format(time.RFC3339),
		},
	})
}

// SmartRecommendation runs the analysis pipeline synchronously for one user
// without persisting the result
func (h *TrackingHandler) SmartRecommendation(w http.ResponseWriter, r *http.Request) {
	email := mux.Vars(r)["email"]
	if err := validation.Validate.Var(email, "required,email"); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "A valid email path parameter is required")
		return
	}

	doc, err := h.trackingRepo.GetByEmail(r.Context(), email)
	if err != nil {
		h.logger.Error("tracking_read_failed",
			zap.String("email_hash", ai.HashEmail(email)),
			zap.Error(err),
		)
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to analyze tracking data")
		return
	}

	result := h.engine.Analyze(doc, time.Now())
	if !result.ShouldRecommend {
		writeJSON(w, http.StatusOK, map[string]any{"recommendation": nil, "message": result.Message})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"recommendation": result})
}

// IntelligentRecommendationRequest represents an intelligent recommendation request
type IntelligentRecommendationRequest struct {
	AccessToken string `json:"access_token" validate:"required"`
}

// IntelligentRecommendation authenticates via access token, runs the pipeline,
// and augments the result with a synthesized follow-up prompt
func (h *TrackingHandler) IntelligentRecommendation(w http.ResponseWriter, r *http.Request) {
	var req IntelligentRecommendationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid JSON body")
		return
	}
	if err := validation.Validate.Struct(&req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "access_token is required")
		return
	}

	email, err := h.verifier.Verify(req.AccessToken)
	if err != nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "Invalid or expired access token")
		return
	}

	ctx := r.Context()
	doc, err := h.trackingRepo.GetByEmail(ctx, email)
	if err != nil {
		h.logger.Error("tracking_read_failed",
			zap.String("email_hash", ai.HashEmail(email)),
			zap.Error(err),
		)
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to analyze tracking data")
		return
	}

	result := h.engine.Analyze(doc, time.Now())
	response := map[string]any{
		"recommendation": result,
	}

	if result.ShouldRecommend {
		history, histErr := h.chatRepo.RecentByEmail(ctx, email, ai.MaxSentimentEntries)
		if histErr != nil {
			h.logger.Warn("chat_history_unavailable",
				zap.String("email_hash", ai.HashEmail(email)),
				zap.Error(histErr),
			)
			history = nil
		}

		prompt, genErr := h.promptProvider.SynthesizeFollowUp(ctx, &models.RecommendationPayload{
			Page:            result.Page,
			PageDisplayName: engine.DisplayName(result.Page),
		}, history)
		if genErr != nil || prompt == "" {
			prompt = ai.FallbackFollowUp
		}

		response["intelligentPrompt"] = prompt
		response["targetPage"] = result.Page
	}

	writeJSON(w, http.StatusOK, response)
}

// formatSeconds renders a duration the way the frontend tracker does
func formatSeconds(seconds float64) string {
	return strconv.FormatFloat(seconds, 'f', -1, 64) + " seconds"
}
