package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/mindwell/wellness-api/internal/auth"
	"github.com/mindwell/wellness-api/internal/engine"
	"github.com/mindwell/wellness-api/internal/models"
	"github.com/mindwell/wellness-api/internal/services/ai"
	"go.uber.org/zap"
)

const testJWTSecret = "tracking-handler-test-secret"

func newTrackingRouter(t *testing.T, trackingRepo *fakeTrackingRepo, chatRepo *fakeChatRepo) *mux.Router {
	t.Helper()

	verifier, err := auth.NewVerifier(testJWTSecret)
	if err != nil {
		t.Fatalf("NewVerifier: %v", err)
	}

	h := NewTrackingHandler(
		trackingRepo,
		chatRepo,
		engine.New(engine.DefaultThresholds()),
		ai.NewStaticProvider(),
		verifier,
		zap.NewNop(),
	)

	r := mux.NewRouter()
	h.RegisterRoutes(r)
	h.RegisterDiagnosticRoutes(r)
	return r
}

// engagedTrackingDoc crosses every recommendation threshold for /chat.
func engagedTrackingDoc(email string) *models.TrackingDocument {
	doc := &models.TrackingDocument{Email: email}
	now := time.Now().UTC()
	for i := 0; i < 5; i++ {
		doc.MergeVisit(models.VisitRecord{
			Page:      "/chat",
			TimeSpent: "60 seconds",
			Timestamp: now.Add(-time.Duration(i) * time.Hour).Format(time.RFC3339),
		})
	}
	return doc
}

func TestSyncTrackingDataCreatesDocument(t *testing.T) {
	t.Parallel()

	trackingRepo := newFakeTrackingRepo()
	router := newTrackingRouter(t, trackingRepo, &fakeChatRepo{})

	body := `{"userEmail":"user@example.com","pageTracking":{"/chat":{"totalTime":45.5},"/journal":{"totalTime":12}}}`
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/sync-tracking-data", strings.NewReader(body)))

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d: %s", rr.Code, http.StatusOK, rr.Body.String())
	}

	var resp struct {
		Success     bool   `json:"success"`
		Message     string `json:"message"`
		PagesSynced int    `json:"pages_synced"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp.Success {
		t.Error("success = false, want true")
	}
	if resp.Message != "Tracking data synced successfully" {
		t.Errorf("message = %q", resp.Message)
	}
	if resp.PagesSynced != 2 {
		t.Errorf("pages_synced = %d, want 2", resp.PagesSynced)
	}

	doc := trackingRepo.docs["user@example.com"]
	if doc == nil {
		t.Fatal("document not stored")
	}
	if len(doc.UserVisits) != 2 {
		t.Fatalf("groups = %d, want 2", len(doc.UserVisits))
	}
	if got := doc.UserVisits[0].Visits[0].TimeSpent; got != "45.5 seconds" {
		t.Errorf("timeSpent = %q, want %q", got, "45.5 seconds")
	}
	if got := doc.UserVisits[1].Visits[0].TimeSpent; got != "12 seconds" {
		t.Errorf("timeSpent = %q, want %q", got, "12 seconds")
	}
}

func TestSyncTrackingDataMergesExistingPage(t *testing.T) {
	t.Parallel()

	trackingRepo := newFakeTrackingRepo()
	trackingRepo.docs["user@example.com"] = &models.TrackingDocument{
		Email: "user@example.com",
		UserVisits: []models.VisitGroup{
			{Count: 1, Visits: []models.VisitRecord{{Page: "/chat", TimeSpent: "30 seconds", Timestamp: "2026-08-27T10:00:00Z"}}},
		},
	}
	router := newTrackingRouter(t, trackingRepo, &fakeChatRepo{})

	body := `{"userEmail":"user@example.com","pageTracking":{"/chat":{"totalTime":60}}}`
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/sync-tracking-data", strings.NewReader(body)))

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rr.Code, rr.Body.String())
	}

	doc := trackingRepo.docs["user@example.com"]
	if len(doc.UserVisits) != 1 {
		t.Fatalf("groups = %d, want 1", len(doc.UserVisits))
	}
	group := doc.UserVisits[0]
	if group.Count != 2 {
		t.Errorf("count = %d, want 2", group.Count)
	}
	if len(group.Visits) != 2 {
		t.Errorf("visits = %d, want 2", len(group.Visits))
	}
}

func TestSyncTrackingDataSkipsInvalidPaths(t *testing.T) {
	t.Parallel()

	trackingRepo := newFakeTrackingRepo()
	router := newTrackingRouter(t, trackingRepo, &fakeChatRepo{})

	body := `{"userEmail":"user@example.com","pageTracking":{"no-leading-slash":{"totalTime":10},"/journal":{"totalTime":20}}}`
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/sync-tracking-data", strings.NewReader(body)))

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rr.Code, rr.Body.String())
	}

	doc := trackingRepo.docs["user@example.com"]
	if doc == nil || len(doc.UserVisits) != 1 {
		t.Fatalf("stored doc = %+v, want a single /journal group", doc)
	}
	if doc.UserVisits[0].Visits[0].Page != "/journal" {
		t.Errorf("page = %q, want /journal", doc.UserVisits[0].Visits[0].Page)
	}
}

func TestSyncTrackingDataRejectsMissingFields(t *testing.T) {
	t.Parallel()

	router := newTrackingRouter(t, newFakeTrackingRepo(), &fakeChatRepo{})

	tests := []struct {
		name string
		body string
	}{
		{"empty body", `{}`},
		{"missing tracking", `{"userEmail":"user@example.com"}`},
		{"bad email", `{"userEmail":"nope","pageTracking":{"/chat":{"totalTime":10}}}`},
		{"malformed json", `{`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/sync-tracking-data", strings.NewReader(tt.body)))
			if rr.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want %d", rr.Code, http.StatusBadRequest)
			}
		})
	}
}

func TestGetCombinedTracking(t *testing.T) {
	t.Parallel()

	trackingRepo := newFakeTrackingRepo()
	trackingRepo.docs["user@example.com"] = engagedTrackingDoc("user@example.com")
	router := newTrackingRouter(t, trackingRepo, &fakeChatRepo{})

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/get-combined-tracking?email=user@example.com", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rr.Code, rr.Body.String())
	}

	var resp struct {
		Success bool `json:"success"`
		Data    struct {
			Email             string              `json:"email"`
			UserVisits        []models.VisitGroup `json:"user_visits"`
			TotalPagesTracked int                 `json:"total_pages_tracked"`
		} `json:"data"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp.Success {
		t.Error("success = false, want true")
	}
	if resp.Data.Email != "user@example.com" {
		t.Errorf("email = %q", resp.Data.Email)
	}
	if resp.Data.TotalPagesTracked != 1 {
		t.Errorf("total_pages_tracked = %d, want 1", resp.Data.TotalPagesTracked)
	}
}

func TestSmartRecommendation(t *testing.T) {
	t.Parallel()

	trackingRepo := newFakeTrackingRepo()
	trackingRepo.docs["user@example.com"] = engagedTrackingDoc("user@example.com")
	router := newTrackingRouter(t, trackingRepo, &fakeChatRepo{})

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/tracking/smart-recommendation/user@example.com", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rr.Code, rr.Body.String())
	}

	var resp struct {
		Recommendation *engine.RecommendationResult `json:"recommendation"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Recommendation == nil {
		t.Fatal("recommendation = nil, want a result")
	}
	if !resp.Recommendation.ShouldRecommend {
		t.Errorf("shouldRecommend = false: %s", resp.Recommendation.Message)
	}
	if resp.Recommendation.Page != "/chat" {
		t.Errorf("page = %q, want /chat", resp.Recommendation.Page)
	}
}

func TestSmartRecommendationNoHistory(t *testing.T) {
	t.Parallel()

	router := newTrackingRouter(t, newFakeTrackingRepo(), &fakeChatRepo{})

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/tracking/smart-recommendation/user@example.com", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rr.Code, rr.Body.String())
	}

	var resp struct {
		Recommendation *engine.RecommendationResult `json:"recommendation"`
		Message        string                       `json:"message"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Recommendation != nil {
		t.Errorf("recommendation = %+v, want nil", resp.Recommendation)
	}
	if resp.Message == "" {
		t.Error("message is empty, want a reason")
	}
}

func TestIntelligentRecommendationRejectsBadToken(t *testing.T) {
	t.Parallel()

	router := newTrackingRouter(t, newFakeTrackingRepo(), &fakeChatRepo{})

	rr := httptest.NewRecorder()
	body := `{"access_token":"not-a-token"}`
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/tracking/intelligent-recommendation", strings.NewReader(body)))

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", rr.Code, http.StatusUnauthorized)
	}
}

func TestIntelligentRecommendationRequiresToken(t *testing.T) {
	t.Parallel()

	router := newTrackingRouter(t, newFakeTrackingRepo(), &fakeChatRepo{})

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/tracking/intelligent-recommendation", strings.NewReader(`{}`)))

	if rr.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rr.Code, http.StatusBadRequest)
	}
}

func TestIntelligentRecommendationWithValidToken(t *testing.T) {
	t.Parallel()

	trackingRepo := newFakeTrackingRepo()
	trackingRepo.docs["user@example.com"] = engagedTrackingDoc("user@example.com")
	chatRepo := &fakeChatRepo{history: []*models.ChatEntry{
		{Email: "user@example.com", UserMessage: "I had a calm afternoon today", BotResponse: "That sounds peaceful."},
	}}
	router := newTrackingRouter(t, trackingRepo, chatRepo)

	verifier, err := auth.NewVerifier(testJWTSecret)
	if err != nil {
		t.Fatalf("NewVerifier: %v", err)
	}
	token, err := verifier.Issue("user@example.com", time.Hour)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	rr := httptest.NewRecorder()
	body := fmt.Sprintf(`{"access_token":%q}`, token)
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/tracking/intelligent-recommendation", strings.NewReader(body)))

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rr.Code, rr.Body.String())
	}

	var resp struct {
		Recommendation    *engine.RecommendationResult `json:"recommendation"`
		IntelligentPrompt string                       `json:"intelligentPrompt"`
		TargetPage        string                       `json:"targetPage"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Recommendation == nil || !resp.Recommendation.ShouldRecommend {
		t.Fatalf("recommendation = %+v, want positive result", resp.Recommendation)
	}
	if resp.TargetPage != "/chat" {
		t.Errorf("targetPage = %q, want /chat", resp.TargetPage)
	}
	if resp.IntelligentPrompt == "" {
		t.Error("intelligentPrompt is empty")
	}
}
