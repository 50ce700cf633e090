package engine

import (
	"testing"
	"time"

	"github.com/mindwell/wellness-api/internal/models"
)

func TestAnalyzeEndToEnd(t *testing.T) {
	t.Parallel()

	e := New(DefaultThresholds())
	doc := &models.TrackingDocument{
		Email: "user@example.com",
		UserVisits: []models.VisitGroup{
			{Count: 4, Visits: []models.VisitRecord{
				visit("/chat", "50 seconds", testNow.Add(-1*time.Hour)),
				visit("/chat", "50 seconds", testNow.Add(-2*time.Hour)),
				visit("/chat", "50 seconds", testNow.Add(-3*time.Hour)),
				visit("/chat", "50 seconds", testNow.Add(-4*time.Hour)),
			}},
			{Count: 1, Visits: []models.VisitRecord{
				visit("/login", "300 seconds", testNow),
			}},
		},
	}

	result := e.Analyze(doc, testNow)

	if !result.ShouldRecommend {
		t.Fatalf("expected recommendation, got %q", result.Message)
	}
	if result.Page != "/chat" {
		t.Errorf("Page = %q, want /chat", result.Page)
	}
	if result.TotalTime != 200 {
		t.Errorf("TotalTime = %v, want 200", result.TotalTime)
	}
	if result.VisitCount != 4 {
		t.Errorf("VisitCount = %d, want 4", result.VisitCount)
	}
}

func TestAnalyzeEmptyHistory(t *testing.T) {
	t.Parallel()

	e := New(DefaultThresholds())

	tests := []struct {
		name string
		doc  *models.TrackingDocument
	}{
		{name: "nil document", doc: nil},
		{name: "no visit groups", doc: &models.TrackingDocument{Email: "user@example.com"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			result := e.Analyze(tt.doc, testNow)
			if result.ShouldRecommend {
				t.Error("expected no recommendation without history")
			}
			if result.Confidence != 0.0 {
				t.Errorf("Confidence = %v, want 0.0", result.Confidence)
			}
			if result.Message != "No valid page visits found" {
				t.Errorf("Message = %q", result.Message)
			}
		})
	}
}

func TestDefaultThresholdFallback(t *testing.T) {
	t.Parallel()

	e := New(Thresholds{})
	if e.Thresholds() != DefaultThresholds() {
		t.Errorf("zero thresholds should fall back to defaults, got %+v", e.Thresholds())
	}
}
