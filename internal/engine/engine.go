// Package engine implements the behavior-based page-recommendation pipeline:
// lenient telemetry parsing, per-page visit aggregation, recency-weighted
// engagement scoring, and threshold-gated recommendation decisions. All
// functions here are pure; persistence and prompt generation live elsewhere.
package engine

import (
	"time"

	"github.com/mindwell/wellness-api/internal/models"
)

// Thresholds gate whether a top-scored page is confident enough to surface.
type Thresholds struct {
	ConfidenceThreshold float64
	MinEngagementTime   float64 // seconds
	MinVisitCount       int
	MinScore            float64
}

// DefaultThresholds returns the production gating values.
func DefaultThresholds() Thresholds {
	return Thresholds{
		ConfidenceThreshold: 0.3,
		MinEngagementTime:   30,
		MinVisitCount:       1,
		MinScore:            10.0,
	}
}

// PageStats is the per-page aggregate over a user's full visit history.
// Recomputed fresh on every analysis; never persisted.
type PageStats struct {
	TotalTime  float64     `json:"total_time"`
	VisitCount int         `json:"visit_count"`
	Timestamps []time.Time `json:"-"`
	AvgTime    float64     `json:"avg_time"`
}

// PageScore is the weighted engagement score for one page.
type PageScore struct {
	Score          float64   `json:"score"`
	BaseScore      float64   `json:"base_score"`
	RecencyFactor  float64   `json:"recency_factor"`
	CategoryWeight float64   `json:"category_weight"`
	Category       Category  `json:"category"`
	LastVisit      time.Time `json:"last_visit"`
	Stats          PageStats `json:"stats"`
}

// RecommendationResult is the outcome of one pipeline run. A negative result
// (ShouldRecommend false) is not an error; Message carries the reason and
// TopPage/TopPageStats the diagnostics.
type RecommendationResult struct {
	ShouldRecommend bool       `json:"shouldRecommend"`
	Page            string     `json:"page,omitempty"`
	Confidence      float64    `json:"confidence"`
	TotalTime       float64    `json:"totalTime,omitempty"`
	VisitCount      int        `json:"visitCount,omitempty"`
	AvgTimePerVisit float64    `json:"avgTimePerVisit,omitempty"`
	Category        Category   `json:"category,omitempty"`
	LastVisit       *time.Time `json:"lastVisit,omitempty"`
	Score           float64    `json:"score,omitempty"`
	Message         string     `json:"message"`
	TopPage         string     `json:"topPage,omitempty"`
	TopPageStats    *PageStats `json:"topPageStats,omitempty"`
}

// Engine runs the full pipeline with a fixed set of thresholds.
type Engine struct {
	thresholds Thresholds
}

// New creates an engine. Zero-valued thresholds fall back to defaults.
func New(t Thresholds) *Engine {
	if t == (Thresholds{}) {
		t = DefaultThresholds()
	}
	return &Engine{thresholds: t}
}

// Thresholds returns the engine's gating configuration.
func (e *Engine) Thresholds() Thresholds {
	return e.thresholds
}

// Analyze runs aggregation, scoring, and the decision for one user's
// tracking document at the given instant.
func (e *Engine) Analyze(doc *models.TrackingDocument, now time.Time) RecommendationResult {
	if doc == nil || len(doc.UserVisits) == 0 {
		return RecommendationResult{
			ShouldRecommend: false,
			Confidence:      0.0,
			Message:         "No valid page visits found",
		}
	}
	stats := Aggregate(doc.UserVisits, now)
	scores := ScorePages(stats, now)
	return e.Decide(scores)
}
