package engine

import (
	"fmt"
	"math"
	"sort"
)

const maxConfidence = 0.95

// Decide selects the top-scoring page, derives a confidence value from the
// score distribution, and applies the gating thresholds. Pure: two calls on
// the same map yield identical results. Ties are broken lexicographically on
// page path so the outcome is reproducible across runs.
func (e *Engine) Decide(scores map[string]PageScore) RecommendationResult {
	if len(scores) == 0 {
		return RecommendationResult{
			ShouldRecommend: false,
			Confidence:      0.0,
			Message:         "No valid pages to recommend",
		}
	}

	pages := make([]string, 0, len(scores))
	for page := range scores {
		pages = append(pages, page)
	}
	sort.Slice(pages, func(i, j int) bool {
		si, sj := scores[pages[i]].Score, scores[pages[j]].Score
		if si != sj {
			return si > sj
		}
		return pages[i] < pages[j]
	})

	bestPage := pages[0]
	best := scores[bestPage]

	var confidence float64
	if len(pages) > 1 {
		second := scores[pages[1]]
		confidence = best.Score / (best.Score + second.Score + 1)
	} else {
		confidence = best.Score / 100.0
	}
	confidence = math.Min(maxConfidence, confidence)

	t := e.thresholds
	if confidence >= t.ConfidenceThreshold &&
		best.Stats.TotalTime >= t.MinEngagementTime &&
		best.Stats.VisitCount >= t.MinVisitCount &&
		best.Score > t.MinScore {
		lastVisit := best.LastVisit
		return RecommendationResult{
			ShouldRecommend: true,
			Page:            bestPage,
			Confidence:      confidence,
			TotalTime:       best.Stats.TotalTime,
			VisitCount:      best.Stats.VisitCount,
			AvgTimePerVisit: best.Stats.AvgTime,
			Category:        best.Category,
			LastVisit:       &lastVisit,
			Score:           best.Score,
			Message: fmt.Sprintf("Recommended based on %d visits and %.1fs engagement",
				best.Stats.VisitCount, best.Stats.TotalTime),
		}
	}

	topStats := best.Stats
	return RecommendationResult{
		ShouldRecommend: false,
		Confidence:      confidence,
		Message: fmt.Sprintf("Confidence %.2f did not meet recommendation thresholds (min confidence %.2f, min engagement %.0fs, min score %.1f)",
			confidence, t.ConfidenceThreshold, t.MinEngagementTime, t.MinScore),
		TopPage:      bestPage,
		TopPageStats: &topStats,
	}
}
