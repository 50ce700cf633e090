package models

import "time"

// RecommendationPayload is the frontend-facing body of a stored
// recommendation.
type RecommendationPayload struct {
	Page            string  `json:"page"`
	PageDisplayName string  `json:"page_display_name"`
	FrontendURL     string  `json:"frontend_url"`
	Message         string  `json:"message"`
	Features        string  `json:"features,omitempty"`
	Confidence      float64 `json:"confidence"`
	Score           float64 `json:"score"`
	TotalTime       float64 `json:"total_time"`
	VisitCount      int     `json:"visit_count"`
	Category        string  `json:"category"`
	GeneratedAt     string  `json:"generated_at"`
}

// StoredRecommendation is a persisted, time-bounded recommendation. At most
// one live row exists per email (upsert semantics); it is deleted on accept
// or on the first read after ExpiresAt.
type StoredRecommendation struct {
	Email       string                `json:"email"`
	Payload     RecommendationPayload `json:"payload"`
	GeneratedAt time.Time             `json:"generated_at"`
	ExpiresAt   time.Time             `json:"expires_at"`
}

// Expired reports whether the recommendation is past its TTL at now.
func (r *StoredRecommendation) Expired(now time.Time) bool {
	return now.After(r.ExpiresAt)
}
