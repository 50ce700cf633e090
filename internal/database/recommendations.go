package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mindwell/wellness-api/internal/models"
)

// RecommendationRepository handles stored recommendation persistence
type RecommendationRepository struct {
	db *DB
}

// NewRecommendationRepository creates a new recommendation repository
func NewRecommendationRepository(db *DB) *RecommendationRepository {
	return &RecommendationRepository{db: db}
}

// GetByEmail retrieves the stored recommendation for a user. Returns
// (nil, nil) when none exists.
func (r *RecommendationRepository) GetByEmail(ctx context.Context, email string) (*models.StoredRecommendation, error) {
	rec := &models.StoredRecommendation{}
	var payloadJSON []byte

	query := `
		SELECT email, payload, generated_at, expires_at
		FROM recommendations
		WHERE email = $1
	`

	err := r.db.QueryRowContext(ctx, query, email).Scan(
		&rec.Email,
		&payloadJSON,
		&rec.GeneratedAt,
		&rec.ExpiresAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get recommendation: %w", err)
	}

	if err := json.Unmarshal(payloadJSON, &rec.Payload); err != nil {
		return nil, fmt.Errorf("failed to unmarshal recommendation payload: %w", err)
	}

	return rec, nil
}

// Upsert replaces the stored recommendation for a user
func (r *RecommendationRepository) Upsert(ctx context.Context, rec *models.StoredRecommendation) error {
	payloadJSON, err := json.Marshal(rec.Payload)
	if err != nil {
		return fmt.Errorf("failed to marshal recommendation payload: %w", err)
	}

	query := `
		INSERT INTO recommendations (email, payload, generated_at, expires_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (email)
		DO UPDATE SET payload = EXCLUDED.payload, generated_at = EXCLUDED.generated_at, expires_at = EXCLUDED.expires_at
	`

	_, err = r.db.ExecContext(ctx, query, rec.Email, payloadJSON, rec.GeneratedAt, rec.ExpiresAt)
	if err != nil {
		return fmt.Errorf("failed to upsert recommendation: %w", err)
	}

	return nil
}

// Delete removes the stored recommendation for a user. Missing rows are not
// an error: acceptance after expiry cleanup should be idempotent.
func (r *RecommendationRepository) Delete(ctx context.Context, email string) error {
	query := `DELETE FROM recommendations WHERE email = $1`

	if _, err := r.db.ExecContext(ctx, query, email); err != nil {
		return fmt.Errorf("failed to delete recommendation: %w", err)
	}

	return nil
}

// DeleteExpired removes recommendations past their expiry, returning the count
func (r *RecommendationRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	query := `DELETE FROM recommendations WHERE expires_at <= $1`

	result, err := r.db.ExecContext(ctx, query, now)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired recommendations: %w", err)
	}

	count, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return count, nil
}
