package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mindwell/wellness-api/internal/models"
)

// TrackingRepository handles per-user visit history persistence
type TrackingRepository struct {
	db *DB
}

// NewTrackingRepository creates a new tracking repository
func NewTrackingRepository(db *DB) *TrackingRepository {
	return &TrackingRepository{db: db}
}

// GetByEmail retrieves a user's tracking document. Returns (nil, nil) when the
// user has no tracking row yet.
func (r *TrackingRepository) GetByEmail(ctx context.Context, email string) (*models.TrackingDocument, error) {
	doc := &models.TrackingDocument{}
	var visitsJSON []byte

	query := `
		SELECT email, user_visits, updated_at
		FROM tracking
		WHERE email = $1
	`

	err := r.db.QueryRowContext(ctx, query, email).Scan(
		&doc.Email,
		&visitsJSON,
		&doc.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get tracking document: %w", err)
	}

	if err := json.Unmarshal(visitsJSON, &doc.UserVisits); err != nil {
		return nil, fmt.Errorf("failed to unmarshal user visits: %w", err)
	}

	return doc, nil
}

// Upsert writes a user's tracking document, creating the row on first sync
func (r *TrackingRepository) Upsert(ctx context.Context, doc *models.TrackingDocument) error {
	visitsJSON, err := json.Marshal(doc.UserVisits)
	if err != nil {
		return fmt.Errorf("failed to marshal user visits: %w", err)
	}

	query := `
		INSERT INTO tracking (email, user_visits, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (email)
		DO UPDATE SET user_visits = EXCLUDED.user_visits, updated_at = EXCLUDED.updated_at
		RETURNING updated_at
	`

	now := time.Now()
	err = r.db.QueryRowContext(ctx, query, doc.Email, visitsJSON, now).Scan(&doc.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert tracking document: %w", err)
	}

	return nil
}

// ListEmails returns all emails with tracking data, for the analysis sweep
func (r *TrackingRepository) ListEmails(ctx context.Context) ([]string, error) {
	query := `SELECT email FROM tracking ORDER BY email`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list tracking emails: %w", err)
	}
	defer rows.Close()

	var emails []string
	for rows.Next() {
		var email string
		if err := rows.Scan(&email); err != nil {
			return nil, fmt.Errorf("failed to scan email: %w", err)
		}
		emails = append(emails, email)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tracking emails: %w", err)
	}

	return emails, nil
}
