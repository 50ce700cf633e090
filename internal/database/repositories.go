package database

import (
	"context"
	"time"

	"github.com/mindwell/wellness-api/internal/models"
)

// TrackingRepositoryInterface defines the interface for tracking repository operations
// This interface enables better testability by allowing mock implementations
type TrackingRepositoryInterface interface {
	GetByEmail(ctx context.Context, email string) (*models.TrackingDocument, error)
	Upsert(ctx context.Context, doc *models.TrackingDocument) error
	ListEmails(ctx context.Context) ([]string, error)
}

// RecommendationRepositoryInterface defines the interface for recommendation repository operations
type RecommendationRepositoryInterface interface {
	GetByEmail(ctx context.Context, email string) (*models.StoredRecommendation, error)
	Upsert(ctx context.Context, rec *models.StoredRecommendation) error
	Delete(ctx context.Context, email string) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// ChatRepositoryInterface defines the interface for chat repository operations
type ChatRepositoryInterface interface {
	Create(ctx context.Context, chat *models.ChatEntry) error
	RecentByEmail(ctx context.Context, email string, limit int) ([]*models.ChatEntry, error)
}

// UserRepositoryInterface defines the interface for user repository operations
type UserRepositoryInterface interface {
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Upsert(ctx context.Context, user *models.User) error
}

// Ensure concrete types implement the interfaces
var (
	_ TrackingRepositoryInterface       = (*TrackingRepository)(nil)
	_ RecommendationRepositoryInterface = (*RecommendationRepository)(nil)
	_ ChatRepositoryInterface           = (*ChatRepository)(nil)
	_ UserRepositoryInterface           = (*UserRepository)(nil)
)
