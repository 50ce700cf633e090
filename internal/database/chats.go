package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mindwell/wellness-api/internal/models"
)

// ChatRepository handles chat history persistence
type ChatRepository struct {
	db *DB
}

// NewChatRepository creates a new chat repository
func NewChatRepository(db *DB) *ChatRepository {
	return &ChatRepository{db: db}
}

// Create stores a chat exchange
func (r *ChatRepository) Create(ctx context.Context, chat *models.ChatEntry) error {
	if chat.ID == uuid.Nil {
		chat.ID = uuid.New()
	}
	if chat.CreatedAt.IsZero() {
		chat.CreatedAt = time.Now()
	}

	query := `
		INSERT INTO chats (id, email, user_message, bot_response, sentiment_score, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	var sentiment sql.NullFloat64
	if chat.SentimentScore != nil {
		sentiment = sql.NullFloat64{Float64: *chat.SentimentScore, Valid: true}
	}

	_, err := r.db.ExecContext(ctx, query,
		chat.ID,
		chat.Email,
		chat.UserMessage,
		chat.BotResponse,
		sentiment,
		chat.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create chat entry: %w", err)
	}

	return nil
}

// RecentByEmail retrieves the most recent chat entries for a user, newest first
func (r *ChatRepository) RecentByEmail(ctx context.Context, email string, limit int) ([]*models.ChatEntry, error) {
	if limit <= 0 {
		limit = 10
	}

	query := `
		SELECT id, email, user_message, bot_response, sentiment_score, created_at
		FROM chats
		WHERE email = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := r.db.QueryContext(ctx, query, email, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query chats: %w", err)
	}
	defer rows.Close()

	var chats []*models.ChatEntry
	for rows.Next() {
		chat := &models.ChatEntry{}
		var sentiment sql.NullFloat64

		err := rows.Scan(
			&chat.ID,
			&chat.Email,
			&chat.UserMessage,
			&chat.BotResponse,
			&sentiment,
			&chat.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan chat entry: %w", err)
		}

		if sentiment.Valid {
			chat.SentimentScore = &sentiment.Float64
		}

		chats = append(chats, chat)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating chats: %w", err)
	}

	return chats, nil
}
