package models

import (
	"time"

	"github.com/google/uuid"
)

// ChatEntry is one user/bot exchange in the supportive-chat history.
// SentimentScore is in [0,1] when the chat pipeline recorded one.
type ChatEntry struct {
	ID             uuid.UUID `json:"id"`
	Email          string    `json:"email"`
	UserMessage    string    `json:"user_message"`
	BotResponse    string    `json:"bot_response"`
	SentimentScore *float64  `json:"sentiment_score,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}
