package models

import "time"

// User is a wellness-platform account, keyed by email.
type User struct {
	Email             string    `json:"email"`
	Username          string    `json:"username"`
	ChatbotPreference string    `json:"chatbot_preference,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}
