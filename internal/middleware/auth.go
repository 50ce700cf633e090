package middleware

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/mindwell/wellness-api/internal/auth"
	"github.com/mindwell/wellness-api/internal/database"
	"github.com/mindwell/wellness-api/internal/models"
	"github.com/mindwell/wellness-api/internal/request"
	"go.uber.org/zap"
)

// Auth creates authentication middleware that validates bearer tokens and
// attaches the resolved user to the request context.
func Auth(verifier *auth.Verifier, userRepo database.UserRepositoryInterface, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				respondError(w, http.StatusUnauthorized, "Missing Authorization header")
				return
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				respondError(w, http.StatusUnauthorized, "Invalid Authorization header format")
				return
			}

			email, err := verifier.Verify(parts[1])
			if err != nil {
				logger.Debug("token_verification_failed", zap.Error(err))
				respondError(w, http.StatusUnauthorized, "Invalid or expired token")
				return
			}

			ctx := r.Context()
			user, err := userRepo.GetByEmail(ctx, email)
			if err != nil {
				logger.Error("user_lookup_failed", zap.Error(err))
				respondError(w, http.StatusInternalServerError, "Database error")
				return
			}
			if user == nil {
				// First request after signup elsewhere: create a bare profile.
				user = &models.User{Email: email}
				if err := userRepo.Upsert(ctx, user); err != nil {
					logger.Error("user_create_failed", zap.Error(err))
					respondError(w, http.StatusInternalServerError, "Failed to create user")
					return
				}
			}

			next.ServeHTTP(w, r.WithContext(request.WithUser(ctx, user)))
		})
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	response := map[string]any{
		"success": false,
		"error":   message,
	}

	_ = json.NewEncoder(w).Encode(response)
}
