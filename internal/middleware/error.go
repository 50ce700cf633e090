package middleware

import (
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Stable error categories surfaced to clients. Frontends switch on these
// strings, so they change only with the API version.
const (
	CategoryBadRequest   = "Bad Request"
	CategoryUnauthorized = "Unauthorized"
	CategoryInternal     = "Internal Server Error"
)

// ErrorResponse is the JSON body for error responses
type ErrorResponse struct {
	Success   bool   `json:"success"`
	Error     string `json:"error"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
	Path      string `json:"path"`
}

// ErrorHandler recovers panics from downstream handlers and converts them
// into a CategoryInternal response. Panic details stay in the server log.
func ErrorHandler(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if recovered := recover(); recovered != nil {
					logger.Error("panic_recovered",
						zap.Any("panic", recovered),
						zap.String("method", r.Method),
						zap.String("path", r.URL.Path),
					)
					writeErrorResponse(w, r, http.StatusInternalServerError, CategoryInternal, "An unexpected error occurred", logger)
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}

func writeErrorResponse(w http.ResponseWriter, r *http.Request, status int, category, message string, logger *zap.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	body := ErrorResponse{
		Success:   false,
		Error:     category,
		Message:   message,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Path:      r.URL.Path,
	}

	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Error("error_response_encoding_failed",
			zap.Int("status_code", status),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
	}
}
