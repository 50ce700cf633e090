package validation

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	// Validate is a shared validator instance
	Validate *validator.Validate
)

func init() {
	Validate = validator.New()

	if err := Validate.RegisterValidation("page_path", validatePagePath); err != nil {
		panic(fmt.Sprintf("failed to register page_path validator: %v", err))
	}
}

// validatePagePath validates that a string looks like a frontend page path
func validatePagePath(fl validator.FieldLevel) bool {
	return ValidatePagePath(fl.Field().String()) == nil
}

// ValidatePagePath validates a page path value
func ValidatePagePath(value string) error {
	if value == "" {
		return fmt.Errorf("page path is required")
	}
	if !strings.HasPrefix(value, "/") {
		return fmt.Errorf("invalid page path: %s (must start with '/')", value)
	}
	if strings.ContainsAny(value, " \t\n") {
		return fmt.Errorf("invalid page path: %s (must not contain whitespace)", value)
	}
	return nil
}
