package validation

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/benvon/flow/internal/models"
	"github.com/go-playground/validator/v10"
)

const (
	// MaxTagLength is the maximum length of a single tag
	MaxTagLength = 64
)

var (
	// Validate is a shared validator instance
	Validate *validator.Validate
)

func init() {
	Validate = validator.New()

	if err := Validate.RegisterValidation("task_priority", validateTaskPriority); err != nil {
		panic(fmt.Sprintf("failed to register task_priority validator: %v", err))
	}
	if err := Validate.RegisterValidation("task_status", validateTaskStatus); err != nil {
		panic(fmt.Sprintf("failed to register task_status validator: %v", err))
	}
	if err := Validate.RegisterValidation("tag", validateTag); err != nil {
		panic(fmt.Sprintf("failed to register tag validator: %v", err))
	}
}

func validateTaskPriority(fl validator.FieldLevel) bool {
	return ValidateTaskPriority(fl.Field().String()) == nil
}

func validateTaskStatus(fl validator.FieldLevel) bool {
	return ValidateTaskStatus(fl.Field().String()) == nil
}

func validateTag(fl validator.FieldLevel) bool {
	return ValidateTag(fl.Field().String()) == nil
}

// SanitizeText sanitizes text input by trimming whitespace and removing control characters
func SanitizeText(text string) string {
	text = strings.TrimSpace(text)

	var sanitized strings.Builder
	for _, r := range text {
		if unicode.IsControl(r) && r != '\n' && r != '\t' {
			continue
		}
		sanitized.WriteRune(r)
	}

	return sanitized.String()
}

// ValidateTaskPriority validates a task priority (H, M or L)
func ValidateTaskPriority(value string) error {
	switch models.TaskPriority(value) {
	case models.TaskPriorityHigh, models.TaskPriorityMedium, models.TaskPriorityLow:
		return nil
	default:
		return fmt.Errorf("invalid priority: %s (must be 'H', 'M', or 'L')", value)
	}
}

// ValidateTaskStatus validates a task status string value
func ValidateTaskStatus(value string) error {
	switch models.TaskStatus(value) {
	case models.TaskStatusPending, models.TaskStatusCompleted, models.TaskStatusDeleted,
		models.TaskStatusWaiting, models.TaskStatusRecurring:
		return nil
	default:
		return fmt.Errorf("invalid status: %s (must be 'pending', 'completed', 'deleted', 'waiting', or 'recurring')", value)
	}
}

// ValidateTag checks that a tag is a single non-empty word.
// Tags are passed through to timewarrior on the backend, where whitespace splits them.
func ValidateTag(value string) error {
	if value == "" {
		return fmt.Errorf("tag is required")
	}
	if len(value) > MaxTagLength {
		return fmt.Errorf("tag exceeds maximum length of %d characters", MaxTagLength)
	}
	for _, r := range value {
		if unicode.IsSpace(r) || unicode.IsControl(r) {
			return fmt.Errorf("invalid tag %q: must not contain whitespace", value)
		}
	}
	return nil
}

// FirstError renders the first validation failure of err in a short, user-facing form
func FirstError(err error) string {
	if validationErrors, ok := err.(validator.ValidationErrors); ok && len(validationErrors) > 0 {
		fe := validationErrors[0]
		return fmt.Sprintf("Validation failed: %s failed on '%s'", fe.Field(), fe.Tag())
	}
	return "Validation failed"
}
