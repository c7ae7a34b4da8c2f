package workflow

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrValidation marks malformed input: unknown statuses, missing
	// required fields, an empty blocked reason.
	ErrValidation = errors.New("validation error")
	// ErrSequence marks a transition attempted before prerequisite stages
	// completed. Callers retry once prior stages finish.
	ErrSequence = errors.New("prerequisite stages not completed")
	// ErrPermission marks a caller that is not authorized to mutate a card.
	ErrPermission = errors.New("permission denied")
	// ErrNotFound marks a missing workflow, card, or user.
	ErrNotFound = errors.New("not found")
)

// Wrap builds an error message that includes operation context while tagging
// it with the provided marker for later classification. The marker should be
// one of the exported sentinel errors above.
func Wrap(marker error, operation, message string, err error) error {
	detail := buildDetail(operation, message)
	if marker == nil {
		marker = ErrValidation
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

func buildDetail(operation, message string) string {
	parts := make([]string, 0, 2)
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "workflow failure"
	}
	return strings.Join(parts, ": ")
}
