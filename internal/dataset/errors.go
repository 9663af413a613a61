package dataset

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrConfiguration marks invalid parameters such as ratios that do not sum to one.
	ErrConfiguration = errors.New("configuration error")
	// ErrNotFound marks a required directory or file that does not exist.
	ErrNotFound = errors.New("not found")
	// ErrLocked marks an output tree already in use by another run.
	ErrLocked = errors.New("output locked")
)

// Wrap builds an error message that includes stage context while tagging it with
// the provided marker so callers can classify it with errors.Is.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		if err != nil {
			return fmt.Errorf("%s: %w", detail, err)
		}
		return errors.New(detail)
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "dataset failure"
	}
	return strings.Join(parts, ": ")
}
