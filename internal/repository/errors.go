package repository

import (
	"errors"
	"strings"
)

// ErrNotFound is returned when a requested row does not exist. Callers wrap
// it with entity context, e.g. fmt.Errorf("project: %w", ErrNotFound).
var ErrNotFound = errors.New("not found")

// ErrDuplicate is returned when an insert violates a uniqueness constraint,
// such as assigning a user to a project twice.
var ErrDuplicate = errors.New("duplicate")

// isUniqueViolation detects SQLite uniqueness violations. The driver exposes
// them only through the error text.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "PRIMARY KEY constraint failed")
}
