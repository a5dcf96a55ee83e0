package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Ingestion errors
	ErrWorkbookUnreadable     = errors.New("workbook unreadable")
	ErrMissingTimestampColumn = errors.New("timestamp column missing")
	ErrInvalidBucketWidth     = errors.New("invalid bucket width")
	ErrNoColumnsMatched       = errors.New("no requested columns matched")
)

// Error constructors with context
func NewMissingTimestampError(sheet, column string) error {
	return fmt.Errorf("%w: sheet %q has no %q column", ErrMissingTimestampColumn, sheet, column)
}

func NewNoColumnsMatchedError(requested []string) error {
	return fmt.Errorf("%w: %v", ErrNoColumnsMatched, requested)
}

func NewBucketWidthError(token string, reason string) error {
	return fmt.Errorf("%w %q: %s", ErrInvalidBucketWidth, token, reason)
}

// Error checking helpers
func IsNoColumnsMatched(err error) bool {
	return errors.Is(err, ErrNoColumnsMatched)
}

func IsIngestionError(err error) bool {
	return errors.Is(err, ErrWorkbookUnreadable) ||
		errors.Is(err, ErrMissingTimestampColumn)
}
