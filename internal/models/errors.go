// Package models defines the data structures for the award import engine.
package models

import (
	"errors"
	"strings"
)

// Common errors
var (
	ErrMissingName         = errors.New("name is required")
	ErrColumnCountMismatch = errors.New("column count mismatch")
	ErrNoHeaderRow         = errors.New("no valid headers found")
	ErrNameColumnUnmapped  = errors.New("required column \"Name\" not found in headers")
	ErrFileTooLarge        = errors.New("file exceeds maximum size")
	ErrEmptyFile           = errors.New("file is empty")
)

// NormalizeTopStatus converts the many spellings of the Top-50 flag to a
// TopStatus. Anything outside the accepted set is "no".
func NormalizeTopStatus(status string) TopStatus {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case "ja", "yes", "1", "true", "top 50", "top50":
		return TopStatusYes
	default:
		return TopStatusNo
	}
}

// NormalizeCategory maps free-form category spellings onto the standard
// category names. Unrecognized values pass through unchanged.
func NormalizeCategory(category string) string {
	lower := strings.ToLower(strings.TrimSpace(category))

	switch {
	case strings.Contains(lower, "startup"), strings.Contains(lower, "start-up"):
		return "Startup"
	case strings.Contains(lower, "gov"), strings.Contains(lower, "verwaltung"):
		return "Gov"
	case strings.Contains(lower, "tech"), strings.Contains(lower, "technologie"):
		return "Tech"
	}

	return strings.TrimSpace(category)
}
