package services

import (
	"fmt"
	"strings"
)

// FieldError describes one invalid field in a request payload.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError reports malformed input as a structured, field-level error
// list. It is surfaced to the caller directly and never enters the provider
// fallback cascade.
type ValidationError struct {
	Fields []FieldError `json:"fields"`
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", f.Field, f.Message))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// ProviderError wraps a single failed provider call. The cascade recovers
// from these locally; they are logged per attempt but never surfaced.
type ProviderError struct {
	Provider string
	Model    string
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider %s (model %s): %v", e.Provider, e.Model, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// CompletionUnavailableError signals that the primary attempt and every
// eligible fallback failed. Reason carries the original (primary) error's
// message for diagnostics.
type CompletionUnavailableError struct {
	Reason string
}

func (e *CompletionUnavailableError) Error() string {
	return "completion unavailable: " + e.Reason
}
