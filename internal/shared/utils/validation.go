package utils

import (
	"errors"
	"fmt"
	"unicode/utf8"
)

// Size limits (in bytes)
const (
	MaxSnippetSize = 256 * 1024 // 256KB - largest snippet accepted by the API
	MaxMessageSize = 512 * 1024 // 512KB - single WebSocket message limit
)

var (
	ErrEmptySnippet   = errors.New("snippet is empty")
	ErrInvalidUTF8    = errors.New("snippet is not valid UTF-8")
	ErrSnippetTooLong = errors.New("snippet exceeds maximum size")
)

// SnippetValidator validates snippet text received from clients
type SnippetValidator struct {
	maxSize    int
	allowEmpty bool
}

// NewSnippetValidator creates a validator with the specified max size
func NewSnippetValidator(maxSize int, allowEmpty bool) *SnippetValidator {
	return &SnippetValidator{maxSize: maxSize, allowEmpty: allowEmpty}
}

// DefaultSnippetValidator returns a validator with the default limit that
// accepts empty snippets
func DefaultSnippetValidator() *SnippetValidator {
	return NewSnippetValidator(MaxSnippetSize, true)
}

// Validate checks size and encoding of a snippet
func (v *SnippetValidator) Validate(snippet string) error {
	if snippet == "" && !v.allowEmpty {
		return ErrEmptySnippet
	}
	if len(snippet) > v.maxSize {
		return fmt.Errorf("%w: %d bytes, limit %d", ErrSnippetTooLong, len(snippet), v.maxSize)
	}
	if !utf8.ValidString(snippet) {
		return ErrInvalidUTF8
	}
	return nil
}
