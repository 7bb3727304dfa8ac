package service

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound signals that a referenced entity does not exist.
	// It is never silently treated as success.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateAnswer signals that the author already answered the question
	ErrDuplicateAnswer = errors.New("author has already answered this question")

	// ErrQuestionClosed signals that the question no longer accepts answers
	ErrQuestionClosed = errors.New("question is not open for answers")
)

// ValidationError reports input rejected before any mutation took place
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func validationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// IsValidation reports whether err is a validation error
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
