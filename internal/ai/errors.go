package ai

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput is returned when a request lacks required fields
	ErrInvalidInput = errors.New("invalid input")
	// ErrMissingTasks is returned when a plan response has no tasks
	ErrMissingTasks = errors.New("response has no tasks array")
)

// ParseError reports a model response that did not match the expected shape.
// It is recovered locally and never reaches the end user.
type ParseError struct {
	Kind string
	Raw  string
	err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse %s response: %v", e.Kind, e.err)
}

func (e *ParseError) Unwrap() error {
	return e.err
}

// IsParseError returns true if err is a ParseError
func IsParseError(err error) bool {
	var target *ParseError
	return errors.As(err, &target)
}
