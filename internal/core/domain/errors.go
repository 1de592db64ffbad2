package domain

import (
	"errors"
	"fmt"
)

var (
	ErrAttemptNotFound = errors.New("match attempt not found")
	ErrInvalidInput    = errors.New("invalid input")
	ErrConfigInvalid   = errors.New("invalid scoring config")
	ErrTemporary       = errors.New("temporary failure")
)

// WrapError preserves typed semantic errors with operation context.
func WrapError(kind error, operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", operation, kind, err)
}

func IsKind(err error, kind error) bool {
	return errors.Is(err, kind)
}
