package service

import (
	"errors"
	"fmt"
)

// Error kinds returned by stores and services. Callers test them with errors.Is.
var (
	ErrValidation         = errors.New("validation failed")
	ErrNotFound           = errors.New("not found")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrAlreadyResolved    = errors.New("question already resolved")
	ErrExpired            = errors.New("question expired")
	ErrChannelUnavailable = errors.New("channel unavailable")
	ErrStore              = errors.New("store failure")
)

// StoreError wraps a driver failure so it matches both ErrStore and the cause
func StoreError(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrStore, op, err)
}

// validationError builds an ErrValidation with a user-facing reason
func validationError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
