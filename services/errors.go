package services

import (
	"errors"
	"fmt"
)

var (
	ErrNotAuthenticated     = errors.New("user not authenticated")
	ErrUserNotFound         = errors.New("user not found")
	ErrPersistenceRead      = errors.New("persistence read failure")
	ErrPersistenceWrite     = errors.New("persistence write failure")
	ErrUnknownPlan          = errors.New("unknown plan")
	ErrNotificationNotFound = errors.New("notification not found")
	ErrInvalidRequest       = errors.New("invalid request")
)

func readFailure(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrPersistenceRead, op, err)
}

func writeFailure(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrPersistenceWrite, op, err)
}
