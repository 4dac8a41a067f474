package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Not found errors
	ErrNotFound     = errors.New("resource not found")
	ErrCropNotFound = fmt.Errorf("%w: crop", ErrNotFound)
	ErrPlanNotFound = fmt.Errorf("%w: rotation plan", ErrNotFound)

	// Rotation engine errors
	ErrInvalidStrategy    = errors.New("strategy must implement the rotation strategy capability")
	ErrNoStrategySelected = errors.New("no strategy set, select a strategy first")

	// Input errors
	ErrInvalidNumeric = errors.New("value is not a finite number")
	ErrDuplicateCrop  = errors.New("crop with this name already exists")
	ErrInvalidCrop    = errors.New("invalid crop")
	ErrInvalidPlan    = errors.New("invalid rotation plan")

	// Access errors
	ErrForbidden = errors.New("access to resource denied")
)

// NewValidationError wraps a base validation error with the offending field
func NewValidationError(base error, field string, reason string) error {
	return fmt.Errorf("%w: %s %s", base, field, reason)
}

// NewNumericError reports which input failed numeric parsing
func NewNumericError(field string, raw string) error {
	return fmt.Errorf("%w: invalid %s value %q", ErrInvalidNumeric, field, raw)
}

// Error checking helpers
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidNumeric) ||
		errors.Is(err, ErrInvalidCrop) ||
		errors.Is(err, ErrInvalidPlan)
}
