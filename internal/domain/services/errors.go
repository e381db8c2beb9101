package services

import (
	"errors"
	"fmt"

	"github.com/bimakw/amm-calculator/internal/domain/decmath"
)

var (
	// ErrInvalidInput matches every *InputError
	ErrInvalidInput     = errors.New("invalid input")
	ErrDivisionByZero   = decmath.ErrDivisionByZero
	ErrNegativeInput    = errors.New("must not be negative")
	ErrInvalidFee       = errors.New("fee must be in [0, 1)")
	ErrInvalidPrecision = decmath.ErrInvalidPrecision
	ErrInvalidSlippage  = errors.New("slippage must be 0-10000 basis points")
)

// InputError reports which precondition of a calculation was violated.
type InputError struct {
	Field string
	Err   error
}

func (e *InputError) Error() string {
	return fmt.Sprintf("invalid %s: %v", e.Field, e.Err)
}

func (e *InputError) Unwrap() error {
	return e.Err
}

func (e *InputError) Is(target error) bool {
	return target == ErrInvalidInput
}

func inputError(field string, err error) error {
	return &InputError{Field: field, Err: err}
}
