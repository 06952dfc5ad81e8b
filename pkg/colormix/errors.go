package colormix

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedSpec is returned when a spec has fewer than three fields.
	ErrMalformedSpec = errors.New("malformed color spec")

	// ErrInvalidProportion is returned when the proportion is not an integer.
	ErrInvalidProportion = errors.New("invalid proportion")

	// ErrInvalidAlpha is returned when the alpha field is not an integer.
	ErrInvalidAlpha = errors.New("invalid alpha")
)

// Field names reported by SpecError.
const (
	FieldSpec        = "spec"
	FieldFirstColor  = "first color"
	FieldProportion  = "proportion"
	FieldSecondColor = "second color"
	FieldAlpha       = "alpha"
)

// SpecError describes which part of a color spec could not be used.
type SpecError struct {
	// Spec is the full input string.
	Spec string
	// Field is one of the Field* constants.
	Field string
	// Err is the underlying cause.
	Err error
}

// Error implements the error interface.
func (e *SpecError) Error() string {
	return fmt.Sprintf("color spec %q: %s: %v", e.Spec, e.Field, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *SpecError) Unwrap() error {
	return e.Err
}
