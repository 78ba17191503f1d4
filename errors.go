package fractal

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors returned by the render pipeline.
var (
	// ErrInvalidConfig is wrapped by every *ValidationError.
	ErrInvalidConfig = errors.New("fractal: invalid configuration")

	// ErrResolutionTooLarge is returned before allocating a raw buffer whose
	// sample count exceeds the renderer's limit.
	ErrResolutionTooLarge = errors.New("fractal: requested resolution too large")

	// ErrUnknownKind is returned by LoadConfig for an unrecognized fractal kind.
	ErrUnknownKind = errors.New("fractal: unknown fractal kind")
)

// FieldError describes one invalid configuration field.
type FieldError struct {
	Field  string
	Reason string
}

func (e FieldError) Error() string {
	return e.Field + ": " + e.Reason
}

// ValidationError collects every problem found while validating a
// configuration. It matches ErrInvalidConfig under errors.Is.
type ValidationError struct {
	Subject string
	Fields  []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.Error()
	}
	return fmt.Sprintf("fractal: invalid %s: %s", e.Subject, strings.Join(parts, "; "))
}

// Unwrap exposes ErrInvalidConfig and every field problem.
func (e *ValidationError) Unwrap() []error {
	errs := make([]error, 0, len(e.Fields)+1)
	errs = append(errs, ErrInvalidConfig)
	for _, f := range e.Fields {
		errs = append(errs, f)
	}
	return errs
}

// validator accumulates field errors for a single subject.
type validator struct {
	subject string
	fields  []FieldError
}

func (v *validator) check(ok bool, field, format string, args ...any) {
	if !ok {
		v.fields = append(v.fields, FieldError{Field: field, Reason: fmt.Sprintf(format, args...)})
	}
}

func (v *validator) err() error {
	if len(v.fields) == 0 {
		return nil
	}
	return &ValidationError{Subject: v.subject, Fields: v.fields}
}
