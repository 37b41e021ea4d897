// Package errors provides standardized error types and helpers for the latticemill codebase.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common cases
var (
	// ErrNotFound indicates a resource was not found
	ErrNotFound = errors.New("not found")
	// ErrInvalidInput indicates invalid input or validation failure
	ErrInvalidInput = errors.New("invalid input")
	// ErrAlreadyExists indicates a resource already exists
	ErrAlreadyExists = errors.New("already exists")
	// ErrUnsupportedFormat indicates an unimplemented lattice file format
	ErrUnsupportedFormat = errors.New("unsupported format")
	// ErrOverlap indicates two elements of a sequence occupy the same span
	ErrOverlap = errors.New("elements overlap")
	// ErrMissingMapping indicates a canonical name has no foreign translation
	ErrMissingMapping = errors.New("missing mapping entry")
	// ErrCycle indicates a cyclic lattice reference
	ErrCycle = errors.New("cyclic lattice reference")
)

// NotFoundError represents a resource not found error with context
type NotFoundError struct {
	Resource string // Type of resource (e.g., "element", "lattice", "catalog entry")
	ID       string // Identifier of the resource
	Err      error  // Underlying error, if any
}

func (e *NotFoundError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

func (e *NotFoundError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrNotFound
}

// ValidationError represents an input validation error with context
type ValidationError struct {
	Field   string // Field that failed validation (e.g., "root", "lattices[ring]")
	Message string // Human-readable error message
	Err     error  // Underlying error, if any
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

func (e *ValidationError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrInvalidInput
}

// UnsupportedFormatError is raised when a format identifier has no handler.
type UnsupportedFormatError struct {
	Format    string // Requested format identifier (e.g., "madx")
	Operation string // "parse" or "emit", if the format exists but lacks the direction
}

func (e *UnsupportedFormatError) Error() string {
	if e.Operation != "" {
		return fmt.Sprintf("format %q does not support %s", e.Format, e.Operation)
	}
	return fmt.Sprintf("unknown lattice file format: %q", e.Format)
}

func (e *UnsupportedFormatError) Unwrap() error {
	return ErrUnsupportedFormat
}

// OverlapError is raised when two adjacent elements of an absolute-position
// sequence overlap beyond the geometry tolerance. It is fatal.
type OverlapError struct {
	Element  string  // Name of the offending element
	Position float64 // Its absolute center position
}

func (e *OverlapError) Error() string {
	return fmt.Sprintf("element %q at position %g overlaps the previous element", e.Element, e.Position)
}

func (e *OverlapError) Unwrap() error {
	return ErrOverlap
}

// MissingMappingError is raised on emission when a canonical type or
// attribute has no translation into the requested foreign vocabulary.
type MissingMappingError struct {
	Kind   string // "type" or "attribute"
	Name   string // Canonical name without a translation
	Format string // Target format identifier
}

func (e *MissingMappingError) Error() string {
	return fmt.Sprintf("no %s %s mapping for canonical %s %q", e.Format, e.Kind, e.Kind, e.Name)
}

func (e *MissingMappingError) Unwrap() error {
	return ErrMissingMapping
}

// CycleError is raised when lattice definitions reference each other cyclically.
type CycleError struct {
	Lattice string // Name of the lattice where the cycle was detected
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("cyclic lattice reference through %q", e.Lattice)
}

func (e *CycleError) Unwrap() error {
	return ErrCycle
}

// Helper functions for creating common errors

// NewNotFound creates a NotFoundError
func NewNotFound(resource, id string) *NotFoundError {
	return &NotFoundError{
		Resource: resource,
		ID:       id,
	}
}

// NewValidation creates a ValidationError
func NewValidation(field, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}

// NewUnsupportedFormat creates an UnsupportedFormatError
func NewUnsupportedFormat(format string) *UnsupportedFormatError {
	return &UnsupportedFormatError{Format: format}
}

// NewOverlap creates an OverlapError
func NewOverlap(element string, position float64) *OverlapError {
	return &OverlapError{
		Element:  element,
		Position: position,
	}
}

// NewMissingMapping creates a MissingMappingError
func NewMissingMapping(kind, name, format string) *MissingMappingError {
	return &MissingMappingError{
		Kind:   kind,
		Name:   name,
		Format: format,
	}
}

// NewCycle creates a CycleError
func NewCycle(lattice string) *CycleError {
	return &CycleError{Lattice: lattice}
}

// Wrap adds context to an error. If err is nil, returns nil.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf adds formatted context to an error. If err is nil, returns nil.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	message := fmt.Sprintf(format, args...)
	return fmt.Errorf("%s: %w", message, err)
}

// Is wraps errors.Is for convenience
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As wraps errors.As for convenience
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
