// Package errors provides standardized error types for table operations.
// TableError carries the failing operation, the column involved and a Kind
// so callers can branch with errors.Is against the Err* sentinels.
package errors

import (
	"fmt"
)

// Kind classifies a TableError.
type Kind int

const (
	// KindInternal is an unexpected failure inside an operation
	KindInternal Kind = iota
	// KindMissingColumn means a column required by a stage is absent
	KindMissingColumn
	// KindNoFillValue means an imputation rule had nothing to fill with
	KindNoFillValue
	// KindUnsupportedType means a column has an element type the operation cannot handle
	KindUnsupportedType
	// KindInvalidInput covers malformed arguments such as mismatched lengths
	KindInvalidInput
)

func (k Kind) String() string {
	switch k {
	case KindMissingColumn:
		return "missing column"
	case KindNoFillValue:
		return "no fill value"
	case KindUnsupportedType:
		return "unsupported type"
	case KindInvalidInput:
		return "invalid input"
	default:
		return "internal"
	}
}

// TableError represents standardized errors across all table operations
type TableError struct {
	Op      string // Operation name (e.g., "ParseDates", "Impute", "GroupBy")
	Column  string // Column name if applicable
	Kind    Kind
	Message string // Human-readable error description
	Cause   error  // Underlying error cause
}

// Error implements the error interface
func (e *TableError) Error() string {
	msg := e.Message
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	if e.Column != "" {
		return fmt.Sprintf("%s failed on column '%s': %s", e.Op, e.Column, msg)
	}
	return fmt.Sprintf("%s failed: %s", e.Op, msg)
}

// Unwrap returns the underlying cause for error wrapping support
func (e *TableError) Unwrap() error {
	return e.Cause
}

// Is matches on Kind alone, so any TableError compares equal to the
// sentinel of its kind.
func (e *TableError) Is(target error) bool {
	t, ok := target.(*TableError)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// Sentinels for errors.Is checks.
var (
	ErrMissingColumn   = &TableError{Kind: KindMissingColumn, Message: "column does not exist"}
	ErrNoFillValue     = &TableError{Kind: KindNoFillValue, Message: "no value to fill with"}
	ErrUnsupportedType = &TableError{Kind: KindUnsupportedType, Message: "unsupported type"}
	ErrInvalidInput    = &TableError{Kind: KindInvalidInput, Message: "invalid input"}
)

// NewColumnNotFoundError creates an error for operations that need a column the table lacks
func NewColumnNotFoundError(op, column string) *TableError {
	return &TableError{
		Op:      op,
		Column:  column,
		Kind:    KindMissingColumn,
		Message: "column does not exist",
	}
}

// NewNoFillValueError creates an error for imputation over a column with no usable values
func NewNoFillValueError(op, column string) *TableError {
	return &TableError{
		Op:      op,
		Column:  column,
		Kind:    KindNoFillValue,
		Message: "column has no non-missing values to derive a fill value from",
	}
}

// NewUnsupportedTypeError creates an error for unsupported data types
func NewUnsupportedTypeError(op, typeName string) *TableError {
	return &TableError{
		Op:      op,
		Kind:    KindUnsupportedType,
		Message: fmt.Sprintf("unsupported type: %s", typeName),
	}
}

// NewInvalidInputError creates an error for invalid operation inputs
func NewInvalidInputError(op, message string) *TableError {
	return &TableError{
		Op:      op,
		Kind:    KindInvalidInput,
		Message: message,
	}
}

// NewInternalError wraps an unexpected failure
func NewInternalError(op string, cause error) *TableError {
	return &TableError{
		Op:      op,
		Kind:    KindInternal,
		Message: "internal error occurred",
		Cause:   cause,
	}
}
