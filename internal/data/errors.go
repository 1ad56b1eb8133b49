package data

import (
	"errors"
	"fmt"
)

var (
	// ErrFileNotFound is returned by Load when the input CSV does not exist.
	ErrFileNotFound = errors.New("input file not found")
	// ErrColumnNotFound marks a schema mismatch: a configured column is absent.
	ErrColumnNotFound = errors.New("column does not exist")
	// ErrNoObservations means a statistic is undefined because every value is missing.
	ErrNoObservations = errors.New("no observed values")
	ErrMissingValues  = errors.New("column contains missing values")
	ErrLengthMismatch = errors.New("length mismatch")
	ErrNotNumeric     = errors.New("column is not numeric")
	ErrEmptySelection = errors.New("empty row selection")
)

// ColumnError carries the operation and column a failure happened on.
type ColumnError struct {
	Op      string
	Column  string
	Message string
	Cause   error
}

func (e *ColumnError) Error() string {
	if e.Column != "" {
		return fmt.Sprintf("%s failed on column '%s': %s", e.Op, e.Column, e.Message)
	}
	return fmt.Sprintf("%s failed: %s", e.Op, e.Message)
}

func (e *ColumnError) Unwrap() error {
	return e.Cause
}

func NewColumnNotFoundError(op, column string) *ColumnError {
	return &ColumnError{Op: op, Column: column, Message: ErrColumnNotFound.Error(), Cause: ErrColumnNotFound}
}

func NewNoObservationsError(op, column string) *ColumnError {
	return &ColumnError{Op: op, Column: column, Message: "every value is missing", Cause: ErrNoObservations}
}

func NewMissingValuesError(op, column string, count int) *ColumnError {
	return &ColumnError{
		Op:      op,
		Column:  column,
		Message: fmt.Sprintf("%d missing values", count),
		Cause:   ErrMissingValues,
	}
}

func NewNotNumericError(op, column string) *ColumnError {
	return &ColumnError{Op: op, Column: column, Message: ErrNotNumeric.Error(), Cause: ErrNotNumeric}
}
