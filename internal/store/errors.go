package store

import (
	"errors"
	"fmt"
)

// Error is a rejected repository operation.
type Error struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// Details contains additional context (ids, field names, quantities).
	Details map[string]string
}

// ErrorCode categorizes repository errors.
type ErrorCode string

const (
	// ErrCodeNotFound indicates the referenced record does not exist.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"

	// ErrCodeDuplicate indicates a product id or username is already taken.
	ErrCodeDuplicate ErrorCode = "DUPLICATE"

	// ErrCodeInvalidField indicates a field value is out of range or empty.
	ErrCodeInvalidField ErrorCode = "INVALID_FIELD"

	// ErrCodeInsufficientStock indicates a sale larger than the product's stock.
	ErrCodeInsufficientStock ErrorCode = "INSUFFICIENT_STOCK"

	// ErrCodeEmptyOrder indicates a checkout with no items.
	ErrCodeEmptyOrder ErrorCode = "EMPTY_ORDER"
)

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func newError(code ErrorCode, details map[string]string, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Details: details}
}

func hasCode(err error, code ErrorCode) bool {
	var se *Error
	if errors.As(err, &se) {
		return se.Code == code
	}
	return false
}

// IsNotFound returns true if err is a NOT_FOUND error.
func IsNotFound(err error) bool { return hasCode(err, ErrCodeNotFound) }

// IsDuplicate returns true if err is a DUPLICATE error.
func IsDuplicate(err error) bool { return hasCode(err, ErrCodeDuplicate) }

// IsInvalidField returns true if err is an INVALID_FIELD error.
func IsInvalidField(err error) bool { return hasCode(err, ErrCodeInvalidField) }

// IsInsufficientStock returns true if err is an INSUFFICIENT_STOCK error.
func IsInsufficientStock(err error) bool { return hasCode(err, ErrCodeInsufficientStock) }

// IsEmptyOrder returns true if err is an EMPTY_ORDER error.
func IsEmptyOrder(err error) bool { return hasCode(err, ErrCodeEmptyOrder) }

// FlushError reports a collection that could not be written to disk.
type FlushError struct {
	Path string
	Err  error
}

func (e *FlushError) Error() string {
	return fmt.Sprintf("flush %s: %v", e.Path, e.Err)
}

func (e *FlushError) Unwrap() error { return e.Err }

// IsFlushError returns true if err is or wraps a *FlushError.
func IsFlushError(err error) bool {
	var fe *FlushError
	return errors.As(err, &fe)
}
