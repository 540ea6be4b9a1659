// Package apperror carries the typed failure vocabulary of the stock core.
// Every rejected mutation surfaces as one of these codes with a message that
// names the exact quantities involved; internal errors (DB and the like) are
// never wrapped into this type and map to a generic 500 at the edge.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes.
const (
	CodeValidation              = "VALIDATION"
	CodeNotFound                = "NOT_FOUND"
	CodeInvalidState            = "INVALID_STATE"
	CodeAlreadyGenerated        = "ALREADY_GENERATED"
	CodeMissingRecipe           = "MISSING_RECIPE"
	CodeNoProduction            = "NO_PRODUCTION"
	CodeInsufficientLoosePieces = "INSUFFICIENT_LOOSE_PIECES"
	CodeInsufficientStock       = "INSUFFICIENT_STOCK"
	CodeExceedsRemaining        = "EXCEEDS_REMAINING"
	CodeReconciliationOverrun   = "RECONCILIATION_OVERRUN"
)

// Error is a typed domain failure.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *Error) Error() string {
	return e.Message
}

func newf(code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

func Validation(format string, args ...any) *Error {
	return newf(CodeValidation, format, args...)
}

func NotFound(format string, args ...any) *Error {
	return newf(CodeNotFound, format, args...)
}

func InvalidState(format string, args ...any) *Error {
	return newf(CodeInvalidState, format, args...)
}

func AlreadyGenerated(format string, args ...any) *Error {
	return newf(CodeAlreadyGenerated, format, args...)
}

func MissingRecipe(format string, args ...any) *Error {
	return newf(CodeMissingRecipe, format, args...)
}

func NoProduction(format string, args ...any) *Error {
	return newf(CodeNoProduction, format, args...)
}

func InsufficientLoosePieces(format string, args ...any) *Error {
	return newf(CodeInsufficientLoosePieces, format, args...)
}

func InsufficientStock(format string, args ...any) *Error {
	return newf(CodeInsufficientStock, format, args...)
}

func ExceedsRemaining(format string, args ...any) *Error {
	return newf(CodeExceedsRemaining, format, args...)
}

func ReconciliationOverrun(format string, args ...any) *Error {
	return newf(CodeReconciliationOverrun, format, args...)
}

// Code extracts the domain code from err, or "" if err is not a domain error.
func Code(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// IsCode reports whether err is a domain error with the given code.
func IsCode(err error, code string) bool {
	return Code(err) == code
}

// Status maps an error to the HTTP status the API layer responds with.
func Status(err error) int {
	switch Code(err) {
	case CodeValidation:
		return http.StatusBadRequest
	case CodeNotFound:
		return http.StatusNotFound
	case CodeInvalidState, CodeAlreadyGenerated:
		return http.StatusConflict
	case CodeMissingRecipe, CodeNoProduction, CodeInsufficientLoosePieces,
		CodeInsufficientStock, CodeExceedsRemaining, CodeReconciliationOverrun:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
