// Package apperr defines the application error taxonomy.  Every domain
// failure carries a stable numeric code alongside the HTTP status so that
// clients can branch on the code without parsing messages.  Handlers never
// write error envelopes themselves; they return an *Error (or any error)
// and the central handler in handler.go converts it into the JSON envelope.
package apperr

import "fmt"

// Code is a stable numeric error code exposed to API clients.
type Code int

const (
	// User-related errors
	CodeUserNotFound         Code = 1000
	CodeUserAlreadyExists    Code = 1001
	CodeIncorrectCredentials Code = 1002
	CodeInvalidToken         Code = 1005
	CodeEmailNotFound        Code = 1006

	// Address-related errors
	CodeAddressNotFound      Code = 1100
	CodeAddressDoesNotBelong Code = 1102

	// Product-related errors
	CodeProductNotFound  Code = 2000
	CodeInvalidProductID Code = 2003

	// Brand / category errors
	CodeBrandNotFound         Code = 2100
	CodeBrandAlreadyExists    Code = 2101
	CodeCategoryNotFound      Code = 2200
	CodeCategoryAlreadyExists Code = 2201

	// Order-related errors
	CodeOrderNotFound      Code = 4000
	CodeOrderInvalidStatus Code = 4003

	// Cart-related errors
	CodeCartEmpty        Code = 5000
	CodeCartItemNotFound Code = 5001

	// Review / wishlist errors
	CodeReviewNotFound   Code = 6000
	CodeWishlistNotFound Code = 7000

	// General errors
	CodeInternal            Code = 9000
	CodeBadRequest          Code = 9001
	CodeUnauthorized        Code = 9002
	CodeResourceNotFound    Code = 9003
	CodeUnprocessableEntity Code = 9004
)

// Error is a domain error with an HTTP status, a stable code and a
// human-readable message.
type Error struct {
	Status  int    `json:"-"`
	Code    Code   `json:"error_code"`
	Message string `json:"message"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("apperr %d: %s", e.Code, e.Message)
}

// New builds an *Error with an explicit status.
func New(status int, code Code, message string) *Error {
	return &Error{Status: status, Code: code, Message: message}
}

// BadRequest builds a 400 error.  Conflicts (duplicate resources) are
// reported as 400 as well, matching the public API contract.
func BadRequest(code Code, message string) *Error {
	return &Error{Status: 400, Code: code, Message: message}
}

// NotFound builds a 404 error.
func NotFound(code Code, message string) *Error {
	return &Error{Status: 404, Code: code, Message: message}
}

// Unauthorized builds a 401 error.
func Unauthorized(message string) *Error {
	return &Error{Status: 401, Code: CodeUnauthorized, Message: message}
}

// Forbidden builds a 403 error with the unauthorized code.
func Forbidden(message string) *Error {
	return &Error{Status: 403, Code: CodeUnauthorized, Message: message}
}

// Internal wraps an unexpected error.  The cause is not leaked to the
// client; callers should log it before (or instead of) returning.
func Internal(message string) *Error {
	return &Error{Status: 500, Code: CodeInternal, Message: message}
}
