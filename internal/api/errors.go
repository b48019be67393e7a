// Package api defines the error and response conventions shared by all
// HTTP handlers: structured errors with machine-readable codes, a JSON
// writer, and pagination helpers.
package api

import "net/http"

// Machine-readable error codes surfaced in response bodies.
const (
	CodeUnauthorized   = "UNAUTHORIZED"
	CodeForbidden      = "FORBIDDEN"
	CodeValidation     = "VALIDATION"
	CodeInternal       = "INTERNAL"
	CodeEmailTaken     = "EMAIL_TAKEN"
	CodeUsernameTaken  = "USERNAME_TAKEN"
	CodeBadCredentials = "INVALID_CREDENTIALS"
	CodeBadRefresh     = "INVALID_REFRESH_TOKEN"
	CodeUserNotFound   = "USER_NOT_FOUND"
	CodeFridgeNotFound = "FRIDGE_NOT_FOUND"
	CodeInviteNotFound = "INVITE_NOT_FOUND"
	CodeAlreadyMember  = "ALREADY_IN_FRIDGE"
	CodeNoActiveFridge = "NO_ACTIVE_FRIDGE"
	CodeCodeExhausted  = "CODE_EXHAUSTED"
)

// Error is a structured API error carrying the HTTP status and a
// machine-readable code alongside the human message.
type Error struct {
	Status  int
	Code    string
	Message string
}

func (e *Error) Error() string { return e.Message }

// NewError builds an *Error; services use it to signal request outcomes
// that handlers translate directly into responses.
func NewError(status int, message, code string) *Error {
	return &Error{Status: status, Code: code, Message: message}
}

// Unauthorized is the error returned for any failed identity resolution.
func Unauthorized() *Error {
	return NewError(http.StatusUnauthorized, "unauthorized", CodeUnauthorized)
}

// Validation signals a malformed request body or query.
func Validation(message string) *Error {
	return NewError(http.StatusBadRequest, message, CodeValidation)
}
