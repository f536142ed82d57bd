package types

import "fmt"

// Error type labels used in the JSON error envelope.
const (
	TypeUnauthenticated   = "unauthenticated"
	TypeForbidden         = "forbidden"
	TypeValidation        = "validation"
	TypeNotFound          = "not_found"
	TypeInvalidTransition = "invalid_transition"
	TypeConflict          = "conflict"
	TypeInternal          = "internal"
)

type CustomError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Type    string `json:"type"`
}

func (e *CustomError) Error() string {
	return fmt.Sprintf("%d: %s [type: %s]", e.Code, e.Message, e.Type)
}

// Unauthenticated rejects a request that carries no credentials.
func Unauthenticated(message string) *CustomError {
	return &CustomError{Code: 401, Message: message, Type: TypeUnauthenticated}
}

// InvalidToken covers a token that is present but fails verification.
// These answer 400 rather than 401; clients distinguish a missing
// session from a broken one.
func InvalidToken(message string) *CustomError {
	return &CustomError{Code: 400, Message: message, Type: TypeUnauthenticated}
}

func Forbidden(message string) *CustomError {
	return &CustomError{Code: 403, Message: message, Type: TypeForbidden}
}

func Validation(message string) *CustomError {
	return &CustomError{Code: 400, Message: message, Type: TypeValidation}
}

func NotFound(message string) *CustomError {
	return &CustomError{Code: 404, Message: message, Type: TypeNotFound}
}

// InvalidTransition marks an illegal report status change.
func InvalidTransition(message string) *CustomError {
	return &CustomError{Code: 400, Message: message, Type: TypeInvalidTransition}
}

// Conflict marks a duplicate resource or a lost concurrent update.
func Conflict(message string) *CustomError {
	return &CustomError{Code: 409, Message: message, Type: TypeConflict}
}

func Internal(message string) *CustomError {
	return &CustomError{Code: 500, Message: message, Type: TypeInternal}
}
