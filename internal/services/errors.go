package services

import "errors"

type ErrorCode string

const (
	ErrorInvalid       ErrorCode = "invalid"
	ErrorNotFound      ErrorCode = "not_found"
	ErrorConflict      ErrorCode = "conflict"
	ErrorBadGateway    ErrorCode = "bad_gateway"
	ErrorUnprocessable ErrorCode = "unprocessable"
)

type ServiceError struct {
	Code    ErrorCode
	Message string
}

func (e *ServiceError) Error() string { return e.Message }

func NewInvalidError(msg string) error  { return &ServiceError{Code: ErrorInvalid, Message: msg} }
func NewNotFoundError(msg string) error { return &ServiceError{Code: ErrorNotFound, Message: msg} }
func NewConflictError(msg string) error { return &ServiceError{Code: ErrorConflict, Message: msg} }

func NewBadGatewayError(msg string) error {
	return &ServiceError{Code: ErrorBadGateway, Message: msg}
}

// NewUnprocessableError marks payloads that arrived but could not be parsed,
// as distinct from upstream transport failures.
func NewUnprocessableError(msg string) error {
	return &ServiceError{Code: ErrorUnprocessable, Message: msg}
}

func AsServiceError(err error) (*ServiceError, bool) {
	var se *ServiceError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}
