package apperrors

import "errors"

// Code classifies an error for callers and for HTTP mapping.
type Code string

const (
	CodeNotFound            Code = "not_found"
	CodeInvalidInput        Code = "invalid_input"
	CodeUpstreamUnavailable Code = "upstream_unavailable"
	CodeStateConflict       Code = "state_conflict"
	CodeInternal            Code = "internal"
)

type Error struct {
	Code    Code
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func NotFound(msg string) *Error {
	return &Error{Code: CodeNotFound, Message: msg}
}

func InvalidInput(msg string) *Error {
	return &Error{Code: CodeInvalidInput, Message: msg}
}

func UpstreamUnavailable(msg string) *Error {
	return &Error{Code: CodeUpstreamUnavailable, Message: msg}
}

func StateConflict(msg string) *Error {
	return &Error{Code: CodeStateConflict, Message: msg}
}

func Internal(msg string) *Error {
	return &Error{Code: CodeInternal, Message: msg}
}

// Is reports whether err carries the given code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// HTTPStatus maps an error to the status code handlers should respond with.
func HTTPStatus(err error) int {
	var e *Error
	if !errors.As(err, &e) {
		return 500
	}
	switch e.Code {
	case CodeNotFound:
		return 404
	case CodeInvalidInput:
		return 400
	case CodeStateConflict:
		return 409
	case CodeUpstreamUnavailable:
		return 502
	default:
		return 500
	}
}
