// Package errors defines AppError, the coded error carried from the catalogue
// and storage layers up to HTTP responses, CLI exit messages and the Kafka
// dead-letter topic.
package errors

import (
	"errors"
	"strings"
)

// AppError pairs a stable code with a message. Detail names the offending
// input (a slug, an object key); Cause is the wrapped error.
//
//	return errors.New(errors.ErrCodeInvalidSlug, "slug does not match pattern").WithDetail(slug)
//	return errors.Wrap(err, errors.ErrCodeStorageError, "put object")
type AppError struct {
	Code    ErrorCode
	Message string
	Detail  string
	Cause   error
}

// Error renders "[CODE] message: detail: cause", omitting empty parts.
func (e *AppError) Error() string {
	parts := make([]string, 0, 3)
	parts = append(parts, "["+string(e.Code)+"] "+e.Message)
	if e.Detail != "" {
		parts = append(parts, e.Detail)
	}
	if e.Cause != nil {
		parts = append(parts, e.Cause.Error())
	}
	return strings.Join(parts, ": ")
}

func (e *AppError) Unwrap() error { return e.Cause }

// Is matches any *AppError with the same code, so sentinels survive
// WithDetail and WithCause copies.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	return ok && t != nil && e != nil && t.Code == e.Code
}

func (e *AppError) HTTPStatus() int { return HTTPStatusForCode(e.Code) }

// WithDetail returns a copy with Detail set. Nil-safe.
func (e *AppError) WithDetail(detail string) *AppError {
	if e == nil {
		return nil
	}
	c := *e
	c.Detail = detail
	return &c
}

// WithCause returns a copy with Cause set. Nil-safe.
func (e *AppError) WithCause(err error) *AppError {
	if e == nil {
		return nil
	}
	c := *e
	c.Cause = err
	return &c
}

func New(code ErrorCode, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

// Wrap returns nil for a nil err. CodeUnknown inherits the code of the first
// AppError in err's chain.
func Wrap(err error, code ErrorCode, message string) *AppError {
	if err == nil {
		return nil
	}
	if code == CodeUnknown {
		code = GetCode(err)
	}
	return &AppError{Code: code, Message: message, Cause: err}
}

// IsCode reports whether any AppError in err's chain has code.
func IsCode(err error, code ErrorCode) bool {
	return anyInChain(err, func(ae *AppError) bool { return ae.Code == code })
}

// IsNotFound reports whether any AppError in err's chain maps to 404.
func IsNotFound(err error) bool {
	return anyInChain(err, func(ae *AppError) bool { return HTTPStatusForCode(ae.Code) == 404 })
}

// Permanent reports whether retrying the operation that produced err cannot
// help: bad input, an unknown page or a malformed payload. Consumers
// dead-letter these at once instead of backing off.
func Permanent(err error) bool {
	return anyInChain(err, func(ae *AppError) bool { return permanentCodes[ae.Code] })
}

func anyInChain(err error, match func(*AppError) bool) bool {
	for err != nil {
		var ae *AppError
		if !errors.As(err, &ae) {
			return false
		}
		if match(ae) {
			return true
		}
		err = ae.Cause
	}
	return false
}

// GetCode returns the code of the first AppError in err's chain, CodeOK for
// nil and CodeUnknown for foreign errors.
func GetCode(err error) ErrorCode {
	if err == nil {
		return CodeOK
	}
	var ae *AppError
	if errors.As(err, &ae) {
		return ae.Code
	}
	return CodeUnknown
}

// HTTPStatus maps err to a response status; foreign errors are 500.
func HTTPStatus(err error) int {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae.HTTPStatus()
	}
	return 500
}

var (
	Is = errors.Is
	As = errors.As
)
