package errutil

import (
	"errors"
	"fmt"
)

type Detail struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type BaseError struct {
	Code    CoreStatus `json:"code"`
	Message string     `json:"message"`
	Details []Detail   `json:"details,omitempty"`
	Err     error      `json:"-"`
}

func (e BaseError) Status() CoreStatus {
	return e.Code
}

func (e BaseError) Unwrap() error {
	return e.Err
}

func (e BaseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

type Option func(*BaseError)

func WithDetails(details ...Detail) Option {
	return func(be *BaseError) { be.Details = details }
}

func WithErr(err error) Option {
	return func(be *BaseError) { be.Err = err }
}

func New(code CoreStatus, message string, opts ...Option) error {
	be := BaseError{Code: code, Message: message}
	for _, opt := range opts {
		opt(&be)
	}
	return be
}

func BadRequest(msg string, options ...Option) error {
	return New(StatusBadRequest, msg, options...)
}

// ValidationFailed reports a missing or invalid field by name.
func ValidationFailed(msg, field string, options ...Option) error {
	options = append(options, WithDetails(Detail{Field: field, Message: msg}))
	return New(StatusValidationFailed, msg, options...)
}

func Unauthorized(msg string, options ...Option) error {
	return New(StatusUnauthorized, msg, options...)
}

func NotFound(msg string, options ...Option) error {
	return New(StatusNotFound, msg, options...)
}

func Conflict(msg string, options ...Option) error {
	return New(StatusConflict, msg, options...)
}

func UnsupportedMediaType(msg string, options ...Option) error {
	return New(StatusUnsupportedMediaType, msg, options...)
}

func Internal(msg string, options ...Option) error {
	return New(StatusInternal, msg, options...)
}

// IsConflict reports whether err carries the conflict status, letting batch
// callers treat "already exists" as a skip instead of a failure.
func IsConflict(err error) bool {
	var be BaseError
	return errors.As(err, &be) && be.Code == StatusConflict
}

// IsNotFound reports whether err carries the not-found status.
func IsNotFound(err error) bool {
	var be BaseError
	return errors.As(err, &be) && be.Code == StatusNotFound
}
