package errors

import (
	stderrors "errors"
	"fmt"
)

// Category groups related error codes.
type Category string

const (
	CategoryConfig  Category = "config"
	CategoryPersist Category = "persist"
	CategoryCLI     Category = "cli"
)

// AppError is a structured error with a code, an explanation and a hint.
type AppError struct {
	// Code is a unique error identifier (e.g., "E101").
	Code string

	// Category is the error group.
	Category Category

	// Message is a short description of the error.
	Message string

	// Detail is a longer explanation specific to this occurrence.
	Detail string

	// Suggestion is a hint on how to fix the error.
	Suggestion string

	// Wrapped is the underlying error, if any.
	Wrapped error
}

// Error implements the error interface.
func (e *AppError) Error() string {
	msg := e.Message
	if e.Code != "" {
		msg = e.Code + ": " + msg
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Wrapped != nil {
		msg += ": " + e.Wrapped.Error()
	}
	return msg
}

// Unwrap returns the wrapped error for errors.Is/As support.
func (e *AppError) Unwrap() error {
	return e.Wrapped
}

// Is matches another AppError with the same code.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	return ok && t.Code != "" && t.Code == e.Code
}

// WithDetail adds an explanation of this occurrence.
func (e *AppError) WithDetail(d string) *AppError {
	e.Detail = d
	return e
}

// WithDetailf is WithDetail with formatting.
func (e *AppError) WithDetailf(format string, args ...any) *AppError {
	e.Detail = fmt.Sprintf(format, args...)
	return e
}

// WithSuggestion adds a fix suggestion to the error.
func (e *AppError) WithSuggestion(s string) *AppError {
	e.Suggestion = s
	return e
}

// Wrap wraps another error.
func (e *AppError) Wrap(err error) *AppError {
	e.Wrapped = err
	return e
}

// New creates an AppError from a registered error code.
func New(code string) *AppError {
	template, ok := registry[code]
	if !ok {
		return &AppError{Code: code, Message: "Unknown error"}
	}
	return &AppError{
		Code:       code,
		Category:   template.Category,
		Message:    template.Message,
		Suggestion: template.Suggestion,
	}
}

// Newf creates an uncoded AppError with a formatted message.
func Newf(category Category, format string, args ...any) *AppError {
	return &AppError{
		Category: category,
		Message:  fmt.Sprintf(format, args...),
	}
}

// FromError returns err as an AppError, wrapping it under code when it is
// not one already.
func FromError(err error, code string) *AppError {
	if err == nil {
		return nil
	}
	var ae *AppError
	if stderrors.As(err, &ae) {
		return ae
	}
	return New(code).Wrap(err)
}

// CodeOf returns the code of the first AppError in err's chain.
func CodeOf(err error) string {
	var ae *AppError
	if stderrors.As(err, &ae) {
		return ae.Code
	}
	return ""
}
