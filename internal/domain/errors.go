// Package domain contains the verse collection types and business errors.
// Errors here never name an HTTP status; adapters map them to status codes,
// toasts or exit codes.
package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinels matched with errors.Is. Every error type below unwraps to one.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrValidation   = errors.New("validation failed")
	ErrUnauthorized = errors.New("unauthorized")

	// ErrUnavailable means the store or the image service cannot be used right now.
	ErrUnavailable = errors.New("unavailable")
)

// NotFoundError names the missing entity, usually a quotation by ID.
type NotFoundError struct {
	Entity string
	ID     string
}

func NewNotFoundError(entity, id string) error {
	return &NotFoundError{Entity: entity, ID: id}
}

func (e *NotFoundError) Error() string {
	if e.ID == "" {
		return e.Entity + " not found"
	}

	return fmt.Sprintf("%s with id %q not found", e.Entity, e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// ConflictError refuses an operation the current state does not allow, such
// as a second concurrent import. Reason is shown to the operator.
type ConflictError struct {
	Entity string
	Reason string
}

func NewConflictError(entity, reason string) error {
	return &ConflictError{Entity: entity, Reason: reason}
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s conflict: %s", e.Entity, e.Reason)
}

func (e *ConflictError) Unwrap() error { return ErrConflict }

// ValidationError rejects operator input. Message is shown verbatim; Problems
// lists the individual defects of an imported document, one per entry.
type ValidationError struct {
	Field    string
	Message  string
	Problems []string
}

func NewValidationError(field, message string, problems ...string) error {
	return &ValidationError{Field: field, Message: message, Problems: problems}
}

func (e *ValidationError) Error() string {
	var b strings.Builder

	b.WriteString("validation failed")

	if e.Field != "" {
		b.WriteString(" for ")
		b.WriteString(e.Field)
	}

	b.WriteString(": ")
	b.WriteString(e.Message)

	if len(e.Problems) > 0 {
		fmt.Fprintf(&b, " (%s)", strings.Join(e.Problems, "; "))
	}

	return b.String()
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// UnauthorizedError refuses an admin action. Message tells the operator why.
type UnauthorizedError struct {
	Message string
}

func NewUnauthorizedError(message string) error {
	return &UnauthorizedError{Message: message}
}

func (e *UnauthorizedError) Error() string {
	if e.Message == "" {
		return "unauthorized"
	}

	return "unauthorized: " + e.Message
}

func (e *UnauthorizedError) Unwrap() error { return ErrUnauthorized }

// UnavailableError reports a dependency that cannot serve requests.
type UnavailableError struct {
	Service string
	Reason  string
}

func NewUnavailableError(service, reason string) error {
	return &UnavailableError{Service: service, Reason: reason}
}

func (e *UnavailableError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("service %q unavailable", e.Service)
	}

	return fmt.Sprintf("service %q unavailable: %s", e.Service, e.Reason)
}

func (e *UnavailableError) Unwrap() error { return ErrUnavailable }

func IsNotFound(err error) bool     { return errors.Is(err, ErrNotFound) }
func IsConflict(err error) bool     { return errors.Is(err, ErrConflict) }
func IsValidation(err error) bool   { return errors.Is(err, ErrValidation) }
func IsUnauthorized(err error) bool { return errors.Is(err, ErrUnauthorized) }
func IsUnavailable(err error) bool  { return errors.Is(err, ErrUnavailable) }

// UserMessage returns the text meant for the operator: the Chinese message of
// a validation, unauthorized or conflict error, or the error text otherwise.
func UserMessage(err error) string {
	var (
		validation   *ValidationError
		unauthorized *UnauthorizedError
		conflict     *ConflictError
	)

	switch {
	case errors.As(err, &validation):
		return validation.Message
	case errors.As(err, &unauthorized) && unauthorized.Message != "":
		return unauthorized.Message
	case errors.As(err, &conflict):
		return conflict.Reason
	default:
		return err.Error()
	}
}
