package util

import (
	"errors"
	"fmt"
	"net/http"
)

// DomainError standardizes application errors.
type DomainError struct {
	Code       string
	Message    string
	HTTPStatus int
	Details    map[string]any
	Err        error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError constructs a DomainError.
func NewDomainError(code, message string, status int, details map[string]any) *DomainError {
	return &DomainError{Code: code, Message: message, HTTPStatus: status, Details: details}
}

func NewValidationError(message string, details map[string]any) error {
	return NewDomainError("VALIDATION_FAILED", message, http.StatusBadRequest, details)
}

func NewNotFound(resource string, details map[string]any) error {
	if details == nil {
		details = map[string]any{}
	}
	return &DomainError{
		Code:       "NOT_FOUND",
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
		Details:    details,
	}
}

// NewMissingField signals a required field absent from an upstream record.
// Distinct from the zero-default rule applied to optional numeric fields.
func NewMissingField(field string) error {
	return &DomainError{
		Code:       "MISSING_REQUIRED_FIELD",
		Message:    fmt.Sprintf("%s not found in record", field),
		HTTPStatus: http.StatusUnprocessableEntity,
	}
}

// NewAuthorizationError wraps an upstream credential rejection.
func NewAuthorizationError(message string, err error) error {
	return &DomainError{
		Code:       "AUTHORIZATION_FAILED",
		Message:    message,
		HTTPStatus: http.StatusUnauthorized,
		Err:        err,
	}
}

// NewLookupFailure wraps a failed secondary lookup. Callers are expected
// to degrade to a safe default rather than abort.
func NewLookupFailure(what string, err error) error {
	return &DomainError{
		Code:       "UPSTREAM_LOOKUP_FAILED",
		Message:    fmt.Sprintf("%s lookup failed", what),
		HTTPStatus: http.StatusBadGateway,
		Err:        err,
	}
}

// NewDeliveryError wraps a loyalty-platform rejection on send.
func NewDeliveryError(message string, err error) error {
	return &DomainError{
		Code:       "DELIVERY_FAILED",
		Message:    message,
		HTTPStatus: http.StatusBadGateway,
		Err:        err,
	}
}

func NewInternalError(err error) error {
	return &DomainError{
		Code:       "INTERNAL_ERROR",
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// ToDomainError converts generic errors to DomainError.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	return &DomainError{
		Code:       "INTERNAL_ERROR",
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

func MapError(err error) error {
	return ToDomainError(err)
}
