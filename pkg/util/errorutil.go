package util

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes surfaced to callers. Handlers and the command registry branch
// on these instead of matching message strings.
const (
	CodeValidation          = "VALIDATION_FAILED"
	CodeDuplicateQueueEntry = "DUPLICATE_QUEUE_ENTRY"
	CodeDuplicateOpenTicket = "DUPLICATE_OPEN_TICKET"
	CodePermissionDenied    = "PERMISSION_DENIED"
	CodeNotFound            = "NOT_FOUND"
	CodeAlreadyClosed       = "ALREADY_CLOSED"
	CodeProvisionFailure    = "PROVISION_FAILURE"
	CodeStoreUnavailable    = "STORE_UNAVAILABLE"
	CodeUnauthorized        = "UNAUTHORIZED"
	CodeConflict            = "CONFLICT"
	CodeInternal            = "INTERNAL_ERROR"
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
	return NewDomainError(CodeValidation, message, http.StatusBadRequest, details)
}

func NewDuplicateQueueEntry(category string) error {
	return NewDomainError(CodeDuplicateQueueEntry,
		"you are already waiting in the queue for this category",
		http.StatusConflict, map[string]any{"category": category})
}

func NewDuplicateOpenTicket(ticketID int64) error {
	return NewDomainError(CodeDuplicateOpenTicket,
		fmt.Sprintf("you already have an open ticket (#%d); close it before opening a new one", ticketID),
		http.StatusConflict, map[string]any{"ticket_id": ticketID})
}

func NewPermissionDenied(message string) error {
	return NewDomainError(CodePermissionDenied, message, http.StatusForbidden, nil)
}

func NewNotFound(resource string, details map[string]any) error {
	if details == nil {
		details = map[string]any{}
	}
	return &DomainError{
		Code:       CodeNotFound,
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
		Details:    details,
	}
}

func NewAlreadyClosed(ticketID int64) error {
	return NewDomainError(CodeAlreadyClosed,
		fmt.Sprintf("ticket #%d is already closed", ticketID),
		http.StatusConflict, map[string]any{"ticket_id": ticketID})
}

func NewProvisionFailure(err error) error {
	return &DomainError{
		Code:       CodeProvisionFailure,
		Message:    "failed to provision ticket channel; the request was returned to the queue",
		HTTPStatus: http.StatusBadGateway,
		Err:        err,
	}
}

func NewStoreUnavailable(err error) error {
	return &DomainError{
		Code:       CodeStoreUnavailable,
		Message:    "ticket store unavailable",
		HTTPStatus: http.StatusServiceUnavailable,
		Err:        err,
	}
}

func NewUnauthorized(message string) error {
	return NewDomainError(CodeUnauthorized, message, http.StatusUnauthorized, nil)
}

func NewConflict(message string, details map[string]any) error {
	return NewDomainError(CodeConflict, message, http.StatusConflict, details)
}

func NewInternalError(err error) error {
	return &DomainError{
		Code:       CodeInternal,
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// CodeOf extracts the error code, or CodeInternal for untyped errors.
func CodeOf(err error) string {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code
	}
	return CodeInternal
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
		Code:       CodeInternal,
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

func MapError(err error) error {
	return ToDomainError(err)
}
