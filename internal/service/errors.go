package service

import (
	"errors"
	"fmt"

	"github.com/phrazzld/realitycheck-api/internal/domain"
	"github.com/phrazzld/realitycheck-api/internal/store"
)

// Service-level sentinel errors. Callers match them with errors.Is; the API
// layer maps them to HTTP status codes.
var (
	// ErrDecisionNotFound indicates that the decision does not exist.
	// API layer should map this to HTTP 404 Not Found.
	ErrDecisionNotFound = errors.New("decision not found")

	// ErrGroupNotFound indicates that the decision group does not exist.
	// API layer should map this to HTTP 404 Not Found.
	ErrGroupNotFound = errors.New("group not found")

	// ErrGroupNameExists indicates that another group already uses the name.
	// API layer should map this to HTTP 409 Conflict.
	ErrGroupNameExists = errors.New("group name already exists")

	// ErrTemplateNotFound indicates that no template has the requested ID.
	ErrTemplateNotFound = errors.New("template not found")
)

// ServiceError wraps errors from the services with the failing operation.
type ServiceError struct {
	// Operation is the operation that failed (e.g., "create_decision")
	Operation string
	// Message is a human-readable description of the error
	Message string
	// Err is the underlying error that caused the failure
	Err error
}

// Error implements the error interface for ServiceError.
func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("service %s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("service %s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewServiceError wraps err with operation context. Known sentinel errors
// and validation errors are returned directly so that callers can match them
// without unwrapping.
func NewServiceError(operation, message string, err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, ErrDecisionNotFound), errors.Is(err, store.ErrDecisionNotFound):
		return ErrDecisionNotFound
	case errors.Is(err, ErrGroupNotFound), errors.Is(err, store.ErrGroupNotFound):
		return ErrGroupNotFound
	case errors.Is(err, ErrGroupNameExists), errors.Is(err, store.ErrGroupNameExists):
		return ErrGroupNameExists
	}

	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		return verr
	}

	return &ServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}
