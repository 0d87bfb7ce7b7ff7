package errx

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a failure for routing and logging. Values mirror the
// degraded-response branches of the orchestrator.
type Kind string

const (
	KindBadInput             Kind = "bad_input"
	KindRateLimitExceeded    Kind = "rate_limit_exceeded"
	KindGeneratorTimeout     Kind = "generator_timeout"
	KindGeneratorUnavailable Kind = "generator_unavailable"
	KindGeneratorRateLimited Kind = "generator_rate_limited"
	KindTypeMismatch         Kind = "type_mismatch"
	KindStoreUnavailable     Kind = "store_unavailable"
	KindInternal             Kind = "internal"
)

const (
	// SystemErrorMessage is a user-facing fallback when internal errors occur.
	SystemErrorMessage = "internal server error"
	// StoreErrorMessage describes backing-store failures.
	StoreErrorMessage = "shared store operation failed"
	// StoreNotFoundMessage describes a missing key in the backing store.
	StoreNotFoundMessage = "key not found in shared store"
)

// AppError wraps an underlying error with a kind, HTTP status and safe message.
// Message never carries profile fields or raw internal detail.
type AppError struct {
	Err     error
	Kind    Kind
	Status  int
	Message string
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

// Unwrap exposes the underlying error for errors.Is / errors.As support.
func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError with the provided information.
func New(err error, kind Kind, status int, message string) *AppError {
	return &AppError{
		Err:     err,
		Kind:    kind,
		Status:  status,
		Message: message,
	}
}

// Is reports whether the target matches the underlying error or the AppError itself.
func (e *AppError) Is(target error) bool {
	if t, ok := target.(*AppError); ok {
		return e.Kind == t.Kind
	}
	return errors.Is(e.Err, target)
}

// As allows casting to AppError or the wrapped error in a chain.
func (e *AppError) As(target any) bool {
	if t, ok := target.(**AppError); ok {
		*t = e
		return true
	}
	return errors.As(e.Err, target)
}

// KindOf extracts the Kind from an error chain, defaulting to KindInternal.
func KindOf(err error) Kind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// RateLimitExceeded builds the caller-side throttling error.
func RateLimitExceeded(subject string) *AppError {
	return New(nil, KindRateLimitExceeded, http.StatusTooManyRequests,
		fmt.Sprintf("rate limit exceeded for %s", subject))
}

// BadInput flags a caller-side validation fault.
func BadInput(err error, message string) *AppError {
	return New(err, KindBadInput, http.StatusBadRequest, message)
}

// GeneratorFailure wraps an answer-generator fault with its specific kind.
func GeneratorFailure(err error, kind Kind) *AppError {
	return New(err, kind, http.StatusBadGateway, "answer generation failed")
}

// TypeMismatch flags a criterion whose stored value cannot be coerced for the
// requested operator. The matcher treats the criterion as failed.
func TypeMismatch(criterionType, operator string) *AppError {
	return New(nil, KindTypeMismatch, http.StatusUnprocessableEntity,
		fmt.Sprintf("criterion %s does not support numeric operator %s on non-numeric value", criterionType, operator))
}
