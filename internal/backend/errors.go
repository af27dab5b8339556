package backend

import (
	"errors"
	"fmt"
)

// Sentinels for errors.Is checks against the typed errors below.
var (
	ErrUnsupportedService = errors.New("unsupported synonym suggestion service")
	ErrConstruction       = errors.New("backend construction failed")
	ErrInvocation         = errors.New("backend invocation failed")
	ErrEmptyWord          = errors.New("word must not be empty")
)

// UnsupportedServiceError reports an identifier no registry recognises.
type UnsupportedServiceError struct {
	Service string
	// Family is set when a single family's registry rejected the id.
	Family Family
	// Suggestion is the closest registered identifier, if any is close.
	Suggestion string
}

func (e *UnsupportedServiceError) Error() string {
	msg := fmt.Sprintf("unsupported synonym suggestion service %q", e.Service)
	if e.Family != "" {
		msg = fmt.Sprintf("%s in %s family", msg, e.Family)
	}
	if e.Suggestion != "" {
		msg = fmt.Sprintf("%s (did you mean %q?)", msg, e.Suggestion)
	}
	return msg
}

func (e *UnsupportedServiceError) Is(target error) bool {
	return target == ErrUnsupportedService
}

// ConstructionError wraps a failure to build a backend instance.
type ConstructionError struct {
	Service string
	Err     error
}

func (e *ConstructionError) Error() string {
	return fmt.Sprintf("construct %s backend: %v", e.Service, e.Err)
}

func (e *ConstructionError) Unwrap() error { return e.Err }

func (e *ConstructionError) Is(target error) bool {
	return target == ErrConstruction
}

// InvocationError wraps a failed Suggest call on a bound backend.
type InvocationError struct {
	Service string
	// Op names the failing step, e.g. "request" or "decode".
	Op string
	// StatusCode is the HTTP status, if the failure came from a response.
	StatusCode int
	Err        error
}

func (e *InvocationError) Error() string {
	base := fmt.Sprintf("%s %s: %v", e.Service, e.Op, e.Err)
	if e.StatusCode != 0 {
		base = fmt.Sprintf("%s (HTTP %d)", base, e.StatusCode)
	}
	return base
}

func (e *InvocationError) Unwrap() error { return e.Err }

func (e *InvocationError) Is(target error) bool {
	return target == ErrInvocation
}

// NewInvocationError builds an InvocationError, lifting the status code out
// of err when it came from an HTTP response.
func NewInvocationError(service, op string, err error) *InvocationError {
	ie := &InvocationError{Service: service, Op: op, Err: err}
	var se *StatusError
	if errors.As(err, &se) {
		ie.StatusCode = se.Code
	}
	return ie
}

// IsUnsupported checks if err reports an unknown service identifier.
func IsUnsupported(err error) bool { return errors.Is(err, ErrUnsupportedService) }

// IsConstruction checks if err reports a backend that could not be built.
func IsConstruction(err error) bool { return errors.Is(err, ErrConstruction) }

// IsInvocation checks if err reports a failed backend call.
func IsInvocation(err error) bool { return errors.Is(err, ErrInvocation) }
