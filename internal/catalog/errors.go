package catalog

import (
	"errors"
	"fmt"
)

// FailureKind classifies a failed request. Every error returned by the
// client is a *RequestError carrying exactly one of these kinds, so callers
// can branch on the taxonomy without string matching.
type FailureKind int

const (
	// KindUnknown covers any failure shape not covered below.
	KindUnknown FailureKind = iota

	// KindUnreachable means no HTTP response was received at all. This is
	// distinct from an error status: the request never completed.
	KindUnreachable

	// KindNotFound means the backend reported the resource does not exist.
	KindNotFound

	// KindValidation means the backend rejected the payload with a
	// field-keyed error body (a 422-style response).
	KindValidation

	// KindServer means the backend returned a 5xx status.
	KindServer
)

func (k FailureKind) String() string {
	switch k {
	case KindUnreachable:
		return "unreachable"
	case KindNotFound:
		return "not_found"
	case KindValidation:
		return "validation_rejected"
	case KindServer:
		return "server_fault"
	default:
		return "unknown"
	}
}

// RequestError is the discriminated failure result of a client call.
type RequestError struct {
	Kind    FailureKind
	Status  int               // HTTP status, 0 when no response was received
	Message string            // backend-supplied message, may be empty
	Fields  map[string]string // field-keyed errors on KindValidation
	Err     error             // underlying transport error, if any
}

func (e *RequestError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("catalog: %s: %s", e.Kind, e.Message)
	}
	if e.Err != nil {
		return fmt.Sprintf("catalog: %s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("catalog: %s (status %d)", e.Kind, e.Status)
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// KindOf extracts the failure kind from an error chain. Errors that did not
// originate from the client report KindUnknown.
func KindOf(err error) FailureKind {
	var re *RequestError
	if errors.As(err, &re) {
		return re.Kind
	}
	return KindUnknown
}

// FieldErrors returns the backend field errors attached to err, or nil.
func FieldErrors(err error) map[string]string {
	var re *RequestError
	if errors.As(err, &re) {
		return re.Fields
	}
	return nil
}

// IsNotFound reports whether err is a not-found rejection.
func IsNotFound(err error) bool {
	return KindOf(err) == KindNotFound
}
