package cacheclient

import (
	"errors"
	"fmt"
)

// Kind classifies a failed remote operation.
type Kind int

const (
	// KindTransport covers network failures, timeouts and unexpected responses.
	KindTransport Kind = iota
	// KindValidation means the remote service rejected the request payload.
	KindValidation
	// KindNotFound means the key is absent at the remote service.
	KindNotFound
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	default:
		return "transport"
	}
}

// Error is the only error type returned by Client operations.
type Error struct {
	Kind Kind
	// Op names the remote operation ("list", "get", "delete", "clear", "create").
	Op string
	// Message is safe to show to an operator. For validation failures it is the
	// server-provided text, unchanged.
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return fmt.Sprintf("cache %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("cache %s failed", e.Op)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf reports the Kind of err if it wraps an *Error.
func KindOf(err error) (Kind, bool) {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Kind, true
	}
	return KindTransport, false
}

// IsNotFound reports whether err is a NotFound failure.
func IsNotFound(err error) bool {
	k, ok := KindOf(err)
	return ok && k == KindNotFound
}

// IsValidation reports whether err is a Validation failure.
func IsValidation(err error) bool {
	k, ok := KindOf(err)
	return ok && k == KindValidation
}

// NewValidationError builds a validation failure that never reached the network.
func NewValidationError(op, message string) *Error {
	return &Error{Kind: KindValidation, Op: op, Message: message}
}

func transportError(op string, err error) *Error {
	return &Error{Kind: KindTransport, Op: op, Message: fmt.Sprintf("Error %s cache data: %v", verb(op), err), Err: err}
}

// verb phrases op for operator-facing messages.
func verb(op string) string {
	switch op {
	case "list", "get":
		return "fetching"
	case "delete":
		return "deleting"
	case "clear":
		return "clearing"
	case "create":
		return "adding"
	default:
		return op
	}
}
