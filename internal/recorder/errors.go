package recorder

import (
	"errors"
	"fmt"
)

// Kind classifies failures surfaced to the operator.
type Kind string

const (
	// KindTransport covers network failures, timeouts and undecodable bodies.
	KindTransport Kind = "transport"
	// KindService means the service answered but rejected the request, either
	// with a non-2xx code or with a status other than success.
	KindService Kind = "service"
	// KindValidation is raised locally before any request is sent.
	KindValidation Kind = "validation"
)

// Error is the single error type returned by the client and the action layer.
type Error struct {
	Kind    Kind
	Op      string
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.Op == "" {
		return msg
	}
	if e.Status != 0 {
		return fmt.Sprintf("%s: %s (http %d)", e.Op, msg, e.Status)
	}
	return fmt.Sprintf("%s: %s", e.Op, msg)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Transport wraps a failure that happened on the way to or from the service.
func Transport(op string, err error) *Error {
	return &Error{Kind: KindTransport, Op: op, Err: err}
}

// Service reports an application-level rejection.
func Service(op, message string) *Error {
	if message == "" {
		message = "service reported an error"
	}
	return &Error{Kind: KindService, Op: op, Message: message}
}

// Validation reports a request rejected locally.
func Validation(op, message string) *Error {
	return &Error{Kind: KindValidation, Op: op, Message: message}
}

// KindOf extracts the kind from err, or "" when err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

func IsTransport(err error) bool  { return KindOf(err) == KindTransport }
func IsService(err error) bool    { return KindOf(err) == KindService }
func IsValidation(err error) bool { return KindOf(err) == KindValidation }
