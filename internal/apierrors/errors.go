package apierrors

import (
	"errors"
	"fmt"
)

// Standard client errors
var (
	ErrNoAccessToken = NewConfigError("no access token configured", nil)
	ErrCircuitOpen   = errors.New("circuit breaker is open")
)

// Kind categorizes errors surfaced by the client
type Kind string

const (
	KindConfig            Kind = "config"
	KindTransport         Kind = "transport"
	KindMalformedEnvelope Kind = "malformed envelope"
	KindDecode            Kind = "decode"
)

// Error is a client error with a kind and optional cause
type Error struct {
	Kind       Kind
	Message    string
	StatusCode int
	Err        error
}

func (e *Error) Error() string {
	msg := e.Message
	if e.StatusCode != 0 {
		msg = fmt.Sprintf("%s (HTTP %d)", msg, e.StatusCode)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, msg)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports a match when target is an *Error of the same kind
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

func NewConfigError(message string, err error) *Error {
	return &Error{Kind: KindConfig, Message: message, Err: err}
}

func NewTransportError(message string, statusCode int, err error) *Error {
	return &Error{Kind: KindTransport, Message: message, StatusCode: statusCode, Err: err}
}

func NewMalformedEnvelopeError(message string, err error) *Error {
	return &Error{Kind: KindMalformedEnvelope, Message: message, Err: err}
}

func NewDecodeError(message string, err error) *Error {
	return &Error{Kind: KindDecode, Message: message, Err: err}
}

// KindOf returns the kind of the first *Error in err's chain, or "" when there is none
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

func IsConfig(err error) bool            { return KindOf(err) == KindConfig }
func IsTransport(err error) bool         { return KindOf(err) == KindTransport }
func IsMalformedEnvelope(err error) bool { return KindOf(err) == KindMalformedEnvelope }
func IsDecode(err error) bool            { return KindOf(err) == KindDecode }

// StatusCode returns the HTTP status carried by a transport error, or 0
func StatusCode(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.StatusCode
	}
	return 0
}
