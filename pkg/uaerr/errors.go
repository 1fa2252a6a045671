// Package uaerr defines the error taxonomy shared across the OPC UA
// client packages. Every package-level error wraps one of the Kinds
// below so callers can branch on failure class without parsing
// messages.
package uaerr

import (
	"errors"
	"fmt"
)

// Kind classifies a failure into one of the categories from the
// protocol's error handling design.
type Kind int

const (
	// Unknown is the zero value; KindOf returns it for plain errors
	// that never passed through New.
	Unknown Kind = iota

	// Transport covers connection refusal, timeouts, and truncated reads.
	Transport

	// Framing covers unknown message types, bad chunk flags, and
	// length mismatches.
	Framing

	// Crypto covers signature, decryption, padding, and certificate
	// validation failures.
	Crypto

	// Sequencing covers duplicate or doubly-rolled-over sequence numbers
	// and unexpected request ids.
	Sequencing

	// Service covers a ServiceFault or a bad envelope-level StatusCode.
	Service

	// Usage covers invalid caller input.
	Usage

	// Closed covers operations attempted on a closed channel, session,
	// or subscription.
	Closed
)

func (k Kind) String() string {
	switch k {
	case Transport:
		return "transport"
	case Framing:
		return "framing"
	case Crypto:
		return "crypto"
	case Sequencing:
		return "sequencing"
	case Service:
		return "service"
	case Usage:
		return "usage"
	case Closed:
		return "closed"
	default:
		return "unknown"
	}
}

// StatusCode is the OPC UA wire status code type. Defined here (rather
// than imported from pkg/ua) to keep uaerr dependency-free; pkg/ua
// defines its own StatusCode type and converts to this one.
type StatusCode uint32

// Error is the single tagged error type surfaced to callers.
type Error struct {
	Kind    Kind
	Message string
	Status  StatusCode // 0 when no wire StatusCode applies
	Cause   error
}

func (e *Error) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s: %s (status=0x%08X)", e.Kind, e.Message, uint32(e.Status))
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// New builds an Error of the given kind with a formatted message.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap builds an Error of the given kind around an existing cause.
func Wrap(kind Kind, cause error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// WithStatus attaches a wire StatusCode to a Service-kind error.
func WithStatus(status StatusCode, format string, args ...any) *Error {
	return &Error{Kind: Service, Message: fmt.Sprintf(format, args...), Status: status}
}

// TransportErr, FramingErr, CryptoErr, SequencingErr, UsageErr, and
// ClosedErr are convenience constructors matching the Kind constants.
func TransportErr(format string, args ...any) *Error { return New(Transport, format, args...) }
func FramingErr(format string, args ...any) *Error    { return New(Framing, format, args...) }
func CryptoErr(format string, args ...any) *Error     { return New(Crypto, format, args...) }
func SequencingErr(format string, args ...any) *Error { return New(Sequencing, format, args...) }
func UsageErr(format string, args ...any) *Error      { return New(Usage, format, args...) }
func ClosedErr(format string, args ...any) *Error     { return New(Closed, format, args...) }

// KindOf returns the Kind of err if it is (or wraps) an *Error, or
// Unknown otherwise.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Unknown
}

// Is reports whether err is an *Error of the given Kind.
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}
