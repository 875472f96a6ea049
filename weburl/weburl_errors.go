package weburl

import (
	"errors"
	"fmt"

	"github.com/google/urlkit/hostname"
	"github.com/google/urlkit/quoting"
)

// Kind classifies the failure reported by an Error.
type Kind int

const (
	// TypeMismatch reports an argument of an unacceptable shape, such as a
	// boolean query value.
	TypeMismatch Kind = iota + 1
	// InvalidArgument reports a structurally invalid value, such as a port
	// out of range or a relative path on a URL with an authority.
	InvalidArgument
	// InvalidHost reports a host containing characters RFC 3986 section
	// 3.2.2 forbids in registered names.
	InvalidHost
	// IDNA reports a hostname rejected by both IDNA 2008 and IDNA 2003.
	IDNA
	// MalformedPercent reports a "%" with no valid hex tail under strict
	// parsing. The default policy repairs such sequences instead.
	MalformedPercent
	// AmbiguousQuery reports both Query and QueryString passed to Build.
	AmbiguousQuery
)

func (k Kind) String() string {
	switch k {
	case TypeMismatch:
		return "type mismatch"
	case InvalidArgument:
		return "invalid argument"
	case InvalidHost:
		return "invalid host"
	case IDNA:
		return "IDNA error"
	case MalformedPercent:
		return "malformed percent sequence"
	case AmbiguousQuery:
		return "ambiguous query"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Error is the error type returned by constructors and derivation methods.
type Error struct {
	// Kind classifies the failure.
	Kind Kind
	// Component names the URL component the failure concerns, when known.
	Component string

	msg string
	err error
}

func (e *Error) Error() string {
	prefix := e.Kind.String()
	if e.Component != "" {
		prefix += " in " + e.Component
	}
	if e.msg != "" {
		return prefix + ": " + e.msg
	}
	if e.err != nil {
		return prefix + ": " + e.err.Error()
	}
	return prefix
}

func (e *Error) Unwrap() error { return e.err }

func errorf(kind Kind, component, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Component: component, msg: fmt.Sprintf(format, args...)}
}

// wrapHostError converts a hostname package error into an *Error with the
// matching kind.
func wrapHostError(err error) error {
	if err == nil {
		return nil
	}
	kind := InvalidHost
	if errors.Is(err, hostname.ErrIDNA) {
		kind = IDNA
	}
	return &Error{Kind: kind, Component: "host", err: err}
}

// wrapQuotingError converts a quoting package error into an *Error.
func wrapQuotingError(component string, err error) error {
	if err == nil {
		return nil
	}
	kind := InvalidArgument
	if errors.Is(err, quoting.ErrMalformedPercent) {
		kind = MalformedPercent
	}
	return &Error{Kind: kind, Component: component, err: err}
}
