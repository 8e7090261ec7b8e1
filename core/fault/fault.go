// Package fault defines the error taxonomy shared by the client and server
// halves of the dispatch core. Every error the core can produce is one of the
// typed errors below; failures raised by feature implementations are opaque
// business errors and pass through untouched.
package fault

import (
	"errors"
	"fmt"
)

// Side identifies which half of the wire a validation failure occurred on.
type Side string

const (
	SideClient Side = "client"
	SideServer Side = "server"
)

// Phase identifies which value failed validation.
type Phase string

const (
	PhaseInput    Phase = "input"
	PhaseOutput   Phase = "output"
	PhaseEnvelope Phase = "envelope"
)

// ConfigError reports missing or invalid setup. It is fatal at construction
// time and never produced during dispatch.
type ConfigError struct {
	Component string
	Reason    string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error in %s: %s", e.Component, e.Reason)
}

// AuthError reports a missing or invalid credential at call time.
// It is surfaced per call and never retried.
type AuthError struct {
	Reason string
}

func (e *AuthError) Error() string {
	return "authentication error: " + e.Reason
}

// ValidationError reports a value failing its schema check. Side and Phase
// identify where in the call path the check ran; Err carries the validator's
// description of the offending field.
type ValidationError struct {
	Feature string
	Method  string
	Side    Side
	Phase   Phase
	Err     error
}

func (e *ValidationError) Error() string {
	target := e.Feature
	if e.Method != "" {
		target = e.Feature + "." + e.Method
	}
	if target == "" {
		return fmt.Sprintf("%s-side %s validation failed: %v", e.Side, e.Phase, e.Err)
	}
	return fmt.Sprintf("%s-side %s validation failed for %s: %v", e.Side, e.Phase, target, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// NotFoundKind identifies what was missing during dispatch.
type NotFoundKind string

const (
	NotFoundFeature        NotFoundKind = "feature"
	NotFoundMethod         NotFoundKind = "method"
	NotFoundImplementation NotFoundKind = "implementation"
)

// NotFoundError reports an unknown feature, an undeclared method, or a
// declared method with no implementation binding. Always a caller or
// programmer error, never silently ignored.
type NotFoundError struct {
	Kind    NotFoundKind
	Feature string
	Method  string
}

func (e *NotFoundError) Error() string {
	switch e.Kind {
	case NotFoundFeature:
		return fmt.Sprintf("feature %q not found", e.Feature)
	case NotFoundMethod:
		return fmt.Sprintf("method %q not found", e.Method)
	default:
		return fmt.Sprintf("implementation for %s.%s not found", e.Feature, e.Method)
	}
}

// TransportError reports a non-success response or network failure from a
// cable, with enough context to identify the failed feature/method pair.
type TransportError struct {
	Feature string
	Method  string
	Status  int
	Err     error
}

func (e *TransportError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("transport error calling %s.%s: status %d: %v", e.Feature, e.Method, e.Status, e.Err)
	}
	return fmt.Sprintf("transport error calling %s.%s: %v", e.Feature, e.Method, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// IsConfig reports whether err is a ConfigError.
func IsConfig(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}

// IsAuth reports whether err is an AuthError.
func IsAuth(err error) bool {
	var ae *AuthError
	return errors.As(err, &ae)
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// AsValidation returns the ValidationError in err's chain, if any.
func AsValidation(err error) (*ValidationError, bool) {
	var ve *ValidationError
	ok := errors.As(err, &ve)
	return ve, ok
}

// IsNotFound reports whether err is a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// AsNotFound returns the NotFoundError in err's chain, if any.
func AsNotFound(err error) (*NotFoundError, bool) {
	var nf *NotFoundError
	ok := errors.As(err, &nf)
	return nf, ok
}

// IsTransport reports whether err is a TransportError.
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

// AsTransport returns the TransportError in err's chain, if any.
func AsTransport(err error) (*TransportError, bool) {
	var te *TransportError
	ok := errors.As(err, &te)
	return te, ok
}
