package torque

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnsupportedUnit    = errors.New("unsupported unit")
	ErrMalformedDuration  = errors.New("malformed duration")
	ErrMalformedNodeSpec  = errors.New("malformed node specification")
	ErrUnreadableDocument = errors.New("unreadable job document")
)

// UnsupportedUnitError names the offending memory unit and the supported set.
type UnsupportedUnitError struct {
	Value     string
	Unit      string
	Supported []string
}

func (e *UnsupportedUnitError) Error() string {
	return fmt.Sprintf("memory unit %q in %q not supported, use one of %s instead",
		e.Unit, e.Value, strings.Join(e.Supported, ", "))
}

func (e *UnsupportedUnitError) Is(target error) bool { return target == ErrUnsupportedUnit }

type MalformedDurationError struct {
	Value string
}

func (e *MalformedDurationError) Error() string {
	return fmt.Sprintf("malformed duration %q, expected hh:mm:ss", e.Value)
}

func (e *MalformedDurationError) Is(target error) bool { return target == ErrMalformedDuration }

// MalformedNodeSpecError carries the full specification and the segment
// that could not be parsed.
type MalformedNodeSpecError struct {
	Spec    string
	Segment string
	Reason  string
}

func (e *MalformedNodeSpecError) Error() string {
	if e.Segment == "" {
		return fmt.Sprintf("malformed node specification %q: %s", e.Spec, e.Reason)
	}
	return fmt.Sprintf("malformed node specification %q at %q: %s", e.Spec, e.Segment, e.Reason)
}

func (e *MalformedNodeSpecError) Is(target error) bool { return target == ErrMalformedNodeSpec }

type UnreadableDocumentError struct {
	Source string
	Err    error
}

func (e *UnreadableDocumentError) Error() string {
	if e.Source == "" {
		return fmt.Sprintf("error parsing xml: %v", e.Err)
	}
	return fmt.Sprintf("error parsing xml from %s: %v", e.Source, e.Err)
}

func (e *UnreadableDocumentError) Unwrap() error { return e.Err }

func (e *UnreadableDocumentError) Is(target error) bool { return target == ErrUnreadableDocument }
