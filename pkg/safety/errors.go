package safety

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrorKind classifies seam failures so the screen can pick a message.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindNotConfigured
	KindUnreachable
	KindPermissionDenied
	KindRejected
	KindCanceled
	KindPartial
)

func (k ErrorKind) String() string {
	switch k {
	case KindNotConfigured:
		return "not configured"
	case KindUnreachable:
		return "service unreachable"
	case KindPermissionDenied:
		return "permission denied"
	case KindRejected:
		return "request rejected"
	case KindCanceled:
		return "canceled"
	case KindPartial:
		return "partially delivered"
	default:
		return "unknown error"
	}
}

// DispatchError is returned by EmergencyDispatch implementations.
type DispatchError struct {
	Kind ErrorKind
	Err  error
}

func (e *DispatchError) Error() string {
	if e.Err == nil {
		return "emergency dispatch: " + e.Kind.String()
	}
	return fmt.Sprintf("emergency dispatch: %s: %v", e.Kind, e.Err)
}

func (e *DispatchError) Unwrap() error { return e.Err }

// NewDispatchError builds a DispatchError. Context errors override kind: a
// cancel is KindCanceled and an expired deadline is KindUnreachable.
func NewDispatchError(kind ErrorKind, err error) *DispatchError {
	if k, ok := contextKind(err); ok {
		kind = k
	}
	return &DispatchError{Kind: kind, Err: err}
}

// AlertError is returned by ContactAlerter implementations. Failed lists the
// contacts that could not be reached.
type AlertError struct {
	Kind   ErrorKind
	Failed []string
	Err    error
}

func (e *AlertError) Error() string {
	var b strings.Builder
	b.WriteString("contact alert: ")
	b.WriteString(e.Kind.String())
	if len(e.Failed) > 0 {
		fmt.Fprintf(&b, " (%s)", strings.Join(e.Failed, ", "))
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *AlertError) Unwrap() error { return e.Err }

// NewAlertError builds an AlertError. Context errors override kind the same
// way NewDispatchError does.
func NewAlertError(kind ErrorKind, failed []string, err error) *AlertError {
	if k, ok := contextKind(err); ok {
		kind = k
	}
	return &AlertError{Kind: kind, Failed: failed, Err: err}
}

// KindOf reports the ErrorKind carried by err. Bare context errors map to
// KindCanceled or KindUnreachable; anything else unrecognised is KindUnknown.
func KindOf(err error) ErrorKind {
	if err == nil {
		return KindUnknown
	}
	var de *DispatchError
	if errors.As(err, &de) {
		return de.Kind
	}
	var ae *AlertError
	if errors.As(err, &ae) {
		return ae.Kind
	}
	if k, ok := contextKind(err); ok {
		return k
	}
	return KindUnknown
}

// Retryable reports whether asking the user to try again makes sense.
func Retryable(err error) bool {
	switch KindOf(err) {
	case KindNotConfigured, KindPermissionDenied:
		return false
	}
	return err != nil
}

// TimedOut reports whether err comes from an expired deadline.
func TimedOut(err error) bool {
	return errors.Is(err, context.DeadlineExceeded)
}

func contextKind(err error) (ErrorKind, bool) {
	switch {
	case errors.Is(err, context.Canceled):
		return KindCanceled, true
	case errors.Is(err, context.DeadlineExceeded):
		return KindUnreachable, true
	}
	return KindUnknown, false
}
