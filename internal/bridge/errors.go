package bridge

import (
	"errors"
	"fmt"
)

// Kind classifies a bridge failure.
type Kind int

const (
	KindInternal Kind = iota
	KindUnsupportedShape
	KindUnsupportedDirective
	KindUnsupportedIntent
	KindMissingSlot
	KindBrokerUnavailable
)

func (k Kind) String() string {
	switch k {
	case KindUnsupportedShape:
		return "unsupported_shape"
	case KindUnsupportedDirective:
		return "unsupported_directive"
	case KindUnsupportedIntent:
		return "unsupported_intent"
	case KindMissingSlot:
		return "missing_slot"
	case KindBrokerUnavailable:
		return "broker_unavailable"
	default:
		return "internal"
	}
}

// Code is the machine-readable errorType carried by the error envelope.
func (k Kind) Code() string {
	switch k {
	case KindUnsupportedShape:
		return "INVALID_REQUEST_SHAPE"
	case KindUnsupportedDirective:
		return "INVALID_DIRECTIVE"
	case KindUnsupportedIntent:
		return "INVALID_INTENT"
	case KindMissingSlot:
		return "MISSING_SLOT"
	case KindBrokerUnavailable:
		return "BROKER_UNAVAILABLE"
	default:
		return "INTERNAL_ERROR"
	}
}

// Error is the typed failure returned by the translators and the dispatcher.
type Error struct {
	Kind      Kind
	Namespace string // UnsupportedDirective
	Name      string // directive or intent name
	Slot      string // MissingSlot
	Err       error  // underlying cause, if any
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindUnsupportedShape:
		return "unsupported request shape: expected a \"directive\" or \"request\" object"
	case KindUnsupportedDirective:
		return fmt.Sprintf("unsupported directive %s.%s", e.Namespace, e.Name)
	case KindUnsupportedIntent:
		return fmt.Sprintf("unsupported intent %s", e.Name)
	case KindMissingSlot:
		return fmt.Sprintf("missing required slot %q", e.Slot)
	case KindBrokerUnavailable:
		return fmt.Sprintf("broker unavailable: %v", e.Err)
	default:
		if e.Err != nil {
			return fmt.Sprintf("internal error: %v", e.Err)
		}
		return "internal error"
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches another *Error by kind, so errors.Is(err, ErrMissingSlot) works.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// Sentinels for errors.Is comparisons.
var (
	ErrUnsupportedShape     = &Error{Kind: KindUnsupportedShape}
	ErrUnsupportedDirective = &Error{Kind: KindUnsupportedDirective}
	ErrUnsupportedIntent    = &Error{Kind: KindUnsupportedIntent}
	ErrMissingSlot          = &Error{Kind: KindMissingSlot}
	ErrBrokerUnavailable    = &Error{Kind: KindBrokerUnavailable}
	ErrInternal             = &Error{Kind: KindInternal}
)

func unsupportedDirective(namespace, name string) *Error {
	return &Error{Kind: KindUnsupportedDirective, Namespace: namespace, Name: name}
}

func unsupportedIntent(name string) *Error {
	return &Error{Kind: KindUnsupportedIntent, Name: name}
}

func missingSlot(slot string) *Error {
	return &Error{Kind: KindMissingSlot, Slot: slot}
}

func brokerUnavailable(err error) *Error {
	return &Error{Kind: KindBrokerUnavailable, Err: err}
}

func internalError(format string, args ...interface{}) *Error {
	return &Error{Kind: KindInternal, Err: fmt.Errorf(format, args...)}
}

// KindOf reports the kind of err. Anything that is not a bridge error is internal.
func KindOf(err error) Kind {
	var be *Error
	if errors.As(err, &be) {
		return be.Kind
	}
	return KindInternal
}
