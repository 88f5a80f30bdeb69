package domain

import (
	"errors"
	"fmt"
)

// Kind classifies failures the surrounding UI has to react to differently.
type Kind string

const (
	KindValidation  Kind = "validation"
	KindNotFound    Kind = "not_found"
	KindNetwork     Kind = "network"
	KindPayment     Kind = "payment"
	KindPersistence Kind = "persistence"
)

// Error is the typed failure surfaced by the cart, the meal builder and the
// checkout flow.
type Error struct {
	Kind    Kind
	Op      string
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = string(e.Kind)
	}
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same kind, so errors.Is(err, ErrNotFound) works
// for every not-found failure regardless of message.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind && t.Op == "" && t.Message == ""
}

var (
	ErrValidation  = &Error{Kind: KindValidation}
	ErrNotFound    = &Error{Kind: KindNotFound}
	ErrNetwork     = &Error{Kind: KindNetwork}
	ErrPayment     = &Error{Kind: KindPayment}
	ErrPersistence = &Error{Kind: KindPersistence}
)

func Validation(op, message string) error {
	return &Error{Kind: KindValidation, Op: op, Message: message}
}

func NotFound(op, message string) error {
	return &Error{Kind: KindNotFound, Op: op, Message: message}
}

func Network(op string, err error) error {
	return &Error{Kind: KindNetwork, Op: op, Message: "request failed", Err: err}
}

func Payment(op, message string) error {
	return &Error{Kind: KindPayment, Op: op, Message: message}
}

func Persistence(op string, err error) error {
	return &Error{Kind: KindPersistence, Op: op, Message: "local store failed", Err: err}
}

// KindOf returns the kind of the first *Error in err's chain, or "" when err
// carries none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// UserMessage is the text shown to the user for err: the typed message when
// there is one, the raw error otherwise.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	if err == nil {
		return ""
	}
	return err.Error()
}
