// Package tnote contains the [Notification] envelope,
// which carries a value, an error, or a completion marker
// through the stream plumbing as an ordinary value.
//
// Wrapping terminal signals lets them be cached, delayed,
// and paired with other inputs without tearing anything down early.
package tnote

import (
	"errors"
	"fmt"
)

// Kind identifies which signal a [Notification] carries.
type Kind uint8

const (
	// The zero Kind is deliberately invalid,
	// so that a zero Notification is never mistaken for a value.
	invalidKind Kind = iota

	ValueKind
	ErrorKind
	CompleteKind
)

func (k Kind) String() string {
	switch k {
	case ValueKind:
		return "Value"
	case ErrorKind:
		return "Error"
	case CompleteKind:
		return "Complete"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// Notification is one signal from a stream of T:
// a value, an error, or completion.
//
// Once a stream produces an error or completion notification,
// it produces nothing further.
type Notification[T any] struct {
	Kind Kind

	// Set only when Kind is ValueKind.
	Val T

	// Set only when Kind is ErrorKind.
	Err error
}

// Value returns a value notification holding v.
func Value[T any](v T) Notification[T] {
	return Notification[T]{Kind: ValueKind, Val: v}
}

// Error returns an error notification holding err.
// Error panics if err is nil.
func Error[T any](err error) Notification[T] {
	if err == nil {
		panic(errors.New("BUG: tnote.Error called with nil error"))
	}
	return Notification[T]{Kind: ErrorKind, Err: err}
}

// Complete returns a completion notification.
func Complete[T any]() Notification[T] {
	return Notification[T]{Kind: CompleteKind}
}

func (n Notification[T]) IsValue() bool    { return n.Kind == ValueKind }
func (n Notification[T]) IsError() bool    { return n.Kind == ErrorKind }
func (n Notification[T]) IsComplete() bool { return n.Kind == CompleteKind }

// IsTerminal reports whether n is an error or completion,
// after which no further notifications may follow.
func (n Notification[T]) IsTerminal() bool {
	return n.Kind == ErrorKind || n.Kind == CompleteKind
}

// Valid reports whether n was built by one of the constructors
// (as opposed to being the zero value).
func (n Notification[T]) Valid() bool {
	return n.Kind >= ValueKind && n.Kind <= CompleteKind
}

func (n Notification[T]) String() string {
	switch n.Kind {
	case ValueKind:
		return fmt.Sprintf("Value(%v)", n.Val)
	case ErrorKind:
		return fmt.Sprintf("Error(%v)", n.Err)
	default:
		return n.Kind.String()
	}
}

// Map converts a value notification with fn,
// and passes error and completion notifications through unchanged.
func Map[T, U any](n Notification[T], fn func(T) U) Notification[U] {
	switch n.Kind {
	case ValueKind:
		return Value(fn(n.Val))
	case ErrorKind:
		return Notification[U]{Kind: ErrorKind, Err: n.Err}
	case CompleteKind:
		return Complete[U]()
	default:
		panic(fmt.Errorf("BUG: cannot map notification with %s", n.Kind))
	}
}
