// Package tethertest contains fixtures for testing code built on package tether.
package tethertest

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gordian-engine/tether/internal/ttest"
	"github.com/gordian-engine/tether/tnote"
)

// ControlledSource is a single-use source driven directly by a test.
//
// Its notification channel is unbuffered,
// so a call to Send returns only once the subscriber has received the notification.
// That lets a test interleave data and attachment changes deterministically.
type ControlledSource[T any] struct {
	notes chan tnote.Notification[T]

	subscribed   atomic.Bool
	subscribedCh chan struct{}

	canceled chan struct{}
}

// NewControlledSource returns a ControlledSource ready for one subscriber.
func NewControlledSource[T any]() *ControlledSource[T] {
	return &ControlledSource[T]{
		notes:        make(chan tnote.Notification[T]),
		subscribedCh: make(chan struct{}),
		canceled:     make(chan struct{}),
	}
}

// Subscribe implements tether.Source.
// It panics if called more than once.
func (s *ControlledSource[T]) Subscribe(ctx context.Context) <-chan tnote.Notification[T] {
	if !s.subscribed.CompareAndSwap(false, true) {
		panic(errors.New("BUG: ControlledSource subscribed more than once"))
	}
	close(s.subscribedCh)

	go func() {
		<-ctx.Done()
		close(s.canceled)
	}()

	return s.notes
}

// Subscribed returns a channel that is closed once Subscribe has been called.
func (s *ControlledSource[T]) Subscribed() <-chan struct{} {
	return s.subscribedCh
}

// Canceled returns a channel that is closed
// once the subscriber's context is done.
func (s *ControlledSource[T]) Canceled() <-chan struct{} {
	return s.canceled
}

// Send delivers n to the subscriber,
// failing the test if it is not received in time.
func (s *ControlledSource[T]) Send(t testing.TB, n tnote.Notification[T]) {
	t.Helper()
	ttest.SendSoon(t, s.notes, n)
}

// SendValues sends a value notification for each of vs, in order.
func (s *ControlledSource[T]) SendValues(t testing.TB, vs ...T) {
	t.Helper()
	for _, v := range vs {
		s.Send(t, tnote.Value(v))
	}
}

// NotReceiving offers n to the subscriber for a short window
// and fails the test if it is received.
// Use it to show that a subscriber has stopped reading.
func (s *ControlledSource[T]) NotReceiving(t testing.TB, n tnote.Notification[T]) {
	t.Helper()

	timer := time.NewTimer(20 * time.Millisecond)
	defer timer.Stop()

	select {
	case s.notes <- n:
		t.Fatalf("subscriber unexpectedly received %v", n)
	case <-timer.C:
		// Okay.
	}
}

// Drain receives from ch until it is closed,
// failing the test if any receive takes too long.
func Drain[T any](t testing.TB, ch <-chan tnote.Notification[T]) []tnote.Notification[T] {
	t.Helper()

	var out []tnote.Notification[T]
	for {
		n, ok := ttest.ReceiveOrClosedSoon(t, ch)
		if !ok {
			return out
		}
		out = append(out, n)
	}
}
