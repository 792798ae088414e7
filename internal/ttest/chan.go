// Package ttest contains helpers shared by tests across the module.
package ttest

import (
	"testing"
	"time"
)

// Generous enough for a loaded CI machine,
// short enough that a failing test does not hang for long.
const soonTimeout = 2 * time.Second

// How long NotSending waits before deciding nothing is coming.
const notSendingTimeout = 20 * time.Millisecond

// ReceiveSoon receives a value from ch,
// failing the test if nothing arrives in time.
func ReceiveSoon[T any](t testing.TB, ch <-chan T) T {
	t.Helper()

	timer := time.NewTimer(soonTimeout)
	defer timer.Stop()

	select {
	case v := <-ch:
		return v
	case <-timer.C:
		t.Fatalf("did not receive value within %s", soonTimeout)
	}

	panic("unreachable")
}

// ReceiveOrClosedSoon is like [ReceiveSoon],
// but also reports false if ch was closed.
func ReceiveOrClosedSoon[T any](t testing.TB, ch <-chan T) (T, bool) {
	t.Helper()

	timer := time.NewTimer(soonTimeout)
	defer timer.Stop()

	select {
	case v, ok := <-ch:
		return v, ok
	case <-timer.C:
		t.Fatalf("did not receive value or close within %s", soonTimeout)
	}

	panic("unreachable")
}

// SendSoon sends v on ch,
// failing the test if the send does not complete in time.
func SendSoon[T any](t testing.TB, ch chan<- T, v T) {
	t.Helper()

	timer := time.NewTimer(soonTimeout)
	defer timer.Stop()

	select {
	case ch <- v:
		// Okay.
	case <-timer.C:
		t.Fatalf("could not send value within %s", soonTimeout)
	}
}

// IsSending asserts that ch is immediately readable,
// for instance because it has already been closed.
func IsSending[T any](t testing.TB, ch <-chan T) {
	t.Helper()

	select {
	case <-ch:
		// Okay.
	default:
		t.Fatal("channel was not sending")
	}
}

// NotSending asserts that nothing is read from ch
// within a short window.
func NotSending[T any](t testing.TB, ch <-chan T) {
	t.Helper()

	timer := time.NewTimer(notSendingTimeout)
	defer timer.Stop()

	select {
	case <-ch:
		t.Fatal("channel was sending when it should not have been")
	case <-timer.C:
		// Okay.
	}
}
