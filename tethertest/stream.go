package tethertest

import (
	"testing"

	"github.com/gordian-engine/tether/internal/ttest"
	"github.com/gordian-engine/tether/tnote"
	"github.com/gordian-engine/tether/tpubsub"
)

// ReceiveNotes waits for n notifications starting at s,
// failing the test if any does not arrive in time.
//
// It returns the notifications and the node following the last one,
// which is nil if the last notification was terminal.
// The test fails if a terminal notification arrives before the n-th.
func ReceiveNotes[T any](t testing.TB, s *tpubsub.Stream[T], n int) (
	[]tnote.Notification[T], *tpubsub.Stream[T],
) {
	t.Helper()

	out := make([]tnote.Notification[T], 0, n)
	for len(out) < n {
		_ = ttest.ReceiveSoon(t, s.Ready)
		out = append(out, s.Note)
		if s.Note.IsTerminal() && len(out) < n {
			t.Fatalf("stream terminated after %d of %d notifications: %v", len(out), n, out)
		}
		s = s.Next
	}
	return out, s
}

// NoNotes asserts that nothing is published at s within a short window.
func NoNotes[T any](t testing.TB, s *tpubsub.Stream[T]) {
	t.Helper()
	ttest.NotSending(t, s.Ready)
}

// Values returns a value notification for each of vs,
// for writing expected sequences concisely.
func Values[T any](vs ...T) []tnote.Notification[T] {
	out := make([]tnote.Notification[T], len(vs))
	for i, v := range vs {
		out[i] = tnote.Value(v)
	}
	return out
}

// ValuesThenComplete is like [Values] with a trailing completion.
func ValuesThenComplete[T any](vs ...T) []tnote.Notification[T] {
	return append(Values(vs...), tnote.Complete[T]())
}
