package tpubsub

import (
	"context"
	"fmt"

	"github.com/gordian-engine/tether/tnote"
)

// Stream is a linked list of event-driven notifications.
// The list has a single writer and many readers.
// Readers can each consume the list at their own pace.
//
// After a terminal notification (error or completion) is published,
// Next stays nil: nothing can follow a terminal notification.
//
// If readers do not actively consume the list,
// the node they observe will never be garbage collected,
// which is a memory leak.
type Stream[T any] struct {
	Ready chan struct{}
	Next  *Stream[T]
	Note  tnote.Notification[T]
}

// NewStream returns an initialized pubsub stream.
func NewStream[T any]() *Stream[T] {
	return &Stream[T]{
		Ready: make(chan struct{}),
	}
}

// Publish assigns s's notification and,
// unless n is terminal, initializes s.Next.
// Then s.Ready is closed, notifying any observers that
// s.Note can now be safely read.
//
// If Publish is called twice for the same s, Publish panics.
// Publish also panics if n is the zero Notification.
func (s *Stream[T]) Publish(n tnote.Notification[T]) {
	if !n.Valid() {
		panic(fmt.Errorf("BUG: attempted to publish invalid notification %s", n.Kind))
	}

	s.Note = n
	if !n.IsTerminal() {
		s.Next = NewStream[T]()
	}
	close(s.Ready)
}

// Published reports whether s.Ready has been closed,
// without blocking.
func (s *Stream[T]) Published() bool {
	select {
	case <-s.Ready:
		return true
	default:
		return false
	}
}

// Last follows s through already-published non-terminal nodes
// and returns the last published node,
// or s itself if s has not been published.
//
// Last does not block.
// The result may be stale as soon as it is returned,
// if the writer is concurrently publishing.
func (s *Stream[T]) Last() *Stream[T] {
	if !s.Published() {
		return s
	}
	for s.Next != nil && s.Next.Published() {
		s = s.Next
	}
	return s
}

// RunChannelToStream starts a background goroutine
// that reads notifications from ch and publishes them to the returned Stream.
//
// The returned done channel is closed when the goroutine stops,
// which will happen on context cancellation,
// after a terminal notification has been published,
// or if the given channel is closed.
// A channel closed without a terminal notification
// leaves the stream's current node unpublished.
func RunChannelToStream[T any](ctx context.Context, ch <-chan tnote.Notification[T]) (
	s *Stream[T], done <-chan struct{},
) {
	s = NewStream[T]()
	doneCh := make(chan struct{})

	go runChannelToStream(ctx, ch, s, doneCh)

	return s, doneCh
}

func runChannelToStream[T any](
	ctx context.Context,
	ch <-chan tnote.Notification[T],
	s *Stream[T],
	done chan<- struct{},
) {
	defer close(done)

	for {
		select {
		case <-ctx.Done():
			return

		case n, ok := <-ch:
			if !ok {
				return
			}
			s.Publish(n)
			if n.IsTerminal() {
				return
			}
			s = s.Next
		}
	}
}
