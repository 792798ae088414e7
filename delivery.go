package tether

import (
	"context"

	"github.com/gordian-engine/tether/tnote"
	"github.com/gordian-engine/tether/tpubsub"
)

// Transformer applies a delivery policy to a data source.
//
// The attachment is bound when the Transformer is constructed
// (see [DeliverFirst], [DeliverLatest], and [DeliverReplay]);
// the source is bound when the Transformer is called,
// which subscribes to it immediately.
//
// Canceling ctx unsubscribes: every resource the delivery acquired
// is released, and the returned [*Delivery] reports Done.
type Transformer[T any] func(ctx context.Context, src Source[T]) *Delivery[T]

// Delivery is the result of applying a [Transformer].
type Delivery[T any] struct {
	// Output is the head of the delivered notification stream.
	// It holds zero or more values,
	// optionally followed by one error or completion.
	//
	// Any number of readers may walk Output from the head.
	Output *tpubsub.Stream[T]

	// Write position in Output.
	// Only touched by the goroutine that owns the delivery.
	tail *tpubsub.Stream[T]

	done chan struct{}
}

func newDelivery[T any]() *Delivery[T] {
	s := tpubsub.NewStream[T]()
	return &Delivery[T]{
		Output: s,
		tail:   s,
		done:   make(chan struct{}),
	}
}

// publish appends n to the output stream.
// Callers must not publish again after a terminal notification.
func (d *Delivery[T]) publish(n tnote.Notification[T]) {
	d.tail.Publish(n)
	d.tail = d.tail.Next
}

// Done returns a channel that is closed once the delivery has stopped
// and its subscription to the source has been canceled.
//
// A delivery stops after publishing a terminal notification,
// when its context is canceled,
// or when the attachment has ended in a state
// where nothing further could ever be delivered.
// In the last two cases Output is left without a terminal notification.
func (d *Delivery[T]) Done() <-chan struct{} {
	return d.done
}

// Wait blocks until the delivery has stopped.
func (d *Delivery[T]) Wait() {
	<-d.done
}

// Consume reads s from its current node,
// calling fn for every value in order.
//
// Consume returns nil once s completes,
// the source's error if s fails,
// or the cause of ctx's cancellation if that happens first.
func Consume[T any](ctx context.Context, s *tpubsub.Stream[T], fn func(T)) error {
	for {
		select {
		case <-ctx.Done():
			return context.Cause(ctx)
		case <-s.Ready:
		}

		switch s.Note.Kind {
		case tnote.ValueKind:
			fn(s.Note.Val)
			s = s.Next
		case tnote.ErrorKind:
			return s.Note.Err
		default:
			return nil
		}
	}
}
