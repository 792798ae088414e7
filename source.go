package tether

import (
	"context"
	"fmt"

	"github.com/gordian-engine/tether/tnote"
)

// Source is a cold producer of notifications.
//
// Each call to Subscribe starts a new producer for exactly one subscriber.
// The producer sends zero or more value notifications,
// optionally followed by one error or completion notification,
// and then closes the channel.
//
// When ctx is canceled, the producer must stop
// and close the channel without sending a terminal notification.
type Source[T any] interface {
	Subscribe(ctx context.Context) <-chan tnote.Notification[T]
}

// SourceFunc adapts a plain function to the [Source] interface.
type SourceFunc[T any] func(ctx context.Context) <-chan tnote.Notification[T]

func (f SourceFunc[T]) Subscribe(ctx context.Context) <-chan tnote.Notification[T] {
	return f(ctx)
}

// Produce returns a Source that runs fn on a new goroutine for each subscriber.
//
// Every value passed to yield is sent as a value notification.
// yield returns false once the subscriber has gone away,
// and fn should return promptly after that.
// When fn returns, a nil error is sent as completion
// and a non-nil error is sent as an error notification,
// unless the subscription was canceled.
func Produce[T any](fn func(ctx context.Context, yield func(T) bool) error) Source[T] {
	return SourceFunc[T](func(ctx context.Context) <-chan tnote.Notification[T] {
		ch := make(chan tnote.Notification[T])
		go produce(ctx, fn, ch)
		return ch
	})
}

func produce[T any](
	ctx context.Context,
	fn func(ctx context.Context, yield func(T) bool) error,
	ch chan<- tnote.Notification[T],
) {
	defer close(ch)

	err := fn(ctx, func(v T) bool {
		return sendNote(ctx, ch, tnote.Value(v))
	})

	if ctx.Err() != nil {
		// Canceled subscribers do not get a terminal notification.
		return
	}

	if err != nil {
		_ = sendNote(ctx, ch, tnote.Error[T](err))
		return
	}

	_ = sendNote(ctx, ch, tnote.Complete[T]())
}

// sendNote sends n on ch, reporting false if ctx finished first.
func sendNote[T any](ctx context.Context, ch chan<- tnote.Notification[T], n tnote.Notification[T]) bool {
	select {
	case <-ctx.Done():
		return false
	case ch <- n:
		return true
	}
}

// Just returns a Source that emits vals in order and then completes.
func Just[T any](vals ...T) Source[T] {
	return Produce(func(ctx context.Context, yield func(T) bool) error {
		for _, v := range vals {
			if !yield(v) {
				return ctx.Err()
			}
		}
		return nil
	})
}

// Empty returns a Source that completes without emitting any value.
func Empty[T any]() Source[T] {
	return Notifications(tnote.Complete[T]())
}

// Fail returns a Source that fails with err without emitting any value.
func Fail[T any](err error) Source[T] {
	return Notifications(tnote.Error[T](err))
}

// Never returns a Source that emits nothing and never terminates.
func Never[T any]() Source[T] {
	return SourceFunc[T](func(ctx context.Context) <-chan tnote.Notification[T] {
		ch := make(chan tnote.Notification[T])
		go func() {
			<-ctx.Done()
			close(ch)
		}()
		return ch
	})
}

// Notifications returns a Source that sends ns in order,
// stopping after the first terminal notification.
// If ns contains no terminal notification,
// the channel is closed after the last one without completing.
//
// Notifications panics if any element of ns is the zero Notification.
func Notifications[T any](ns ...tnote.Notification[T]) Source[T] {
	for i, n := range ns {
		if !n.Valid() {
			panic(fmt.Errorf("BUG: invalid notification at index %d", i))
		}
	}

	return SourceFunc[T](func(ctx context.Context) <-chan tnote.Notification[T] {
		ch := make(chan tnote.Notification[T])
		go func() {
			defer close(ch)
			for _, n := range ns {
				if !sendNote(ctx, ch, n) || n.IsTerminal() {
					return
				}
			}
		}()
		return ch
	})
}

// FromChannel returns a Source that emits every value received on ch
// and completes when ch is closed.
//
// The channel can only be drained once,
// so the returned Source is only useful for a single subscriber.
func FromChannel[T any](ch <-chan T) Source[T] {
	return Produce(func(ctx context.Context, yield func(T) bool) error {
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case v, ok := <-ch:
				if !ok {
					return nil
				}
				if !yield(v) {
					return ctx.Err()
				}
			}
		}
	})
}

// First truncates src to its first value.
//
// The first value is forwarded and followed immediately by completion,
// and the upstream subscription is canceled at that point.
// An error or completion arriving before any value is forwarded unchanged.
func First[T any](src Source[T]) Source[T] {
	return SourceFunc[T](func(ctx context.Context) <-chan tnote.Notification[T] {
		upCtx, cancelUp := context.WithCancel(ctx)
		upstream := src.Subscribe(upCtx)

		out := make(chan tnote.Notification[T])
		go runFirst(ctx, cancelUp, upstream, out)
		return out
	})
}

func runFirst[T any](
	ctx context.Context,
	cancelUp context.CancelFunc,
	upstream <-chan tnote.Notification[T],
	out chan<- tnote.Notification[T],
) {
	defer close(out)
	defer cancelUp()

	var n tnote.Notification[T]
	select {
	case <-ctx.Done():
		return
	case got, ok := <-upstream:
		if !ok {
			return
		}
		n = got
	}

	// Nothing else is needed from upstream.
	cancelUp()

	if !sendNote(ctx, out, n) || n.IsTerminal() {
		return
	}
	_ = sendNote(ctx, out, tnote.Complete[T]())
}
