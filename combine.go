package tether

import (
	"context"
	"log/slog"

	"github.com/gordian-engine/tether/tnote"
	"github.com/gordian-engine/tether/tpubsub"
)

// combineAttachment pairs the latest attachment value from view
// with the latest notification from notes.
// Once both inputs have produced something,
// emit is called with the new pair every time either input changes.
//
// A completion notification from notes is withheld
// until view next reports true.
// At that point the cached pair for the attachment change is emitted first,
// followed by the completion.
//
// combineAttachment returns when emit returns false, when ctx is done,
// when the attachment has ended while detached,
// or when both inputs have ended with nothing withheld.
func combineAttachment[T any](
	ctx context.Context,
	log *slog.Logger,
	view *tpubsub.Stream[bool],
	notes <-chan tnote.Notification[T],
	emit func(attached bool, n tnote.Notification[T]) bool,
) {
	c := attachmentCombiner[T]{
		log:   log,
		emit:  emit,
		view:  view,
		notes: notes,
	}
	c.run(ctx)
}

type attachmentCombiner[T any] struct {
	log  *slog.Logger
	emit func(attached bool, n tnote.Notification[T]) bool

	view      *tpubsub.Stream[bool]
	viewEnded bool

	attached     bool
	haveAttached bool

	// Nil once notes has closed or produced a terminal notification.
	notes <-chan tnote.Notification[T]

	// Zero until the first notification arrives.
	latest tnote.Notification[T]

	// Completion arrived while detached.
	withheld bool
}

func (c *attachmentCombiner[T]) run(ctx context.Context) {
	for {
		if c.finished() {
			return
		}

		// Attachment changes take priority over data,
		// so that each notification is paired with
		// the attachment state current when it arrived.
		if !c.viewEnded {
			select {
			case <-c.view.Ready:
				if !c.handleAttachment() {
					return
				}
				continue
			default:
			}
		}

		var viewReady <-chan struct{}
		if !c.viewEnded {
			viewReady = c.view.Ready
		}

		select {
		case <-ctx.Done():
			return

		case <-viewReady:
			if !c.handleAttachment() {
				return
			}

		case n, ok := <-c.notes:
			if !ok {
				c.notes = nil
				continue
			}
			if !c.handleNote(n) {
				return
			}
		}
	}
}

// finished reports whether no further attached pair can ever be emitted.
func (c *attachmentCombiner[T]) finished() bool {
	if !c.viewEnded {
		return false
	}

	if !c.attached {
		c.log.Debug(
			"Attachment ended while detached; releasing data subscription",
			"withheld_completion", c.withheld,
		)
		return true
	}

	return c.notes == nil && !c.withheld
}

func (c *attachmentCombiner[T]) handleAttachment() bool {
	n := c.view.Note
	if n.IsTerminal() {
		c.viewEnded = true
		return true
	}
	c.view = c.view.Next

	c.attached = n.Val
	c.haveAttached = true

	if c.latest.Valid() {
		if !c.emit(c.attached, c.latest) {
			return false
		}
	}

	if c.withheld && c.attached {
		c.withheld = false
		c.latest = tnote.Complete[T]()
		c.log.Debug("Releasing withheld completion")
		return c.emit(true, c.latest)
	}

	return true
}

func (c *attachmentCombiner[T]) handleNote(n tnote.Notification[T]) bool {
	if n.IsTerminal() {
		c.notes = nil
	}

	if n.IsComplete() && !(c.haveAttached && c.attached) {
		c.withheld = true
		return true
	}

	c.latest = n
	if !c.haveAttached {
		return true
	}
	return c.emit(c.attached, n)
}

// deliverCombined is the shared implementation of
// [DeliverFirst] and [DeliverLatest]:
// notifications paired with a detached state are dropped,
// and the rest are published until a terminal notification.
func deliverCombined[T any](
	ctx context.Context,
	log *slog.Logger,
	view Attachment,
	src Source[T],
) *Delivery[T] {
	ctx, cancel := context.WithCancel(ctx)

	d := newDelivery[T]()
	head := view.Watch()
	notes := src.Subscribe(ctx)

	go func() {
		defer close(d.done)
		defer cancel()

		combineAttachment(ctx, log, head, notes, func(attached bool, n tnote.Notification[T]) bool {
			if !attached {
				return true
			}
			d.publish(n)
			return !n.IsTerminal()
		})
	}()

	return d
}
