package tether

import (
	"context"
	"log/slog"

	"github.com/gordian-engine/tether/tnote"
	"github.com/gordian-engine/tether/tpubsub"
)

// DeliverReplay returns a [Transformer] that never loses a notification.
//
// The source is subscribed immediately, independent of the attachment,
// and every notification it produces is recorded in a replay buffer.
// Each time the attachment reports true,
// the full buffered history is delivered in order,
// followed by live notifications while the attachment stays true.
// Nothing is delivered while detached,
// and reattaching delivers the whole history again.
//
// An error from the source ends the delivery when it is replayed.
// Completion from the source ends the current replay pass;
// the delivery itself completes once the attachment has also ended
// while attached, since until then a reattachment may replay again.
func DeliverReplay[T any](log *slog.Logger, view Attachment) Transformer[T] {
	log = log.With("policy", ReplayPolicy.String())
	return func(ctx context.Context, src Source[T]) *Delivery[T] {
		ctx, cancel := context.WithCancel(ctx)

		d := newDelivery[T]()

		// The internal observer: it runs regardless of attachment,
		// and stops with ctx so the source is not kept alive
		// after the consumer has gone away.
		buf, observerDone := tpubsub.RunChannelToStream(ctx, src.Subscribe(ctx))

		g := &replayGate[T]{
			log:  log,
			d:    d,
			head: buf,
			view: view.Watch(),
		}

		go func() {
			defer close(d.done)
			defer func() {
				cancel()
				<-observerDone
			}()

			g.run(ctx)
		}()

		return d
	}
}

type replayGateState uint8

const (
	detachedGateState replayGateState = iota
	attachedGateState
)

// replayGate switches the output between silence (detached)
// and following the replay buffer from its head (attached).
type replayGate[T any] struct {
	log *slog.Logger
	d   *Delivery[T]

	// Head of the replay buffer, retained so every attachment
	// can start again from the beginning.
	head *tpubsub.Stream[T]

	view      *tpubsub.Stream[bool]
	viewEnded bool

	state replayGateState

	// Position in the buffer while attached.
	// Nil while detached, and after reaching the buffer's completion.
	cursor *tpubsub.Stream[T]

	// Whether the current attached pass has reached the buffer's completion.
	passComplete bool
}

func (g *replayGate[T]) run(ctx context.Context) {
	for {
		if g.viewEnded {
			if g.state == detachedGateState {
				g.log.Debug("Attachment ended while detached; releasing data subscription")
				return
			}
			if g.passComplete {
				g.d.publish(tnote.Complete[T]())
				return
			}
		} else {
			// Attachment changes take priority over replaying,
			// so a detach stops delivery before any further buffered item.
			select {
			case <-g.view.Ready:
				g.handleAttachment()
				continue
			default:
			}
		}

		var viewReady, bufReady <-chan struct{}
		if !g.viewEnded {
			viewReady = g.view.Ready
		}
		if g.cursor != nil {
			bufReady = g.cursor.Ready
		}

		select {
		case <-ctx.Done():
			return

		case <-viewReady:
			g.handleAttachment()

		case <-bufReady:
			if !g.advance() {
				return
			}
		}
	}
}

func (g *replayGate[T]) handleAttachment() {
	n := g.view.Note
	if n.IsTerminal() {
		g.viewEnded = true
		return
	}
	g.view = g.view.Next

	if n.Val {
		g.enterAttached()
	} else {
		g.enterDetached()
	}
}

// enterAttached restarts delivery from the head of the buffer.
// This happens on every report of true, even when already attached.
func (g *replayGate[T]) enterAttached() {
	if g.state == attachedGateState {
		g.log.Debug("Attachment reported again; restarting replay")
	}

	g.state = attachedGateState
	g.cursor = g.head
	g.passComplete = false
}

func (g *replayGate[T]) enterDetached() {
	g.state = detachedGateState
	g.cursor = nil
	g.passComplete = false
}

// advance delivers the notification at the cursor.
// It reports false once the delivery has terminated.
func (g *replayGate[T]) advance() bool {
	n := g.cursor.Note
	switch n.Kind {
	case tnote.ValueKind:
		g.d.publish(n)
		g.cursor = g.cursor.Next
		return true

	case tnote.ErrorKind:
		g.d.publish(n)
		return false

	default:
		// Completion ends this pass only;
		// the run loop decides whether the output completes.
		g.cursor = nil
		g.passComplete = true
		return true
	}
}
