package tview

import (
	"context"
	"time"

	"github.com/gordian-engine/tether/tnote"
	"github.com/gordian-engine/tether/tpubsub"
	"github.com/juju/clock"
)

// Static is an attachment that reports its own value once and then ends.
// Static(true) describes a consumer that is always present.
type Static bool

func (s Static) Watch() *tpubsub.Stream[bool] {
	return once(bool(s))
}

func once(v bool) *tpubsub.Stream[bool] {
	head := tpubsub.NewStream[bool]()
	head.Publish(tnote.Value(v))
	head.Next.Publish(tnote.Complete[bool]())
	return head
}

// Never is an attachment that never reports anything.
type Never struct{}

func (Never) Watch() *tpubsub.Stream[bool] {
	return tpubsub.NewStream[bool]()
}

// DelayedAttachment reports a single value after a delay, then ends.
// See [Delayed].
type DelayedAttachment struct {
	ctx   context.Context
	clk   clock.Clock
	delay time.Duration
	val   bool
}

// Delayed returns an attachment that reports val
// once delay has elapsed on clk, and then ends.
//
// Each call to Watch starts its own timer,
// so every watcher observes the value delay after it started watching.
// Pending timers are abandoned when ctx is canceled.
func Delayed(ctx context.Context, clk clock.Clock, delay time.Duration, val bool) DelayedAttachment {
	return DelayedAttachment{
		ctx:   ctx,
		clk:   clk,
		delay: delay,
		val:   val,
	}
}

func (a DelayedAttachment) Watch() *tpubsub.Stream[bool] {
	head := tpubsub.NewStream[bool]()

	// Start the timer before returning,
	// so that a test clock sees the waiter immediately.
	fire := a.clk.After(a.delay)

	go func() {
		select {
		case <-a.ctx.Done():
			return
		case <-fire:
			head.Publish(tnote.Value(a.val))
			head.Next.Publish(tnote.Complete[bool]())
		}
	}()

	return head
}
