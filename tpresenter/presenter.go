package tpresenter

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/bits-and-blooms/bitset"
	"github.com/gordian-engine/tether"
	"github.com/gordian-engine/tether/tview"
	"github.com/juju/clock"
)

// Config is the configuration passed to [New].
type Config struct {
	// Name identifies the presenter in log output.
	// Optional.
	Name string

	// Clock drives delayed attachment changes
	// such as [*Presenter.UnbindViewAfter].
	// Defaults to the wall clock.
	Clock clock.Clock
}

// Presenter owns the attachment state for one consumer
// and tracks the deliveries gated by it.
//
// The consumer starts detached.
// Presenter is safe for concurrent use.
type Presenter struct {
	log *slog.Logger
	clk clock.Clock

	view *tview.State

	// Parent of every tracked delivery's context.
	ctx    context.Context
	cancel context.CancelCauseFunc

	mu sync.Mutex

	// Bit i is set while slot i holds a running delivery.
	slots   *bitset.BitSet
	cancels []context.CancelFunc

	destroyed bool

	// Tracks the goroutines releasing slots and delayed unbinds.
	wg sync.WaitGroup
}

// New returns a Presenter whose deliveries are canceled
// when ctx is canceled or when the Presenter is destroyed.
func New(ctx context.Context, log *slog.Logger, cfg Config) *Presenter {
	if cfg.Name != "" {
		log = log.With("presenter", cfg.Name)
	}

	clk := cfg.Clock
	if clk == nil {
		clk = clock.WallClock
	}

	ctx, cancel := context.WithCancelCause(ctx)

	return &Presenter{
		log: log,
		clk: clk,

		view: tview.NewState(false),

		ctx:    ctx,
		cancel: cancel,

		slots: bitset.MustNew(8),
	}
}

// ViewState returns the attachment that gates this Presenter's deliveries.
// It replays the current state to every new watcher.
func (p *Presenter) ViewState() tether.Attachment {
	return p.view
}

// ViewAttached reports whether the consumer is currently bound.
func (p *Presenter) ViewAttached() bool {
	return p.view.Attached()
}

// BindView marks the consumer as attached.
// It has no effect after [*Presenter.Destroy].
func (p *Presenter) BindView() {
	if p.view.Attach() {
		p.log.Debug("View bound")
	}
}

// UnbindView marks the consumer as detached.
// It has no effect after [*Presenter.Destroy].
func (p *Presenter) UnbindView() {
	if p.view.Detach() {
		p.log.Debug("View unbound")
	}
}

// UnbindViewAfter unbinds the view once d has elapsed on the configured clock,
// unless the Presenter is destroyed first.
func (p *Presenter) UnbindViewAfter(d time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.destroyed {
		return
	}

	fire := p.clk.After(d)

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()

		select {
		case <-p.ctx.Done():
		case <-fire:
			p.UnbindView()
		}
	}()
}

// ActiveDeliveries returns the number of tracked deliveries
// that have not yet stopped.
func (p *Presenter) ActiveDeliveries() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return int(p.slots.Count())
}

// CancelDeliveries cancels every tracked delivery
// without destroying the Presenter.
// New deliveries may still be started afterwards.
func (p *Presenter) CancelDeliveries() {
	p.mu.Lock()
	defer p.mu.Unlock()

	n := 0
	for i, ok := p.slots.NextSet(0); ok; i, ok = p.slots.NextSet(i + 1) {
		p.cancels[i]()
		n++
	}

	if n > 0 {
		p.log.Debug("Canceled deliveries", "n", n)
	}
}

// Destroy ends the attachment permanently,
// cancels every tracked delivery with cause [ErrDestroyed],
// and waits for them to stop.
// Subsequent calls have no effect.
func (p *Presenter) Destroy() {
	p.mu.Lock()
	if p.destroyed {
		p.mu.Unlock()
		return
	}
	p.destroyed = true
	p.mu.Unlock()

	p.view.Destroy()
	p.cancel(ErrDestroyed)

	p.wg.Wait()

	p.log.Info("Presenter destroyed")
}

// Wait blocks until every tracked delivery has stopped.
func (p *Presenter) Wait() {
	p.wg.Wait()
}

// DeliverFirst applies [tether.DeliverFirst] to src,
// gated by the Presenter's view state.
func DeliverFirst[T any](p *Presenter, src tether.Source[T]) (*tether.Delivery[T], error) {
	return track(p, tether.DeliverFirst[T](p.log, p.view), src)
}

// DeliverLatest applies [tether.DeliverLatest] to src,
// gated by the Presenter's view state.
func DeliverLatest[T any](p *Presenter, src tether.Source[T]) (*tether.Delivery[T], error) {
	return track(p, tether.DeliverLatest[T](p.log, p.view), src)
}

// DeliverReplay applies [tether.DeliverReplay] to src,
// gated by the Presenter's view state.
func DeliverReplay[T any](p *Presenter, src tether.Source[T]) (*tether.Delivery[T], error) {
	return track(p, tether.DeliverReplay[T](p.log, p.view), src)
}

// Deliver applies the transformer for policy to src,
// gated by the Presenter's view state.
func Deliver[T any](p *Presenter, policy tether.Policy, src tether.Source[T]) (*tether.Delivery[T], error) {
	tr, err := tether.ForPolicy[T](policy, p.log, p.view)
	if err != nil {
		return nil, err
	}
	return track(p, tr, src)
}

// track starts the delivery in a free slot
// and releases the slot once the delivery stops.
func track[T any](p *Presenter, tr tether.Transformer[T], src tether.Source[T]) (*tether.Delivery[T], error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.destroyed {
		return nil, ErrDestroyed
	}

	slot, ok := p.slots.NextClear(0)
	if !ok {
		slot = p.slots.Len()
	}

	ctx, cancel := context.WithCancel(p.ctx)
	d := tr(ctx, src)

	p.slots.Set(slot)
	for uint(len(p.cancels)) <= slot {
		p.cancels = append(p.cancels, nil)
	}
	p.cancels[slot] = cancel

	p.wg.Add(1)
	go p.release(slot, d.Done())

	return d, nil
}

func (p *Presenter) release(slot uint, done <-chan struct{}) {
	defer p.wg.Done()

	<-done

	p.mu.Lock()
	defer p.mu.Unlock()

	p.cancels[slot]()
	p.cancels[slot] = nil
	p.slots.Clear(slot)
}
