package tether_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gordian-engine/tether"
	"github.com/gordian-engine/tether/internal/ttest"
	"github.com/gordian-engine/tether/tethertest"
	"github.com/gordian-engine/tether/tnote"
	"github.com/gordian-engine/tether/tview"
	"github.com/juju/clock/testclock"
	"github.com/stretchr/testify/require"
)

func TestDeliverReplay_attached(t *testing.T) {
	t.Parallel()

	for _, vals := range [][]int{{0}, {0, 1}, {0, 1, 2}} {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		tr := tether.DeliverReplay[int](ttest.NewLogger(t), tview.Static(true))
		d := tr(ctx, tether.Just(vals...))

		got, next := tethertest.ReceiveNotes(t, d.Output, len(vals)+1)
		require.Equal(t, tethertest.ValuesThenComplete(vals...), got)
		require.Nil(t, next)

		_ = ttest.ReceiveSoon(t, d.Done())
	}
}

func TestDeliverReplay_detached(t *testing.T) {
	t.Parallel()

	for _, src := range []tether.Source[int]{
		tether.Just(0),
		tether.Just(0, 1, 2),
		tether.Fail[int](errors.New("boom")),
		tether.Empty[int](),
	} {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		tr := tether.DeliverReplay[int](ttest.NewLogger(t), tview.Static(false))
		d := tr(ctx, src)

		_ = ttest.ReceiveSoon(t, d.Done())
		tethertest.NoNotes(t, d.Output)
	}
}

func TestDeliverReplay_neverAttached(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	src := tethertest.NewControlledSource[int]()

	tr := tether.DeliverReplay[int](ttest.NewLogger(t), tview.Never{})
	d := tr(ctx, src)

	// The source makes progress without any attachment.
	_ = ttest.ReceiveSoon(t, src.Subscribed())
	src.SendValues(t, 0, 1, 2)
	src.Send(t, tnote.Error[int](errors.New("boom")))

	tethertest.NoNotes(t, d.Output)
	ttest.NotSending(t, d.Done())
}

func TestDeliverReplay_delayedAttachment(t *testing.T) {
	t.Parallel()

	for _, vals := range [][]int{{}, {0}, {0, 1}, {0, 1, 2}} {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		clk := testclock.NewClock(time.Now())
		view := tview.Delayed(ctx, clk, attachDelay, true)

		tr := tether.DeliverReplay[int](ttest.NewLogger(t), view)
		d := tr(ctx, tether.Just(vals...))

		tethertest.NoNotes(t, d.Output)

		clk.Advance(attachDelay)

		got, _ := tethertest.ReceiveNotes(t, d.Output, len(vals)+1)
		require.Equal(t, tethertest.ValuesThenComplete(vals...), got)
		_ = ttest.ReceiveSoon(t, d.Done())
	}
}

func TestDeliverReplay_errors(t *testing.T) {
	t.Parallel()

	err := errors.New("boom")

	for _, tc := range []struct {
		name string
		in   []tnote.Notification[int]
		want []tnote.Notification[int]
	}{
		{
			name: "only error",
			in:   []tnote.Notification[int]{tnote.Error[int](err)},
			want: []tnote.Notification[int]{tnote.Error[int](err)},
		},
		{
			name: "error after items",
			in: []tnote.Notification[int]{
				tnote.Value(0), tnote.Value(1), tnote.Value(2), tnote.Error[int](err),
			},
			want: []tnote.Notification[int]{
				tnote.Value(0), tnote.Value(1), tnote.Value(2), tnote.Error[int](err),
			},
		},
		{
			name: "error before items",
			in: []tnote.Notification[int]{
				tnote.Error[int](err), tnote.Value(0), tnote.Value(1), tnote.Value(2),
			},
			want: []tnote.Notification[int]{tnote.Error[int](err)},
		},
		{
			name: "error between items",
			in: []tnote.Notification[int]{
				tnote.Value(0), tnote.Error[int](err), tnote.Value(1), tnote.Value(2),
			},
			want: []tnote.Notification[int]{tnote.Value(0), tnote.Error[int](err)},
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			clk := testclock.NewClock(time.Now())
			view := tview.Delayed(ctx, clk, attachDelay, true)

			tr := tether.DeliverReplay[int](ttest.NewLogger(t), view)
			d := tr(ctx, tether.Notifications(tc.in...))

			tethertest.NoNotes(t, d.Output)

			clk.Advance(attachDelay)

			got, next := tethertest.ReceiveNotes(t, d.Output, len(tc.want))
			require.Equal(t, tc.want, got)
			require.Nil(t, next)
			_ = ttest.ReceiveSoon(t, d.Done())
		})
	}
}

func TestDeliverReplay_errorWhenAttached(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	err := errors.New("boom")
	tr := tether.DeliverReplay[int](ttest.NewLogger(t), tview.Static(true))
	d := tr(ctx, tether.Fail[int](err))

	got, _ := tethertest.ReceiveNotes(t, d.Output, 1)
	require.ErrorIs(t, got[0].Err, err)
	_ = ttest.ReceiveSoon(t, d.Done())
}

func TestDeliverReplay_reattachmentReplaysHistory(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	state := tview.NewState(false)
	src := tethertest.NewControlledSource[int]()

	tr := tether.DeliverReplay[int](ttest.NewLogger(t), state)
	d := tr(ctx, src)

	src.SendValues(t, 0, 1, 2)
	src.Send(t, tnote.Complete[int]())
	tethertest.NoNotes(t, d.Output)

	require.True(t, state.Attach())
	got, next := tethertest.ReceiveNotes(t, d.Output, 3)
	require.Equal(t, tethertest.Values(0, 1, 2), got)

	// The attachment is still live, so the output stays open.
	tethertest.NoNotes(t, next)

	require.True(t, state.Detach())
	tethertest.NoNotes(t, next)

	require.True(t, state.Attach())
	got, next = tethertest.ReceiveNotes(t, next, 3)
	require.Equal(t, tethertest.Values(0, 1, 2), got)

	// Ending the attachment while attached completes the output.
	state.Destroy()
	got, _ = tethertest.ReceiveNotes(t, next, 1)
	require.True(t, got[0].IsComplete())
	_ = ttest.ReceiveSoon(t, d.Done())
}

func TestDeliverReplay_detachDuringLiveFollow(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	state := tview.NewState(true)
	src := tethertest.NewControlledSource[int]()

	tr := tether.DeliverReplay[int](ttest.NewLogger(t), state)
	d := tr(ctx, src)

	src.SendValues(t, 0)
	got, next := tethertest.ReceiveNotes(t, d.Output, 1)
	require.Equal(t, tethertest.Values(0), got)

	require.True(t, state.Detach())

	// Recorded while detached, but not delivered.
	src.SendValues(t, 1)
	tethertest.NoNotes(t, next)

	require.True(t, state.Attach())
	got, _ = tethertest.ReceiveNotes(t, next, 2)
	require.Equal(t, tethertest.Values(0, 1), got)
}

func TestDeliverReplay_repeatedAttachRestartsReplay(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	state := tview.NewState(true)
	src := tethertest.NewControlledSource[int]()

	tr := tether.DeliverReplay[int](ttest.NewLogger(t), state)
	d := tr(ctx, src)

	src.SendValues(t, 7)
	_, next := tethertest.ReceiveNotes(t, d.Output, 1)

	require.True(t, state.Attach())
	got, _ := tethertest.ReceiveNotes(t, next, 1)
	require.Equal(t, tethertest.Values(7), got)
}

func TestDeliverReplay_cancellationStopsObserver(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	state := tview.NewState(false)
	src := tethertest.NewControlledSource[int]()

	tr := tether.DeliverReplay[int](ttest.NewLogger(t), state)
	d := tr(ctx, src)

	src.SendValues(t, 0, 1)

	cancel()

	_ = ttest.ReceiveSoon(t, src.Canceled())
	_ = ttest.ReceiveSoon(t, d.Done())

	// The internal observer no longer reads from the source.
	src.NotReceiving(t, tnote.Value(2))

	// And nothing is delivered on a later attachment.
	require.True(t, state.Attach())
	tethertest.NoNotes(t, d.Output)
}

func TestDeliverReplay_independentApplications(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tr := tether.DeliverReplay[int](ttest.NewLogger(t), tview.Static(true))

	var runs [][]tnote.Notification[int]
	for range 3 {
		d := tr(ctx, tether.Just(0, 1, 2))
		got, _ := tethertest.ReceiveNotes(t, d.Output, 4)
		runs = append(runs, got)
		d.Wait()
	}

	require.Equal(t, runs[0], runs[1])
	require.Equal(t, runs[1], runs[2])
}
