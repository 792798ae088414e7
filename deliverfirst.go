package tether

import (
	"context"
	"log/slog"
)

// DeliverFirst returns a [Transformer] that delivers
// at most one value from the source: its first.
//
// The value (or an error that arrives before any value)
// is cached until the attachment reports true,
// and is delivered immediately if it already does.
// Completion follows the value once attached.
// The source is never re-subscribed,
// so a later reattachment cannot deliver anything further.
func DeliverFirst[T any](log *slog.Logger, view Attachment) Transformer[T] {
	log = log.With("policy", FirstPolicy.String())
	return func(ctx context.Context, src Source[T]) *Delivery[T] {
		return deliverCombined(ctx, log, view, First(src))
	}
}
