package tether

import (
	"context"
	"log/slog"
)

// DeliverLatest returns a [Transformer] that delivers
// every notification as it happens while attached.
//
// While detached, only the most recent notification is kept;
// it is delivered when the attachment next reports true,
// followed by completion if the source has completed.
// The kept notification is offered again on every report of true,
// so a value seen before a detach is seen again after reattaching.
func DeliverLatest[T any](log *slog.Logger, view Attachment) Transformer[T] {
	log = log.With("policy", LatestPolicy.String())
	return func(ctx context.Context, src Source[T]) *Delivery[T] {
		return deliverCombined(ctx, log, view, src)
	}
}
