// Package tether couples a data source to a consumer
// that is only sometimes present.
//
// A consumer is "attached" while an [Attachment] reports true.
// Notifications produced while it is detached are handled
// according to one of three policies:
//
//   - [DeliverFirst] delivers only the first value, once attached.
//   - [DeliverLatest] keeps only the most recent notification while detached.
//   - [DeliverReplay] records everything and replays the full history
//     on every attachment.
//
// Values, errors, and completion travel as [tnote.Notification] envelopes,
// so that terminal signals can be held back and released
// on attachment exactly like values.
//
// Each policy is a [Transformer]:
// binding the attachment produces a function from a [Source]
// to a [Delivery] whose Output stream is read by the consumer.
// Canceling the context passed to the Transformer unsubscribes.
//
// Package tpresenter wraps this in a lifecycle
// that owns the attachment state and tracks deliveries for disposal.
package tether
