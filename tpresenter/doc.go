// Package tpresenter contains [Presenter],
// a lifecycle owner for attachment-gated deliveries.
//
// A Presenter owns the attachment state for one consumer.
// Binding and unbinding the consumer flips that state,
// and every delivery started through the Presenter is gated by it.
// Destroying the Presenter ends the attachment
// and cancels every delivery it is still tracking.
package tpresenter
