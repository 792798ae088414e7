package tether

import "github.com/gordian-engine/tether/tpubsub"

// Attachment supplies the attachment state that gates delivery:
// true while the consumer is attached, false while it is detached.
//
// Package tview contains the standard implementations.
type Attachment interface {
	// Watch returns the stream node holding the most recent attachment value,
	// or an unpublished node if no value has been reported yet.
	// Readers follow Next from there to observe later changes.
	//
	// An error or completion notification on the stream
	// means the attachment has ended permanently.
	Watch() *tpubsub.Stream[bool]
}
