// Package tview contains attachment streams for package tether.
//
// [State] is the stream a lifecycle owner drives:
// it replays its current value to every new watcher.
// [Static], [Never], and [Delayed] are fixed attachments,
// mostly useful in tests and for consumers that are always present.
package tview
