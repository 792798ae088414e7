// Package tpubsub contains the [Stream] type,
// a single-writer, many-reader linked list of [tnote.Notification] values.
//
// A reader holding a node observes every notification published after it,
// at its own pace, without blocking the writer.
// Retaining the head of a stream therefore retains its full history,
// which is what makes a Stream usable as a replay buffer.
package tpubsub
