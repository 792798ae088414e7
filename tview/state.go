package tview

import (
	"sync"

	"github.com/gordian-engine/tether/tnote"
	"github.com/gordian-engine/tether/tpubsub"
)

// State is a mutable attachment stream.
//
// Watchers observe the most recent value first,
// followed by every later change.
// Destroy ends the stream permanently.
//
// State is safe for concurrent use.
type State struct {
	mu sync.Mutex

	// The node holding the most recent value,
	// or the unpublished head if nothing has been set.
	latest *tpubsub.Stream[bool]

	// The next node to publish.
	// Nil after Destroy.
	tail *tpubsub.Stream[bool]
}

// NewState returns a State whose current value is attached.
func NewState(attached bool) *State {
	head := tpubsub.NewStream[bool]()
	s := &State{
		latest: head,
		tail:   head,
	}
	s.set(attached)
	return s
}

// Attach reports true to watchers.
// It returns false if the State has been destroyed.
func (s *State) Attach() bool {
	return s.set(true)
}

// Detach reports false to watchers.
// It returns false if the State has been destroyed.
func (s *State) Detach() bool {
	return s.set(false)
}

func (s *State) set(v bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.tail == nil {
		return false
	}

	s.tail.Publish(tnote.Value(v))
	s.latest = s.tail
	s.tail = s.tail.Next
	return true
}

// Destroy ends the stream.
// Watchers that have not yet seen a value only observe the end.
// Subsequent calls to Destroy, Attach, or Detach have no effect.
func (s *State) Destroy() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.tail == nil {
		return
	}

	s.tail.Publish(tnote.Complete[bool]())
	s.latest = s.tail
	s.tail = nil
}

// Watch returns the node holding the current value.
func (s *State) Watch() *tpubsub.Stream[bool] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.latest
}

// Attached reports whether the current value is true.
// It is false after Destroy.
func (s *State) Attached() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.latest.Published() && s.latest.Note.IsValue() && s.latest.Note.Val
}

// Destroyed reports whether Destroy has been called.
func (s *State) Destroyed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tail == nil
}
