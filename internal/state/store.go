package state

import "sync"

// Store holds the application state tree. Every change goes through Dispatch,
// which runs Reduce under the write lock.
type Store struct {
	mu      sync.RWMutex
	tree    Tree
	changes chan struct{}
	subs    []func(Tree, Event)
	seq     uint64 // accepted dispatches, under mu

	deliver   sync.Mutex
	turn      *sync.Cond
	delivered uint64 // subscriber rounds finished, under deliver
}

// NewStore returns a store seeded with initial.
func NewStore(initial Tree) *Store {
	return &Store{tree: initial.clone()}
}

// Dispatch applies ev and reports whether it was accepted. Rejected events,
// such as responses for superseded requests, leave the tree unchanged and do
// not notify.
func (s *Store) Dispatch(ev Event) bool {
	if ev == nil {
		return false
	}

	s.mu.Lock()
	if !Accepts(s.tree, ev) {
		s.mu.Unlock()
		return false
	}
	s.tree = Reduce(s.tree, ev)
	snap := s.tree.clone()
	subs := append([]func(Tree, Event){}, s.subs...)
	seq := s.seq
	s.seq++
	ch := s.changesLocked()
	s.mu.Unlock()

	select {
	case ch <- struct{}{}:
	default:
	}
	s.notify(seq, subs, snap, ev)
	return true
}

// notify runs subscribers for the seq-th accepted dispatch once every earlier
// round has finished, so subscribers observe trees in dispatch order.
func (s *Store) notify(seq uint64, subs []func(Tree, Event), snap Tree, ev Event) {
	s.deliver.Lock()
	defer s.deliver.Unlock()
	if s.turn == nil {
		s.turn = sync.NewCond(&s.deliver)
	}
	for s.delivered != seq {
		s.turn.Wait()
	}
	for _, fn := range subs {
		fn(snap, ev)
	}
	s.delivered++
	s.turn.Broadcast()
}

// State returns a copy of the current tree.
func (s *Store) State() Tree {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tree.clone()
}

// Changes returns a channel that receives a value after accepted dispatches.
// Notifications coalesce: a reader that falls behind sees one pending value.
func (s *Store) Changes() <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.changesLocked()
}

// Subscribe registers fn to run after every accepted dispatch with the
// resulting tree. Calls happen outside the store lock, one at a time and in
// dispatch order. fn may read State but must not Dispatch.
func (s *Store) Subscribe(fn func(Tree, Event)) {
	if fn == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs = append(s.subs, fn)
}

func (s *Store) changesLocked() chan struct{} {
	if s.changes == nil {
		s.changes = make(chan struct{}, 1)
	}
	return s.changes
}
