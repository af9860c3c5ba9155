package route

import "sync"

// Synchronizer decides whether a navigation needs a fetch. It remembers the
// last route issued per Kind and reports a change only when the parameters
// differ, so re-rendering the same location does not refetch.
type Synchronizer struct {
	mu   sync.Mutex
	last map[Kind]Route
}

// NewSynchronizer returns an empty Synchronizer.
func NewSynchronizer() *Synchronizer {
	return &Synchronizer{last: make(map[Kind]Route)}
}

// Sync parses location and reports whether its parameters differ from the
// last ones recorded for the same kind. Changed routes are recorded.
func (s *Synchronizer) Sync(location string) (Route, bool, error) {
	r, err := Parse(location)
	if err != nil {
		return Route{}, false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.last == nil {
		s.last = make(map[Kind]Route)
	}
	if prev, ok := s.last[r.Kind]; ok && prev == r {
		return r, false, nil
	}
	s.last[r.Kind] = r
	return r, true, nil
}

// Invalidate forgets the last route of kind so the next Sync refetches.
func (s *Synchronizer) Invalidate(kind Kind) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.last, kind)
}

// Reset forgets every recorded route.
func (s *Synchronizer) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last = make(map[Kind]Route)
}

const maxHistory = 100

// History is a back stack of locations. The zero value starts at the
// snapshot list.
type History struct {
	entries []string
}

// Current returns the location on top of the stack.
func (h *History) Current() string {
	if len(h.entries) == 0 {
		return SnapshotListPageURL(DefaultPage, DefaultPageSize)
	}
	return h.entries[len(h.entries)-1]
}

// Push navigates to location. Pushing the current location is a no-op.
func (h *History) Push(location string) {
	if len(h.entries) > 0 && h.Current() == location {
		return
	}
	h.entries = append(h.entries, location)
	if len(h.entries) > maxHistory {
		h.entries = h.entries[len(h.entries)-maxHistory:]
	}
}

// Replace swaps the current location, as when only page parameters change.
func (h *History) Replace(location string) {
	if len(h.entries) == 0 {
		h.entries = append(h.entries, location)
		return
	}
	h.entries[len(h.entries)-1] = location
}

// Back pops the current location and returns the previous one. It reports
// false when there is nothing to go back to.
func (h *History) Back() (string, bool) {
	if len(h.entries) < 2 {
		return h.Current(), false
	}
	h.entries = h.entries[:len(h.entries)-1]
	return h.Current(), true
}

// Len returns the number of recorded locations.
func (h *History) Len() int {
	return len(h.entries)
}
