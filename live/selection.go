package live

import "sync"

// Selection is the per-form set of chosen contact ids. It is never
// persisted itself; the owning form flushes it into an entity field on
// save and resets it on open and close.
type Selection struct {
	mu        sync.Mutex
	order     []string
	present   map[string]bool
	listeners []func()
}

// NewSelection creates an empty selection.
func NewSelection() *Selection {
	return &Selection{present: map[string]bool{}}
}

// Toggle adds id when absent and removes it when present, then notifies
// listeners.
func (s *Selection) Toggle(id string) {
	s.mu.Lock()
	if s.present[id] {
		delete(s.present, id)
		for i, v := range s.order {
			if v == id {
				s.order = append(s.order[:i], s.order[i+1:]...)
				break
			}
		}
	} else {
		s.present[id] = true
		s.order = append(s.order, id)
	}
	listeners := append([]func(){}, s.listeners...)
	s.mu.Unlock()
	for _, fn := range listeners {
		fn()
	}
}

// Has reports whether id is selected.
func (s *Selection) Has(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.present[id]
}

// IDs returns the selected ids. Consumers persist the result as an
// unordered set.
func (s *Selection) IDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string{}, s.order...)
}

// Reset clears the selection and notifies listeners.
func (s *Selection) Reset() {
	s.mu.Lock()
	s.order = nil
	s.present = map[string]bool{}
	listeners := append([]func(){}, s.listeners...)
	s.mu.Unlock()
	for _, fn := range listeners {
		fn()
	}
}

// OnChange registers fn to run after every toggle or reset.
func (s *Selection) OnChange(fn func()) {
	s.mu.Lock()
	s.listeners = append(s.listeners, fn)
	s.mu.Unlock()
}
