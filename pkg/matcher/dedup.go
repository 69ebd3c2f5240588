package matcher

import "sync"

// Store is the set of literals already reported during one scan. It is
// shared by every pattern goroutine, so membership is tested and recorded
// in a single locked step.
type Store struct {
	mu   sync.Mutex
	seen map[string]struct{}
}

// NewStore creates an empty dedup store.
func NewStore() *Store {
	return &Store{seen: make(map[string]struct{})}
}

// Add records s and reports whether it was not seen before. Exactly one
// of any number of concurrent Add calls for the same literal returns true.
func (s *Store) Add(literal string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.seen[literal]; ok {
		return false
	}
	s.seen[literal] = struct{}{}
	return true
}
