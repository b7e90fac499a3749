package local

import "sync"

// Session tracks which posts have been counted as viewed during the current
// process lifetime. It mirrors the browser's session-scoped storage: nothing
// survives a restart, and membership guarantees at most one counted view per
// post per session.
type Session struct {
	mu     sync.Mutex
	viewed map[string]struct{}
	order  []string
}

// NewSession creates an empty session.
func NewSession() *Session {
	return &Session{viewed: make(map[string]struct{})}
}

// Viewed reports whether postID has already been counted this session.
func (s *Session) Viewed(postID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.viewed[postID]
	return ok
}

// MarkViewed records postID as counted. Idempotent.
func (s *Session) MarkViewed(postID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.viewed[postID]; ok {
		return
	}
	s.viewed[postID] = struct{}{}
	s.order = append(s.order, postID)
}

// ViewedPosts returns the post ids in the order they were first counted.
func (s *Session) ViewedPosts() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}
