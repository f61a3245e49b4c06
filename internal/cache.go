package weverse

import "sync"

// Store is a keyed, insertion-ordered set of entities of one kind. Admission
// is first-write-wins: a candidate whose id is already present is silently
// skipped, never updated. The lock makes admission safe under the client's
// fan-out phases; there is no partial-update path.
type Store[T any] struct {
	mu      sync.Mutex
	byID    map[int64]*T
	order   []*T
	idOf    func(*T) int64
	prepend bool
}

// NewStore builds a store keyed by idOf. With prepend set, each admitted
// batch is placed at the front of the order (most-recent-first feeds).
func NewStore[T any](idOf func(*T) int64, prepend bool) *Store[T] {
	return &Store[T]{byID: make(map[int64]*T), idOf: idOf, prepend: prepend}
}

// Add admits every candidate whose id is not yet present and returns the
// newly added subset in candidate order. Calling Add twice with overlapping
// sets leaves the store as one call with the union would, and the second
// return excludes ids seen by the first.
func (s *Store[T]) Add(candidates ...*T) []*T {
	s.mu.Lock()
	defer s.mu.Unlock()

	fresh := make([]*T, 0, len(candidates))
	for _, c := range candidates {
		if c == nil {
			continue
		}
		id := s.idOf(c)
		if _, known := s.byID[id]; known {
			continue
		}
		s.byID[id] = c
		fresh = append(fresh, c)
	}
	if len(fresh) == 0 {
		return fresh
	}
	if s.prepend {
		s.order = append(append(make([]*T, 0, len(fresh)+len(s.order)), fresh...), s.order...)
	} else {
		s.order = append(s.order, fresh...)
	}
	return fresh
}

// Get returns the entity with the given id.
func (s *Store[T]) Get(id int64) (*T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.byID[id]
	return v, ok
}

// All returns a copy of the store's current order.
func (s *Store[T]) All() []*T {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*T, len(s.order))
	copy(out, s.order)
	return out
}

// Len returns the number of cached entities.
func (s *Store[T]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.order)
}

func communityID(c *Community) int64       { return c.ID }
func artistID(a *Artist) int64             { return a.ID }
func postID(p *Post) int64                 { return p.ID }
func commentID(c *Comment) int64           { return c.ID }
func mediaID(m *Media) int64               { return m.ID }
func notificationID(n *Notification) int64 { return n.ID }

// NewCommunityStore keys communities by id, in arrival order.
func NewCommunityStore() *Store[Community] { return NewStore(communityID, false) }

// NewArtistStore keys artists by id, in arrival order.
func NewArtistStore() *Store[Artist] { return NewStore(artistID, false) }

// NewPostStore keys posts by id, most-recent-first.
func NewPostStore() *Store[Post] { return NewStore(postID, true) }

// NewCommentStore keys comments by id, in arrival order.
func NewCommentStore() *Store[Comment] { return NewStore(commentID, false) }

// NewMediaStore keys media by id, most-recent-first.
func NewMediaStore() *Store[Media] { return NewStore(mediaID, true) }

// NewNotificationStore keys notifications by id, preserving arrival order.
func NewNotificationStore() *Store[Notification] { return NewStore(notificationID, false) }
