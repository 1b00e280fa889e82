package store

import (
	"errors"
	"fmt"
	"sync"

	"github.com/RoaringBitmap/roaring"
	"github.com/agentic-research/shapematch/internal/shape"
)

// ErrInvalidPattern is returned when Add is given a malformed pattern.
var ErrInvalidPattern = errors.New("invalid pattern")

// Entry is a stored pattern and the payload returned when it matches.
type Entry struct {
	ID      uint32 // insertion order, starting at 0
	Name    string
	Pattern shape.Node
	Payload any
}

// Store is an ordered, in-memory collection of patterns. Search returns the
// first entry, in insertion order, whose pattern accepts a candidate.
//
// Entries are indexed by the construct at the pattern root so a search only
// runs the matcher against patterns that could accept the candidate's root.
type Store struct {
	mu      sync.RWMutex
	entries []Entry
	matcher *shape.Matcher

	// Roaring bitmap index: root key → entry IDs. Patterns whose root
	// accepts any construct live in wildcard and are always candidates.
	byRoot   map[string]*roaring.Bitmap
	wildcard *roaring.Bitmap
}

// New returns an empty store matching with cfg.
func New(cfg shape.Config) *Store {
	return &Store{
		matcher:  &shape.Matcher{Config: cfg},
		byRoot:   make(map[string]*roaring.Bitmap),
		wildcard: roaring.New(),
	}
}

// Add appends a pattern and returns its ID.
func (s *Store) Add(name string, pattern shape.Node, payload any) (uint32, error) {
	if err := shape.Validate(pattern, s.matcher.Config.MaxDepth); err != nil {
		return 0, fmt.Errorf("%w %q: %w", ErrInvalidPattern, name, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	id := uint32(len(s.entries))
	s.entries = append(s.entries, Entry{ID: id, Name: name, Pattern: pattern, Payload: payload})

	key, ok := rootKey(pattern)
	if !ok {
		s.wildcard.Add(id)
		return id, nil
	}
	bm, exists := s.byRoot[key]
	if !exists {
		bm = roaring.New()
		s.byRoot[key] = bm
	}
	bm.Add(id)
	return id, nil
}

// Search returns the first entry whose pattern accepts candidate.
func (s *Store) Search(candidate shape.Node) (Entry, bool, error) {
	var found Entry
	hit := false
	err := s.scan(candidate, func(e Entry) bool {
		found, hit = e, true
		return false
	})
	return found, hit, err
}

// SearchAll returns every entry whose pattern accepts candidate, in
// insertion order.
func (s *Store) SearchAll(candidate shape.Node) ([]Entry, error) {
	var out []Entry
	err := s.scan(candidate, func(e Entry) bool {
		out = append(out, e)
		return true
	})
	return out, err
}

// scan calls fn for each accepting entry in ID order until fn returns false.
func (s *Store) scan(candidate shape.Node, fn func(Entry) bool) error {
	if err := shape.ValidateTree(candidate, s.matcher.Config.MaxDepth); err != nil {
		return fmt.Errorf("candidate: %w", err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := s.wildcard.Clone()
	if key, ok := rootKey(candidate); ok {
		if bm, exists := s.byRoot[key]; exists {
			ids.Or(bm)
		}
	}

	it := ids.Iterator()
	for it.HasNext() {
		e := s.entries[it.Next()]
		ok, err := s.matcher.Match(candidate, e.Pattern)
		if err != nil {
			return fmt.Errorf("entry %q: %w", e.Name, err)
		}
		if ok && !fn(e) {
			return nil
		}
	}
	return nil
}

// Len returns the number of stored entries.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Entries returns a snapshot of all entries in insertion order.
func (s *Store) Entries() []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	return out
}

// rootKey identifies what a root node requires of a candidate's root.
// It reports false for roots that accept anything.
func rootKey(n shape.Node) (string, bool) {
	switch n.Kind {
	case shape.KindInterior:
		if n.Tag == "" {
			return "", false
		}
		return "(" + n.Tag, true
	case shape.KindBlock:
		return "[", true
	case shape.KindLeaf:
		return "'" + n.Leaf.String(), true
	default:
		return "", false
	}
}
