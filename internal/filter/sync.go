package filter

import (
	"sync"
)

// Navigation is the URL change a state update asks the page to perform.
// Replace is always true: sidebar changes rewrite the current history entry
// instead of pushing a new one.
type Navigation struct {
	URL     string `json:"url"`
	Replace bool   `json:"replace"`
	Changed bool   `json:"changed"`
}

// Snapshot is the synchronized view of the listing page.
type Snapshot struct {
	Category string `json:"category"`
	State    State  `json:"state"`
	URL      string `json:"url"`
	Query    string `json:"query"`
}

// Sync keeps the sidebar state and the page URL in agreement in both
// directions: Load initializes state from a loaded URL and Update derives the
// URL from a state change.
type Sync struct {
	b *Builder

	mu       sync.Mutex
	category string
	state    State
	url      string
}

// NewSync returns a synchronizer at the unfiltered "all" listing.
func NewSync(b *Builder) *Sync {
	s := &Sync{b: b, category: normalizeCategory(""), state: b.NewState()}
	s.url = b.EncodeURL(s.state, s.category)
	return s
}

// Load initializes the state from a directly-loaded page URL. The returned
// navigation canonicalizes the URL when it differs from what the state
// renders to.
func (s *Sync) Load(rawURL string) (Navigation, error) {
	state, category, err := s.b.DecodeURL(rawURL)
	if err != nil {
		return Navigation{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state
	s.category = category
	s.url = rawURL
	return s.navigateLocked(), nil
}

// Update applies a sidebar change. The mutator receives a copy of the current
// state and the Builder so it can use the clamping setters.
func (s *Sync) Update(mutate func(st *State, b *Builder)) Navigation {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.state
	next.Brands = append([]string(nil), s.state.Brands...)
	if len(next.Brands) == 0 {
		next.Brands = nil
	}
	mutate(&next, s.b)
	s.b.SetPriceRange(&next, next.PriceRange[0], next.PriceRange[1])
	s.b.SetRating(&next, next.MinRating)
	s.state = next
	return s.navigateLocked()
}

// SetCategory switches the listing category, keeping the other filters.
func (s *Sync) SetCategory(category string) Navigation {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.category = normalizeCategory(category)
	return s.navigateLocked()
}

// Reset clears every filter but keeps the category.
func (s *Sync) Reset() Navigation {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = s.b.NewState()
	return s.navigateLocked()
}

// Snapshot returns the current state with its page URL and backend query.
func (s *Sync) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	state := s.state
	state.Brands = append([]string(nil), s.state.Brands...)
	if len(state.Brands) == 0 {
		state.Brands = nil
	}
	return Snapshot{
		Category: s.category,
		State:    state,
		URL:      s.url,
		Query:    s.b.BuildQuery(s.state, s.category),
	}
}

func (s *Sync) navigateLocked() Navigation {
	next := s.b.EncodeURL(s.state, s.category)
	nav := Navigation{URL: next, Replace: true, Changed: next != s.url}
	s.url = next
	return nav
}
