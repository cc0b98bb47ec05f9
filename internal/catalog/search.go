package catalog

import (
	"context"
	"sync"
	"time"
)

// SearchResult is delivered for every Search call.
type SearchResult struct {
	Token      uint64
	Query      string
	Entries    []Entry
	Superseded bool
}

// Searcher runs debounced lookups where only the most recent query wins.
// A Searcher serves one caller stream, such as one live search connection.
type Searcher struct {
	catalog  *Catalog
	debounce time.Duration
	latency  time.Duration

	mu     sync.Mutex
	latest uint64
	cancel context.CancelFunc
}

// NewSearcher creates a searcher. latency simulates a remote provider lookup.
func NewSearcher(catalog *Catalog, debounce, latency time.Duration) *Searcher {
	return &Searcher{catalog: catalog, debounce: debounce, latency: latency}
}

// Search waits for the debounce window and looks the query up.
// Starting a new search cancels the wait of the previous one; a search that
// completes after a newer one started is reported as superseded and carries no entries.
func (s *Searcher) Search(ctx context.Context, query string) SearchResult {
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	s.latest++
	token := s.latest
	searchCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.mu.Unlock()
	defer cancel()

	result := SearchResult{Token: token, Query: query}

	if !sleep(searchCtx, s.debounce+s.latency) {
		result.Superseded = true
		return result
	}

	entries := s.catalog.Lookup(query)

	if !s.isLatest(token) {
		result.Superseded = true
		return result
	}

	result.Entries = entries
	return result
}

// Latest returns the token of the most recent search.
func (s *Searcher) Latest() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.latest
}

func (s *Searcher) isLatest(token uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.latest == token
}

func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
