package state

import (
	"sort"

	"github.com/atomicstack/replay-control/internal/recorder"
)

// CatalogStore holds the last successfully fetched catalog.
type CatalogStore interface {
	Entries() []recorder.Recording
	SetEntries([]recorder.Recording)
	Loaded() bool
	Categories() []string
}

type catalogStore struct {
	entries []recorder.Recording
	loaded  bool
}

func NewCatalogStore() CatalogStore {
	return &catalogStore{}
}

func (s *catalogStore) Entries() []recorder.Recording {
	return cloneRecordings(s.entries)
}

// SetEntries replaces the catalog wholesale.
func (s *catalogStore) SetEntries(entries []recorder.Recording) {
	s.entries = cloneRecordings(entries)
	s.loaded = true
}

func (s *catalogStore) Loaded() bool {
	return s.loaded
}

// Categories returns the distinct non-empty categories, sorted.
func (s *catalogStore) Categories() []string {
	seen := make(map[string]struct{})
	var out []string
	for _, r := range s.entries {
		if r.Category == "" {
			continue
		}
		if _, ok := seen[r.Category]; ok {
			continue
		}
		seen[r.Category] = struct{}{}
		out = append(out, r.Category)
	}
	sort.Strings(out)
	return out
}

func cloneRecordings(entries []recorder.Recording) []recorder.Recording {
	if len(entries) == 0 {
		return nil
	}
	dup := make([]recorder.Recording, len(entries))
	copy(dup, entries)
	return dup
}
