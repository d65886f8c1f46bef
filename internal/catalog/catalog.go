// Package catalog holds the in-memory link catalog built from the mirrored
// channels and the classifier that turns channel messages into entries.
package catalog

import (
	"sync/atomic"
	"time"
)

// DefaultSubcategory is the bucket for messages without a bracket tag
const DefaultSubcategory = "Otros"

// Kind is the type of a catalog entry
type Kind string

const (
	KindText  Kind = "text"
	KindFile  Kind = "file"
	KindVideo Kind = "video"
)

// Entry is one deliverable link or file
type Entry struct {
	Label     string
	URL       string
	Kind      Kind
	Name      string
	Thumbnail string
}

// Buckets maps subcategory names to their entries, keeping the order in
// which the subcategories were first seen.
type Buckets struct {
	order   []string
	entries map[string][]Entry
}

// NewBuckets creates an empty bucket set
func NewBuckets() *Buckets {
	return &Buckets{entries: make(map[string][]Entry)}
}

// Add appends entries to a subcategory, creating it if needed. The bucket
// exists afterwards even when no entries are given.
func (b *Buckets) Add(sub string, entries ...Entry) {
	if _, ok := b.entries[sub]; !ok {
		b.order = append(b.order, sub)
		b.entries[sub] = []Entry{}
	}
	b.entries[sub] = append(b.entries[sub], entries...)
}

// Names returns the subcategory names in first-seen order
func (b *Buckets) Names() []string {
	if b == nil {
		return nil
	}
	names := make([]string, len(b.order))
	copy(names, b.order)
	return names
}

// Entries returns a copy of the entries of a subcategory
func (b *Buckets) Entries(sub string) []Entry {
	if b == nil {
		return nil
	}
	src := b.entries[sub]
	out := make([]Entry, len(src))
	copy(out, src)
	return out
}

// Len returns the number of subcategories
func (b *Buckets) Len() int {
	if b == nil {
		return 0
	}
	return len(b.order)
}

// Count returns the total number of entries across all subcategories
func (b *Buckets) Count() int {
	if b == nil {
		return 0
	}
	n := 0
	for _, entries := range b.entries {
		n += len(entries)
	}
	return n
}

// OnlyDefault reports whether the default bucket is the only subcategory
func (b *Buckets) OnlyDefault() bool {
	return b.Len() == 1 && b.order[0] == DefaultSubcategory
}

// Snapshot is an immutable view of the whole catalog
type Snapshot struct {
	BuiltAt    time.Time
	categories map[string]*Buckets
}

// NewSnapshot wraps per-category buckets. The map must not be modified
// after the call.
func NewSnapshot(builtAt time.Time, categories map[string]*Buckets) *Snapshot {
	if categories == nil {
		categories = make(map[string]*Buckets)
	}
	return &Snapshot{BuiltAt: builtAt, categories: categories}
}

// Buckets returns the buckets of a category, or nil when the category has
// never been loaded
func (s *Snapshot) Buckets(category string) *Buckets {
	return s.categories[category]
}

// Store publishes catalog snapshots. Readers always see a complete snapshot.
type Store struct {
	current atomic.Pointer[Snapshot]
}

// NewStore creates a store holding an empty snapshot
func NewStore() *Store {
	s := &Store{}
	s.current.Store(NewSnapshot(time.Time{}, nil))
	return s
}

// Snapshot returns the current snapshot
func (s *Store) Snapshot() *Snapshot {
	return s.current.Load()
}

// Publish replaces the current snapshot
func (s *Store) Publish(snap *Snapshot) {
	s.current.Store(snap)
}

// Loaded reports whether at least one refresh has been published
func (s *Store) Loaded() bool {
	return !s.current.Load().BuiltAt.IsZero()
}
