// Package session keeps the short-lived selection state of menu flows.
// Every flow gets its own opaque id, embedded in the menu values it
// renders, so concurrent users never see each other's lookup tables.
package session

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/zerobugdebug/link-catalog-bot/internal/catalog"
	"github.com/zerobugdebug/link-catalog-bot/internal/metrics"
)

// ErrStale is returned when a menu value no longer resolves
var ErrStale = errors.New("stale selection")

const (
	// DefaultTTL is how long an unfinished flow stays resolvable
	DefaultTTL = 15 * time.Minute
	// CleanupInterval is how often expired flows are evicted
	CleanupInterval = time.Minute

	valueSeparator = "|"
	subcatPrefix   = "subcat_"
	linkPrefix     = "link_"
)

// Session is the lookup state of one menu flow
type Session struct {
	ID            string
	UserID        string
	Category      string
	Subcategory   string
	Subcategories map[string]string        // synthetic key -> subcategory name
	Links         map[string]catalog.Entry // synthetic key -> offered entry
	CreatedAt     time.Time
}

// Store holds live sessions
type Store struct {
	sessions map[string]*Session
	ttl      time.Duration
	now      func() time.Time
	mu       sync.RWMutex
	done     chan struct{}
}

// NewStore creates a session store; a non-positive ttl uses DefaultTTL
func NewStore(ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Store{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		now:      time.Now,
		done:     make(chan struct{}),
	}
}

// Start begins the periodic eviction of expired sessions
func (s *Store) Start() {
	s.mu.RLock()
	done := s.done
	s.mu.RUnlock()

	if done == nil {
		return
	}

	ticker := time.NewTicker(CleanupInterval)

	go func() {
		for {
			select {
			case <-ticker.C:
				if removed := s.CleanupExpired(); removed > 0 {
					log.Debug().Int("removed", removed).Msg("Expired selection sessions evicted")
				}
			case <-done:
				ticker.Stop()
				return
			}
		}
	}()

	log.Info().Dur("ttl", s.ttl).Dur("interval", CleanupInterval).Msg("Session eviction started")
}

// Stop ends the eviction loop. Further calls do nothing.
func (s *Store) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.done != nil {
		close(s.done)
		s.done = nil
		log.Info().Msg("Session eviction stopped")
	}
}

// Create opens a session for a user's flow through a category
func (s *Store) Create(userID, category string) *Session {
	sess := &Session{
		ID:            uuid.NewString(),
		UserID:        userID,
		Category:      category,
		Subcategories: make(map[string]string),
		Links:         make(map[string]catalog.Entry),
		CreatedAt:     s.now(),
	}

	s.mu.Lock()
	s.sessions[sess.ID] = sess
	count := len(s.sessions)
	s.mu.Unlock()

	metrics.SessionsActive.Set(float64(count))
	return sess
}

// AddSubcategory registers a subcategory and returns the menu value for it
func (s *Store) AddSubcategory(sess *Session, index int, name string) string {
	key := fmt.Sprintf("%s%d", subcatPrefix, index)

	s.mu.Lock()
	sess.Subcategories[key] = name
	s.mu.Unlock()

	return sess.ID + valueSeparator + key
}

// AddLink registers an offered entry and returns the menu value for it
func (s *Store) AddLink(sess *Session, index int, entry catalog.Entry) string {
	key := fmt.Sprintf("%s%d", linkPrefix, index)

	s.mu.Lock()
	sess.Links[key] = entry
	s.mu.Unlock()

	return sess.ID + valueSeparator + key
}

// ResolveSubcategory maps a subcategory menu value back to its session
// and subcategory name. The session remembers the choice.
func (s *Store) ResolveSubcategory(value, userID string) (*Session, string, error) {
	sess, key, err := s.lookup(value, userID)
	if err != nil {
		return nil, "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	name, ok := sess.Subcategories[key]
	if !ok {
		return nil, "", fmt.Errorf("%w: unknown key %q", ErrStale, key)
	}
	sess.Subcategory = name
	return sess, name, nil
}

// ResolveLink maps a link menu value back to its session and entry
func (s *Store) ResolveLink(value, userID string) (*Session, catalog.Entry, error) {
	sess, key, err := s.lookup(value, userID)
	if err != nil {
		return nil, catalog.Entry{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := sess.Links[key]
	if !ok {
		return nil, catalog.Entry{}, fmt.Errorf("%w: unknown key %q", ErrStale, key)
	}
	return sess, entry, nil
}

func (s *Store) lookup(value, userID string) (*Session, string, error) {
	id, key, ok := strings.Cut(value, valueSeparator)
	if !ok || id == "" || key == "" {
		return nil, "", fmt.Errorf("%w: malformed value %q", ErrStale, value)
	}

	s.mu.RLock()
	sess, exists := s.sessions[id]
	s.mu.RUnlock()

	if !exists {
		return nil, "", fmt.Errorf("%w: unknown session", ErrStale)
	}
	if s.now().Sub(sess.CreatedAt) > s.ttl {
		s.Delete(id)
		return nil, "", fmt.Errorf("%w: session expired", ErrStale)
	}
	if sess.UserID != userID {
		return nil, "", fmt.Errorf("%w: session belongs to another user", ErrStale)
	}
	return sess, key, nil
}

// Delete removes a session
func (s *Store) Delete(id string) {
	s.mu.Lock()
	delete(s.sessions, id)
	count := len(s.sessions)
	s.mu.Unlock()

	metrics.SessionsActive.Set(float64(count))
}

// CleanupExpired removes sessions older than the TTL
func (s *Store) CleanupExpired() (removed int) {
	s.mu.Lock()
	now := s.now()
	for id, sess := range s.sessions {
		if now.Sub(sess.CreatedAt) > s.ttl {
			delete(s.sessions, id)
			removed++
		}
	}
	count := len(s.sessions)
	s.mu.Unlock()

	metrics.SessionsActive.Set(float64(count))
	return removed
}

// Count returns the number of live sessions
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.sessions)
}
