// Package refresh rebuilds the link catalog from the mirrored channels.
package refresh

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/zerobugdebug/link-catalog-bot/internal/catalog"
	"github.com/zerobugdebug/link-catalog-bot/internal/config"
	"github.com/zerobugdebug/link-catalog-bot/internal/metrics"
	"github.com/zerobugdebug/link-catalog-bot/internal/platform"
)

// DefaultInterval is the pause between two refresh cycles
const DefaultInterval = 5 * time.Minute

// Refresher periodically scans the category channels and publishes a new
// catalog snapshot
type Refresher struct {
	history    platform.History
	store      *catalog.Store
	classifier *catalog.Classifier
	categories []config.Category
	limit      int
	interval   time.Duration

	mu   sync.Mutex
	done chan struct{}
}

// NewRefresher creates a refresher for the given categories
func NewRefresher(history platform.History, store *catalog.Store, classifier *catalog.Classifier,
	categories []config.Category, limit int, interval time.Duration) *Refresher {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Refresher{
		history:    history,
		store:      store,
		classifier: classifier,
		categories: categories,
		limit:      limit,
		interval:   interval,
	}
}

// Start runs a refresh immediately and then on every interval tick, until
// ctx is cancelled or Stop is called
func (r *Refresher) Start(ctx context.Context) {
	r.mu.Lock()
	r.done = make(chan struct{})
	done := r.done
	r.mu.Unlock()

	ticker := time.NewTicker(r.interval)

	go func() {
		defer ticker.Stop()

		r.Refresh(ctx)

		for {
			select {
			case <-ticker.C:
				r.Refresh(ctx)
			case <-done:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	log.Info().
		Dur("interval", r.interval).
		Int("categories", len(r.categories)).
		Int("limit", r.limit).
		Msg("Catalog refresher started")
}

// Stop terminates the refresh loop
func (r *Refresher) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.done != nil {
		close(r.done)
		r.done = nil
		log.Info().Msg("Catalog refresher stopped")
	}
}

// Refresh rebuilds every category and publishes the result as a single
// snapshot. A category that fails to load keeps its previous buckets.
func (r *Refresher) Refresh(ctx context.Context) {
	start := time.Now()
	previous := r.store.Snapshot()
	next := make(map[string]*catalog.Buckets, len(r.categories))

	failed := 0
	entries := 0

	for _, cat := range r.categories {
		buckets, err := r.loadCategory(ctx, cat)
		if err != nil {
			log.Error().
				Err(err).
				Str("category", cat.Key).
				Str("channelID", cat.ChannelID).
				Msg("Failed to refresh category, keeping previous links")
			metrics.RefreshCategoryFailuresTotal.WithLabelValues(cat.Key).Inc()
			failed++

			if prev := previous.Buckets(cat.Key); prev != nil {
				next[cat.Key] = prev
			}
			continue
		}

		next[cat.Key] = buckets
		entries += buckets.Count()
		metrics.CatalogEntries.WithLabelValues(cat.Key).Set(float64(buckets.Count()))

		log.Debug().
			Str("category", cat.Key).
			Int("subcategories", buckets.Len()).
			Int("entries", buckets.Count()).
			Msg("Category refreshed")
	}

	r.store.Publish(catalog.NewSnapshot(time.Now(), next))

	status := "ok"
	if failed > 0 {
		status = "partial"
		if failed == len(r.categories) {
			status = "failed"
		}
	}
	metrics.RefreshRunsTotal.WithLabelValues(status).Inc()

	log.Info().
		Int("categories", len(r.categories)).
		Int("failed", failed).
		Int("entries", entries).
		Dur("took", time.Since(start)).
		Msg("Links and files refreshed")
}

// loadCategory fetches and classifies the recent history of one channel
func (r *Refresher) loadCategory(ctx context.Context, cat config.Category) (*catalog.Buckets, error) {
	messages, err := r.history.RecentMessages(ctx, cat.ChannelID, r.limit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch history of %s: %w", cat.ChannelID, err)
	}

	buckets := catalog.NewBuckets()
	for _, msg := range messages {
		sub, entries := r.classifier.Classify(msg)
		buckets.Add(sub, entries...)
	}
	return buckets, nil
}
