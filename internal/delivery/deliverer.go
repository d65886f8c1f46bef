package delivery

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/zerobugdebug/link-catalog-bot/internal/catalog"
	"github.com/zerobugdebug/link-catalog-bot/internal/config"
	"github.com/zerobugdebug/link-catalog-bot/internal/metrics"
	"github.com/zerobugdebug/link-catalog-bot/internal/platform"
)

// ErrEmpty is returned when there is nothing to deliver
var ErrEmpty = errors.New("no entries to deliver")

// DefaultInterval spaces consecutive direct messages
const DefaultInterval = 300 * time.Millisecond

// Deliverer sends entries one direct message at a time, paced by a token
// bucket so a large bucket does not burst the platform API.
type Deliverer struct {
	sender    platform.Sender
	formatter *Formatter
	mode      config.DeliveryMode
	limiter   *rate.Limiter
}

// NewDeliverer creates a deliverer; a non-positive interval uses DefaultInterval
func NewDeliverer(sender platform.Sender, formatter *Formatter, mode config.DeliveryMode, interval time.Duration) *Deliverer {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Deliverer{
		sender:    sender,
		formatter: formatter,
		mode:      mode,
		limiter:   rate.NewLimiter(rate.Every(interval), 1),
	}
}

// Mode returns the delivery mode
func (d *Deliverer) Mode() config.DeliveryMode {
	return d.mode
}

// Deliver sends every entry to the user. The first failed send aborts the
// delivery; entries already sent stay sent.
func (d *Deliverer) Deliver(ctx context.Context, userID string, cat config.Category, entries []catalog.Entry) (int, error) {
	if len(entries) == 0 {
		return 0, ErrEmpty
	}

	sent := 0
	for _, e := range entries {
		if err := d.limiter.Wait(ctx); err != nil {
			return sent, fmt.Errorf("delivery interrupted: %w", err)
		}

		var msg platform.Direct
		switch d.mode {
		case config.DeliveryLinks:
			msg = d.formatter.Plain(cat.DisplayName(), e)
		default:
			msg = d.formatter.Preview(cat.DisplayName(), e)
		}

		if err := d.sender.SendDirect(ctx, userID, msg); err != nil {
			metrics.DirectMessagesTotal.WithLabelValues("error").Inc()
			return sent, fmt.Errorf("failed to send direct message %d/%d: %w", sent+1, len(entries), err)
		}
		metrics.DirectMessagesTotal.WithLabelValues("ok").Inc()
		sent++
	}

	metrics.DeliveriesTotal.WithLabelValues(string(d.mode)).Inc()

	log.Info().
		Str("userID", userID).
		Str("category", cat.Key).
		Str("mode", string(d.mode)).
		Int("sent", sent).
		Msg("Entries delivered by direct message")

	return sent, nil
}
