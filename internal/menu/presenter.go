// Package menu drives the interactive catalog menu: the category buttons
// posted on a trigger message, the ephemeral subcategory and link selects,
// and the hand-off to delivery.
package menu

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/zerobugdebug/link-catalog-bot/internal/catalog"
	"github.com/zerobugdebug/link-catalog-bot/internal/config"
	"github.com/zerobugdebug/link-catalog-bot/internal/delivery"
	"github.com/zerobugdebug/link-catalog-bot/internal/metrics"
	"github.com/zerobugdebug/link-catalog-bot/internal/platform"
	"github.com/zerobugdebug/link-catalog-bot/internal/session"
)

var errUnknownCategory = errors.New("unknown category")

// Options wires a Presenter
type Options struct {
	Catalog    *catalog.Store
	Sessions   *session.Store
	Deliverer  *delivery.Deliverer
	Responder  platform.Responder
	Classifier *catalog.Classifier
	Layout     config.Layout
	Trigger    string
	BotName    string
}

// Presenter implements platform.Handler
type Presenter struct {
	catalog    *catalog.Store
	sessions   *session.Store
	deliverer  *delivery.Deliverer
	responder  platform.Responder
	classifier *catalog.Classifier
	layout     config.Layout
	trigger    string
	botName    string
}

// NewPresenter creates a presenter from its options
func NewPresenter(opts Options) *Presenter {
	return &Presenter{
		catalog:    opts.Catalog,
		sessions:   opts.Sessions,
		deliverer:  opts.Deliverer,
		responder:  opts.Responder,
		classifier: opts.Classifier,
		layout:     opts.Layout,
		trigger:    strings.ToLower(opts.Trigger),
		botName:    opts.BotName,
	}
}

// HandleMessage answers trigger messages with the category buttons
func (p *Presenter) HandleMessage(ctx context.Context, evt platform.MessageEvent) {
	if evt.FromBot || !strings.Contains(strings.ToLower(evt.Content), p.trigger) {
		return
	}

	buttons := make([]platform.Button, 0, len(p.layout.Categories))
	for _, cat := range p.layout.Categories {
		style := platform.StylePrimary
		if cat.Highlight {
			style = platform.StyleSuccess
		}
		buttons = append(buttons, platform.Button{
			ID:    CategoryPrefix + cat.Key,
			Label: "🔹 " + cat.DisplayName(),
			Style: style,
		})
	}

	view := platform.View{Text: welcomeText(p.botName), Buttons: buttons}
	if err := p.responder.Reply(ctx, evt.Origin, view); err != nil {
		log.Error().
			Err(err).
			Str("channelID", evt.ChannelID).
			Str("messageID", evt.MessageID).
			Msg("Failed to post category menu")
		return
	}

	metrics.MenusOpenedTotal.Inc()
	log.Debug().
		Str("channelID", evt.ChannelID).
		Str("user", evt.AuthorID).
		Msg("Category menu posted")
}

// HandleInteraction routes button presses and select choices. Any failure
// is logged and, when nothing was answered yet, reported to the user.
func (p *Presenter) HandleInteraction(ctx context.Context, ia *platform.Interaction) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().
				Interface("panic", r).
				Str("component", ia.ComponentID).
				Str("userID", ia.UserID).
				Msg("Interaction handler panicked")
			p.fail(ctx, ia, "panic", TextError)
		}
	}()

	err := p.dispatch(ctx, ia)
	if err == nil {
		return
	}

	if errors.Is(err, session.ErrStale) {
		log.Warn().
			Err(err).
			Str("component", ia.ComponentID).
			Str("userID", ia.UserID).
			Msg("Stale menu selection")
		p.fail(ctx, ia, "stale", TextStale)
		return
	}

	log.Error().
		Err(err).
		Str("component", ia.ComponentID).
		Str("userID", ia.UserID).
		Msg("Failed to handle interaction")
	p.fail(ctx, ia, "error", TextError)
}

func (p *Presenter) dispatch(ctx context.Context, ia *platform.Interaction) error {
	switch {
	case strings.HasPrefix(ia.ComponentID, CategoryPrefix):
		return p.onCategory(ctx, ia, strings.TrimPrefix(ia.ComponentID, CategoryPrefix))
	case ia.ComponentID == SubcategorySelect:
		return p.onSubcategory(ctx, ia)
	case ia.ComponentID == LinkSelect:
		return p.onLink(ctx, ia)
	default:
		log.Debug().Str("component", ia.ComponentID).Msg("Ignoring foreign interaction")
		return nil
	}
}

// onCategory offers the subcategories of a category, or delivers straight
// away when the default bucket is all there is
func (p *Presenter) onCategory(ctx context.Context, ia *platform.Interaction, key string) error {
	cat, ok := p.layout.Category(key)
	if !ok {
		return fmt.Errorf("%w: %q", errUnknownCategory, key)
	}

	buckets := p.catalog.Snapshot().Buckets(key)
	if buckets.Len() == 0 {
		return p.respond(ctx, ia, platform.View{Text: TextNoLinks})
	}

	if buckets.OnlyDefault() {
		return p.deliver(ctx, ia, cat, buckets.Entries(catalog.DefaultSubcategory), "")
	}

	sess := p.sessions.Create(ia.UserID, key)
	names := buckets.Names()
	options := make([]platform.Option, 0, len(names))
	for i, name := range names {
		options = append(options, platform.Option{
			Label: fmt.Sprintf("%s | %s", p.classifier.Emoji(name), name),
			Value: p.sessions.AddSubcategory(sess, i, name),
		})
	}

	return p.respond(ctx, ia, platform.View{
		Text: fmt.Sprintf(TextSubcategories, cat.DisplayName()),
		Select: &platform.Select{
			ID:          SubcategorySelect,
			Placeholder: TextPickSubcat,
			Options:     options,
		},
	})
}

// onSubcategory delivers the chosen bucket, or offers its links one by one
// in links mode
func (p *Presenter) onSubcategory(ctx context.Context, ia *platform.Interaction) error {
	sess, name, err := p.sessions.ResolveSubcategory(ia.Value(), ia.UserID)
	if err != nil {
		return err
	}

	cat, ok := p.layout.Category(sess.Category)
	if !ok {
		p.sessions.Delete(sess.ID)
		return fmt.Errorf("%w: %q", errUnknownCategory, sess.Category)
	}

	entries := p.catalog.Snapshot().Buckets(sess.Category).Entries(name)

	if p.deliverer.Mode() != config.DeliveryLinks || len(entries) == 0 {
		return p.deliver(ctx, ia, cat, entries, sess.ID)
	}

	options := make([]platform.Option, 0, len(entries))
	for i, e := range entries {
		options = append(options, platform.Option{
			Label: e.Label,
			Value: p.sessions.AddLink(sess, i, e),
		})
	}

	return p.respond(ctx, ia, platform.View{
		Text: fmt.Sprintf(TextLinks, name),
		Select: &platform.Select{
			ID:          LinkSelect,
			Placeholder: TextPickLink,
			Options:     options,
		},
	})
}

// onLink delivers a single link picked from the links menu
func (p *Presenter) onLink(ctx context.Context, ia *platform.Interaction) error {
	sess, entry, err := p.sessions.ResolveLink(ia.Value(), ia.UserID)
	if err != nil {
		return err
	}

	cat, ok := p.layout.Category(sess.Category)
	if !ok {
		p.sessions.Delete(sess.ID)
		return fmt.Errorf("%w: %q", errUnknownCategory, sess.Category)
	}

	return p.deliver(ctx, ia, cat, []catalog.Entry{entry}, sess.ID)
}

// deliver sends entries by direct message and closes the flow
func (p *Presenter) deliver(ctx context.Context, ia *platform.Interaction, cat config.Category,
	entries []catalog.Entry, sessionID string) error {
	if sessionID != "" {
		defer p.sessions.Delete(sessionID)
	}

	if len(entries) == 0 {
		return p.respond(ctx, ia, platform.View{Text: TextNoLinks})
	}

	if err := p.responder.Defer(ctx, ia); err != nil {
		return fmt.Errorf("failed to defer interaction: %w", err)
	}

	if _, err := p.deliverer.Deliver(ctx, ia.UserID, cat, entries); err != nil {
		return err
	}

	if err := p.responder.Acknowledge(ctx, ia, TextDelivered); err != nil {
		return fmt.Errorf("failed to acknowledge interaction: %w", err)
	}
	ia.Replied = true
	return nil
}

func (p *Presenter) respond(ctx context.Context, ia *platform.Interaction, view platform.View) error {
	if err := p.responder.Respond(ctx, ia, view); err != nil {
		return fmt.Errorf("failed to respond to interaction: %w", err)
	}
	ia.Replied = true
	return nil
}

// fail reports an error to the user once per interaction
func (p *Presenter) fail(ctx context.Context, ia *platform.Interaction, reason, text string) {
	metrics.InteractionErrorsTotal.WithLabelValues(reason).Inc()

	if ia.Replied {
		return
	}
	if err := p.respond(ctx, ia, platform.View{Text: text}); err != nil {
		log.Error().
			Err(err).
			Str("component", ia.ComponentID).
			Str("userID", ia.UserID).
			Msg("Failed to report interaction error")
	}
}
