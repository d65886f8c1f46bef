// Package discord connects the catalog bot to a Discord guild through the
// gateway websocket.
package discord

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/zerobugdebug/link-catalog-bot/internal/platform"
)

const eventBuffer = 64

// maxUploadBytes caps files re-uploaded into a direct message
const maxUploadBytes = 25 << 20

var errNoHandle = errors.New("interaction carries no discord payload")

// Gateway is a Discord bot session
type Gateway struct {
	session *discordgo.Session
	events  chan func(context.Context, platform.Handler)
}

var _ platform.Gateway = (*Gateway)(nil)

// New creates a Discord gateway for a bot token. The websocket is opened by
// Run.
func New(token string) (*Gateway, error) {
	routeLogs()

	s, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("failed to create discord session: %w", err)
	}

	s.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsMessageContent
	s.LogLevel = discordgo.LogWarning
	if zerolog.GlobalLevel() <= zerolog.DebugLevel {
		s.LogLevel = discordgo.LogInformational
	}

	g := &Gateway{
		session: s,
		events:  make(chan func(context.Context, platform.Handler), eventBuffer),
	}

	s.AddHandler(g.onReady)
	s.AddHandler(g.onMessage)
	s.AddHandler(g.onInteraction)

	return g, nil
}

// Name implements platform.Gateway
func (g *Gateway) Name() string {
	return "discord"
}

// Run opens the websocket and handles events one at a time until ctx is
// cancelled
func (g *Gateway) Run(ctx context.Context, handler platform.Handler) error {
	if err := g.session.Open(); err != nil {
		return fmt.Errorf("failed to open discord session: %w", err)
	}
	defer func() {
		if err := g.session.Close(); err != nil {
			log.Warn().Err(err).Msg("Failed to close discord session")
		}
	}()

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("Discord gateway stopping")
			return nil
		case fn := <-g.events:
			fn(ctx, handler)
		}
	}
}

func (g *Gateway) onReady(_ *discordgo.Session, r *discordgo.Ready) {
	log.Info().
		Str("user", r.User.Username).
		Str("userID", r.User.ID).
		Int("guilds", len(r.Guilds)).
		Msg("Connected to Discord")
}

func (g *Gateway) onMessage(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || (s.State != nil && s.State.User != nil && m.Author.ID == s.State.User.ID) {
		return
	}
	evt := toMessageEvent(m.Message)
	g.enqueue(func(ctx context.Context, h platform.Handler) {
		h.HandleMessage(ctx, evt)
	})
}

func (g *Gateway) onInteraction(_ *discordgo.Session, i *discordgo.InteractionCreate) {
	ia, ok := toInteraction(i.Interaction)
	if !ok {
		return
	}
	g.enqueue(func(ctx context.Context, h platform.Handler) {
		h.HandleInteraction(ctx, ia)
	})
}

func (g *Gateway) enqueue(fn func(context.Context, platform.Handler)) {
	select {
	case g.events <- fn:
	default:
		log.Warn().Int("buffer", eventBuffer).Msg("Event queue full, event dropped")
	}
}

// RecentMessages implements platform.History
func (g *Gateway) RecentMessages(ctx context.Context, channelID string, limit int) ([]platform.HistoryMessage, error) {
	if limit > maxHistoryPage {
		limit = maxHistoryPage
	}

	log.Trace().
		Str("channelID", channelID).
		Int("limit", limit).
		Msg("Fetching channel messages")

	msgs, err := g.session.ChannelMessages(channelID, limit, "", "", "", discordgo.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("failed to get messages of %s: %w", channelID, err)
	}

	out := make([]platform.HistoryMessage, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, toHistoryMessage(m))
	}
	return out, nil
}

// Reply implements platform.Responder by replying to the trigger message
func (g *Gateway) Reply(ctx context.Context, origin platform.Origin, view platform.View) error {
	_, err := g.session.ChannelMessageSendComplex(origin.ChannelID, &discordgo.MessageSend{
		Content:    view.Text,
		Components: components(view),
		Reference:  &discordgo.MessageReference{MessageID: origin.MessageID, ChannelID: origin.ChannelID},
	}, discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to post reply: %w", err)
	}
	return nil
}

// Defer implements platform.Responder. Menu interactions defer an update of
// the menu; button presses defer a new ephemeral message.
func (g *Gateway) Defer(ctx context.Context, ia *platform.Interaction) error {
	p, ok := ia.Handle.(*pending)
	if !ok {
		return errNoHandle
	}
	if p.deferred {
		return nil
	}

	resp := &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Flags: discordgo.MessageFlagsEphemeral},
	}
	if ia.FromMenu {
		resp = &discordgo.InteractionResponse{Type: discordgo.InteractionResponseDeferredMessageUpdate}
	}

	if err := g.session.InteractionRespond(p.raw, resp, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("failed to defer interaction: %w", err)
	}
	p.deferred = true
	return nil
}

// Respond implements platform.Responder
func (g *Gateway) Respond(ctx context.Context, ia *platform.Interaction, view platform.View) error {
	return g.answer(ctx, ia, view.Text, components(view))
}

// Acknowledge implements platform.Responder
func (g *Gateway) Acknowledge(ctx context.Context, ia *platform.Interaction, text string) error {
	return g.answer(ctx, ia, text, []discordgo.MessageComponent{})
}

func (g *Gateway) answer(ctx context.Context, ia *platform.Interaction, text string, comps []discordgo.MessageComponent) error {
	p, ok := ia.Handle.(*pending)
	if !ok {
		return errNoHandle
	}

	if p.deferred {
		_, err := g.session.InteractionResponseEdit(p.raw, &discordgo.WebhookEdit{
			Content:    &text,
			Components: &comps,
		}, discordgo.WithContext(ctx))
		if err != nil {
			return fmt.Errorf("failed to edit deferred response: %w", err)
		}
		return nil
	}

	resp := &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content:    text,
			Components: comps,
			Flags:      discordgo.MessageFlagsEphemeral,
		},
	}
	if ia.FromMenu {
		resp.Type = discordgo.InteractionResponseUpdateMessage
		resp.Data.Flags = 0
	}

	if err := g.session.InteractionRespond(p.raw, resp, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("failed to respond to interaction: %w", err)
	}
	return nil
}

// SendDirect implements platform.Sender. A file is downloaded and attached
// to the same message as its preview.
func (g *Gateway) SendDirect(ctx context.Context, userID string, msg platform.Direct) error {
	channel, err := g.session.UserChannelCreate(userID, discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to open direct channel: %w", err)
	}

	send := &discordgo.MessageSend{Content: msg.Text}
	if msg.Preview != nil {
		send.Embeds = []*discordgo.MessageEmbed{previewEmbed(msg.Preview)}
	}

	if msg.File != nil {
		body, contentType, err := g.download(ctx, msg.File.URL)
		if err != nil {
			return fmt.Errorf("failed to download %s: %w", msg.File.Name, err)
		}
		defer body.Close()
		send.Files = []*discordgo.File{{Name: msg.File.Name, ContentType: contentType, Reader: body}}
	}

	if _, err := g.session.ChannelMessageSendComplex(channel.ID, send, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("failed to send direct message: %w", err)
	}
	return nil
}

func (g *Gateway) download(ctx context.Context, url string) (io.ReadCloser, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", err
	}

	resp, err := g.session.Client.Do(req)
	if err != nil {
		return nil, "", err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, "", fmt.Errorf("unexpected status %s", resp.Status)
	}

	body := struct {
		io.Reader
		io.Closer
	}{io.LimitReader(resp.Body, maxUploadBytes), resp.Body}
	return body, resp.Header.Get("Content-Type"), nil
}
