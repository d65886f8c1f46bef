// Package slack connects the catalog bot to a Slack workspace over Socket
// Mode.
package slack

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/slack-go/slack"
	"github.com/slack-go/slack/slackevents"
	"github.com/slack-go/slack/socketmode"

	"github.com/zerobugdebug/link-catalog-bot/internal/platform"
)

// maxHistoryPage is the largest page conversations.history returns
const maxHistoryPage = 200

// Gateway is a Slack workspace reached through Socket Mode
type Gateway struct {
	api    *slack.Client
	socket *socketmode.Client
	botID  string
}

var _ platform.Gateway = (*Gateway)(nil)

// New creates a Slack gateway and verifies the bot token
func New(ctx context.Context, botToken, appToken string) (*Gateway, error) {
	api := slack.New(
		botToken,
		slack.OptionAppLevelToken(appToken),
		slack.OptionLog(newLogAdapter("slack-api")),
	)

	log.Debug().Msg("Testing authentication with Slack")
	authTest, err := api.AuthTestContext(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Authentication test failed")
		return nil, fmt.Errorf("auth test failed: %w", err)
	}

	log.Info().
		Str("user", authTest.User).
		Str("userID", authTest.UserID).
		Str("team", authTest.Team).
		Msg("Connected to Slack")

	return &Gateway{
		api:    api,
		socket: socketmode.New(api, socketmode.OptionLog(newLogAdapter("slack-socket"))),
		botID:  authTest.UserID,
	}, nil
}

// Name implements platform.Gateway
func (g *Gateway) Name() string {
	return "slack"
}

// Run processes socket mode events until ctx is cancelled
func (g *Gateway) Run(ctx context.Context, handler platform.Handler) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- g.socket.RunContext(ctx)
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-errCh:
			if err != nil && !errors.Is(err, context.Canceled) {
				return fmt.Errorf("socket mode stopped: %w", err)
			}
			return nil
		case evt, ok := <-g.socket.Events:
			if !ok {
				return nil
			}
			g.dispatch(ctx, evt, handler)
		}
	}
}

func (g *Gateway) dispatch(ctx context.Context, evt socketmode.Event, handler platform.Handler) {
	switch evt.Type {
	case socketmode.EventTypeConnecting:
		log.Debug().Msg("Connecting to Slack with Socket Mode")
	case socketmode.EventTypeConnected:
		log.Info().Msg("Connected to Slack with Socket Mode")
	case socketmode.EventTypeConnectionError:
		log.Warn().Msg("Socket Mode connection failed, retrying")

	case socketmode.EventTypeEventsAPI:
		g.ack(evt)
		apiEvent, ok := evt.Data.(slackevents.EventsAPIEvent)
		if !ok || apiEvent.Type != slackevents.CallbackEvent {
			return
		}
		ev, ok := apiEvent.InnerEvent.Data.(*slackevents.MessageEvent)
		if !ok || ev.User == g.botID {
			return
		}
		if msg, ok := toMessageEvent(ev); ok {
			handler.HandleMessage(ctx, msg)
		}

	case socketmode.EventTypeInteractive:
		g.ack(evt)
		cb, ok := evt.Data.(slack.InteractionCallback)
		if !ok {
			return
		}
		if ia, ok := toInteraction(cb); ok {
			handler.HandleInteraction(ctx, ia)
		}
	}
}

func (g *Gateway) ack(evt socketmode.Event) {
	if evt.Request != nil {
		g.socket.Ack(*evt.Request)
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
		Msg("Fetching conversation history")

	history, err := g.api.GetConversationHistoryContext(ctx, &slack.GetConversationHistoryParameters{
		ChannelID: channelID,
		Limit:     limit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get history of %s: %w", channelID, err)
	}

	out := make([]platform.HistoryMessage, 0, len(history.Messages))
	for _, m := range history.Messages {
		if msg, ok := toHistoryMessage(m); ok {
			out = append(out, msg)
		}
	}
	return out, nil
}

// Reply implements platform.Responder by answering in the trigger's thread
func (g *Gateway) Reply(ctx context.Context, origin platform.Origin, view platform.View) error {
	_, _, err := g.api.PostMessageContext(ctx, origin.ChannelID,
		slack.MsgOptionText(view.Text, false),
		slack.MsgOptionBlocks(viewBlocks(view)...),
		slack.MsgOptionTS(origin.MessageID),
	)
	if err != nil {
		return fmt.Errorf("failed to post reply: %w", err)
	}
	return nil
}

// Defer implements platform.Responder. Socket mode events are acknowledged
// on receipt, so there is nothing left to do.
func (g *Gateway) Defer(context.Context, *platform.Interaction) error {
	return nil
}

// Respond implements platform.Responder with an ephemeral message. An
// interaction coming from an ephemeral menu replaces that menu.
func (g *Gateway) Respond(ctx context.Context, ia *platform.Interaction, view platform.View) error {
	return g.ephemeral(ctx, ia, slack.MsgOptionText(view.Text, false), slack.MsgOptionBlocks(viewBlocks(view)...))
}

// Acknowledge implements platform.Responder
func (g *Gateway) Acknowledge(ctx context.Context, ia *platform.Interaction, text string) error {
	return g.ephemeral(ctx, ia, slack.MsgOptionText(text, false))
}

func (g *Gateway) ephemeral(ctx context.Context, ia *platform.Interaction, opts ...slack.MsgOption) error {
	responseURL, _ := ia.Handle.(string)
	if responseURL == "" {
		return errors.New("interaction has no response url")
	}

	if ia.FromMenu {
		opts = append(opts, slack.MsgOptionReplaceOriginal(responseURL))
	} else {
		opts = append(opts, slack.MsgOptionResponseURL(responseURL, slack.ResponseTypeEphemeral))
	}

	if _, _, err := g.api.PostMessageContext(ctx, ia.ChannelID, opts...); err != nil {
		return fmt.Errorf("failed to post ephemeral answer: %w", err)
	}
	return nil
}

// SendDirect implements platform.Sender. Files are downloaded with the bot
// token and uploaded again into the direct conversation.
func (g *Gateway) SendDirect(ctx context.Context, userID string, msg platform.Direct) error {
	channel, _, _, err := g.api.OpenConversationContext(ctx, &slack.OpenConversationParameters{
		Users: []string{userID},
	})
	if err != nil {
		return fmt.Errorf("failed to open direct conversation: %w", err)
	}

	opts := []slack.MsgOption{slack.MsgOptionText(msg.Text, false)}
	if msg.Preview != nil {
		opts = append(opts, slack.MsgOptionAttachments(previewAttachment(msg.Preview)))
	}
	if _, _, err := g.api.PostMessageContext(ctx, channel.ID, opts...); err != nil {
		return fmt.Errorf("failed to post direct message: %w", err)
	}

	if msg.File == nil {
		return nil
	}

	var buf bytes.Buffer
	if err := g.api.GetFileContext(ctx, msg.File.URL, &buf); err != nil {
		return fmt.Errorf("failed to download %s: %w", msg.File.Name, err)
	}

	_, err = g.api.UploadFileV2Context(ctx, slack.UploadFileV2Parameters{
		Reader:   &buf,
		FileSize: buf.Len(),
		Filename: msg.File.Name,
		Title:    msg.File.Name,
		Channel:  channel.ID,
	})
	if err != nil {
		return fmt.Errorf("failed to upload %s: %w", msg.File.Name, err)
	}
	return nil
}
