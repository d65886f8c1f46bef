package discord

import (
	"github.com/bwmarrin/discordgo"

	"github.com/zerobugdebug/link-catalog-bot/internal/platform"
)

const (
	// Discord component limits
	maxRowButtons = 5
	maxRows       = 5
	maxOptions    = 25
	maxLabel      = 100

	// maxHistoryPage is the largest page the messages endpoint returns
	maxHistoryPage = 100
)

// toHistoryMessage converts a channel history message
func toHistoryMessage(m *discordgo.Message) platform.HistoryMessage {
	out := platform.HistoryMessage{
		ID:      m.ID,
		Content: m.Content,
	}
	if m.Author != nil {
		out.AuthorID = m.Author.ID
		out.FromBot = m.Author.Bot
	}
	for _, a := range m.Attachments {
		out.Attachments = append(out.Attachments, platform.Attachment{
			Name:        a.Filename,
			URL:         a.URL,
			ContentType: a.ContentType,
		})
	}
	return out
}

// toMessageEvent converts a live message
func toMessageEvent(m *discordgo.Message) platform.MessageEvent {
	evt := platform.MessageEvent{
		Origin:  platform.Origin{ChannelID: m.ChannelID, MessageID: m.ID},
		Content: m.Content,
	}
	if m.Author != nil {
		evt.AuthorID = m.Author.ID
		evt.FromBot = m.Author.Bot
	}
	return evt
}

// pending is the gateway payload carried by a platform.Interaction
type pending struct {
	raw      *discordgo.Interaction
	deferred bool
}

// toInteraction converts a component interaction. Other interaction types
// yield ok=false.
func toInteraction(i *discordgo.Interaction) (*platform.Interaction, bool) {
	if i.Type != discordgo.InteractionMessageComponent {
		return nil, false
	}

	data := i.MessageComponentData()
	ia := &platform.Interaction{
		ID:          i.ID,
		ChannelID:   i.ChannelID,
		ComponentID: data.CustomID,
		Values:      data.Values,
		Handle:      &pending{raw: i},
	}
	switch {
	case i.Member != nil && i.Member.User != nil:
		ia.UserID = i.Member.User.ID
	case i.User != nil:
		ia.UserID = i.User.ID
	}
	if i.Message != nil && i.Message.Flags&discordgo.MessageFlagsEphemeral != 0 {
		ia.FromMenu = true
	}
	return ia, true
}

// components renders the interactive part of a view. A text-only view
// yields an empty, non-nil slice so an update clears the previous menu.
func components(view platform.View) []discordgo.MessageComponent {
	rows := []discordgo.MessageComponent{}

	var row []discordgo.MessageComponent
	for _, b := range view.Buttons {
		if len(rows) == maxRows {
			break
		}
		style := discordgo.PrimaryButton
		if b.Style == platform.StyleSuccess {
			style = discordgo.SuccessButton
		}
		row = append(row, discordgo.Button{
			CustomID: b.ID,
			Label:    clip(b.Label, maxLabel),
			Style:    style,
		})
		if len(row) == maxRowButtons {
			rows = append(rows, discordgo.ActionsRow{Components: row})
			row = nil
		}
	}
	if len(row) > 0 && len(rows) < maxRows {
		rows = append(rows, discordgo.ActionsRow{Components: row})
	}

	if view.Select != nil && len(view.Select.Options) > 0 {
		options := make([]discordgo.SelectMenuOption, 0, len(view.Select.Options))
		for _, o := range view.Select.Options {
			if len(options) == maxOptions {
				break
			}
			options = append(options, discordgo.SelectMenuOption{
				Label: clip(o.Label, maxLabel),
				Value: o.Value,
			})
		}
		rows = append(rows, discordgo.ActionsRow{Components: []discordgo.MessageComponent{
			discordgo.SelectMenu{
				CustomID:    view.Select.ID,
				Placeholder: clip(view.Select.Placeholder, maxLabel),
				Options:     options,
			},
		}})
	}

	return rows
}

// previewEmbed renders a preview as a message embed
func previewEmbed(p *platform.Preview) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title:       p.Title,
		Description: p.Description,
		URL:         p.URL,
		Color:       p.Color,
	}
	if p.Footer != "" {
		embed.Footer = &discordgo.MessageEmbedFooter{Text: p.Footer}
	}
	if p.Thumbnail != "" {
		embed.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: p.Thumbnail}
	}
	return embed
}

func clip(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}
