package slack

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/slack-go/slack"
	"github.com/slack-go/slack/slackevents"

	"github.com/zerobugdebug/link-catalog-bot/internal/platform"
)

const (
	// Slack block kit limits
	maxOptions     = 100
	maxOptionText  = 75
	maxButtonText  = 75
	maxActionItems = 25

	menuBlockID = "catalog_menu"

	subTypeBot = "bot_message"
)

var (
	linkMarkup = regexp.MustCompile(`<(https?://[^|>]+)(?:\|[^>]*)?>`)
	unescaper  = strings.NewReplacer("&lt;", "<", "&gt;", ">", "&amp;", "&")
)

// normalizeText turns Slack message markup back into plain text, keeping
// the target of every link
func normalizeText(text string) string {
	return unescaper.Replace(linkMarkup.ReplaceAllString(text, "$1"))
}

func fromBot(botID, subType string) bool {
	return botID != "" || subType == subTypeBot
}

// userContent reports whether a message subtype carries user content.
// Joins, topic changes, pins, edits and deletions do not.
func userContent(subType string) bool {
	switch subType {
	case "", subTypeBot, "file_share", "thread_broadcast":
		return true
	default:
		return false
	}
}

// toHistoryMessage converts a channel history message. System subtypes
// yield ok=false.
func toHistoryMessage(m slack.Message) (platform.HistoryMessage, bool) {
	if !userContent(m.SubType) {
		return platform.HistoryMessage{}, false
	}

	out := platform.HistoryMessage{
		ID:       m.Timestamp,
		AuthorID: m.User,
		FromBot:  fromBot(m.BotID, m.SubType),
		Content:  normalizeText(m.Text),
	}
	for _, f := range m.Files {
		url := f.URLPrivateDownload
		if url == "" {
			url = f.URLPrivate
		}
		out.Attachments = append(out.Attachments, platform.Attachment{
			Name:        f.Name,
			URL:         url,
			ContentType: f.Mimetype,
		})
	}
	return out, true
}

// toMessageEvent converts a live message event. Edits, deletions and other
// system subtypes yield ok=false.
func toMessageEvent(ev *slackevents.MessageEvent) (platform.MessageEvent, bool) {
	if !userContent(ev.SubType) {
		return platform.MessageEvent{}, false
	}

	ts := ev.ThreadTimeStamp
	if ts == "" {
		ts = ev.TimeStamp
	}
	return platform.MessageEvent{
		Origin:   platform.Origin{ChannelID: ev.Channel, MessageID: ts},
		AuthorID: ev.User,
		FromBot:  fromBot(ev.BotID, ev.SubType),
		Content:  normalizeText(ev.Text),
	}, true
}

// toInteraction converts a block action callback. Callbacks without a
// block action yield ok=false.
func toInteraction(cb slack.InteractionCallback) (*platform.Interaction, bool) {
	if cb.Type != slack.InteractionTypeBlockActions || len(cb.ActionCallback.BlockActions) == 0 {
		return nil, false
	}

	action := cb.ActionCallback.BlockActions[0]
	value := action.Value
	if action.SelectedOption.Value != "" {
		value = action.SelectedOption.Value
	}

	channelID := cb.Channel.ID
	if channelID == "" {
		channelID = cb.Container.ChannelID
	}

	ia := &platform.Interaction{
		ID:          cb.TriggerID,
		UserID:      cb.User.ID,
		ChannelID:   channelID,
		ComponentID: action.ActionID,
		FromMenu:    cb.Container.IsEphemeral,
		Handle:      cb.ResponseURL,
	}
	if value != "" {
		ia.Values = []string{value}
	}
	return ia, true
}

// viewBlocks renders a view as block kit blocks
func viewBlocks(view platform.View) []slack.Block {
	blocks := []slack.Block{
		slack.NewSectionBlock(slack.NewTextBlockObject(slack.MarkdownType, view.Text, false, false), nil, nil),
	}

	if len(view.Buttons) > 0 {
		elements := make([]slack.BlockElement, 0, len(view.Buttons))
		for _, b := range view.Buttons {
			if len(elements) == maxActionItems {
				break
			}
			btn := slack.NewButtonBlockElement(b.ID, b.ID,
				slack.NewTextBlockObject(slack.PlainTextType, clip(b.Label, maxButtonText), true, false))
			if b.Style == platform.StyleSuccess {
				btn = btn.WithStyle(slack.StylePrimary)
			}
			elements = append(elements, btn)
		}
		blocks = append(blocks, slack.NewActionBlock(menuBlockID, elements...))
	}

	if view.Select != nil && len(view.Select.Options) > 0 {
		options := make([]*slack.OptionBlockObject, 0, len(view.Select.Options))
		for _, o := range view.Select.Options {
			if len(options) == maxOptions {
				break
			}
			options = append(options, slack.NewOptionBlockObject(o.Value,
				slack.NewTextBlockObject(slack.PlainTextType, clip(o.Label, maxOptionText), true, false), nil))
		}
		sel := slack.NewOptionsSelectBlockElement(slack.OptTypeStatic,
			slack.NewTextBlockObject(slack.PlainTextType, view.Select.Placeholder, true, false),
			view.Select.ID, options...)
		blocks = append(blocks, slack.NewActionBlock(menuBlockID, sel))
	}

	return blocks
}

// previewAttachment renders a preview as a legacy message attachment,
// which is what Slack unfurls with a colored bar and a footer
func previewAttachment(p *platform.Preview) slack.Attachment {
	return slack.Attachment{
		Color:     colorHex(p.Color),
		Title:     p.Title,
		TitleLink: p.URL,
		Text:      p.Description,
		ThumbURL:  p.Thumbnail,
		Footer:    p.Footer,
	}
}

func colorHex(c int) string {
	return fmt.Sprintf("#%06x", c)
}

func clip(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}
