package slack

import (
	"testing"

	"github.com/slack-go/slack"
	"github.com/slack-go/slack/slackevents"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zerobugdebug/link-catalog-bot/internal/platform"
)

func TestNormalizeText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "[Pago] nothing to unwrap", "[Pago] nothing to unwrap"},
		{"bare link", "[Pago] <https://pay.example/x>", "[Pago] https://pay.example/x"},
		{"labelled link", "see <https://pay.example/x|the portal> now", "see https://pay.example/x now"},
		{"escapes", "a &lt;b&gt; &amp; c", "a <b> & c"},
		{"user mention untouched", "hi <@U123>", "hi <@U123>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, normalizeText(tt.in))
		})
	}
}

func TestToHistoryMessage(t *testing.T) {
	m := slack.Message{Msg: slack.Msg{
		Timestamp: "1700000000.000100",
		User:      "U1",
		Text:      "[Tutorial] <https://video.example/intro>",
		Files: []slack.File{
			{Name: "intro.mp4", URLPrivateDownload: "https://files.slack.com/d/intro.mp4", Mimetype: "video/mp4"},
			{Name: "shot.png", URLPrivate: "https://files.slack.com/p/shot.png", Mimetype: "image/png"},
		},
	}}

	got, ok := toHistoryMessage(m)
	require.True(t, ok)
	assert.Equal(t, "1700000000.000100", got.ID)
	assert.False(t, got.FromBot)
	assert.Equal(t, "[Tutorial] https://video.example/intro", got.Content)
	require.Len(t, got.Attachments, 2)
	assert.Equal(t, platform.Attachment{Name: "intro.mp4", URL: "https://files.slack.com/d/intro.mp4", ContentType: "video/mp4"}, got.Attachments[0])
	assert.Equal(t, "https://files.slack.com/p/shot.png", got.Attachments[1].URL)
}

func TestToHistoryMessageBot(t *testing.T) {
	got, ok := toHistoryMessage(slack.Message{Msg: slack.Msg{BotID: "B1", SubType: "bot_message", Text: "menu"}})
	require.True(t, ok)
	assert.True(t, got.FromBot)
}

func TestToHistoryMessageSkipsSystemMessages(t *testing.T) {
	tests := []struct {
		subType string
		keep    bool
	}{
		{"", true},
		{"bot_message", true},
		{"file_share", true},
		{"thread_broadcast", true},
		{"channel_join", false},
		{"channel_topic", false},
		{"pinned_item", false},
		{"message_deleted", false},
	}

	for _, tt := range tests {
		t.Run(tt.subType, func(t *testing.T) {
			_, ok := toHistoryMessage(slack.Message{Msg: slack.Msg{
				SubType: tt.subType,
				Text:    "<@U1> has joined the channel",
			}})
			assert.Equal(t, tt.keep, ok)
		})
	}
}

func TestToMessageEvent(t *testing.T) {
	msg, ok := toMessageEvent(&slackevents.MessageEvent{
		Channel:   "C1",
		User:      "U1",
		Text:      "menu please",
		TimeStamp: "1.2",
	})
	require.True(t, ok)
	assert.Equal(t, platform.Origin{ChannelID: "C1", MessageID: "1.2"}, msg.Origin)
	assert.Equal(t, "menu please", msg.Content)

	threaded, ok := toMessageEvent(&slackevents.MessageEvent{Channel: "C1", TimeStamp: "1.5", ThreadTimeStamp: "1.2"})
	require.True(t, ok)
	assert.Equal(t, "1.2", threaded.MessageID)

	_, ok = toMessageEvent(&slackevents.MessageEvent{SubType: "message_changed"})
	assert.False(t, ok)
}

func TestToInteraction(t *testing.T) {
	cb := slack.InteractionCallback{
		Type:        slack.InteractionTypeBlockActions,
		TriggerID:   "T1",
		User:        slack.User{ID: "U1"},
		ResponseURL: "https://hooks.slack.com/actions/x",
		Container:   slack.Container{ChannelID: "C1", IsEphemeral: true},
		ActionCallback: slack.ActionCallbacks{BlockActions: []*slack.BlockAction{{
			ActionID:       "subcategory_select",
			SelectedOption: slack.OptionBlockObject{Value: "abc|subcat_0"},
		}}},
	}

	ia, ok := toInteraction(cb)
	require.True(t, ok)
	assert.Equal(t, "U1", ia.UserID)
	assert.Equal(t, "C1", ia.ChannelID)
	assert.Equal(t, "subcategory_select", ia.ComponentID)
	assert.Equal(t, "abc|subcat_0", ia.Value())
	assert.True(t, ia.FromMenu)
	assert.Equal(t, "https://hooks.slack.com/actions/x", ia.Handle)

	_, ok = toInteraction(slack.InteractionCallback{Type: slack.InteractionTypeViewSubmission})
	assert.False(t, ok)
}

func TestViewBlocksButtons(t *testing.T) {
	blocks := viewBlocks(platform.View{
		Text: "pick",
		Buttons: []platform.Button{
			{ID: "category_pagos", Label: "🔹 💳 Pagos"},
			{ID: "category_medicareBroker", Label: "🔹 🏥 Medicare Broker", Style: platform.StyleSuccess},
		},
	})

	require.Len(t, blocks, 2)
	actions, ok := blocks[1].(*slack.ActionBlock)
	require.True(t, ok)
	require.Len(t, actions.Elements.ElementSet, 2)

	plain := actions.Elements.ElementSet[0].(*slack.ButtonBlockElement)
	assert.Equal(t, "category_pagos", plain.ActionID)
	assert.Equal(t, slack.Style(""), plain.Style)

	highlighted := actions.Elements.ElementSet[1].(*slack.ButtonBlockElement)
	assert.Equal(t, slack.StylePrimary, highlighted.Style)
}

func TestViewBlocksSelect(t *testing.T) {
	options := make([]platform.Option, 120)
	for i := range options {
		options[i] = platform.Option{Label: "📄 | Otros", Value: "v"}
	}

	blocks := viewBlocks(platform.View{
		Text:   "sub",
		Select: &platform.Select{ID: "subcategory_select", Placeholder: "pick", Options: options},
	})

	require.Len(t, blocks, 2)
	actions := blocks[1].(*slack.ActionBlock)
	sel := actions.Elements.ElementSet[0].(*slack.SelectBlockElement)
	assert.Equal(t, "subcategory_select", sel.ActionID)
	assert.Len(t, sel.Options, maxOptions)
}

func TestViewBlocksTextOnly(t *testing.T) {
	assert.Len(t, viewBlocks(platform.View{Text: "⚠️ nothing"}), 1)
}

func TestPreviewAttachment(t *testing.T) {
	att := previewAttachment(&platform.Preview{
		Title:       "shot.png",
		Description: "Categoría: 💳 Pagos",
		URL:         "https://cdn.example/shot.png",
		Footer:      "R2D2 Bot",
		Color:       0x00AE86,
	})
	assert.Equal(t, "#00ae86", att.Color)
	assert.Equal(t, "https://cdn.example/shot.png", att.TitleLink)
	assert.Equal(t, "R2D2 Bot", att.Footer)
}
