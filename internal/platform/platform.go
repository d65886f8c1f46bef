// Package platform holds the chat-platform neutral model shared by the
// catalog, the menu flow and the gateway implementations.
package platform

import "context"

// Attachment is a file attached to a channel message
type Attachment struct {
	Name        string
	URL         string
	ContentType string
}

// HistoryMessage is one message read back from a channel's history
type HistoryMessage struct {
	ID          string
	AuthorID    string
	FromBot     bool
	Content     string
	Attachments []Attachment
}

// Origin identifies the message a menu reply is attached to
type Origin struct {
	ChannelID string
	MessageID string
}

// MessageEvent is a new message posted in a channel the bot can see
type MessageEvent struct {
	Origin
	AuthorID string
	FromBot  bool
	Content  string
}

// ButtonStyle selects the visual weight of a button
type ButtonStyle int

const (
	StylePrimary ButtonStyle = iota
	StyleSuccess
)

// Button is a clickable menu entry
type Button struct {
	ID    string
	Label string
	Style ButtonStyle
}

// Option is one choice of a select menu
type Option struct {
	Label string
	Value string
}

// Select is a single-choice drop-down menu
type Select struct {
	ID          string
	Placeholder string
	Options     []Option
}

// View is what the bot renders in reply to a trigger or an interaction.
// A view carries either buttons, a select, or only text.
type View struct {
	Text    string
	Buttons []Button
	Select  *Select
}

// Interaction is a button press or a select-menu choice.
//
// FromMenu is set when the component lives in an ephemeral menu the bot
// rendered earlier; acknowledging such an interaction replaces that menu.
// Handle carries the gateway's own payload and is opaque to everything else.
type Interaction struct {
	ID          string
	UserID      string
	ChannelID   string
	ComponentID string
	Values      []string
	FromMenu    bool
	Handle      any

	// Replied is set once an ephemeral answer or acknowledgement went out.
	Replied bool
}

// Value returns the first selected value, or an empty string
func (ia *Interaction) Value() string {
	if len(ia.Values) == 0 {
		return ""
	}
	return ia.Values[0]
}

// Preview is a rich link preview
type Preview struct {
	Title       string
	Description string
	URL         string
	Thumbnail   string
	Footer      string
	Color       int
}

// FileRef points at a file the gateway downloads and re-uploads
type FileRef struct {
	Name string
	URL  string
}

// Direct is a private message to a single user. Exactly one of Text or
// Preview is set; File may accompany a Preview.
type Direct struct {
	Text    string
	Preview *Preview
	File    *FileRef
}

// History reads recent messages of a channel, newest first
type History interface {
	RecentMessages(ctx context.Context, channelID string, limit int) ([]HistoryMessage, error)
}

// Responder answers triggers and interactions
type Responder interface {
	// Reply posts a visible view attached to the trigger message.
	Reply(ctx context.Context, origin Origin, view View) error
	// Defer tells the platform a slow answer is coming.
	Defer(ctx context.Context, ia *Interaction) error
	// Respond shows a view only to the interacting user.
	Respond(ctx context.Context, ia *Interaction, view View) error
	// Acknowledge confirms the interaction with text and clears its menu.
	Acknowledge(ctx context.Context, ia *Interaction, text string) error
}

// Sender delivers private messages
type Sender interface {
	SendDirect(ctx context.Context, userID string, msg Direct) error
}

// Handler consumes inbound chat events
type Handler interface {
	HandleMessage(ctx context.Context, evt MessageEvent)
	HandleInteraction(ctx context.Context, ia *Interaction)
}

// Gateway is a connected chat platform
type Gateway interface {
	History
	Responder
	Sender

	// Run processes inbound events until ctx is cancelled. Events are
	// handled one at a time, in arrival order.
	Run(ctx context.Context, handler Handler) error
	Name() string
}
