package catalog

import (
	"regexp"
	"strings"

	"github.com/zerobugdebug/link-catalog-bot/internal/platform"
)

const (
	// LabelMax is the display budget of an entry label, in runes
	LabelMax = 40
	ellipsis = "..."

	// FallbackEmoji decorates subcategories missing from the emoji table
	FallbackEmoji = "📄"
)

var (
	tagPattern = regexp.MustCompile(`\[(.*?)\]`)
	urlPattern = regexp.MustCompile(`https?://[^\s<>|]+`)
)

// Classifier sorts channel messages into subcategory buckets
type Classifier struct {
	emojis map[string]string
}

// NewClassifier creates a classifier using the given subcategory emoji table
func NewClassifier(emojis map[string]string) *Classifier {
	table := make(map[string]string, len(emojis))
	for k, v := range emojis {
		table[k] = v
	}
	return &Classifier{emojis: table}
}

// Emoji returns the emoji of a subcategory
func (c *Classifier) Emoji(sub string) string {
	if e, ok := c.emojis[sub]; ok && e != "" {
		return e
	}
	return FallbackEmoji
}

// Subcategory extracts the first bracket tag of a message body
func Subcategory(content string) string {
	m := tagPattern.FindStringSubmatch(content)
	if m == nil {
		return DefaultSubcategory
	}
	return m[1]
}

// Classify returns the subcategory of a message and the entries it yields:
// one for non-empty content plus one per attachment.
func (c *Classifier) Classify(msg platform.HistoryMessage) (string, []Entry) {
	sub := Subcategory(msg.Content)
	emoji := c.Emoji(sub)

	entries := make([]Entry, 0, 1+len(msg.Attachments))

	if msg.Content != "" {
		entries = append(entries, Entry{
			Label: Truncate(emoji+" "+msg.Content, LabelMax),
			URL:   LinkOf(msg.Content),
			Kind:  KindText,
		})
	}

	for _, att := range msg.Attachments {
		entry := Entry{
			Label: Truncate(emoji+" "+att.Name, LabelMax),
			URL:   att.URL,
			Kind:  KindFile,
			Name:  att.Name,
		}
		if strings.HasPrefix(att.ContentType, "video") {
			entry.Kind = KindVideo
		}
		if strings.HasPrefix(att.ContentType, "image") {
			entry.Thumbnail = att.URL
		}
		entries = append(entries, entry)
	}

	return sub, entries
}

// LinkOf returns the first http(s) URL in text, or the text itself when it
// contains none
func LinkOf(text string) string {
	if u := urlPattern.FindString(text); u != "" {
		return u
	}
	return text
}

// IsLink reports whether s is an absolute http(s) URL
func IsLink(s string) bool {
	return urlPattern.FindString(s) == s && s != ""
}

// Truncate shortens text to max runes, ending with an ellipsis when cut
func Truncate(text string, max int) string {
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	if max <= len(ellipsis) {
		return string(runes[:max])
	}
	return string(runes[:max-len(ellipsis)]) + ellipsis
}
