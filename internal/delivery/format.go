// Package delivery sends catalog entries to users as private messages.
package delivery

import (
	"fmt"

	"github.com/zerobugdebug/link-catalog-bot/internal/catalog"
	"github.com/zerobugdebug/link-catalog-bot/internal/platform"
)

// PreviewColor is the accent colour of rich previews
const PreviewColor = 0x00AE86

// Formatter turns catalog entries into direct messages
type Formatter struct {
	footer string
}

// NewFormatter creates a formatter signing previews with the bot's name
func NewFormatter(botName string) *Formatter {
	return &Formatter{footer: fmt.Sprintf("%s Bot", botName)}
}

// Preview formats an entry as a rich preview. File entries carry the file
// so the gateway can re-upload it.
func (f *Formatter) Preview(categoryName string, e catalog.Entry) platform.Direct {
	title := e.Name
	if title == "" {
		title = e.Label
	}

	p := &platform.Preview{
		Title:       title,
		Description: fmt.Sprintf("Categoría: %s", categoryName),
		Thumbnail:   e.Thumbnail,
		Footer:      f.footer,
		Color:       PreviewColor,
	}
	if catalog.IsLink(e.URL) {
		p.URL = e.URL
	}

	msg := platform.Direct{Preview: p}
	if e.Kind == catalog.KindFile && catalog.IsLink(e.URL) {
		msg.File = &platform.FileRef{Name: e.Name, URL: e.URL}
	}
	return msg
}

// Plain formats an entry as a single text line
func (f *Formatter) Plain(categoryName string, e catalog.Entry) platform.Direct {
	return platform.Direct{Text: fmt.Sprintf("%s: %s", categoryName, e.URL)}
}
