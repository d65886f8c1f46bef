package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DeliveryMode selects how entries reach the user
type DeliveryMode string

const (
	// DeliveryPreview sends one rich preview per entry of the chosen bucket.
	DeliveryPreview DeliveryMode = "preview"
	// DeliveryLinks offers a menu of single links and sends plain text.
	DeliveryLinks DeliveryMode = "links"
)

// Layout variants.
const (
	VariantFull    = "full"
	VariantReduced = "reduced"
)

// Category binds a catalog category to its source channel
type Category struct {
	Key       string `yaml:"key"`
	ChannelID string `yaml:"channel_id"`
	Name      string `yaml:"name"`
	Highlight bool   `yaml:"highlight"`
}

// Layout is the static shape of the catalog
type Layout struct {
	Categories        []Category        `yaml:"categories"`
	SubcategoryEmojis map[string]string `yaml:"subcategory_emojis"`
	Delivery          DeliveryMode      `yaml:"delivery"`
}

var fullCategories = []Category{
	{Key: "pagos", ChannelID: "1419772886188687411", Name: "💳 Pagos"},
	{Key: "obamacareBroker", ChannelID: "1419767454560944188", Name: "🏥 Obamacare Broker", Highlight: true},
	{Key: "medicareBroker", ChannelID: "1419767387359809556", Name: "🏥 Medicare Broker", Highlight: true},
	{Key: "miembros", ChannelID: "1419774101605581031", Name: "👤 Cuentas Miembros"},
	{Key: "tutoriales", ChannelID: "1419784342338670592", Name: "🎬 Tutoriales"},
	{Key: "documentos", ChannelID: "1419762991100072098", Name: "📄 Documentos"},
}

var reducedKeys = []string{"pagos", "miembros", "tutoriales", "documentos"}

func defaultEmojis() map[string]string {
	return map[string]string{
		"Obamacare": "🏥",
		"Medicare":  "🏥",
		"Pago":      "💳",
		"Cuenta":    "👤",
		"Tutorial":  "🎬",
		"Documento": "📄",
		"Otros":     "📄",
	}
}

// Preset returns a compiled-in layout. The full variant mirrors six
// channels and sends previews; the reduced variant mirrors four and sends
// plain links.
func Preset(variant string) (Layout, error) {
	switch variant {
	case VariantFull, "":
		cats := make([]Category, len(fullCategories))
		copy(cats, fullCategories)
		return Layout{
			Categories:        cats,
			SubcategoryEmojis: defaultEmojis(),
			Delivery:          DeliveryPreview,
		}, nil
	case VariantReduced:
		cats := make([]Category, 0, len(reducedKeys))
		for _, key := range reducedKeys {
			for _, c := range fullCategories {
				if c.Key == key {
					cats = append(cats, c)
				}
			}
		}
		return Layout{
			Categories:        cats,
			SubcategoryEmojis: defaultEmojis(),
			Delivery:          DeliveryLinks,
		}, nil
	default:
		return Layout{}, fmt.Errorf("unknown layout variant %q", variant)
	}
}

// LoadLayout reads a YAML layout file over base. Sections present in the
// file replace the matching sections of base.
func LoadLayout(path string, base Layout) (Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Layout{}, fmt.Errorf("failed to read layout file: %w", err)
	}

	var file Layout
	if err := yaml.Unmarshal(data, &file); err != nil {
		return Layout{}, fmt.Errorf("failed to parse layout file: %w", err)
	}

	out := base
	if len(file.Categories) > 0 {
		out.Categories = file.Categories
	}
	if len(file.SubcategoryEmojis) > 0 {
		out.SubcategoryEmojis = file.SubcategoryEmojis
	}
	if file.Delivery != "" {
		out.Delivery = file.Delivery
	}

	return out, out.Validate()
}

// Validate checks category keys and channels are set and unique
func (l Layout) Validate() error {
	if len(l.Categories) == 0 {
		return errors.New("layout has no categories")
	}

	keys := make(map[string]bool, len(l.Categories))
	channels := make(map[string]bool, len(l.Categories))
	for i, c := range l.Categories {
		if c.Key == "" || c.ChannelID == "" {
			return fmt.Errorf("category %d needs both key and channel_id", i)
		}
		if keys[c.Key] {
			return fmt.Errorf("duplicate category key %q", c.Key)
		}
		if channels[c.ChannelID] {
			return fmt.Errorf("channel %q bound to more than one category", c.ChannelID)
		}
		keys[c.Key] = true
		channels[c.ChannelID] = true
	}

	switch l.Delivery {
	case DeliveryPreview, DeliveryLinks:
	default:
		return fmt.Errorf("unknown delivery mode %q", l.Delivery)
	}
	return nil
}

// Category looks up a category by key
func (l Layout) Category(key string) (Category, bool) {
	for _, c := range l.Categories {
		if c.Key == key {
			return c, true
		}
	}
	return Category{}, false
}

// DisplayName returns the category name, falling back to its key
func (c Category) DisplayName() string {
	if c.Name != "" {
		return c.Name
	}
	return c.Key
}
