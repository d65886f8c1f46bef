package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PLATFORM", "BOT_NAME", "TRIGGER_KEYWORD", "HISTORY_LIMIT", "SESSION_TTL", "DELIVERY_INTERVAL"} {
		t.Setenv(key, "")
	}

	cfg := Load()

	assert.Equal(t, PlatformDiscord, cfg.Platform)
	assert.Equal(t, "R2D2", cfg.BotName)
	assert.Equal(t, "menu", cfg.TriggerKeyword)
	assert.Equal(t, 50, cfg.HistoryLimit)
	assert.Equal(t, 15*time.Minute, cfg.SessionTTL)
	assert.Equal(t, 300*time.Millisecond, cfg.DeliveryInterval)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PLATFORM", "Slack")
	t.Setenv("TRIGGER_KEYWORD", "Links")
	t.Setenv("HISTORY_LIMIT", "20")
	t.Setenv("SESSION_TTL", "2m")
	t.Setenv("DELIVERY_INTERVAL", "not-a-duration")

	cfg := Load()

	assert.Equal(t, PlatformSlack, cfg.Platform)
	assert.Equal(t, "links", cfg.TriggerKeyword)
	assert.Equal(t, 20, cfg.HistoryLimit)
	assert.Equal(t, 2*time.Minute, cfg.SessionTTL)
	assert.Equal(t, 300*time.Millisecond, cfg.DeliveryInterval)
}

func TestValidate(t *testing.T) {
	base := Config{HistoryLimit: 50, TriggerKeyword: "menu"}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "discord with token", mutate: func(c *Config) { c.Platform = PlatformDiscord; c.DiscordToken = "t" }},
		{name: "discord without token", mutate: func(c *Config) { c.Platform = PlatformDiscord }, wantErr: true},
		{name: "slack with tokens", mutate: func(c *Config) {
			c.Platform = PlatformSlack
			c.SlackBotToken = "xoxb-1"
			c.SlackAppToken = "xapp-1"
		}},
		{name: "slack with bot token as app token", mutate: func(c *Config) {
			c.Platform = PlatformSlack
			c.SlackBotToken = "xoxb-1"
			c.SlackAppToken = "xoxb-1"
		}, wantErr: true},
		{name: "unknown platform", mutate: func(c *Config) { c.Platform = "irc" }, wantErr: true},
		{name: "bad history limit", mutate: func(c *Config) {
			c.Platform = PlatformDiscord
			c.DiscordToken = "t"
			c.HistoryLimit = 0
		}, wantErr: true},
		{name: "history limit below fixed fetch", mutate: func(c *Config) {
			c.Platform = PlatformDiscord
			c.DiscordToken = "t"
			c.HistoryLimit = 20
		}},
		{name: "history limit above fixed fetch", mutate: func(c *Config) {
			c.Platform = PlatformDiscord
			c.DiscordToken = "t"
			c.HistoryLimit = MaxHistoryLimit + 1
		}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestMaskPresent(t *testing.T) {
	assert.Equal(t, "(missing)", MaskPresent(" "))
	assert.Equal(t, "(present)", MaskPresent("secret"))
}

func TestPresets(t *testing.T) {
	full, err := Preset(VariantFull)
	require.NoError(t, err)
	require.NoError(t, full.Validate())
	assert.Len(t, full.Categories, 6)
	assert.Equal(t, DeliveryPreview, full.Delivery)

	broker, ok := full.Category("obamacareBroker")
	require.True(t, ok)
	assert.True(t, broker.Highlight)
	assert.Equal(t, "🏥 Obamacare Broker", broker.DisplayName())

	reduced, err := Preset(VariantReduced)
	require.NoError(t, err)
	require.NoError(t, reduced.Validate())
	assert.Len(t, reduced.Categories, 4)
	assert.Equal(t, DeliveryLinks, reduced.Delivery)

	_, err = Preset("huge")
	assert.Error(t, err)
}

func TestPresetReturnsCopies(t *testing.T) {
	a, err := Preset(VariantFull)
	require.NoError(t, err)
	a.Categories[0].Name = "changed"
	a.SubcategoryEmojis["Pago"] = "x"

	b, err := Preset(VariantFull)
	require.NoError(t, err)
	assert.Equal(t, "💳 Pagos", b.Categories[0].Name)
	assert.Equal(t, "💳", b.SubcategoryEmojis["Pago"])
}

func TestLoadLayout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "layout.yaml")
	content := `
categories:
  - key: pagos
    channel_id: C0PAGOS
    name: "💳 Pagos"
  - key: brokers
    channel_id: C0BROKERS
    name: "🏥 Brokers"
    highlight: true
delivery: links
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	base, err := Preset(VariantFull)
	require.NoError(t, err)

	layout, err := LoadLayout(path, base)
	require.NoError(t, err)

	assert.Len(t, layout.Categories, 2)
	assert.Equal(t, "C0BROKERS", layout.Categories[1].ChannelID)
	assert.True(t, layout.Categories[1].Highlight)
	assert.Equal(t, DeliveryLinks, layout.Delivery)
	assert.Equal(t, "💳", layout.SubcategoryEmojis["Pago"], "emojis fall back to the preset")
}

func TestLoadLayoutRejectsDuplicates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "layout.yaml")
	content := `
categories:
  - key: pagos
    channel_id: C1
  - key: pagos
    channel_id: C2
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	base, err := Preset(VariantFull)
	require.NoError(t, err)

	_, err = LoadLayout(path, base)
	assert.ErrorContains(t, err, "duplicate category key")
}

func TestLoadLayoutMissingFile(t *testing.T) {
	_, err := LoadLayout(filepath.Join(t.TempDir(), "nope.yaml"), Layout{})
	assert.Error(t, err)
}

func TestValidateDeliveryMode(t *testing.T) {
	layout, err := Preset(VariantFull)
	require.NoError(t, err)

	layout.Delivery = "carrier-pigeon"
	assert.ErrorContains(t, layout.Validate(), "unknown delivery mode")
}
