// Package config loads the bot's runtime settings from the environment and
// the catalog layout from compiled-in presets or a YAML file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Supported platforms.
const (
	PlatformDiscord = "discord"
	PlatformSlack   = "slack"
)

// MaxHistoryLimit is the number of recent messages read per channel on
// each refresh. HISTORY_LIMIT may lower it, never raise it.
const MaxHistoryLimit = 50

// Config aggregates the environment settings of the process. It is loaded
// once on startup via Load.
type Config struct {
	Platform         string
	DiscordToken     string
	SlackBotToken    string
	SlackAppToken    string
	BotName          string
	TriggerKeyword   string
	HistoryLimit     int
	SessionTTL       time.Duration
	DeliveryInterval time.Duration
}

// Load reads configuration from environment variables. A .env file in the
// working directory is loaded first when present; variables already set in
// the process environment win.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		Platform:         strings.ToLower(getEnv("PLATFORM", PlatformDiscord)),
		DiscordToken:     os.Getenv("DISCORD_TOKEN"),
		SlackBotToken:    os.Getenv("SLACK_BOT_TOKEN"),
		SlackAppToken:    os.Getenv("SLACK_APP_TOKEN"),
		BotName:          getEnv("BOT_NAME", "R2D2"),
		TriggerKeyword:   strings.ToLower(getEnv("TRIGGER_KEYWORD", "menu")),
		HistoryLimit:     getEnvInt("HISTORY_LIMIT", MaxHistoryLimit),
		SessionTTL:       getEnvDuration("SESSION_TTL", 15*time.Minute),
		DeliveryInterval: getEnvDuration("DELIVERY_INTERVAL", 300*time.Millisecond),
	}
}

// Validate checks that the selected platform has its credentials
func (c Config) Validate() error {
	switch c.Platform {
	case PlatformDiscord:
		if c.DiscordToken == "" {
			return errors.New("DISCORD_TOKEN must be set")
		}
	case PlatformSlack:
		if c.SlackBotToken == "" {
			return errors.New("SLACK_BOT_TOKEN must be set")
		}
		if !strings.HasPrefix(c.SlackAppToken, "xapp-") {
			return errors.New("SLACK_APP_TOKEN must be set to an app-level token (xapp-...)")
		}
	default:
		return fmt.Errorf("unknown platform %q", c.Platform)
	}

	if c.HistoryLimit <= 0 || c.HistoryLimit > MaxHistoryLimit {
		return fmt.Errorf("HISTORY_LIMIT must be between 1 and %d, got %d", MaxHistoryLimit, c.HistoryLimit)
	}
	if c.TriggerKeyword == "" {
		return errors.New("TRIGGER_KEYWORD must not be empty")
	}
	return nil
}

// MaskPresent is used in logs: it never prints secrets, only presence
func MaskPresent(v string) string {
	if strings.TrimSpace(v) == "" {
		return "(missing)"
	}
	return "(present)"
}

// getEnv returns the trimmed value of an environment variable or a default if empty
func getEnv(key, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}

func getEnvInt(key string, def int) int {
	n, err := strconv.Atoi(getEnv(key, ""))
	if err != nil {
		return def
	}
	return n
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(getEnv(key, ""))
	if err != nil || d <= 0 {
		return def
	}
	return d
}
