package discord

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// routeLogs sends discordgo's internal logging through zerolog
func routeLogs() {
	logger := log.With().Str("component", "discord-api").Logger()

	discordgo.Logger = func(msgL, caller int, format string, a ...interface{}) {
		logger.WithLevel(discordLevel(msgL)).Msg(fmt.Sprintf(format, a...))
	}
}

func discordLevel(msgL int) zerolog.Level {
	switch msgL {
	case discordgo.LogError:
		return zerolog.ErrorLevel
	case discordgo.LogWarning:
		return zerolog.WarnLevel
	case discordgo.LogInformational:
		return zerolog.DebugLevel
	default:
		return zerolog.TraceLevel
	}
}
