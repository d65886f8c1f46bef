package slack

import (
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// logAdapter adapts zerolog to the log interface of slack-go and socketmode
type logAdapter struct {
	logger zerolog.Logger
}

func newLogAdapter(component string) *logAdapter {
	return &logAdapter{logger: log.With().Str("component", component).Logger()}
}

func (a *logAdapter) Output(calldepth int, s string) error {
	a.logger.Debug().Msg(strings.TrimSpace(s))
	return nil
}
