package render

import (
	"strings"

	"github.com/rs/zerolog"
)

// LogSurface renders by writing structured log lines. Used for headless clients.
type LogSurface struct {
	logger zerolog.Logger
}

// NewLogSurface creates a surface that logs through logger.
func NewLogSurface(logger zerolog.Logger) *LogSurface {
	return &LogSurface{logger: logger.With().Str("component", "surface").Logger()}
}

func (s *LogSurface) Show(screen Screen) {
	s.logger.Info().Str("screen", string(screen)).Msg("show")
}

func (s *LogSurface) SetText(field Field, value string) error {
	// countdown fields change every second
	ev := s.logger.Info()
	if field == FieldPrepTimer || field == FieldSpeakerTimer || field == FieldHostTimer {
		ev = s.logger.Debug()
	}
	ev.Str("field", string(field)).Str("value", value).Msg("text")
	return nil
}

func (s *LogSurface) SetList(field Field, items []string) error {
	s.logger.Info().
		Str("field", string(field)).
		Int("count", len(items)).
		Str("items", strings.Join(items, " | ")).
		Msg("list")
	return nil
}
