package logging

import (
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Install makes l the global logger with ContextHook attached, so events
// logged with a context carry its repo and file.
func Install(l zerolog.Logger) {
	log.Logger = l.Hook(ContextHook{})
}

// Component returns the global logger tagged with cmp=name. Call it after
// Install; the logger is captured, not looked up per event.
func Component(name string) zerolog.Logger {
	return log.With().Str("cmp", name).Logger()
}
