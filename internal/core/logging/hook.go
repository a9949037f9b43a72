package logging

import (
	"github.com/rs/zerolog"
)

// ContextHook copies the repo and file stored on an event's context into the
// event's fields.
type ContextHook struct{}

// Run implements zerolog.Hook.
func (ContextHook) Run(e *zerolog.Event, _ zerolog.Level, _ string) {
	ctx := e.GetCtx()
	if ctx == nil {
		return
	}

	fields := [...]struct{ key, value string }{
		{"repo", GetRepo(ctx)},
		{"file", GetFile(ctx)},
	}
	for _, f := range fields {
		if f.value != "" {
			e.Str(f.key, f.value)
		}
	}
}
