package logging

import (
	"context"

	"github.com/rs/zerolog"
)

// ContextHook extracts pass_id and task_key from context and adds them to log events.
type ContextHook struct{}

// Run adds contextual fields to the zerolog event.
func (h ContextHook) Run(e *zerolog.Event, level zerolog.Level, msg string) {
	ctx := e.GetCtx()
	if ctx == nil || ctx == context.Background() {
		return
	}

	if passID := GetPassID(ctx); passID != "" {
		e.Str("pass_id", passID)
	}

	if taskKey := GetTaskKey(ctx); taskKey != "" {
		e.Str("task_key", taskKey)
	}
}
