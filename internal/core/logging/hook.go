package logging

import (
	"context"

	"github.com/rs/zerolog"
)

// ContextHook extracts run_id and comment_id from context and adds them to log events.
type ContextHook struct{}

// Run adds contextual fields to the zerolog event.
func (h ContextHook) Run(e *zerolog.Event, level zerolog.Level, msg string) {
	ctx := e.GetCtx()
	if ctx == context.Background() || ctx == nil {
		return
	}

	if runID := GetRunID(ctx); runID != "" {
		e.Str("run_id", runID)
	}

	if commentID := GetCommentID(ctx); commentID != "" {
		e.Str("comment_id", commentID)
	}
}
