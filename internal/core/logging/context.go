package logging

import "context"

type contextKey string

const (
	runIDKey     contextKey = "run_id"
	commentIDKey contextKey = "comment_id"
)

// WithRunID adds a run ID to the context.
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, runIDKey, runID)
}

// WithCommentID adds the comment being processed to the context.
func WithCommentID(ctx context.Context, commentID string) context.Context {
	return context.WithValue(ctx, commentIDKey, commentID)
}

// GetRunID retrieves the run ID from the context.
// Returns empty string if not present.
func GetRunID(ctx context.Context) string {
	if id, ok := ctx.Value(runIDKey).(string); ok {
		return id
	}
	return ""
}

// GetCommentID retrieves the comment ID from the context.
// Returns empty string if not present.
func GetCommentID(ctx context.Context) string {
	if id, ok := ctx.Value(commentIDKey).(string); ok {
		return id
	}
	return ""
}
