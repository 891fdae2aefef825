package logging

import "context"

type contextKey string

const (
	passIDKey  contextKey = "pass_id"
	taskKeyKey contextKey = "task_key"
)

// WithPassID tags the context with the id of the running reconciliation pass.
func WithPassID(ctx context.Context, passID string) context.Context {
	return context.WithValue(ctx, passIDKey, passID)
}

// WithTaskKey tags the context with the task key being processed.
func WithTaskKey(ctx context.Context, taskKey string) context.Context {
	return context.WithValue(ctx, taskKeyKey, taskKey)
}

// GetPassID retrieves the pass ID from the context.
// Returns empty string if not present.
func GetPassID(ctx context.Context) string {
	if id, ok := ctx.Value(passIDKey).(string); ok {
		return id
	}
	return ""
}

// GetTaskKey retrieves the task key from the context.
// Returns empty string if not present.
func GetTaskKey(ctx context.Context) string {
	if key, ok := ctx.Value(taskKeyKey).(string); ok {
		return key
	}
	return ""
}
