package forum

import "errors"

var (
	// ErrPermissionDenied is wrapped by gateways when the bot lacks the right
	// to perform an operation. Removal falls back to archive+lock.
	ErrPermissionDenied = errors.New("permission denied")
	// ErrNotFound is wrapped by gateways when the remote object no longer exists.
	ErrNotFound = errors.New("remote object not found")
	// ErrNotForum is returned when the configured parent channel is not a forum.
	ErrNotForum = errors.New("channel is not a forum channel")
	// ErrTaskNotFound is returned by task sources for unknown keys.
	ErrTaskNotFound = errors.New("task not found")
	// ErrThreadNotLinked is returned when a thread has no mapped task.
	ErrThreadNotLinked = errors.New("thread is not linked to a task")
)

// IsPermissionDenied reports whether err wraps ErrPermissionDenied.
func IsPermissionDenied(err error) bool {
	return errors.Is(err, ErrPermissionDenied)
}

// IsNotFound reports whether err wraps ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
