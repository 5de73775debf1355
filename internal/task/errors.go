package task

import "errors"

var (
	// ErrLoad means the persisted payload could not be decoded.
	ErrLoad = errors.New("load tasks")
	// ErrValidation means a create or update payload was rejected.
	ErrValidation = errors.New("invalid task")
	// ErrNotFound means no task has the requested id.
	ErrNotFound = errors.New("task not found")
	// ErrPersistence means writing the snapshot to durable storage failed.
	// The in-memory collection is still correct.
	ErrPersistence = errors.New("persist tasks")
	// ErrClosed is returned by mutations after Close.
	ErrClosed = errors.New("task store closed")
)
