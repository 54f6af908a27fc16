package domain

import (
	"errors"
	"fmt"
)

// ErrAlreadyActive is returned by Enter when a scene is already driving the
// current update, or when persisted state for another scene instance exists.
var ErrAlreadyActive = errors.New("scene already active")

// ErrNotActive is returned by Leave and by navigation calls made while no
// scene is active for the conversation.
var ErrNotActive = errors.New("no active scene")

// ErrUnknownScene is returned when an identifier does not name a registered
// scene.
var ErrUnknownScene = errors.New("unknown scene")

// ErrInvalidPosition is returned when a navigation call points outside the
// scene tree.
var ErrInvalidPosition = errors.New("invalid position")

// ErrSessionNotFound is returned when a session key cannot be found in the
// store.
var ErrSessionNotFound = errors.New("session not found")

// DesyncError reports a structural mismatch between a persisted stack and
// the scene tree built on this start-up: a recorded position with no
// matching entry, or a frame where the tree has no scope. It is fatal for
// the invocation; the engine discards the persisted trace when it surfaces.
type DesyncError struct {
	// Scene is the identifier of the scene being replayed.
	Scene string
	// Depth is the stack index that failed to match.
	Depth int
	// PC is the recorded position at that depth.
	PC int
	// Reason describes the mismatch.
	Reason string
}

func (e *DesyncError) Error() string {
	return fmt.Sprintf("scene %q out of sync at depth %d (pc %d): %s", e.Scene, e.Depth, e.PC, e.Reason)
}

// IsDesync reports whether err is, or wraps, a DesyncError.
func IsDesync(err error) bool {
	var de *DesyncError
	return errors.As(err, &de)
}
