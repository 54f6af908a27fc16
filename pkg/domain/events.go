package domain

import (
	"context"
	"time"
)

// EventType defines the category of a lifecycle event.
type EventType string

const (
	EventSceneEnter EventType = "scene_enter"
	EventSceneLeave EventType = "scene_leave"
	EventStepRun    EventType = "step_run"
	EventWait       EventType = "wait"
)

// LeaveReason explains why a scene stopped being active.
type LeaveReason string

const (
	LeaveCompleted LeaveReason = "completed" // Traversal fell off the end of the tree
	LeaveExplicit  LeaveReason = "left"      // A handler called Leave
	LeaveSwitched  LeaveReason = "switched"  // Control moved to another scene
	LeaveDesync    LeaveReason = "desync"    // Trace discarded after a structural mismatch
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	Key       string    `json:"key"`
}

// SceneEvent marks entry to or exit from a scene.
type SceneEvent struct {
	EventBase
	Scene  string      `json:"scene"`
	Reason LeaveReason `json:"reason,omitempty"`
}

// StepEvent records one tracker decision on a single entry.
type StepEvent struct {
	EventBase
	Scene    string `json:"scene"`
	Depth    int    `json:"depth"`
	PC       int    `json:"pc"`
	Label    string `json:"label,omitempty"`
	Replayed bool   `json:"replayed,omitempty"`
}

// LifecycleHooks defines callbacks for engine observability. Nil fields are
// skipped. Hooks run synchronously on the invocation goroutine and must not
// block.
type LifecycleHooks struct {
	OnSceneEnter func(context.Context, *SceneEvent)
	OnSceneLeave func(context.Context, *SceneEvent)
	OnStepRun    func(context.Context, *StepEvent)
	OnWait       func(context.Context, *StepEvent)
}

// EmitSceneEnter fires OnSceneEnter if set.
func (h LifecycleHooks) EmitSceneEnter(ctx context.Context, ev *SceneEvent) {
	if h.OnSceneEnter != nil {
		h.OnSceneEnter(ctx, ev)
	}
}

// EmitSceneLeave fires OnSceneLeave if set.
func (h LifecycleHooks) EmitSceneLeave(ctx context.Context, ev *SceneEvent) {
	if h.OnSceneLeave != nil {
		h.OnSceneLeave(ctx, ev)
	}
}

// EmitStepRun fires OnStepRun if set.
func (h LifecycleHooks) EmitStepRun(ctx context.Context, ev *StepEvent) {
	if h.OnStepRun != nil {
		h.OnStepRun(ctx, ev)
	}
}

// EmitWait fires OnWait if set.
func (h LifecycleHooks) EmitWait(ctx context.Context, ev *StepEvent) {
	if h.OnWait != nil {
		h.OnWait(ctx, ev)
	}
}

// NewEventBase stamps a base event with the current time.
func NewEventBase(t EventType, key string) EventBase {
	return EventBase{Timestamp: time.Now(), Type: t, Key: key}
}
