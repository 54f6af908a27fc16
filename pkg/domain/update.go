package domain

import "strings"

// UpdateKind classifies an inbound update.
type UpdateKind string

const (
	KindMessage  UpdateKind = "message"  // Free-form text
	KindCommand  UpdateKind = "command"  // Slash command, e.g. "/start"
	KindCallback UpdateKind = "callback" // Button press / callback payload
	KindEvent    UpdateKind = "event"    // Transport-specific event
)

// Update is one inbound event delivered to the bot. Exactly one update is
// processed per invocation; the engine never retains an update across
// invocations.
type Update struct {
	// ID is a transport-assigned sequence number, used for logging and
	// tracing only. It carries no routing meaning.
	ID int64 `json:"id"`

	// Key identifies the conversation the update belongs to. All persisted
	// state is scoped to this key. The transport must deliver updates for
	// one key strictly one at a time, in arrival order.
	Key string `json:"key"`

	// Kind selects which filters the update can match.
	Kind UpdateKind `json:"kind"`

	// Text carries the message body, or the full command line for
	// KindCommand updates.
	Text string `json:"text,omitempty"`

	// Payload carries callback or event data.
	Payload map[string]any `json:"payload,omitempty"`
}

// Command returns the command name without the leading slash, or "" when
// the update is not a command.
func (u *Update) Command() string {
	if u == nil || u.Kind != KindCommand {
		return ""
	}
	name := u.Text
	if i := strings.IndexByte(name, ' '); i >= 0 {
		name = name[:i]
	}
	return strings.TrimPrefix(name, "/")
}

// CommandArgs returns the text after the command name, trimmed of
// surrounding whitespace.
func (u *Update) CommandArgs() string {
	if u == nil || u.Kind != KindCommand {
		return ""
	}
	if i := strings.IndexByte(u.Text, ' '); i >= 0 {
		return strings.TrimSpace(u.Text[i+1:])
	}
	return ""
}

// CallbackData returns the "data" field of a callback payload, or "" when
// absent or not a string.
func (u *Update) CallbackData() string {
	if u == nil || u.Kind != KindCallback {
		return ""
	}
	data, _ := u.Payload["data"].(string)
	return data
}
