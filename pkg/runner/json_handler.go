package runner

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"os"
	"strings"

	"github.com/gabelluardo/grammY/pkg/domain"
)

// Event is one line of JSONHandler output.
type Event struct {
	Type  string `json:"type"`
	Key   string `json:"key,omitempty"`
	Text  string `json:"text,omitempty"`
	Error string `json:"error,omitempty"`
}

// Event types emitted by JSONHandler.
const (
	EventReply  = "reply"
	EventSystem = "system"
	EventError  = "error"
)

// JSONHandler implements the IOHandler interface for JSON-Lines
// communication: every input line is one JSON-encoded update, every
// output line one Event. This is the mode to use when another process
// drives the bot over a pipe.
type JSONHandler struct {
	reader  *bufio.Reader
	encoder *json.Encoder
}

// NewJSONHandler creates a handler for JSON-Lines IO. Nil reader or
// writer default to stdin and stdout.
func NewJSONHandler(r io.Reader, w io.Writer) *JSONHandler {
	if r == nil {
		r = os.Stdin
	}
	if w == nil {
		w = os.Stdout
	}
	return &JSONHandler{
		reader:  bufio.NewReader(r),
		encoder: json.NewEncoder(w),
	}
}

// Input reads lines until one decodes into an update. Lines that do not
// parse are answered with an error event instead of killing the stream,
// so a driving process gets feedback on its own malformed frames.
func (h *JSONHandler) Input(ctx context.Context) (*domain.Update, error) {
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		line, err := h.reader.ReadString('\n')
		if line = strings.TrimSpace(line); line != "" {
			var u domain.Update
			if jerr := json.Unmarshal([]byte(line), &u); jerr != nil {
				if werr := h.encoder.Encode(Event{Type: EventError, Error: "malformed update: " + jerr.Error()}); werr != nil {
					return nil, werr
				}
				if err != nil {
					return nil, err
				}
				continue
			}
			return &u, nil
		}
		if err != nil {
			return nil, err
		}
	}
}

// Send emits a reply event. It implements composer.Sink.
func (h *JSONHandler) Send(_ context.Context, key, text string) error {
	return h.encoder.Encode(Event{Type: EventReply, Key: key, Text: text})
}

// SystemOutput emits a system event.
func (h *JSONHandler) SystemOutput(_ context.Context, msg string) error {
	return h.encoder.Encode(Event{Type: EventSystem, Text: msg})
}
