package runner

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"strings"
	"testing"

	"github.com/gabelluardo/grammY/pkg/domain"
)

func decodeEvents(t *testing.T, out *bytes.Buffer) []Event {
	t.Helper()
	var events []Event
	dec := json.NewDecoder(out)
	for {
		var ev Event
		if err := dec.Decode(&ev); err == io.EOF {
			return events
		} else if err != nil {
			t.Fatalf("malformed event stream: %v", err)
		}
		events = append(events, ev)
	}
}

func TestJSONHandler_InputDecodesUpdates(t *testing.T) {
	in := strings.NewReader(`{"key":"k1","kind":"message","text":"hi"}` + "\n")
	h := NewJSONHandler(in, &bytes.Buffer{})

	u, err := h.Input(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u.Key != "k1" || u.Kind != domain.KindMessage || u.Text != "hi" {
		t.Errorf("update = %+v", u)
	}

	if _, err := h.Input(context.Background()); err != io.EOF {
		t.Fatalf("error after stream end = %v, want io.EOF", err)
	}
}

func TestJSONHandler_MalformedLineEmitsError(t *testing.T) {
	in := strings.NewReader("not json at all\n" + `{"kind":"message","text":"ok"}` + "\n")
	out := &bytes.Buffer{}
	h := NewJSONHandler(in, out)

	u, err := h.Input(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u.Text != "ok" {
		t.Errorf("update text = %q, want the valid line", u.Text)
	}

	events := decodeEvents(t, out)
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}
	if events[0].Type != EventError || !strings.Contains(events[0].Error, "malformed update") {
		t.Errorf("event = %+v, want a malformed-update error", events[0])
	}
}

func TestJSONHandler_SendAndSystemOutput(t *testing.T) {
	out := &bytes.Buffer{}
	h := NewJSONHandler(strings.NewReader(""), out)

	ctx := context.Background()
	if err := h.Send(ctx, "chat-7", "paid"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := h.SystemOutput(ctx, "done"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	events := decodeEvents(t, out)
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}
	if events[0].Type != EventReply || events[0].Key != "chat-7" || events[0].Text != "paid" {
		t.Errorf("reply event = %+v", events[0])
	}
	if events[1].Type != EventSystem || events[1].Text != "done" {
		t.Errorf("system event = %+v", events[1])
	}
}
