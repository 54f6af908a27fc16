package runner

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/gabelluardo/grammY/pkg/domain"
)

// TextHandler implements the standard line-oriented terminal interface.
// Typing "exit" or "quit" ends the stream.
type TextHandler struct {
	Writer   io.Writer
	Renderer ContentRenderer

	prompt   string
	maxInput int

	reader    *bufio.Reader
	inputChan chan inputResult
	startOnce sync.Once
}

type inputResult struct {
	text string
	err  error
}

// TextOption configures a TextHandler.
type TextOption func(*TextHandler)

// WithTextRenderer sets the reply renderer (markdown to ANSI, say).
func WithTextRenderer(renderer ContentRenderer) TextOption {
	return func(h *TextHandler) { h.Renderer = renderer }
}

// WithTextPrompt overrides the input prompt. An empty prompt disables it,
// which is what you want when input comes from a pipe.
func WithTextPrompt(prompt string) TextOption {
	return func(h *TextHandler) { h.prompt = prompt }
}

// WithTextLimit overrides the per-line input size limit.
func WithTextLimit(limit int) TextOption {
	return func(h *TextHandler) { h.maxInput = limit }
}

// NewTextHandler creates a handler for plain text IO. Nil reader or writer
// default to stdin and stdout.
func NewTextHandler(r io.Reader, w io.Writer, opts ...TextOption) *TextHandler {
	if r == nil {
		r = os.Stdin
	}
	if w == nil {
		w = os.Stdout
	}
	h := &TextHandler{
		Writer:   w,
		prompt:   "> ",
		maxInput: DefaultMaxInputSize,
		reader:   bufio.NewReader(r),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// initPump starts the background read exactly once. Reading on a separate
// goroutine is what lets Input honor context cancellation: a blocked
// ReadString cannot be interrupted, but the select on the channel can.
func (h *TextHandler) initPump() {
	h.startOnce.Do(func() {
		h.inputChan = make(chan inputResult)
		go h.pump()
	})
}

func (h *TextHandler) pump() {
	for {
		text, err := h.reader.ReadString('\n')

		if text != "" {
			h.inputChan <- inputResult{text: text}
		}

		if err != nil {
			if err == io.EOF {
				close(h.inputChan)
				return
			}
			h.inputChan <- inputResult{err: err}
			// Backoff so a persistently failing reader does not spin.
			time.Sleep(50 * time.Millisecond)
		}
	}
}

// Input reads lines until one parses to an update. Oversized or malformed
// lines are reported to the user and re-prompted rather than dispatched.
func (h *TextHandler) Input(ctx context.Context) (*domain.Update, error) {
	h.initPump()

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
			if h.prompt != "" {
				fmt.Fprint(h.Writer, h.prompt)
			}
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case res, ok := <-h.inputChan:
			if !ok {
				return nil, io.EOF
			}
			if res.err != nil {
				return nil, res.err
			}

			line, err := SanitizeInput(strings.TrimSpace(res.text), h.maxInput)
			if err != nil {
				fmt.Fprintf(h.Writer, "Error: %v. Please try again.\n", err)
				continue
			}
			if line == "exit" || line == "quit" {
				return nil, io.EOF
			}

			u := ParseLine(line)
			if u == nil {
				continue
			}
			return u, nil
		}
	}
}

// Send writes one bot reply, rendered when a renderer is configured. It
// implements composer.Sink so the handler can be passed to grammy.WithSink.
func (h *TextHandler) Send(_ context.Context, _, text string) error {
	out := text
	if h.Renderer != nil {
		if rendered, err := h.Renderer(text); err == nil {
			out = rendered
		}
	}
	_, err := fmt.Fprintln(h.Writer, strings.TrimSpace(out))
	return err
}

// SystemOutput writes a meta-message, visually distinct from replies.
func (h *TextHandler) SystemOutput(_ context.Context, msg string) error {
	_, err := fmt.Fprintf(h.Writer, "[system] %s\n", msg)
	return err
}
