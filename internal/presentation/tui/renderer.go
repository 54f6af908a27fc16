package tui

import (
	"os"

	"github.com/charmbracelet/glamour"
	"golang.org/x/term"
)

// NewRenderer returns a markdown renderer for reply text, styled for the
// detected terminal background. Output wraps to the terminal width when
// stdout is one, capped so wide windows stay readable.
func NewRenderer() func(string) (string, error) {
	opts := []glamour.TermRendererOption{glamour.WithAutoStyle()}
	if width, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && width > 0 {
		if width > 100 {
			width = 100
		}
		opts = append(opts, glamour.WithWordWrap(width))
	}

	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return func(markdown string) (string, error) { return markdown, nil }
	}
	return func(markdown string) (string, error) {
		return r.Render(markdown)
	}
}

// Interactive reports whether f is attached to a terminal. The banner and
// markdown rendering are skipped for piped input and output.
func Interactive(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
