package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the start-up banner to w. Colors degrade with the
// profile termenv detects, down to plain text on dumb terminals.
func PrintBanner(w io.Writer, version string) {
	p := termenv.ColorProfile()

	lines := []struct {
		text  string
		color string
	}{
		{"  __ _ _ __ __ _ _ __ ___  _ __ ___  _   _ ", "#818cf8"},
		{" / _` | '__/ _` | '_ ` _ \\| '_ ` _ \\| | | |", "#a78bfa"},
		{"| (_| | |  | (_| | | | | | | | | | | |_| | ", "#c084fc"},
		{" \\__, |_|   \\__,_|_| |_| |_|_| |_| |_\\__, |", "#e879f9"},
		{" |___/                               |___/ ", "#f472b6"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintf(w, "%s\n\n", termenv.String("  v"+version).Foreground(p.Color("#fb7185")))
}
