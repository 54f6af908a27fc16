package scene

import (
	"fmt"
	"strings"
)

// Describe renders a plain-text outline of the scene tree, one line per
// entry, indented by nesting depth. Positions shown are the ones recorded
// in persisted stacks, which makes the output useful when reading a stored
// trace next to the tree it belongs to.
func Describe(s *Scene) string {
	var b strings.Builder
	fmt.Fprintf(&b, "scene %s\n", s.ID())
	s.Walk(func(info EntryInfo) {
		indent := strings.Repeat("    ", info.Depth+1)
		label := info.Label
		if label == "" {
			label = "-"
		}
		fmt.Fprintf(&b, "%s[%d] %-5s %s", indent, info.PC, info.Kind, label)
		if info.Filtered {
			b.WriteString(" (filtered)")
		}
		if info.Kind == KindWait && info.ResumeArms > 0 {
			fmt.Fprintf(&b, " (arms: %d)", info.ResumeArms)
		}
		b.WriteByte('\n')
	})
	return b.String()
}
