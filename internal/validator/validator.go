// Package validator lints scene trees at startup, before any session has
// recorded positions against them.
package validator

import (
	"fmt"
	"strings"

	"github.com/gabelluardo/grammY/pkg/scene"
)

// ValidateScenes checks every registered scene for structural problems a
// builder can produce but a running engine cannot recover from or will
// silently misbehave on.
func ValidateScenes(reg *scene.Registry) error {
	var problems []string

	for _, id := range reg.IDs() {
		sc, _ := reg.Get(id)
		if sc.Len() == 0 {
			problems = append(problems, fmt.Sprintf("scene %q has no entries", id))
			continue
		}
		sc.Walk(func(info scene.EntryInfo) {
			if info.Kind == scene.KindScope && info.ChildScope >= 0 && scopeLen(sc, info.ChildScope) == 0 {
				problems = append(problems, fmt.Sprintf(
					"scene %q: scope %q at depth %d pc %d is empty and completes immediately",
					id, label(info), info.Depth, info.PC))
			}
			if info.Kind == scene.KindWait {
				// Arms match first to last; an ungated arm swallows
				// every update, so arms after it never run.
				for i, gated := range info.ArmFiltered {
					if !gated && i < len(info.ArmFiltered)-1 {
						problems = append(problems, fmt.Sprintf(
							"scene %q: wait %q at depth %d pc %d has %d unreachable arm(s) after an ungated one",
							id, label(info), info.Depth, info.PC, len(info.ArmFiltered)-1-i))
						break
					}
				}
			}
		})
	}

	if len(problems) > 0 {
		return fmt.Errorf("scene validation failed:\n  %s", strings.Join(problems, "\n  "))
	}
	return nil
}

func label(info scene.EntryInfo) string {
	if info.Label != "" {
		return info.Label
	}
	return "-"
}

func scopeLen(sc *scene.Scene, scopeID int) int {
	n := 0
	sc.Walk(func(info scene.EntryInfo) {
		if info.ScopeID == scopeID {
			n++
		}
	})
	return n
}
