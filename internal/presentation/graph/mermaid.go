// Package graph renders scene trees as Mermaid flowcharts. A persisted
// trace can be overlaid on the static structure, which makes the output
// useful when debugging a suspended conversation next to its tree.
package graph

import (
	"fmt"
	"strings"

	"github.com/gabelluardo/grammY/pkg/domain"
	"github.com/gabelluardo/grammY/pkg/scene"
)

// GenerateMermaid produces Mermaid flowchart syntax for a scene tree.
// It applies semantic shapes:
// - First entry of the root scope: ((Circle))
// - Wait: [/Parallelogram/] (input)
// - Nested scope: [[Subroutine]]
// - Step: [Rectangle]
// When state carries a trace for this scene, the entries on the active
// path are styled visited and the innermost one current.
func GenerateMermaid(s *scene.Scene, state *domain.SceneState) string {
	scopes := make(map[int][]scene.EntryInfo)
	var order []int
	s.Walk(func(info scene.EntryInfo) {
		if len(scopes[info.ScopeID]) == 0 {
			order = append(order, info.ScopeID)
		}
		scopes[info.ScopeID] = append(scopes[info.ScopeID], info)
	})

	var sb strings.Builder
	sb.WriteString("graph TD\n")

	for _, scopeID := range order {
		entries := scopes[scopeID]
		for i, info := range entries {
			sb.WriteString(renderNode(info))

			if info.Kind == scene.KindScope {
				if child := scopes[info.ChildScope]; len(child) > 0 {
					writeEdges(&sb, info, nodeID(info.ChildScope, child[0].PC), false)
				}
				// Gated scopes can be skipped over entirely.
				if info.Filtered && i+1 < len(entries) {
					fmt.Fprintf(&sb, "    %s -.-> %s\n", nodeID(scopeID, info.PC), nodeID(scopeID, entries[i+1].PC))
				}
				continue
			}

			if i+1 < len(entries) {
				writeEdges(&sb, info, nodeID(scopeID, entries[i+1].PC), false)
			} else if target, ok := continuation(scopes, scopeID); ok {
				// Finishing the scope pops back to the parent.
				writeEdges(&sb, info, target, true)
			}
		}
	}

	if state != nil && state.Scene == s.ID() {
		renderTrace(&sb, scopes, state.Stack)
	}

	return sb.String()
}

func renderNode(info scene.EntryInfo) string {
	opener, closer := "[", "]"
	switch {
	case info.ScopeID == 0 && info.PC == 0:
		opener, closer = "((", "))"
	case info.Kind == scene.KindWait:
		opener, closer = "[/", "/]"
	case info.Kind == scene.KindScope:
		opener, closer = "[[", "]]"
	}

	label := info.Label
	if label == "" {
		label = fmt.Sprintf("%s %d", info.Kind, info.PC)
	}
	if info.Filtered {
		label += "?"
	}
	return fmt.Sprintf("    %s%s\"%s\"%s\n", nodeID(info.ScopeID, info.PC), opener, escapeLabel(label), closer)
}

// writeEdges draws the outgoing edges of one entry. Waits get one edge per
// labeled resume arm; pops are drawn dashed.
func writeEdges(sb *strings.Builder, from scene.EntryInfo, to string, pop bool) {
	src := nodeID(from.ScopeID, from.PC)

	plain := "-->"
	if pop {
		plain = "-.->"
	}

	if from.Kind != scene.KindWait {
		fmt.Fprintf(sb, "    %s %s %s\n", src, plain, to)
		return
	}

	labeled := 0
	seen := make(map[string]bool)
	for _, l := range from.ArmLabels {
		if l == "" || seen[l] {
			continue
		}
		seen[l] = true
		labeled++
		arrow := fmt.Sprintf("-- \"%s\" -->", escapeLabel(l))
		if pop {
			arrow = fmt.Sprintf("-. \"%s\" .->", escapeLabel(l))
		}
		fmt.Fprintf(sb, "    %s %s %s\n", src, arrow, to)
	}
	// Arms without labels, or a bare wait, share one unlabeled edge.
	if labeled < from.ResumeArms || from.ResumeArms == 0 {
		fmt.Fprintf(sb, "    %s %s %s\n", src, plain, to)
	}
}

// continuation finds the entry control reaches after the given scope
// completes, walking up until a scope has a next sibling. At the root the
// scene is done and there is no continuation.
func continuation(scopes map[int][]scene.EntryInfo, scopeID int) (string, bool) {
	for scopeID != 0 {
		opener, ok := findOpener(scopes, scopeID)
		if !ok {
			return "", false
		}
		siblings := scopes[opener.ScopeID]
		if opener.PC+1 < len(siblings) {
			return nodeID(opener.ScopeID, siblings[opener.PC+1].PC), true
		}
		scopeID = opener.ScopeID
	}
	return "", false
}

func findOpener(scopes map[int][]scene.EntryInfo, scopeID int) (scene.EntryInfo, bool) {
	for _, entries := range scopes {
		for _, info := range entries {
			if info.Kind == scene.KindScope && info.ChildScope == scopeID {
				return info, true
			}
		}
	}
	return scene.EntryInfo{}, false
}

// renderTrace styles the entries a persisted stack points at. The stack is
// resolved frame by frame from the root; resolution stops quietly at the
// first frame that no longer matches the tree, since rendering is a
// diagnostic and not a validation step.
func renderTrace(sb *strings.Builder, scopes map[int][]scene.EntryInfo, stack domain.Stack) {
	path := resolveTrace(scopes, stack)
	if len(path) == 0 {
		return
	}

	sb.WriteString("\n    %% Trace overlay\n")
	sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
	sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

	for i, id := range path {
		class := "visited"
		if i == len(path)-1 {
			class = "current"
		}
		fmt.Fprintf(sb, "    class %s %s;\n", id, class)
	}
}

func resolveTrace(scopes map[int][]scene.EntryInfo, stack domain.Stack) []string {
	var path []string
	scopeID := 0
	for _, fr := range stack {
		if fr.PC == domain.PCUnset {
			break
		}
		entries := scopes[scopeID]
		if fr.PC < 0 || fr.PC >= len(entries) {
			break
		}
		info := entries[fr.PC]
		path = append(path, nodeID(scopeID, fr.PC))
		if info.Kind != scene.KindScope || info.ChildScope < 0 {
			break
		}
		scopeID = info.ChildScope
	}
	return path
}

func nodeID(scopeID, pc int) string {
	return fmt.Sprintf("e%d_%d", scopeID, pc)
}

func escapeLabel(label string) string {
	return strings.ReplaceAll(label, "\"", "'")
}
