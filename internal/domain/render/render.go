// Package render formats a finalized automaton for human inspection: the
// trie shape, the fail link of every prefix, and printed match offsets. It only
// reads through the automaton's public accessors; neither Build nor Scan
// depend on it.
package render

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/corey/acmatch/internal/domain/automaton"
)

// emptyLabel stands for the root's empty prefix.
const emptyLabel = "[EMPTY]"

// Symbols turns a path of symbols into display text.
type Symbols[S comparable] func(path []S) string

// Runes renders rune paths as strings.
func Runes(path []rune) string { return string(path) }

// Bytes renders byte paths as text. Bytes outside printable ASCII are
// written as \xNN so that one symbol is always one visible unit.
func Bytes(path []byte) string {
	var sb strings.Builder
	for _, b := range path {
		switch {
		case b == '\\':
			sb.WriteString(`\\`)
		case b >= 0x20 && b < 0x7f:
			sb.WriteByte(b)
		default:
			fmt.Fprintf(&sb, `\x%02x`, b)
		}
	}
	return sb.String()
}

// Tree renders the trie shape as nested arrows, children in insertion order:
//
//	[EMPTY] -> (A -> (C -> C, T -> C), C -> A -> T, G -> C -> G)
func Tree[S comparable](a *automaton.Automaton[S], show Symbols[S]) string {
	var sb strings.Builder
	writeTree(&sb, a, show, automaton.RootID)
	return sb.String()
}

func writeTree[S comparable](sb *strings.Builder, a *automaton.Automaton[S], show Symbols[S], id int) {
	n, _ := a.Node(id)
	if id == automaton.RootID {
		sb.WriteString(emptyLabel)
	} else {
		sb.WriteString(show([]S{n.Symbol}))
	}
	switch len(n.Children) {
	case 0:
	case 1:
		sb.WriteString(" -> ")
		writeTree(sb, a, show, n.Children[0])
	default:
		sb.WriteString(" -> (")
		for i, c := range n.Children {
			if i > 0 {
				sb.WriteString(", ")
			}
			writeTree(sb, a, show, c)
		}
		sb.WriteString(")")
	}
}

// FailLink is one prefix and the prefix its fail link points to.
type FailLink struct {
	Prefix string
	Fail   string
	Depth  int
	Output []string // patterns ending here, own first
}

// FailLinks lists every non-root state in breadth-first order.
func FailLinks[S comparable](a *automaton.Automaton[S], show Symbols[S]) []FailLink {
	var links []FailLink
	a.Walk(func(n automaton.NodeInfo[S]) bool {
		if n.ID == automaton.RootID {
			return true
		}
		links = append(links, FailLink{
			Prefix: show(a.Path(n.ID)),
			Fail:   show(a.Path(n.Fail)),
			Depth:  n.Depth,
			Output: outputs(a, show, n.Output),
		})
		return true
	})
	return links
}

// Table renders FailLinks one state per line:
//
//	GC -> C  {GC, C}
func Table(links []FailLink) string {
	width := 0
	for _, l := range links {
		width = max(width, utf8.RuneCountInString(l.Prefix))
	}
	var sb strings.Builder
	for _, l := range links {
		fail := l.Fail
		if fail == "" {
			fail = emptyLabel
		}
		fmt.Fprintf(&sb, "%-*s -> %s", width, l.Prefix, fail)
		if len(l.Output) > 0 {
			fmt.Fprintf(&sb, "  {%s}", strings.Join(l.Output, ", "))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// Offsets returns a match's inclusive start and end as printed. Matches are
// always zero-based; oneBased shifts the printed pair only.
func Offsets(start, end int, oneBased bool) (int, int) {
	if oneBased {
		return start + 1, end + 1
	}
	return start, end
}

// Outline renders the trie one state per line with box-drawing connectors,
// marking states that end a pattern with the patterns they report. maxDepth
// limits how deep it descends (0 = unlimited).
//
//	[EMPTY]
//	├── h
//	│   └── e  {he}
//	└── s
func Outline[S comparable](a *automaton.Automaton[S], show Symbols[S], maxDepth int) string {
	var sb strings.Builder
	root, _ := a.Node(automaton.RootID)
	sb.WriteString(emptyLabel)
	writeOutput(&sb, a, show, root.Output)
	sb.WriteString("\n")
	writeOutline(&sb, a, show, root.Children, "", maxDepth)
	return sb.String()
}

func writeOutline[S comparable](sb *strings.Builder, a *automaton.Automaton[S], show Symbols[S], ids []int, prefix string, maxDepth int) {
	for i, id := range ids {
		n, _ := a.Node(id)
		isLast := i == len(ids)-1
		connector := "├── "
		if isLast {
			connector = "└── "
		}

		sb.WriteString(prefix + connector + show([]S{n.Symbol}))
		writeOutput(sb, a, show, n.Output)
		sb.WriteString("\n")

		if maxDepth == 0 || n.Depth < maxDepth {
			next := prefix + "│   "
			if isLast {
				next = prefix + "    "
			}
			writeOutline(sb, a, show, n.Children, next, maxDepth)
		}
	}
}

func writeOutput[S comparable](sb *strings.Builder, a *automaton.Automaton[S], show Symbols[S], ids []int) {
	if len(ids) > 0 {
		fmt.Fprintf(sb, "  {%s}", strings.Join(outputs(a, show, ids), ", "))
	}
}

// outputs renders pattern ids; the empty pattern gets emptyLabel.
func outputs[S comparable](a *automaton.Automaton[S], show Symbols[S], ids []int) []string {
	if len(ids) == 0 {
		return nil
	}
	out := make([]string, len(ids))
	for i, p := range ids {
		out[i] = show(a.Pattern(p))
		if out[i] == "" {
			out[i] = emptyLabel
		}
	}
	return out
}
