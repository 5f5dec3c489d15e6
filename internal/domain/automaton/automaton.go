package automaton

import "slices"

// Automaton is a finalized matcher over symbols of type S. It is read-only:
// any number of goroutines may scan with it concurrently.
type Automaton[S comparable] struct {
	nodes    []node[S]
	patterns [][]S
}

// Match is one occurrence of a pattern in a scanned text. Offsets are
// 0-based symbol positions; End is inclusive. A zero-length match (the empty
// pattern) has Start == End+1.
type Match struct {
	Pattern int `json:"pattern"`
	Start   int `json:"start"`
	End     int `json:"end"`
}

// Len returns the number of symbols the match covers.
func (m Match) Len() int {
	return m.End - m.Start + 1
}

// NodeCount returns the number of states, root included.
func (a *Automaton[S]) NodeCount() int {
	return len(a.nodes)
}

// PatternCount returns the number of distinct patterns.
func (a *Automaton[S]) PatternCount() int {
	return len(a.patterns)
}

// Pattern returns a copy of the symbols of pattern id, or nil if id is out
// of range.
func (a *Automaton[S]) Pattern(id int) []S {
	if id < 0 || id >= len(a.patterns) {
		return nil
	}
	return slices.Clone(a.patterns[id])
}

// PatternLen returns the length of pattern id, or -1 if id is out of range.
func (a *Automaton[S]) PatternLen(id int) int {
	if id < 0 || id >= len(a.patterns) {
		return -1
	}
	return len(a.patterns[id])
}
