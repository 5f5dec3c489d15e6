package automaton

import "iter"

// step advances from state cur on sym. Fail transitions consume no input;
// at the root an unmatched symbol leaves the state at the root.
func (a *Automaton[S]) step(cur int, sym S) int {
	for {
		if next, ok := a.nodes[cur].next[sym]; ok {
			return next
		}
		if cur == RootID {
			return RootID
		}
		cur = a.nodes[cur].fail
	}
}

// emit yields every pattern ending at state cur for the symbol at pos.
// It reports false if the consumer stopped.
func (a *Automaton[S]) emit(cur, pos int, yield func(Match) bool) bool {
	for _, p := range a.nodes[cur].output {
		if !yield(Match{Pattern: p, Start: pos - len(a.patterns[p]) + 1, End: pos}) {
			return false
		}
	}
	return true
}

// Scan returns the lazy sequence of matches in text. Matches come in order of
// End; at one position the longest pattern comes first, then each shorter
// suffix pattern reached through the fail chain. The sequence may be ranged
// over any number of times and stopped at any point.
func (a *Automaton[S]) Scan(text []S) iter.Seq[Match] {
	return func(yield func(Match) bool) {
		cur := RootID
		for i, sym := range text {
			cur = a.step(cur, sym)
			if !a.emit(cur, i, yield) {
				return
			}
		}
	}
}

// ScanSeq is Scan over a possibly unbounded stream of symbols. Stopping the
// returned sequence also stops pulling from symbols.
func (a *Automaton[S]) ScanSeq(symbols iter.Seq[S]) iter.Seq[Match] {
	return func(yield func(Match) bool) {
		cur := RootID
		i := 0
		for sym := range symbols {
			cur = a.step(cur, sym)
			if !a.emit(cur, i, yield) {
				return
			}
			i++
		}
	}
}

// FindAll collects every match in text.
func (a *Automaton[S]) FindAll(text []S) []Match {
	var out []Match
	for m := range a.Scan(text) {
		out = append(out, m)
	}
	return out
}

// Contains reports whether any pattern occurs in text, stopping at the
// first occurrence.
func (a *Automaton[S]) Contains(text []S) bool {
	for range a.Scan(text) {
		return true
	}
	return false
}

// Cursor holds the state of one scan so input can be fed in chunks.
// Positions continue across chunks. A Cursor is not safe for concurrent use,
// but any number of cursors may share one Automaton.
type Cursor[S comparable] struct {
	a     *Automaton[S]
	state int
	pos   int
}

// NewCursor returns a cursor positioned at the root before any input.
func (a *Automaton[S]) NewCursor() *Cursor[S] {
	return &Cursor[S]{a: a, state: RootID}
}

// Step consumes one symbol and returns the ids of patterns ending at it.
// The returned slice belongs to the automaton and must not be modified.
func (c *Cursor[S]) Step(sym S) []int {
	c.state = c.a.step(c.state, sym)
	c.pos++
	return c.a.nodes[c.state].output
}

// Feed consumes chunk and yields its matches with offsets relative to the
// start of the whole stream. If the consumer stops early, the cursor stays
// after the symbol whose match stopped it.
func (c *Cursor[S]) Feed(chunk []S) iter.Seq[Match] {
	return func(yield func(Match) bool) {
		for _, sym := range chunk {
			c.state = c.a.step(c.state, sym)
			pos := c.pos
			c.pos++
			if !c.a.emit(c.state, pos, yield) {
				return
			}
		}
	}
}

// Pos returns the number of symbols consumed so far.
func (c *Cursor[S]) Pos() int { return c.pos }

// State returns the current node id.
func (c *Cursor[S]) State() int { return c.state }

// Reset rewinds the cursor to the root and position zero.
func (c *Cursor[S]) Reset() {
	c.state = RootID
	c.pos = 0
}
