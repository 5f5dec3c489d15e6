// Package ahocorasick implements ports.PatternMatcher over the byte-level
// automaton in internal/domain/automaton. The compiled automaton sits behind
// an atomic pointer: Rebuild compiles a fresh one and swaps it in, so readers
// never lock and scans in flight finish on the automaton they started with.
package ahocorasick

import (
	"bufio"
	"context"
	"errors"
	"io"
	"sync/atomic"

	"github.com/corey/acmatch/internal/domain/automaton"
	"github.com/corey/acmatch/internal/ports"
)

// DefaultChunkSize is the read size used by ScanReader when none is given.
const DefaultChunkSize = 64 * 1024

// compiled pairs an automaton with its pattern strings, indexed by id.
type compiled struct {
	a        *automaton.Automaton[byte]
	patterns []string
}

// Matcher implements ports.PatternMatcher.
type Matcher struct {
	allowEmpty bool
	cur        atomic.Pointer[compiled]
}

var _ ports.PatternMatcher = (*Matcher)(nil)

// NewMatcher returns a matcher with an empty pattern set. allowEmpty is the
// empty-pattern policy applied on every Rebuild.
func NewMatcher(allowEmpty bool) *Matcher {
	m := &Matcher{allowEmpty: allowEmpty}
	a, _ := automaton.BuildBytes(nil)
	m.cur.Store(&compiled{a: a})
	return m
}

// Rebuild compiles patterns and replaces the current automaton. On error the
// previous automaton stays in place.
func (m *Matcher) Rebuild(patterns []string) error {
	return m.RebuildWithPolicy(patterns, m.allowEmpty)
}

// RebuildWithPolicy is Rebuild with an explicit empty-pattern policy for
// this one build, e.g. a stored set that was saved with empty patterns.
func (m *Matcher) RebuildWithPolicy(patterns []string, allowEmpty bool) error {
	var opts []automaton.Option
	if allowEmpty {
		opts = append(opts, automaton.AllowEmpty())
	}
	a, err := automaton.BuildBytes(patterns, opts...)
	if err != nil {
		return err
	}
	names := make([]string, a.PatternCount())
	for i := range names {
		names[i] = string(a.Pattern(i))
	}
	m.cur.Store(&compiled{a: a, patterns: names})
	return nil
}

// Automaton returns the automaton currently in use.
func (m *Matcher) Automaton() *automaton.Automaton[byte] {
	return m.cur.Load().a
}

// Patterns returns the deduplicated pattern list, indexed by pattern id.
func (m *Matcher) Patterns() []string {
	c := m.cur.Load()
	out := make([]string, len(c.patterns))
	copy(out, c.patterns)
	return out
}

// Match returns the distinct patterns found in content, in order of first
// occurrence.
func (m *Matcher) Match(content string) []string {
	c := m.cur.Load()
	if len(c.patterns) == 0 {
		return nil
	}

	// Deduplicate by pattern id
	seen := make([]bool, len(c.patterns))
	var result []string
	for hit := range c.a.Scan([]byte(content)) {
		if !seen[hit.Pattern] {
			seen[hit.Pattern] = true
			result = append(result, c.patterns[hit.Pattern])
		}
	}
	return result
}

// Locate returns every occurrence in content with byte offsets.
func (m *Matcher) Locate(content []byte) []ports.Hit {
	c := m.cur.Load()
	var hits []ports.Hit
	for hit := range c.a.Scan(content) {
		hits = append(hits, c.hit(hit))
	}
	return hits
}

func (c *compiled) hit(m automaton.Match) ports.Hit {
	return ports.Hit{
		Pattern: c.patterns[m.Pattern],
		ID:      m.Pattern,
		Start:   m.Start,
		End:     m.End,
	}
}

// ErrStopped is returned by ScanReader when fn asked to stop.
var ErrStopped = errors.New("scan stopped")

// ScanReader scans r in chunks of chunkSize bytes (DefaultChunkSize if <= 0),
// calling fn for each hit with offsets relative to the start of r. It checks
// ctx between chunks. Returns the number of bytes consumed. If fn returns
// false, ScanReader returns ErrStopped.
func (m *Matcher) ScanReader(ctx context.Context, r io.Reader, chunkSize int, fn func(ports.Hit) bool) (int64, error) {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	c := m.cur.Load()
	cursor := c.a.NewCursor()
	br := bufio.NewReaderSize(r, chunkSize)
	buf := make([]byte, chunkSize)

	for {
		if err := ctx.Err(); err != nil {
			return int64(cursor.Pos()), err
		}
		n, err := br.Read(buf)
		for hit := range cursor.Feed(buf[:n]) {
			if !fn(c.hit(hit)) {
				return int64(cursor.Pos()), ErrStopped
			}
		}
		if err == io.EOF {
			return int64(cursor.Pos()), nil
		}
		if err != nil {
			return int64(cursor.Pos()), err
		}
	}
}
