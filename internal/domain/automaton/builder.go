package automaton

import (
	"errors"
	"fmt"
)

// ErrBuilderFinished is returned by Builder.Insert after Builder.Build.
// Construction is one-shot: further patterns need a new Builder.
var ErrBuilderFinished = errors.New("builder already finished")

// Option configures construction.
type Option func(*options)

type options struct {
	allowEmpty bool
	format     func(index int) string
}

// AllowEmpty permits the empty pattern. It ends at the root, so it is
// reported at every position of every text as a zero-length match.
// Without this option Build rejects it with ErrInvalidPatternSet.
func AllowEmpty() Option {
	return func(o *options) { o.allowEmpty = true }
}

// withFormat sets how a pattern index is rendered in a PatternError.
func withFormat(f func(index int) string) Option {
	return func(o *options) { o.format = f }
}

// Builder is the trie builder. Insert every pattern, then call Build once.
// Not safe for concurrent use.
type Builder[S comparable] struct {
	opts     options
	nodes    *store[S]
	own      map[int]int // terminal node id -> pattern id
	patterns [][]S
	inserted int
	done     bool
	built    *Automaton[S]
}

// NewBuilder returns an empty builder holding only the root.
func NewBuilder[S comparable](opts ...Option) *Builder[S] {
	b := &Builder[S]{
		nodes: newStore[S](),
		own:   make(map[int]int),
	}
	for _, opt := range opts {
		opt(&b.opts)
	}
	return b
}

// Insert adds pattern as a path from the root and returns its pattern id.
// Inserting a pattern that is already present returns the existing id and
// leaves the trie unchanged.
func (b *Builder[S]) Insert(pattern []S) (int, error) {
	if b.done {
		return None, ErrBuilderFinished
	}
	index := b.inserted
	b.inserted++

	if len(pattern) == 0 && !b.opts.allowEmpty {
		return None, &PatternError{
			Index:   index,
			Pattern: b.describe(index, pattern),
			Reason:  "empty pattern not allowed",
		}
	}

	cur := RootID
	for _, sym := range pattern {
		next := b.nodes.child(cur, sym)
		if next == None {
			next = b.nodes.add(cur, sym, b.nodes.nodes[cur].depth+1)
			b.nodes.link(cur, sym, next)
		}
		cur = next
	}

	if id, ok := b.own[cur]; ok {
		return id, nil
	}
	id := len(b.patterns)
	p := make([]S, len(pattern))
	copy(p, pattern)
	b.patterns = append(b.patterns, p)
	b.own[cur] = id
	b.nodes.nodes[cur].output = []int{id}
	return id, nil
}

// Build runs the failure linker over the finished trie and returns the
// frozen automaton. Further inserts fail with ErrBuilderFinished; calling
// Build again returns the same automaton.
func (b *Builder[S]) Build() *Automaton[S] {
	if b.done {
		return b.built
	}
	b.done = true
	linkFailures(b.nodes)
	b.built = &Automaton[S]{
		nodes:    b.nodes.nodes,
		patterns: b.patterns,
	}
	b.nodes = nil
	b.own = nil
	return b.built
}

func (b *Builder[S]) describe(index int, pattern []S) string {
	if b.opts.format != nil {
		return b.opts.format(index)
	}
	return fmt.Sprint(pattern)
}

// Build compiles patterns into an automaton. It either returns a fully
// linked automaton or fails before linking with a *PatternError wrapping
// ErrInvalidPatternSet. An empty set yields a root-only automaton that
// matches nothing.
func Build[S comparable](patterns [][]S, opts ...Option) (*Automaton[S], error) {
	b := NewBuilder[S](opts...)
	for _, p := range patterns {
		if _, err := b.Insert(p); err != nil {
			return nil, err
		}
	}
	return b.Build(), nil
}

// BuildStrings builds over runes: offsets in matches count characters.
func BuildStrings(patterns []string, opts ...Option) (*Automaton[rune], error) {
	syms := make([][]rune, len(patterns))
	for i, p := range patterns {
		syms[i] = []rune(p)
	}
	opts = append(opts, withFormat(func(i int) string { return patterns[i] }))
	return Build(syms, opts...)
}

// BuildBytes builds over bytes: offsets in matches count bytes.
func BuildBytes(patterns []string, opts ...Option) (*Automaton[byte], error) {
	syms := make([][]byte, len(patterns))
	for i, p := range patterns {
		syms[i] = []byte(p)
	}
	opts = append(opts, withFormat(func(i int) string { return patterns[i] }))
	return Build(syms, opts...)
}
