// Package automaton implements a multi-pattern exact matcher (Aho-Corasick
// with dictionary links). Build compiles a pattern set into an immutable
// automaton once; Scan drives it over any number of texts in a single linear
// pass each, reporting every occurrence of every pattern, overlapping and
// suffix occurrences included.
//
// Nodes live in an arena and refer to each other by integer id only, so the
// back-pointing fail graph never creates ownership cycles. After Build returns
// nothing in the automaton is mutated again; it may be shared by any number of
// goroutines without locking.
package automaton

// None marks an absent node reference. Only the root has fail == None.
const None = -1

// RootID is the id of the root node in every automaton.
const RootID = 0

// node is one state of the automaton.
type node[S comparable] struct {
	// trie ("goto") edges, frozen once all patterns are inserted
	next map[S]int
	// edge symbols in insertion order, for deterministic traversal
	edges []S

	fail   int
	output []int // own pattern first, then inherited along fail
	depth  int

	parent int
	symbol S
}

// store is the arena owning every node of one automaton.
type store[S comparable] struct {
	nodes []node[S]
}

func newStore[S comparable]() *store[S] {
	s := &store[S]{}
	s.add(None, *new(S), 0)
	return s
}

// add appends a node and returns its id.
func (s *store[S]) add(parent int, sym S, depth int) int {
	id := len(s.nodes)
	s.nodes = append(s.nodes, node[S]{
		fail:   None,
		depth:  depth,
		parent: parent,
		symbol: sym,
	})
	return id
}

// child returns the goto target of id on sym, or None.
func (s *store[S]) child(id int, sym S) int {
	if next, ok := s.nodes[id].next[sym]; ok {
		return next
	}
	return None
}

// link adds the trie edge parent --sym--> child.
func (s *store[S]) link(parent int, sym S, child int) {
	n := &s.nodes[parent]
	if n.next == nil {
		n.next = make(map[S]int, 1)
	}
	n.next[sym] = child
	n.edges = append(n.edges, sym)
}

func (s *store[S]) len() int { return len(s.nodes) }
