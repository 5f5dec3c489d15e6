package automaton

import "slices"

// NodeInfo is a read-only snapshot of one state, for rendering and tests.
type NodeInfo[S comparable] struct {
	ID       int
	Parent   int // None for the root
	Symbol   S   // edge symbol from Parent; zero for the root
	Depth    int
	Fail     int   // None for the root
	Children []int // in pattern insertion order
	Output   []int // own pattern first, then inherited
}

// Node returns the snapshot of state id.
func (a *Automaton[S]) Node(id int) (NodeInfo[S], bool) {
	if id < 0 || id >= len(a.nodes) {
		return NodeInfo[S]{}, false
	}
	n := &a.nodes[id]
	children := make([]int, len(n.edges))
	for i, sym := range n.edges {
		children[i] = n.next[sym]
	}
	return NodeInfo[S]{
		ID:       id,
		Parent:   n.parent,
		Symbol:   n.symbol,
		Depth:    n.depth,
		Fail:     n.fail,
		Children: children,
		Output:   slices.Clone(n.output),
	}, true
}

// Path returns the symbols spelled from the root to state id.
func (a *Automaton[S]) Path(id int) []S {
	if id < 0 || id >= len(a.nodes) {
		return nil
	}
	path := make([]S, a.nodes[id].depth)
	for cur := id; cur != RootID; cur = a.nodes[cur].parent {
		path[a.nodes[cur].depth-1] = a.nodes[cur].symbol
	}
	return path
}

// Walk visits every state breadth-first from the root, children in
// insertion order, until fn returns false.
func (a *Automaton[S]) Walk(fn func(NodeInfo[S]) bool) {
	queue := []int{RootID}
	for head := 0; head < len(queue); head++ {
		info, _ := a.Node(queue[head])
		if !fn(info) {
			return
		}
		queue = append(queue, info.Children...)
	}
}
