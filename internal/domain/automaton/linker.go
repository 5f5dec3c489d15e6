package automaton

// linkFailures computes fail and the propagated output for every non-root
// node. Nodes are visited strictly by non-decreasing depth through a FIFO
// queue: a node's fail target is always shallower, so its fail and output
// are already final when the node is processed.
func linkFailures[S comparable](s *store[S]) {
	nodes := s.nodes
	queue := make([]int, 0, len(nodes))

	// Depth 1: fail is the root. Root output (the empty pattern, if any) is
	// inherited like any other fail target.
	for _, sym := range nodes[RootID].edges {
		child := nodes[RootID].next[sym]
		nodes[child].fail = RootID
		nodes[child].output = inherit(nodes[child].output, nodes[RootID].output)
		queue = append(queue, child)
	}

	for head := 0; head < len(queue); head++ {
		parent := queue[head]
		for _, sym := range nodes[parent].edges {
			child := nodes[parent].next[sym]
			queue = append(queue, child)

			search := nodes[parent].fail
			for search != None {
				if _, ok := nodes[search].next[sym]; ok {
					break
				}
				search = nodes[search].fail
			}

			fail := RootID
			if search != None {
				fail = nodes[search].next[sym]
			}
			nodes[child].fail = fail
			nodes[child].output = inherit(nodes[child].output, nodes[fail].output)
		}
	}
}

// inherit returns own followed by the fail node's output.
// The two never overlap: every inherited pattern is strictly shorter than
// the string spelled by the node, and own holds at most that string.
func inherit(own, fromFail []int) []int {
	if len(fromFail) == 0 {
		return own
	}
	out := make([]int, 0, len(own)+len(fromFail))
	out = append(out, own...)
	return append(out, fromFail...)
}
