package automaton

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// Failure linker: BFS fail links, dictionary-link output propagation
// =============================================================================

// stateOf walks the goto edges for s and returns the node id, or None.
func stateOf(a *Automaton[rune], s string) int {
	cur := RootID
	for _, r := range s {
		next, ok := a.nodes[cur].next[r]
		if !ok {
			return None
		}
		cur = next
	}
	return cur
}

func TestLink_FailTargetsLongestSuffix(t *testing.T) {
	a, err := BuildStrings([]string{"he", "she", "his", "hers"})
	require.NoError(t, err)

	cases := map[string]string{
		"h":    "",
		"s":    "",
		"he":   "",
		"sh":   "h",
		"she":  "he",
		"hi":   "",
		"his":  "s",
		"her":  "",
		"hers": "s",
	}
	for from, to := range cases {
		id := stateOf(a, from)
		require.NotEqual(t, None, id, from)
		assert.Equal(t, stateOf(a, to), a.nodes[id].fail, "fail(%q)", from)
	}
	assert.Equal(t, None, a.nodes[RootID].fail)
}

func TestLink_FailAlwaysShallower(t *testing.T) {
	a, err := BuildStrings([]string{"A", "AG", "C", "CAA", "GAG", "GC", "GCA"})
	require.NoError(t, err)

	a.Walk(func(n NodeInfo[rune]) bool {
		if n.ID == RootID {
			assert.Equal(t, None, n.Fail)
			return true
		}
		fail, ok := a.Node(n.Fail)
		require.True(t, ok)
		assert.Less(t, fail.Depth, n.Depth, "node %q", string(a.Path(n.ID)))
		return true
	})
}

func TestLink_OutputInheritsThroughFailChain(t *testing.T) {
	a, err := BuildStrings([]string{"A", "AG", "C", "CAA", "GAG", "GC", "GCA"})
	require.NoError(t, err)

	// GCA fails to CA, which fails to A: GCA ends both GCA and A.
	assert.Equal(t, []int{6, 0}, a.nodes[stateOf(a, "GCA")].output)
	// CA carries nothing of its own but inherits A.
	assert.Equal(t, []int{0}, a.nodes[stateOf(a, "CA")].output)
	assert.Equal(t, []int{5, 2}, a.nodes[stateOf(a, "GC")].output)
	assert.Empty(t, a.nodes[RootID].output)
}

func TestLink_OutputOrderedLongestFirst(t *testing.T) {
	a, err := BuildStrings([]string{"c", "bc", "abc"})
	require.NoError(t, err)
	out := a.nodes[stateOf(a, "abc")].output
	require.Len(t, out, 3)
	assert.Equal(t, []int{2, 1, 0}, out)
}

func TestLink_RootOutputReachesEveryNode(t *testing.T) {
	a, err := BuildStrings([]string{"", "ab", "b"}, AllowEmpty())
	require.NoError(t, err)
	a.Walk(func(n NodeInfo[rune]) bool {
		require.NotEmpty(t, n.Output)
		assert.Equal(t, 0, n.Output[len(n.Output)-1], "node %q", string(a.Path(n.ID)))
		return true
	})
}
