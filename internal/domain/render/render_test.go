package render

import (
	"strings"
	"testing"

	"github.com/corey/acmatch/internal/domain/automaton"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTree_NestedShape(t *testing.T) {
	a, err := automaton.BuildStrings([]string{"ACC", "ATC", "CAT", "GCG"})
	require.NoError(t, err)
	assert.Equal(t, "[EMPTY] -> (A -> (C -> C, T -> C), C -> A -> T, G -> C -> G)", Tree(a, Runes))
}

func TestTree_RootOnly(t *testing.T) {
	a, err := automaton.BuildStrings(nil)
	require.NoError(t, err)
	assert.Equal(t, "[EMPTY]", Tree(a, Runes))
}

func TestFailLinks_BreadthFirst(t *testing.T) {
	a, err := automaton.BuildStrings([]string{"he", "she", "his", "hers"})
	require.NoError(t, err)

	links := FailLinks(a, Runes)
	require.Len(t, links, 9)
	for i := 1; i < len(links); i++ {
		assert.LessOrEqual(t, links[i-1].Depth, links[i].Depth)
	}

	byPrefix := make(map[string]FailLink)
	for _, l := range links {
		byPrefix[l.Prefix] = l
	}
	assert.Equal(t, "he", byPrefix["she"].Fail)
	assert.Equal(t, []string{"she", "he"}, byPrefix["she"].Output)
	assert.Equal(t, "s", byPrefix["hers"].Fail)
	assert.Equal(t, "", byPrefix["h"].Fail)
}

func TestTable_Format(t *testing.T) {
	out := Table([]FailLink{
		{Prefix: "G", Fail: "", Depth: 1},
		{Prefix: "GC", Fail: "C", Depth: 2, Output: []string{"GC", "C"}},
	})
	assert.Equal(t, "G  -> [EMPTY]\nGC -> C  {GC, C}\n", out)
}

func TestOffsets_OneBasedIsDisplayOnly(t *testing.T) {
	a, err := automaton.BuildBytes([]string{"CAT"})
	require.NoError(t, err)
	ms := a.FindAll([]byte("GCAT"))
	require.Len(t, ms, 1)

	start, end := Offsets(ms[0].Start, ms[0].End, false)
	assert.Equal(t, [2]int{1, 3}, [2]int{start, end})
	start, end = Offsets(ms[0].Start, ms[0].End, true)
	assert.Equal(t, [2]int{2, 4}, [2]int{start, end})
	assert.Equal(t, 1, ms[0].Start)
}

func TestOutline(t *testing.T) {
	a, err := automaton.BuildStrings([]string{"he", "she", "his", "hers"})
	require.NoError(t, err)

	want := `[EMPTY]
├── h
│   ├── e  {he}
│   │   └── r
│   │       └── s  {hers}
│   └── i
│       └── s  {his}
└── s
    └── h
        └── e  {she, he}
`
	assert.Equal(t, want, Outline(a, Runes, 0))
}

func TestOutline_MaxDepth(t *testing.T) {
	a, err := automaton.BuildStrings([]string{"he", "she", "his", "hers"})
	require.NoError(t, err)
	assert.Equal(t, "[EMPTY]\n├── h\n└── s\n", Outline(a, Runes, 1))
}

func TestOutline_EmptyPatternOnRoot(t *testing.T) {
	a, err := automaton.BuildStrings([]string{"", "a"}, automaton.AllowEmpty())
	require.NoError(t, err)

	out := Outline(a, Runes, 0)
	assert.Equal(t, "[EMPTY]  {[EMPTY]}\n", out[:strings.Index(out, "\n")+1])
	assert.Contains(t, out, "└── a  {a, [EMPTY]}")

	links := FailLinks(a, Runes)
	require.Len(t, links, 1)
	assert.Equal(t, []string{"a", "[EMPTY]"}, links[0].Output)
}

func TestBytes_EscapesNonPrintable(t *testing.T) {
	assert.Equal(t, "GATC", Bytes([]byte("GATC")))
	assert.Equal(t, `\x00\xff`, Bytes([]byte{0x00, 0xff}))
	assert.Equal(t, `\xc3\xa9`, Bytes([]byte("é")))
	assert.Equal(t, `a\\b`, Bytes([]byte(`a\b`)))

	a, err := automaton.BuildBytes([]string{"\x00\xff"})
	require.NoError(t, err)
	assert.Equal(t, `[EMPTY] -> \x00 -> \xff`, Tree(a, Bytes))
}

func TestTable_AlignsMultibytePrefixes(t *testing.T) {
	out := Table([]FailLink{
		{Prefix: "é", Fail: "", Depth: 1},
		{Prefix: "ab", Fail: "", Depth: 2},
	})
	assert.Equal(t, "é  -> [EMPTY]\nab -> [EMPTY]\n", out)
}
