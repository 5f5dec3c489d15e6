package automaton

import (
	"math/rand"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// Properties checked against a brute-force matcher on random inputs
// =============================================================================

// naive reports every (pattern, start, end) found by checking each offset.
func naive(patterns []string, text string) map[namedMatch]int {
	seen := make(map[string]bool)
	out := make(map[namedMatch]int)
	for _, p := range patterns {
		if seen[p] {
			continue
		}
		seen[p] = true
		for i := 0; i+len(p) <= len(text); i++ {
			if text[i:i+len(p)] == p {
				out[namedMatch{p, i, i + len(p) - 1}]++
			}
		}
	}
	return out
}

func counted(a *Automaton[rune], ms []Match) map[namedMatch]int {
	out := make(map[namedMatch]int)
	for _, m := range named(a, ms) {
		out[m]++
	}
	return out
}

func randomString(r *rand.Rand, alphabet string, min, max int) string {
	n := min + r.Intn(max-min+1)
	b := make([]byte, n)
	for i := range b {
		b[i] = alphabet[r.Intn(len(alphabet))]
	}
	return string(b)
}

func TestProperty_AgreesWithBruteForce(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	for round := 0; round < 300; round++ {
		patterns := make([]string, 1+r.Intn(8))
		for i := range patterns {
			patterns[i] = randomString(r, "abc", 1, 5)
		}
		text := randomString(r, "abc", 0, 40)

		a, err := BuildStrings(patterns)
		require.NoError(t, err)
		assert.Equal(t, naive(patterns, text), counted(a, a.FindAll([]rune(text))),
			"patterns=%q text=%q", patterns, text)
	}
}

func TestProperty_InsertionOrderIndependent(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	for round := 0; round < 100; round++ {
		patterns := make([]string, 2+r.Intn(6))
		for i := range patterns {
			patterns[i] = randomString(r, "ACGT", 1, 4)
		}
		text := randomString(r, "ACGT", 10, 60)

		a, err := BuildStrings(patterns)
		require.NoError(t, err)
		shuffled := slices.Clone(patterns)
		r.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
		b, err := BuildStrings(shuffled)
		require.NoError(t, err)

		assert.Equal(t, counted(a, a.FindAll([]rune(text))), counted(b, b.FindAll([]rune(text))))
	}
}

func TestProperty_SuffixPatternReportedAtSameEnd(t *testing.T) {
	a, err := BuildStrings([]string{"abcab", "cab", "b"})
	require.NoError(t, err)

	got := counted(a, a.FindAll([]rune("xxabcabyy")))
	assert.Equal(t, 1, got[namedMatch{"abcab", 2, 6}])
	assert.Equal(t, 1, got[namedMatch{"cab", 4, 6}])
	assert.Equal(t, 1, got[namedMatch{"b", 6, 6}])
	assert.Equal(t, 1, got[namedMatch{"b", 3, 3}])
}

func TestProperty_EmptySetNeverMatches(t *testing.T) {
	a, err := Build[rune](nil)
	require.NoError(t, err)
	r := rand.New(rand.NewSource(1))
	for i := 0; i < 20; i++ {
		assert.False(t, a.Contains([]rune(randomString(r, "xyz", 0, 30))))
	}
}
