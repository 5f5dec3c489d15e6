package ports

// PatternMatcher finds pattern occurrences in content using a multi-pattern
// automaton (Aho-Corasick). A single pass over the content finds every
// occurrence of every pattern, regardless of how many patterns are in the set.
// This is O(n + m + z) where n=content length, m=total pattern length,
// z=number of matches.
//
// The matcher is rebuilt when the pattern set changes (e.g., the pattern file
// is edited while the daemon runs). Rebuild swaps in a new automaton; scans
// already in flight finish on the old one.
type PatternMatcher interface {
	// Match returns the distinct patterns found in content, in order of
	// first occurrence. Returns nil if nothing matches.
	Match(content string) []string

	// Locate returns every occurrence with byte offsets (End inclusive),
	// overlapping and suffix occurrences included.
	Locate(content []byte) []Hit

	// Rebuild replaces the entire pattern set and reconstructs the automaton.
	// Returns an error if the set is invalid (e.g., an empty pattern while
	// empty patterns are disallowed); the previous automaton stays in place.
	Rebuild(patterns []string) error

	// Patterns returns the current deduplicated pattern list, indexed by
	// pattern id.
	Patterns() []string
}

// Hit is one located occurrence of a pattern.
type Hit struct {
	Pattern string `json:"pattern"`
	ID      int    `json:"id"`
	Start   int    `json:"start"` // inclusive
	End     int    `json:"end"`   // inclusive
}
