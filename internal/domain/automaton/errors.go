package automaton

import (
	"errors"
	"fmt"
)

// ErrInvalidPatternSet is returned by Build when the pattern set violates the
// configured policy. Use errors.As with *PatternError to find the offender.
var ErrInvalidPatternSet = errors.New("invalid pattern set")

// PatternError identifies the pattern that made a set invalid.
type PatternError struct {
	Index   int    // position in the input slice
	Pattern string // printable form of the pattern
	Reason  string
}

func (e *PatternError) Error() string {
	return fmt.Sprintf("%s: pattern %d %q: %s", ErrInvalidPatternSet, e.Index, e.Pattern, e.Reason)
}

// Unwrap lets errors.Is match ErrInvalidPatternSet.
func (e *PatternError) Unwrap() error {
	return ErrInvalidPatternSet
}
