package cmd

import (
	"errors"
	"fmt"
)

// exitError is returned by scan to signal a specific exit code.
// Same convention as grep: 0=found, 1=not found, 2=error.
type exitError struct{ code int }

func (e exitError) Error() string {
	switch e.code {
	case 0:
		return ""
	case 1:
		return "no match"
	default:
		return fmt.Sprintf("scan error (exit %d)", e.code)
	}
}

// ExitCode extracts the exit code from an exitError.
// Returns -1 if the error is not one.
func ExitCode(err error) int {
	var ee exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	return -1
}
