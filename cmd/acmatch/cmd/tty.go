package cmd

import (
	"fmt"
	"os"
)

// isStdoutTTY returns true if stdout is connected to a terminal.
func isStdoutTTY() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

// terminal is what color detection looks at. Tests swap in a fake.
type terminal struct {
	getenv func(string) string
	isTTY  func() bool
}

var stdTerminal = terminal{getenv: os.Getenv, isTTY: isStdoutTTY}

// autoColor is color for "auto": a terminal that has not opted out through
// NO_COLOR (https://no-color.org) or TERM=dumb.
func (t terminal) autoColor() bool {
	if t.getenv("NO_COLOR") != "" || t.getenv("TERM") == "dumb" {
		return false
	}
	return t.isTTY()
}

// color resolves --color ("auto", "always" or "never") and --no-color.
// --no-color wins over everything; "always" ignores the environment.
func (t terminal) color(colorFlag string, noColorFlag bool) (bool, error) {
	switch colorFlag {
	case "auto", "":
		return !noColorFlag && t.autoColor(), nil
	case "always":
		return !noColorFlag, nil
	case "never":
		return false, nil
	default:
		return false, fmt.Errorf("invalid --color %q (want auto, always or never)", colorFlag)
	}
}

func resolveColor(colorFlag string, noColorFlag bool) (bool, error) {
	return stdTerminal.color(colorFlag, noColorFlag)
}
