package app

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/corey/acmatch/internal/adapters/bbolt"
)

// ParsePatterns reads one pattern per line. Blank lines are skipped, lines
// starting with '#' are comments, and a leading `\#` stands for a literal '#'.
// A trailing '\r' is dropped so CRLF files behave.
func ParsePatterns(r io.Reader) ([]string, error) {
	var patterns []string
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 16*1024*1024)
	for sc.Scan() {
		line := strings.TrimSuffix(sc.Text(), "\r")
		switch {
		case line == "":
			continue
		case strings.HasPrefix(line, `\#`):
			line = line[1:]
		case strings.HasPrefix(line, "#"):
			continue
		}
		patterns = append(patterns, line)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return patterns, nil
}

// ReadPatternFile parses the pattern file at path ("-" reads stdin).
func ReadPatternFile(path string) ([]string, error) {
	if path == "-" {
		return ParsePatterns(os.Stdin)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	patterns, err := ParsePatterns(f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return patterns, nil
}

// Source says where a pattern list comes from. Exactly one of File or Set
// is normally set; Inline patterns are appended to whichever is loaded.
type Source struct {
	File   string
	Set    string
	Inline []string
}

// String describes the source for logs and health output.
func (s Source) String() string {
	var parts []string
	if s.File != "" {
		parts = append(parts, "file:"+s.File)
	}
	if s.Set != "" {
		parts = append(parts, "set:"+s.Set)
	}
	if len(s.Inline) > 0 {
		parts = append(parts, fmt.Sprintf("inline:%d", len(s.Inline)))
	}
	if len(parts) == 0 {
		return "empty"
	}
	return strings.Join(parts, ",")
}

// Load resolves the source into patterns. A set is read from the bbolt
// database at dbPath, which is opened only for the duration of the read so
// the daemon never holds the file lock. allowEmpty reports the set's own
// empty-pattern policy (false for files and inline patterns).
func (s Source) Load(dbPath string) (patterns []string, allowEmpty bool, err error) {
	if s.File != "" {
		fp, err := ReadPatternFile(s.File)
		if err != nil {
			return nil, false, err
		}
		patterns = append(patterns, fp...)
	}
	if s.Set != "" {
		if _, err := os.Stat(dbPath); errors.Is(err, os.ErrNotExist) {
			return nil, false, fmt.Errorf("%w: %q", ErrSetNotFound, s.Set)
		}
		store, err := bbolt.NewStore(dbPath)
		if err != nil {
			return nil, false, err
		}
		defer store.Close()
		set, err := store.LoadSet(s.Set)
		if err != nil {
			return nil, false, fmt.Errorf("load set %q: %w", s.Set, err)
		}
		if set == nil {
			return nil, false, fmt.Errorf("%w: %q", ErrSetNotFound, s.Set)
		}
		patterns = append(patterns, set.Patterns...)
		allowEmpty = set.AllowEmpty
	}
	patterns = append(patterns, s.Inline...)
	return patterns, allowEmpty, nil
}
