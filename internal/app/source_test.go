package app

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/corey/acmatch/internal/adapters/bbolt"
	"github.com/corey/acmatch/internal/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePatterns(t *testing.T) {
	in := "he\r\n\n# comment\nshe\n\\#tag\n  his  \n"
	got, err := ParsePatterns(strings.NewReader(in))
	require.NoError(t, err)
	assert.Equal(t, []string{"he", "she", "#tag", "  his  "}, got)
}

func TestParsePatterns_Empty(t *testing.T) {
	got, err := ParsePatterns(strings.NewReader("# only comments\n\n"))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestReadPatternFile_Missing(t *testing.T) {
	_, err := ReadPatternFile(filepath.Join(t.TempDir(), "missing.txt"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestSource_String(t *testing.T) {
	assert.Equal(t, "empty", Source{}.String())
	assert.Equal(t, "file:p.txt", Source{File: "p.txt"}.String())
	assert.Equal(t, "set:dna,inline:2", Source{Set: "dna", Inline: []string{"a", "b"}}.String())
}

func TestSource_LoadFileAndInline(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "patterns.txt")
	require.NoError(t, os.WriteFile(file, []byte("he\nshe\n"), 0644))

	patterns, allowEmpty, err := Source{File: file, Inline: []string{"hers"}}.Load(filepath.Join(dir, "unused.db"))
	require.NoError(t, err)
	assert.Equal(t, []string{"he", "she", "hers"}, patterns)
	assert.False(t, allowEmpty)
}

func TestSource_LoadSet(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "acmatch.db")
	store, err := bbolt.NewStore(dbPath)
	require.NoError(t, err)
	require.NoError(t, store.SaveSet(&ports.PatternSet{
		Name:       "dna",
		Patterns:   []string{"ACC", "ATC", ""},
		AllowEmpty: true,
	}))
	require.NoError(t, store.Close())

	patterns, allowEmpty, err := Source{Set: "dna"}.Load(dbPath)
	require.NoError(t, err)
	assert.Equal(t, []string{"ACC", "ATC", ""}, patterns)
	assert.True(t, allowEmpty)

	_, _, err = Source{Set: "rna"}.Load(dbPath)
	assert.ErrorIs(t, err, ErrSetNotFound)
}
