package cmd

import (
	"errors"

	"github.com/corey/acmatch/internal/app"
	"github.com/spf13/cobra"
)

// patternFlags are the pattern-source flags shared by scan, tree, and daemon.
type patternFlags struct {
	inline []string
	file   string
	set    string
}

func (f *patternFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringArrayVarP(&f.inline, "pattern", "p", nil, "Pattern (repeatable)")
	cmd.Flags().StringVarP(&f.file, "file", "f", "", "Read patterns from file, one per line (- for stdin)")
	cmd.Flags().StringVarP(&f.set, "set", "s", "", "Use a stored pattern set")
}

// source resolves the flags into an app.Source, falling back to the
// configured default set when no flag was given.
func (f *patternFlags) source(settings app.Settings) (app.Source, error) {
	src := app.Source{File: f.file, Set: f.set, Inline: f.inline}
	if src.File == "" && src.Set == "" && len(src.Inline) == 0 {
		src.Set = settings.DefaultSet
	}
	if src.File == "" && src.Set == "" && len(src.Inline) == 0 {
		return src, errors.New("no patterns: use -p, -f, or -s (or set default_set in .acmatch/config.yaml)")
	}
	return src, nil
}

// load resolves and loads the pattern list. allowEmpty combines the config
// policy with the stored set's own policy.
func (f *patternFlags) load(root string, settings app.Settings) (patterns []string, allowEmpty bool, err error) {
	src, err := f.source(settings)
	if err != nil {
		return nil, false, err
	}
	patterns, setAllowsEmpty, err := src.Load(app.NewPaths(root).DB)
	if err != nil {
		return nil, false, withLockHint(root, err)
	}
	return patterns, settings.AllowEmptyPatterns || setAllowsEmpty, nil
}
