package cmd

import (
	"fmt"

	"github.com/corey/acmatch/internal/app"
	"github.com/corey/acmatch/internal/domain/automaton"
	"github.com/corey/acmatch/internal/domain/render"
	"github.com/spf13/cobra"
)

var (
	treePatterns patternFlags
	treeDepth    int
	treeRunes    bool
	treeFails    bool
	treeCompact  bool
)

var treeCmd = &cobra.Command{
	Use:   "tree",
	Short: "Show the trie built from the patterns",
	Long:  "Builds the automaton and prints its trie, and optionally the fail link of every prefix. No daemon required.",
	Args:  cobra.NoArgs,
	RunE:  runTree,
}

func init() {
	treePatterns.register(treeCmd)
	treeCmd.Flags().IntVarP(&treeDepth, "depth", "d", 0, "Max depth (0 = unlimited)")
	treeCmd.Flags().BoolVar(&treeRunes, "runes", false, "Build over characters instead of bytes")
	treeCmd.Flags().BoolVar(&treeFails, "fails", false, "Also print fail links and outputs per prefix")
	treeCmd.Flags().BoolVar(&treeCompact, "compact", false, "Print the trie on one line")
}

func runTree(cmd *cobra.Command, args []string) error {
	root := projectRoot()
	settings, err := loadSettings(root)
	if err != nil {
		return err
	}
	patterns, allowEmpty, err := treePatterns.load(root, settings)
	if err != nil {
		return err
	}
	var opts []automaton.Option
	if allowEmpty {
		opts = append(opts, automaton.AllowEmpty())
	}

	if treeRunes || settings.Symbols == app.SymbolsRunes {
		a, err := automaton.BuildStrings(patterns, opts...)
		if err != nil {
			return err
		}
		printTree(a, render.Runes)
		return nil
	}
	a, err := automaton.BuildBytes(patterns, opts...)
	if err != nil {
		return err
	}
	printTree(a, render.Bytes)
	return nil
}

func printTree[S comparable](a *automaton.Automaton[S], show render.Symbols[S]) {
	fmt.Printf("%s%d patterns │ %d states%s\n", colorBold, a.PatternCount(), a.NodeCount(), colorReset)
	if treeCompact {
		fmt.Println(render.Tree(a, show))
	} else {
		fmt.Print(render.Outline(a, show, treeDepth))
	}
	if treeFails {
		fmt.Println()
		fmt.Print(render.Table(render.FailLinks(a, show)))
	}
}
