package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/corey/acmatch/internal/adapters/bbolt"
	"github.com/corey/acmatch/internal/adapters/socket"
	"github.com/corey/acmatch/internal/app"
	"github.com/corey/acmatch/internal/domain/automaton"
	"github.com/corey/acmatch/internal/ports"
	"github.com/spf13/cobra"
)

var (
	setAddPatterns   []string
	setAddFile       string
	setAddAllowEmpty bool
	setAddAppend     bool
)

var setCmd = &cobra.Command{
	Use:   "set",
	Short: "Manage named pattern sets",
	Long:  "Pattern sets are stored in .acmatch/acmatch.db and used with -s/--set.",
}

var setAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Create or replace a pattern set",
	Args:  cobra.ExactArgs(1),
	RunE:  runSetAdd,
}

var setListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored pattern sets",
	Args:  cobra.NoArgs,
	RunE:  runSetList,
}

var setShowCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Print the patterns of a set",
	Args:  cobra.ExactArgs(1),
	RunE:  runSetShow,
}

var setRmCmd = &cobra.Command{
	Use:   "rm <name>",
	Short: "Delete a pattern set",
	Args:  cobra.ExactArgs(1),
	RunE:  runSetRm,
}

func init() {
	setAddCmd.Flags().StringArrayVarP(&setAddPatterns, "pattern", "p", nil, "Pattern (repeatable)")
	setAddCmd.Flags().StringVarP(&setAddFile, "file", "f", "", "Read patterns from file, one per line (- for stdin)")
	setAddCmd.Flags().BoolVar(&setAddAllowEmpty, "allow-empty", false, "Accept the empty pattern in this set")
	setAddCmd.Flags().BoolVarP(&setAddAppend, "append", "a", false, "Add to the existing set instead of replacing it")

	setCmd.AddCommand(setAddCmd)
	setCmd.AddCommand(setListCmd)
	setCmd.AddCommand(setShowCmd)
	setCmd.AddCommand(setRmCmd)
}

// openStore opens the project's pattern database, creating .acmatch/ first.
func openStore(root string) (*bbolt.Store, error) {
	paths := app.NewPaths(root)
	if err := paths.EnsureDirs(); err != nil {
		return nil, err
	}
	store, err := bbolt.NewStore(paths.DB)
	if err != nil {
		return nil, withLockHint(root, err)
	}
	return store, nil
}

func runSetAdd(cmd *cobra.Command, args []string) error {
	name := args[0]
	patterns := append([]string(nil), setAddPatterns...)
	if setAddFile != "" {
		fp, err := app.ReadPatternFile(setAddFile)
		if err != nil {
			return err
		}
		patterns = append(fp, patterns...)
	}
	if len(patterns) == 0 {
		return errors.New("no patterns: use -p or -f")
	}

	root := projectRoot()
	set, states, err := saveSet(root, name, patterns)
	if err != nil {
		return err
	}
	fmt.Printf("⚡ set %s%s%s saved │ %d patterns │ %d states\n",
		colorBold, name, colorReset, len(set.Patterns), states)

	// The store is closed by now, so the daemon can open it to reload.
	notifyDaemon(root)
	return nil
}

// saveSet validates and stores the set, returning the stored set and the
// state count of its automaton.
func saveSet(root, name string, patterns []string) (*ports.PatternSet, int, error) {
	store, err := openStore(root)
	if err != nil {
		return nil, 0, err
	}
	defer store.Close()

	set := &ports.PatternSet{Name: name, AllowEmpty: setAddAllowEmpty}
	if setAddAppend {
		existing, err := store.LoadSet(name)
		if err != nil {
			return nil, 0, err
		}
		if existing != nil {
			set.Patterns = existing.Patterns
			set.AllowEmpty = set.AllowEmpty || existing.AllowEmpty
		}
	}
	set.Patterns = append(set.Patterns, patterns...)

	// Reject now rather than at scan time.
	var opts []automaton.Option
	if set.AllowEmpty {
		opts = append(opts, automaton.AllowEmpty())
	}
	a, err := automaton.BuildBytes(set.Patterns, opts...)
	if err != nil {
		return nil, 0, err
	}
	set.Updated = time.Now().Unix()
	if err := store.SaveSet(set); err != nil {
		return nil, 0, err
	}
	return set, a.NodeCount(), nil
}

func runSetList(cmd *cobra.Command, args []string) error {
	store, err := openStore(projectRoot())
	if err != nil {
		return err
	}
	defer store.Close()

	names, err := store.ListSets()
	if err != nil {
		return err
	}
	if len(names) == 0 {
		fmt.Println("⚡ no pattern sets")
		return nil
	}
	for _, name := range names {
		set, err := store.LoadSet(name)
		if err != nil {
			return err
		}
		updated := time.Unix(set.Updated, 0).Format("2006-01-02 15:04")
		fmt.Printf("  %s%-20s%s %6d patterns  %s%s%s\n",
			colorCyan, name, colorReset, len(set.Patterns), colorGray, updated, colorReset)
	}
	return nil
}

func runSetShow(cmd *cobra.Command, args []string) error {
	store, err := openStore(projectRoot())
	if err != nil {
		return err
	}
	defer store.Close()

	set, err := store.LoadSet(args[0])
	if err != nil {
		return err
	}
	if set == nil {
		return fmt.Errorf("%w: %q", app.ErrSetNotFound, args[0])
	}
	fmt.Print(formatSet(set))
	return nil
}

func runSetRm(cmd *cobra.Command, args []string) error {
	root := projectRoot()
	store, err := openStore(root)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.DeleteSet(args[0]); err != nil {
		return err
	}
	fmt.Printf("⚡ set %s removed\n", args[0])
	return nil
}

// notifyDaemon asks a running daemon to reload. A daemon serving another
// source rebuilds from the same source, which is harmless.
func notifyDaemon(root string) {
	client := socket.NewClient(socket.SocketPath(root))
	if !client.Ping() {
		return
	}
	if res, err := client.Reload(); err == nil {
		fmt.Printf("  daemon reloaded │ %d patterns\n", res.PatternCount)
	}
}
