package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/corey/acmatch/internal/adapters/ahocorasick"
	fsw "github.com/corey/acmatch/internal/adapters/fsnotify"
	"github.com/corey/acmatch/internal/app"
	"github.com/spf13/cobra"
)

var (
	watchPatterns patternFlags
	watchOneBased bool
	watchCount    bool
)

var watchCmd = &cobra.Command{
	Use:   "watch [dir]",
	Short: "Rescan files as they change",
	Long: `Scans every file under dir (default: the project root), then rescans each
file whenever it is written and prints its matches. Offsets count bytes.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runWatch,
}

func init() {
	watchPatterns.register(watchCmd)
	watchCmd.Flags().BoolVar(&watchOneBased, "one-based", false, "Display 1-based offsets")
	watchCmd.Flags().BoolVarP(&watchCount, "count", "c", false, "Print only a count per file")
}

func runWatch(cmd *cobra.Command, args []string) error {
	root := projectRoot()
	dir := root
	if len(args) > 0 {
		if filepath.IsAbs(args[0]) {
			dir = args[0]
		} else {
			dir = filepath.Join(root, args[0])
		}
	}

	settings, err := loadSettings(root)
	if err != nil {
		return err
	}
	patterns, allowEmpty, err := watchPatterns.load(root, settings)
	if err != nil {
		return err
	}
	m := ahocorasick.NewMatcher(allowEmpty)
	if err := m.Rebuild(patterns); err != nil {
		return err
	}

	paths := app.NewPaths(root)
	if err := paths.EnsureDirs(); err != nil {
		return err
	}
	level, _ := settings.Level()
	log, err := app.NewLogger(paths.DaemonLog, level)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer log.Sync()

	w, err := fsw.NewWatcher()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	p := newPalette(stdTerminal.autoColor())
	fmt.Printf("⚡ watching %s │ %d patterns\n", dir, len(m.Patterns()))

	report := func(fh app.FileHits) {
		name, err := filepath.Rel(dir, fh.Path)
		if err != nil {
			name = fh.Path
		}
		if fh.Err != nil {
			fmt.Fprintf(os.Stderr, "acmatch: %s: %v\n", name, fh.Err)
			return
		}
		if len(fh.Hits) == 0 {
			return
		}
		if watchCount {
			fmt.Print(formatCount(p, name, len(fh.Hits)))
			return
		}
		for _, h := range fh.Hits {
			fmt.Print(formatHit(p, name, h, watchOneBased))
		}
	}
	return app.NewRescanner(m, w, settings.ChunkSize, log).Run(ctx, dir, report)
}
