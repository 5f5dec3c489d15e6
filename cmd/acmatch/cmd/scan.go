package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"os"
	"os/signal"

	"github.com/corey/acmatch/internal/adapters/ahocorasick"
	"github.com/corey/acmatch/internal/adapters/socket"
	"github.com/corey/acmatch/internal/app"
	"github.com/corey/acmatch/internal/domain/automaton"
	"github.com/corey/acmatch/internal/ports"
	"github.com/spf13/cobra"
)

var (
	scanPatterns  patternFlags
	scanRunes     bool
	scanCount     bool
	scanOneBased  bool
	scanDaemon    bool
	scanQuiet     bool
	scanNoName    bool
	scanWithName  bool
	scanColor     string
	scanNoColor   bool
	scanChunkSize int
)

var scanCmd = &cobra.Command{
	Use:   "scan [flags] [file...]",
	Short: "Find every occurrence of every pattern",
	Long: `Scans files (or stdin) for all patterns at once. Overlapping and suffix
occurrences are all reported, one per line: pattern, start, end (inclusive).
Offsets count bytes by default, characters with --runes.

Exit status: 0 if any match, 1 if none, 2 on error.`,
	RunE:          runScan,
	SilenceErrors: true,
	SilenceUsage:  true,
}

func init() {
	scanPatterns.register(scanCmd)
	f := scanCmd.Flags()
	f.BoolVar(&scanRunes, "runes", false, "Count offsets in characters (UTF-8 runes) instead of bytes")
	f.BoolVarP(&scanCount, "count", "c", false, "Print only a count of matches per input")
	f.BoolVar(&scanOneBased, "one-based", false, "Display 1-based offsets")
	f.BoolVar(&scanDaemon, "daemon", false, "Scan through the running daemon and its patterns")
	f.BoolVarP(&scanQuiet, "quiet", "q", false, "Print nothing, exit status only")
	f.BoolVarP(&scanNoName, "no-filename", "h", false, "Never prefix output with file names")
	f.BoolVarP(&scanWithName, "with-filename", "H", false, "Always prefix output with file names")
	f.StringVar(&scanColor, "color", "auto", "Colorize output: auto, always, never")
	f.BoolVar(&scanNoColor, "no-color", false, "Disable color")
	f.IntVar(&scanChunkSize, "chunk-size", 0, "Read buffer in bytes (default from config)")
}

// scanInput is one thing to scan: a named file or stdin.
type scanInput struct {
	name string // "" for stdin
	open func() (io.ReadCloser, error)
}

func scanInputs(args []string) []scanInput {
	if len(args) == 0 || (len(args) == 1 && args[0] == "-") {
		return []scanInput{{open: func() (io.ReadCloser, error) { return io.NopCloser(os.Stdin), nil }}}
	}
	inputs := make([]scanInput, 0, len(args))
	for _, a := range args {
		path := a
		inputs = append(inputs, scanInput{name: path, open: func() (io.ReadCloser, error) { return os.Open(path) }})
	}
	return inputs
}

// scanner runs one input and calls fn for each hit. It returns
// ahocorasick.ErrStopped when fn asked to stop.
type scanner func(ctx context.Context, r io.Reader, fn func(ports.Hit) bool) error

func runScan(cmd *cobra.Command, args []string) error {
	useColor, err := resolveColor(scanColor, scanNoColor)
	if err != nil {
		fmt.Fprintf(os.Stderr, "acmatch: %v\n", err)
		return exitError{2}
	}
	root := projectRoot()
	settings, err := loadSettings(root)
	if err != nil {
		fmt.Fprintf(os.Stderr, "acmatch: %v\n", err)
		return exitError{2}
	}
	if scanChunkSize <= 0 {
		scanChunkSize = settings.ChunkSize
	}

	var run scanner
	if scanDaemon {
		run, err = daemonScanner(root)
	} else {
		run, err = localScanner(root, settings)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "acmatch: %v\n", err)
		return exitError{2}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	inputs := scanInputs(args)
	showName := scanWithName || (len(inputs) > 1 && !scanNoName)
	p := newPalette(useColor)

	out := bufio.NewWriter(os.Stdout)
	defer out.Flush()

	total, failed := 0, false
	for _, in := range inputs {
		label := ""
		if showName {
			label = in.name
			if label == "" {
				label = "(stdin)"
			}
		}
		n, err := scanOne(ctx, run, in, func(h ports.Hit) bool {
			if scanQuiet {
				return false
			}
			if !scanCount {
				out.WriteString(formatHit(p, label, h, scanOneBased))
			}
			return true
		})
		total += n
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return exitError{2}
			}
			out.Flush()
			fmt.Fprintf(os.Stderr, "acmatch: %s: %v\n", displayName(in), err)
			failed = true
			continue
		}
		if scanQuiet && total > 0 {
			return exitError{0}
		}
		if scanCount {
			out.WriteString(formatCount(p, label, n))
		}
	}

	switch {
	case failed:
		return exitError{2}
	case total > 0:
		return nil
	default:
		return exitError{1}
	}
}

func scanOne(ctx context.Context, run scanner, in scanInput, fn func(ports.Hit) bool) (int, error) {
	rc, err := in.open()
	if err != nil {
		return 0, err
	}
	defer rc.Close()
	n := 0
	err = run(ctx, rc, func(h ports.Hit) bool {
		n++
		return fn(h)
	})
	if errors.Is(err, ahocorasick.ErrStopped) {
		err = nil
	}
	return n, err
}

func displayName(in scanInput) string {
	if in.name == "" {
		return "(stdin)"
	}
	return in.name
}

// localScanner builds the automaton in-process.
func localScanner(root string, settings app.Settings) (scanner, error) {
	patterns, allowEmpty, err := scanPatterns.load(root, settings)
	if err != nil {
		return nil, err
	}
	if scanRunes || settings.Symbols == app.SymbolsRunes {
		var opts []automaton.Option
		if allowEmpty {
			opts = append(opts, automaton.AllowEmpty())
		}
		a, err := automaton.BuildStrings(patterns, opts...)
		if err != nil {
			return nil, err
		}
		return runeScanner(a), nil
	}

	m := ahocorasick.NewMatcher(allowEmpty)
	if err := m.Rebuild(patterns); err != nil {
		return nil, err
	}
	return func(ctx context.Context, r io.Reader, fn func(ports.Hit) bool) error {
		_, err := m.ScanReader(ctx, r, scanChunkSize, fn)
		return err
	}, nil
}

// runeScanner streams decoded runes through a rune automaton, so offsets
// count characters.
func runeScanner(a *automaton.Automaton[rune]) scanner {
	return func(ctx context.Context, r io.Reader, fn func(ports.Hit) bool) error {
		var readErr error
		br := bufio.NewReaderSize(r, scanChunkSize)
		for m := range a.ScanSeq(readRunes(ctx, br, &readErr)) {
			h := ports.Hit{Pattern: string(a.Pattern(m.Pattern)), ID: m.Pattern, Start: m.Start, End: m.End}
			if !fn(h) {
				return ahocorasick.ErrStopped
			}
		}
		return readErr
	}
}

func readRunes(ctx context.Context, br *bufio.Reader, errp *error) iter.Seq[rune] {
	return func(yield func(rune) bool) {
		for i := 0; ; i++ {
			if i%4096 == 0 {
				if err := ctx.Err(); err != nil {
					*errp = err
					return
				}
			}
			r, _, err := br.ReadRune()
			if err != nil {
				if err != io.EOF {
					*errp = err
				}
				return
			}
			if !yield(r) {
				return
			}
		}
	}
}

// daemonScanner sends each input to the running daemon. The daemon scans
// bytes with its own pattern source; pattern flags are rejected.
func daemonScanner(root string) (scanner, error) {
	if scanRunes {
		return nil, errors.New("--runes is not supported with --daemon (the daemon scans bytes)")
	}
	if len(scanPatterns.inline) > 0 || scanPatterns.file != "" || scanPatterns.set != "" {
		return nil, errors.New("pattern flags cannot be combined with --daemon; restart the daemon with the new patterns")
	}
	client := socket.NewClient(socket.SocketPath(root))
	if !client.Ping() {
		return nil, errors.New("daemon is not running (start it with: acmatch daemon start)")
	}
	return func(ctx context.Context, r io.Reader, fn func(ports.Hit) bool) error {
		content, err := io.ReadAll(r)
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if len(content) > socket.MaxScanContent {
			return fmt.Errorf("input is %d bytes, over the daemon limit of %d; scan it without --daemon", len(content), socket.MaxScanContent)
		}
		stopped := false
		_, err = client.ScanStream(socket.ScanParams{Content: content}, func(h ports.Hit) bool {
			if !fn(h) {
				stopped = true
				return false
			}
			return true
		})
		if err != nil {
			return err
		}
		if stopped {
			return ahocorasick.ErrStopped
		}
		return nil
	}, nil
}
