// Package app wires together all adapters and domain logic.
// It provides lifecycle management for the acmatch daemon (create, start,
// reload, stop) and the directory rescan loop behind `acmatch watch`.
package app

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/corey/acmatch/internal/adapters/ahocorasick"
	fsw "github.com/corey/acmatch/internal/adapters/fsnotify"
	"github.com/corey/acmatch/internal/adapters/socket"
	"go.uber.org/zap"
)

// ErrSetNotFound is returned when a named pattern set does not exist.
var ErrSetNotFound = errors.New("pattern set not found")

// App is the scan daemon: one matcher shared by every socket connection,
// rebuilt from its Source on reload or when the pattern file changes.
type App struct {
	ProjectRoot string
	Paths       *Paths
	Settings    Settings

	Matcher *ahocorasick.Matcher
	Server  *socket.Server
	Watcher *fsw.Watcher // nil unless the source is a pattern file

	source  Source
	log     *zap.Logger
	mu      sync.Mutex // serializes reloads; scans never take it
	reloads int
}

// Config holds the parameters for New.
type Config struct {
	ProjectRoot string
	Source      Source
	Settings    Settings
	SocketPath  string      // default: socket.SocketPath(ProjectRoot)
	Logger      *zap.Logger // default: no-op
}

// New loads the pattern source, builds the first automaton, and prepares
// (but does not start) the socket server. A pattern set that fails to build
// is an error here; later reload failures keep the running automaton.
func New(cfg Config) (*App, error) {
	if cfg.ProjectRoot == "" {
		return nil, fmt.Errorf("project root required")
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.SocketPath == "" {
		cfg.SocketPath = socket.SocketPath(cfg.ProjectRoot)
	}

	a := &App{
		ProjectRoot: cfg.ProjectRoot,
		Paths:       NewPaths(cfg.ProjectRoot),
		Settings:    cfg.Settings,
		Matcher:     ahocorasick.NewMatcher(cfg.Settings.AllowEmptyPatterns),
		source:      cfg.Source,
		log:         cfg.Logger,
	}
	if _, err := a.rebuild(); err != nil {
		return nil, fmt.Errorf("build automaton: %w", err)
	}

	if cfg.Source.File != "" && cfg.Source.File != "-" {
		w, err := fsw.NewWatcher()
		if err != nil {
			return nil, fmt.Errorf("create watcher: %w", err)
		}
		a.Watcher = w
	}

	a.Server = socket.NewServer(a.Matcher, cfg.SocketPath, a, a.log)
	return a, nil
}

// Start begins serving and, for a pattern-file source, watching the file.
func (a *App) Start() error {
	if err := a.Server.Start(); err != nil {
		return fmt.Errorf("start server: %w", err)
	}
	if a.Watcher != nil {
		// Non-fatal: the daemon still serves, reload stays available.
		if err := a.Watcher.Watch(a.source.File, a.onPatternFileChanged); err != nil {
			a.log.Warn("pattern file watcher unavailable", zap.Error(err))
		}
	}
	if err := a.writePID(); err != nil {
		a.log.Warn("write pid file", zap.Error(err))
	}
	a.log.Info("daemon started",
		zap.String("source", a.source.String()),
		zap.Int("patterns", len(a.Matcher.Patterns())),
		zap.Int("nodes", a.Matcher.Automaton().NodeCount()))
	return nil
}

// Stop shuts down the watcher and server. Safe to call more than once.
func (a *App) Stop() error {
	if a.Watcher != nil {
		a.Watcher.Stop()
	}
	a.Server.Stop()
	a.Paths.CleanEphemeral()
	a.log.Info("daemon stopped")
	_ = a.log.Sync()
	return nil
}

// Reload rebuilds the automaton from the source. On failure the previous
// automaton keeps serving.
func (a *App) Reload() (socket.ReloadResult, error) {
	res, err := a.rebuild()
	if err != nil {
		a.log.Error("reload failed", zap.String("source", a.source.String()), zap.Error(err))
		return res, err
	}
	a.mu.Lock()
	a.reloads++
	a.mu.Unlock()
	a.log.Info("reloaded",
		zap.String("source", res.Source),
		zap.Int("patterns", res.PatternCount),
		zap.Int("nodes", res.NodeCount),
		zap.String("elapsed", res.Elapsed))
	return res, nil
}

// Source describes where the patterns come from.
func (a *App) Source() string {
	return a.source.String()
}

// Reloads returns the number of successful reloads since New.
func (a *App) Reloads() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.reloads
}

func (a *App) rebuild() (socket.ReloadResult, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	start := time.Now()
	patterns, setAllowsEmpty, err := a.source.Load(a.Paths.DB)
	if err != nil {
		return socket.ReloadResult{}, err
	}
	allowEmpty := a.Settings.AllowEmptyPatterns || setAllowsEmpty
	if err := a.Matcher.RebuildWithPolicy(patterns, allowEmpty); err != nil {
		return socket.ReloadResult{}, err
	}
	return socket.ReloadResult{
		Source:       a.source.String(),
		PatternCount: len(a.Matcher.Patterns()),
		NodeCount:    a.Matcher.Automaton().NodeCount(),
		Elapsed:      time.Since(start).String(),
	}, nil
}

// onPatternFileChanged rebuilds after the pattern file is written or
// replaced. A removed file (mid-save rename) is ignored until it reappears.
func (a *App) onPatternFileChanged(path string) {
	if _, err := os.Stat(path); err != nil {
		a.log.Debug("pattern file gone, waiting", zap.String("path", path))
		return
	}
	a.Reload()
}

func (a *App) writePID() error {
	if err := a.Paths.EnsureDirs(); err != nil {
		return err
	}
	return os.WriteFile(a.Paths.PIDFile, []byte(strconv.Itoa(os.Getpid())+"\n"), 0644)
}
