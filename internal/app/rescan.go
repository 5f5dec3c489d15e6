package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/corey/acmatch/internal/adapters/ahocorasick"
	"github.com/corey/acmatch/internal/ports"
	"go.uber.org/zap"
)

// FileHits is the result of scanning one file.
type FileHits struct {
	Path string
	Hits []ports.Hit
	Err  error
}

// Rescanner rescans files under a directory whenever they change and
// reports every file's full hit list.
type Rescanner struct {
	matcher   *ahocorasick.Matcher
	watcher   ports.Watcher
	chunkSize int
	log       *zap.Logger

	mu   sync.Mutex // serializes report calls
	seen map[string]int
}

// NewRescanner creates a rescanner. A nil logger disables logging.
func NewRescanner(m *ahocorasick.Matcher, w ports.Watcher, chunkSize int, log *zap.Logger) *Rescanner {
	if log == nil {
		log = zap.NewNop()
	}
	return &Rescanner{
		matcher:   m,
		watcher:   w,
		chunkSize: chunkSize,
		log:       log,
		seen:      make(map[string]int),
	}
}

// Run scans every file under root once, then rescans changed files until
// ctx is done. report is called for each scanned file, serially.
func (r *Rescanner) Run(ctx context.Context, root string, report func(FileHits)) error {
	err := filepath.WalkDir(root, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if p != root && skipDir(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		r.scanFile(ctx, p, report)
		return nil
	})
	if err != nil {
		return fmt.Errorf("initial scan: %w", err)
	}

	if err := r.watcher.Watch(root, func(p string) {
		r.scanFile(ctx, p, report)
	}); err != nil {
		return fmt.Errorf("watch %s: %w", root, err)
	}
	r.mu.Lock()
	files := len(r.seen)
	r.mu.Unlock()
	r.log.Info("watching", zap.String("root", root), zap.Int("files", files))

	<-ctx.Done()
	return r.watcher.Stop()
}

// ScanFile scans one file with the current automaton.
func (r *Rescanner) ScanFile(ctx context.Context, path string) ([]ports.Hit, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var hits []ports.Hit
	_, err = r.matcher.ScanReader(ctx, f, r.chunkSize, func(h ports.Hit) bool {
		hits = append(hits, h)
		return true
	})
	return hits, err
}

func (r *Rescanner) scanFile(ctx context.Context, path string, report func(FileHits)) {
	hits, err := r.ScanFile(ctx, path)
	if errors.Is(err, os.ErrNotExist) {
		r.mu.Lock()
		delete(r.seen, path)
		r.mu.Unlock()
		r.log.Debug("file removed", zap.String("path", path))
		return
	}
	if errors.Is(err, context.Canceled) {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.seen[path] = len(hits)
	if err != nil {
		r.log.Warn("scan failed", zap.String("path", path), zap.Error(err))
	} else {
		r.log.Debug("scanned", zap.String("path", path), zap.Int("hits", len(hits)))
	}
	report(FileHits{Path: path, Hits: hits, Err: err})
}

func skipDir(name string) bool {
	switch name {
	case ".git", ".hg", ".svn", ".acmatch", "node_modules":
		return true
	}
	return false
}
