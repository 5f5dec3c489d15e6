package app

import (
	"os"
	"path/filepath"
)

// Paths holds all resolved filesystem paths for the .acmatch/ project directory.
// All fields are pre-computed at construction.
type Paths struct {
	Root   string // .acmatch/
	DB     string // .acmatch/acmatch.db
	Config string // .acmatch/config.yaml

	LogDir    string // .acmatch/log/
	DaemonLog string // .acmatch/log/daemon.log

	RunDir  string // .acmatch/run/
	PIDFile string // .acmatch/run/daemon.pid
}

// NewPaths constructs all resolved paths from a project root directory.
func NewPaths(projectRoot string) *Paths {
	root := filepath.Join(projectRoot, ".acmatch")
	return &Paths{
		Root:   root,
		DB:     filepath.Join(root, "acmatch.db"),
		Config: filepath.Join(root, "config.yaml"),

		LogDir:    filepath.Join(root, "log"),
		DaemonLog: filepath.Join(root, "log", "daemon.log"),

		RunDir:  filepath.Join(root, "run"),
		PIDFile: filepath.Join(root, "run", "daemon.pid"),
	}
}

// EnsureDirs creates all subdirectories under .acmatch/. Idempotent.
func (p *Paths) EnsureDirs() error {
	for _, d := range []string{p.Root, p.LogDir, p.RunDir} {
		if err := os.MkdirAll(d, 0755); err != nil {
			return err
		}
	}
	return nil
}

// CleanEphemeral removes ephemeral runtime files.
// Called on clean daemon shutdown.
func (p *Paths) CleanEphemeral() {
	os.Remove(p.PIDFile)
}
