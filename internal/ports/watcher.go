package ports

// Watcher monitors files or directories for changes. The adapter (fsnotify)
// filters out editor noise and VCS directories before invoking onChange.
// Only one Watch call should be active at a time.
type Watcher interface {
	// Watch starts monitoring path. A directory is watched recursively; a
	// regular file is watched through its parent directory and only its own
	// events are reported. onChange is called with the absolute path of each
	// changed file and may be invoked from any goroutine.
	Watch(path string, onChange func(filePath string)) error

	// Stop ends monitoring and releases all resources. After Stop returns,
	// no further onChange calls will fire. Safe to call multiple times.
	Stop() error
}
