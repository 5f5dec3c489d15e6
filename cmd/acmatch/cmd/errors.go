package cmd

import (
	"errors"
	"fmt"
	"os"

	bolt "go.etcd.io/bbolt"

	"github.com/corey/acmatch/internal/adapters/socket"
)

// isDBLockError returns true if the error chain contains a bbolt lock timeout.
// bbolt gives up with ErrTimeout when it cannot acquire the file lock within
// the configured deadline.
func isDBLockError(err error) bool {
	return err != nil && errors.Is(err, bolt.ErrTimeout)
}

// diagnoseDBLock checks the daemon state and returns actionable guidance
// when a bbolt open fails due to lock contention.
func diagnoseDBLock(root string) string {
	sockPath := socket.SocketPath(root)
	client := socket.NewClient(sockPath)

	if client.Ping() {
		return "pattern database is busy (the daemon is reloading a set)\n" +
			"  → retry in a moment"
	}

	if _, err := os.Stat(sockPath); err == nil {
		return fmt.Sprintf("pattern database is locked and the daemon socket is not responding\n"+
			"  → a previous daemon may have crashed\n"+
			"  → find the process:  ps aux | grep 'acmatch daemon'\n"+
			"  → kill it:           kill <PID>\n"+
			"  → clean up socket:   rm %s", sockPath)
	}

	return "pattern database is locked by another process\n" +
		"  → find the process:  ps aux | grep 'acmatch'\n" +
		"  → kill it:           kill <PID>\n" +
		"  → then retry your command"
}

// withLockHint adds diagnoseDBLock's guidance to a lock timeout error.
func withLockHint(root string, err error) error {
	if isDBLockError(err) {
		return fmt.Errorf("%w\n%s", err, diagnoseDBLock(root))
	}
	return err
}
