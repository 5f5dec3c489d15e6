// acmatch finds every occurrence of many literal patterns in one pass.
// Single binary: local scans, named pattern sets, and an optional scan daemon.
package main

import (
	"os"

	"github.com/corey/acmatch/cmd/acmatch/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		if code := cmd.ExitCode(err); code >= 0 {
			os.Exit(code)
		}
		os.Exit(2)
	}
}
