package cmd

import (
	"fmt"
	"os"

	"github.com/corey/acmatch/internal/app"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "acmatch",
	Short: "acmatch: multi-pattern literal search",
	Long:  "Finds every occurrence of every pattern (overlaps included) in a single pass over the input.",
}

// projectRoot returns the project root (cwd by default).
func projectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(2)
	}
	return dir
}

// loadSettings reads .acmatch/config.yaml under the project root.
func loadSettings(root string) (app.Settings, error) {
	return app.LoadSettings(app.NewPaths(root).Config)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(treeCmd)
	rootCmd.AddCommand(setCmd)
	rootCmd.AddCommand(daemonCmd)
	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(configCmd)
}
