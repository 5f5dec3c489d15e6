package cmd

import (
	"fmt"
	"os"

	"github.com/corey/acmatch/internal/adapters/socket"
	"github.com/corey/acmatch/internal/app"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var configInit bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show configuration",
	Long:  "Shows project root, DB path, socket path, settings, and daemon status. No daemon required.",
	RunE:  runConfig,
}

func init() {
	configCmd.Flags().BoolVar(&configInit, "init", false, "Write the default .acmatch/config.yaml if missing")
}

func runConfig(cmd *cobra.Command, args []string) error {
	root := projectRoot()
	paths := app.NewPaths(root)
	sockPath := socket.SocketPath(root)

	if configInit {
		if err := paths.EnsureDirs(); err != nil {
			return err
		}
		if _, err := os.Stat(paths.Config); os.IsNotExist(err) {
			if err := app.DefaultSettings().Save(paths.Config); err != nil {
				return err
			}
			fmt.Printf("⚡ wrote %s\n", paths.Config)
		}
	}

	settings, err := loadSettings(root)
	if err != nil {
		return err
	}

	client := socket.NewClient(sockPath)
	daemonStatus := fmt.Sprintf("%s✗ not running%s", colorYellow, colorReset)
	if client.Ping() {
		daemonStatus = fmt.Sprintf("%s✓ running%s", colorGreen, colorReset)
	}

	configState := paths.Config
	if _, err := os.Stat(paths.Config); err != nil {
		configState += fmt.Sprintf(" %s(defaults)%s", colorGray, colorReset)
	}

	fmt.Printf("%s⚡ acmatch config%s\n", colorBold, colorReset)
	fmt.Printf("  Root:       %s\n", root)
	fmt.Printf("  Config:     %s\n", configState)
	fmt.Printf("  DB:         %s\n", paths.DB)
	fmt.Printf("  Log:        %s\n", paths.DaemonLog)
	fmt.Printf("  Socket:     %s\n", sockPath)
	fmt.Printf("  Daemon:     %s\n", daemonStatus)

	data, err := yaml.Marshal(settings)
	if err != nil {
		return err
	}
	fmt.Printf("\n%s%s%s", colorGray, data, colorReset)
	return nil
}
