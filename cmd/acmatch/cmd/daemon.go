package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/corey/acmatch/internal/adapters/socket"
	"github.com/corey/acmatch/internal/app"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var daemonPatterns patternFlags

var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Manage the scan daemon",
}

var daemonStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the daemon in the foreground",
	Long: `Builds the automaton once and serves scans over a Unix socket until
interrupted or stopped. With -f the pattern file is watched and the automaton
is rebuilt when it changes.`,
	RunE: runDaemonStart,
}

var daemonStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the daemon",
	RunE:  runDaemonStop,
}

var daemonReloadCmd = &cobra.Command{
	Use:   "reload",
	Short: "Rebuild the daemon's automaton from its pattern source",
	RunE:  runDaemonReload,
}

func init() {
	daemonPatterns.register(daemonStartCmd)
	daemonCmd.AddCommand(daemonStartCmd)
	daemonCmd.AddCommand(daemonStopCmd)
	daemonCmd.AddCommand(daemonReloadCmd)
}

func runDaemonStart(cmd *cobra.Command, args []string) error {
	root := projectRoot()
	sockPath := socket.SocketPath(root)

	// Check if already running
	client := socket.NewClient(sockPath)
	if client.Ping() {
		fmt.Println("⚡ daemon already running")
		return nil
	}

	settings, err := loadSettings(root)
	if err != nil {
		return err
	}
	src, err := daemonPatterns.source(settings)
	if err != nil {
		return err
	}
	if src.File == "-" {
		return fmt.Errorf("the daemon cannot read patterns from stdin; use a file or a set")
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

	a, err := app.New(app.Config{
		ProjectRoot: root,
		Source:      src,
		Settings:    settings,
		Logger:      log,
	})
	if err != nil {
		log.Error("init failed", zap.Error(err))
		return fmt.Errorf("init: %w", withLockHint(root, err))
	}

	if err := a.Start(); err != nil {
		return err
	}

	fmt.Printf("⚡ acmatch daemon started at %s │ %d patterns │ log %s\n",
		sockPath, len(a.Matcher.Patterns()), paths.DaemonLog)

	// Wait for a signal or a remote shutdown request.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigCh:
	case <-a.Server.ShutdownCh():
	}

	fmt.Println("\n⚡ shutting down...")
	return a.Stop()
}

func runDaemonStop(cmd *cobra.Command, args []string) error {
	root := projectRoot()
	sockPath := socket.SocketPath(root)
	client := socket.NewClient(sockPath)

	if !client.Ping() {
		fmt.Println("⚡ daemon is not running")
		return nil
	}

	if err := client.Shutdown(); err != nil {
		return err
	}

	fmt.Println("⚡ daemon stopped")
	return nil
}

func runDaemonReload(cmd *cobra.Command, args []string) error {
	client := socket.NewClient(socket.SocketPath(projectRoot()))
	if !client.Ping() {
		fmt.Println("⚡ daemon is not running")
		return nil
	}
	res, err := client.Reload()
	if err != nil {
		return err
	}
	fmt.Printf("⚡ reloaded %s │ %d patterns │ %d states │ %s\n",
		res.Source, res.PatternCount, res.NodeCount, res.Elapsed)
	return nil
}
