// Package cli provides Cobra commands for the cache viewer.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"cache-viewer/internal/config"
	"cache-viewer/internal/logging"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	cfg      config.Config
	log      = zerolog.Nop()
	closeLog = func() error { return nil }

	rootCmd = &cobra.Command{
		Use:   "viewer",
		Short: "Live view of a remote TTL cache service",
		Long: `viewer keeps a local, periodically refreshed view of a remote cache
service and lets an operator add, delete and clear entries.

Without a subcommand it opens the terminal UI. Settings come from
CACHE_VIEWER_* environment variables.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			switch cmd.Name() {
			case "help", "completion":
				return nil
			}

			var err error
			cfg, err = loadConfig(cmd)
			if err != nil {
				return err
			}
			log, closeLog, err = logging.Open(cfg.LogLevel, cfg.LogFormat, cfg.LogFile, logFallback(cmd))
			if err != nil {
				return fmt.Errorf("initialize logging: %w", err)
			}
			return nil
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			_ = closeLog()
		},
		RunE: runTUI,
	}
)

// logFallback is where logs go without a log file. The terminal UI owns stdout
// and stderr, so it discards them.
func logFallback(cmd *cobra.Command) io.Writer {
	if cmd.Parent() == nil || cmd.Name() == "tui" {
		return nil
	}
	return os.Stderr
}

// loadConfig reads the environment, then applies flags the operator set explicitly.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	var c config.Config
	if err := config.ParseEnv(&c); err != nil {
		return config.Config{}, err
	}
	flags := cmd.Flags()
	if flags.Changed("remote") {
		c.RemoteURL, _ = flags.GetString("remote")
	}
	if flags.Changed("refresh-interval") {
		c.RefreshInterval, _ = flags.GetDuration("refresh-interval")
	}
	if flags.Changed("no-journal") {
		noJournal, _ := flags.GetBool("no-journal")
		c.JournalEnabled = !noJournal
	}
	if err := c.Validate(); err != nil {
		return config.Config{}, err
	}
	return c, nil
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.String("remote", "", "remote cache service base URL (overrides CACHE_VIEWER_REMOTE_URL)")
	pf.Duration("refresh-interval", 0, "polling interval (overrides CACHE_VIEWER_REFRESH_INTERVAL)")
	pf.Bool("no-journal", false, "disable the activity journal")
}

// Execute runs the root command until it returns or ctx is done.
func Execute(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
