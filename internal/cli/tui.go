package cli

import (
	"cache-viewer/internal/app"
	"cache-viewer/internal/tui"

	"github.com/spf13/cobra"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Open the terminal UI (default)",
	Args:  cobra.NoArgs,
	RunE:  runTUI,
}

func runTUI(cmd *cobra.Command, _ []string) error {
	a, err := app.New(cfg, log)
	if err != nil {
		return err
	}
	defer a.Close()

	updates, cancel := a.Subscribe()
	defer cancel()

	return tui.Run(cmd.Context(), tui.Options{
		Intents: a.Orchestrator,
		Updates: updates,
		Stats:   a.Synchronizer,
		Remote:  cfg.RemoteURL,
	})
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}
