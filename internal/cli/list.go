package cli

import (
	"fmt"
	"strconv"

	"cache-viewer/internal/cacheclient"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Print the remote cache contents once",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		client, err := cacheclient.New(cfg.RemoteURL,
			cacheclient.WithTimeout(cfg.RequestTimeout),
			cacheclient.WithLogger(log),
		)
		if err != nil {
			return err
		}
		entries, err := client.List(cmd.Context())
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No entries in cache.")
			return nil
		}

		t := table.New().
			Border(lipgloss.NormalBorder()).
			Headers("Key", "Value", "Expiry (s)")
		for _, e := range entries {
			t.Row(e.Key, e.Value, strconv.FormatInt(e.Expiry, 10))
		}
		fmt.Fprintln(cmd.OutOrStdout(), t.String())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
}
