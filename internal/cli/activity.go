package cli

import (
	"errors"
	"fmt"
	"time"

	"cache-viewer/internal/activity"
	"cache-viewer/internal/database"
	"cache-viewer/internal/models"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
)

var activityLimit int

var activityCmd = &cobra.Command{
	Use:   "activity",
	Short: "Show recent operator actions from the journal",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if !cfg.JournalEnabled {
			return errors.New("activity journal is disabled (CACHE_VIEWER_JOURNAL=false)")
		}
		db, err := database.Open(cfg.JournalPath)
		if err != nil {
			return err
		}
		defer database.Close(db)

		activities, err := activity.NewRepository(db).Recent(cmd.Context(), activityLimit)
		if err != nil {
			return err
		}
		if len(activities) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No activity recorded yet.")
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), renderActivity(activities))
		return nil
	},
}

func renderActivity(activities []models.Activity) string {
	rows := make([][]string, 0, len(activities))
	for _, a := range activities {
		rows = append(rows, []string{
			a.CreatedAt.Local().Format(time.DateTime),
			string(a.Kind),
			a.Key,
			string(a.Outcome),
			a.Message,
		})
	}
	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers("Time", "Intent", "Key", "Outcome", "Message").
		Rows(rows...).
		String()
}

func init() {
	activityCmd.Flags().IntVarP(&activityLimit, "limit", "n", activity.DefaultLimit, "number of records to show")
	rootCmd.AddCommand(activityCmd)
}
