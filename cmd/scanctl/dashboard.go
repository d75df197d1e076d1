package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/MikhailDrugie/se-attack-modeling/internal/ui"
)

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Open the interactive dashboard",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDashboard(cmd)
	},
}

func init() {
	rootCmd.AddCommand(dashboardCmd)
}

func runDashboard(cmd *cobra.Command) error {
	sess, client, err := newSessionFunc()
	if err != nil {
		return err
	}

	// Best effort: an expired token just lands the dashboard on the
	// login view.
	if err := sess.Restore(cmd.Context()); err != nil {
		slog.Debug("session restore failed", "error", err)
	}

	hist := openHistory()
	if hist != nil {
		defer hist.Close()
	}

	if err := ui.Run(sess, client, hist); err != nil {
		return fmt.Errorf("dashboard: %w", err)
	}
	return nil
}
