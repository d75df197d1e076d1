package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/MikhailDrugie/se-attack-modeling/internal/apierr"
)

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the currently authenticated user",
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, _, err := newSessionFunc()
		if err != nil {
			return err
		}
		if err := sess.Restore(cmd.Context()); err != nil {
			if apierr.IsUnauthorized(err) {
				return fmt.Errorf("session expired; run 'scanctl login'")
			}
			return err
		}
		user, ok := sess.CurrentUser()
		if !ok {
			return fmt.Errorf("not logged in; run 'scanctl login'")
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s (%s)\n", user.Username, user.Role)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(whoamiCmd)
}
