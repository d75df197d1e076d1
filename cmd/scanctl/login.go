package main

import (
	"errors"
	"fmt"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"

	"github.com/MikhailDrugie/se-attack-modeling/internal/apierr"
)

var loginUsername string

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Authenticate against the backend and store the session token",
	RunE:  runLogin,
}

func init() {
	rootCmd.AddCommand(loginCmd)
	loginCmd.Flags().StringVarP(&loginUsername, "username", "u", "", "Username (prompted when omitted)")
}

func runLogin(cmd *cobra.Command, args []string) error {
	sess, _, err := newSessionFunc()
	if err != nil {
		return err
	}

	username := loginUsername
	if username == "" {
		if err := askOneFunc(&survey.Input{Message: "Username:"}, &username, survey.WithValidator(survey.Required)); err != nil {
			return err // User cancelled
		}
	}

	var password string
	if err := askOneFunc(&survey.Password{Message: "Password:"}, &password, survey.WithValidator(survey.Required)); err != nil {
		return err // User cancelled
	}

	if err := sess.Login(cmd.Context(), username, password); err != nil {
		if errors.Is(err, apierr.ErrInvalidCredentials) {
			return fmt.Errorf("invalid username or password")
		}
		return fmt.Errorf("login failed: %w", err)
	}

	user, _ := sess.CurrentUser()
	fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s (%s)\n", user.Username, user.Role)
	return nil
}
