package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"

	"github.com/MikhailDrugie/se-attack-modeling/internal/api"
	"github.com/MikhailDrugie/se-attack-modeling/internal/apierr"
	"github.com/MikhailDrugie/se-attack-modeling/internal/model"
)

var (
	createUserName  string
	createUserEmail string
	createUserRole  string
)

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "Manage platform users (admin only)",
}

var usersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List users",
	RunE:  runUsersList,
}

var usersCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a user",
	RunE:  runUsersCreate,
}

var usersDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Deactivate a user",
	Args:  cobra.ExactArgs(1),
	RunE:  runUsersDelete,
}

func init() {
	rootCmd.AddCommand(usersCmd)
	usersCmd.AddCommand(usersListCmd, usersCreateCmd, usersDeleteCmd)

	usersCreateCmd.Flags().StringVar(&createUserName, "username", "", "Username (prompted when omitted)")
	usersCreateCmd.Flags().StringVar(&createUserEmail, "email", "", "Email address")
	usersCreateCmd.Flags().StringVar(&createUserRole, "role", "", "Role: dev, analyst or admin")
}

var adminOnly = []model.Role{model.RoleAdmin}

func runUsersList(cmd *cobra.Command, args []string) error {
	sess, client, err := newSessionFunc()
	if err != nil {
		return err
	}
	if _, err := requireRole(cmd, sess, adminOnly); err != nil {
		return err
	}

	users, err := client.ListUsers(cmd.Context(), 0, 0)
	if err != nil {
		return fmt.Errorf("listing users: %w", err)
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tUSERNAME\tROLE\tACTIVE\tCREATED")
	for _, u := range users {
		active := "yes"
		if !u.IsActive {
			active = "no"
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n",
			u.ID, u.Username, u.Role, active,
			u.CreatedAt.Local().Format("2006-01-02"))
	}
	return w.Flush()
}

func runUsersCreate(cmd *cobra.Command, args []string) error {
	sess, client, err := newSessionFunc()
	if err != nil {
		return err
	}
	if _, err := requireRole(cmd, sess, adminOnly); err != nil {
		return err
	}

	username := createUserName
	if username == "" {
		if err := askOneFunc(&survey.Input{Message: "Username:"}, &username, survey.WithValidator(survey.Required)); err != nil {
			return err
		}
	}

	roleName := createUserRole
	if roleName == "" {
		if err := askOneFunc(&survey.Select{
			Message: "Role:",
			Options: []string{"dev", "analyst", "admin"},
			Default: "dev",
		}, &roleName); err != nil {
			return err
		}
	}
	role, ok := model.ParseRole(roleName)
	if !ok {
		return fmt.Errorf("unknown role %q (want dev, analyst or admin)", roleName)
	}

	var password string
	if err := askOneFunc(&survey.Password{Message: "Password:"}, &password, survey.WithValidator(survey.Required)); err != nil {
		return err
	}

	user, err := client.CreateUser(cmd.Context(), api.CreateUserRequest{
		Username: username,
		Email:    createUserEmail,
		Password: password,
		Role:     role,
	})
	if err != nil {
		return fmt.Errorf("creating user: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "User %d (%s, %s) created\n", user.ID, user.Username, user.Role)
	return nil
}

func runUsersDelete(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	sess, client, err := newSessionFunc()
	if err != nil {
		return err
	}
	self, err := requireRole(cmd, sess, adminOnly)
	if err != nil {
		return err
	}
	if self.ID == id {
		return fmt.Errorf("cannot delete your own account")
	}

	confirmed := false
	if err := askOneFunc(&survey.Confirm{
		Message: fmt.Sprintf("Deactivate user %d?", id),
		Default: false,
	}, &confirmed); err != nil {
		return err
	}
	if !confirmed {
		fmt.Fprintln(cmd.OutOrStdout(), "Cancelled.")
		return nil
	}

	if err := client.DeleteUser(cmd.Context(), id); err != nil {
		if apierr.IsNotFound(err) {
			return fmt.Errorf("user %d not found", id)
		}
		return fmt.Errorf("deleting user: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "User %d deactivated\n", id)
	return nil
}
