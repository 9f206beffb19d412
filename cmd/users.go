package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/hondurasarchive/backend/internal/models"
	"github.com/spf13/cobra"
)

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "List users (admin)",
	RunE: func(cmd *cobra.Command, args []string) error {
		session, err := loadSession()
		if err != nil {
			return err
		}

		users, err := newAPIClient().ListUsers(cmd.Context(), session)
		if err != nil {
			return clearOnUnauthorized(err)
		}

		return render(cmd.OutOrStdout(), users, func() string {
			var b strings.Builder
			tw := tabwriter.NewWriter(&b, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tUSERNAME\tEMAIL\tROLE\tCONTACT")
			for _, u := range users {
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", u.ID, u.Username, u.Email, u.Role, u.Contact)
			}
			tw.Flush()
			return strings.TrimRight(b.String(), "\n")
		})
	},
}

var setRoleCmd = &cobra.Command{
	Use:   "set-role <user-id> <role>",
	Short: "Change the role of a user (admin)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseIDArg(args[0])
		if err != nil {
			return err
		}
		role, ok := models.ParseRole(args[1])
		if !ok {
			return fmt.Errorf("unknown role %q, expected admin, client or visitor", args[1])
		}

		session, err := loadSession()
		if err != nil {
			return err
		}

		roleName := string(role)
		user, err := newAPIClient().UpdateUser(cmd.Context(), session, id, &models.UpdateUserRequest{Role: &roleName})
		if err != nil {
			return clearOnUnauthorized(err)
		}

		return render(cmd.OutOrStdout(), user, func() string {
			return fmt.Sprintf("%s is now %s", user.Username, user.Role)
		})
	},
}

func init() {
	rootCmd.AddCommand(usersCmd)
	rootCmd.AddCommand(setRoleCmd)
}
