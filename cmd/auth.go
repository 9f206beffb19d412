package main

import (
	"fmt"
	"os"

	"github.com/hondurasarchive/backend/internal/client"
	"github.com/hondurasarchive/backend/internal/models"
	"github.com/spf13/cobra"
)

var (
	loginUser     string
	loginPassword string

	signupUsername string
	signupEmail    string
	signupContact  string
	signupRole     string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in and store the session",
	RunE: func(cmd *cobra.Command, args []string) error {
		if loginUser == "" {
			return fmt.Errorf("--user is required")
		}

		password := loginPassword
		if password == "" {
			var err error
			password, err = promptPassword(os.Stdin, cmd.ErrOrStderr(), "Password: ")
			if err != nil {
				return err
			}
		}

		session, err := newAPIClient().Login(cmd.Context(), loginUser, password)
		if err != nil {
			return err
		}

		store, err := sessionStore()
		if err != nil {
			return err
		}
		if err := store.Save(session); err != nil {
			return err
		}

		return render(cmd.OutOrStdout(), session.User, func() string {
			return fmt.Sprintf("logged in as %s (%s)", session.User.Username, session.User.Role)
		})
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored session",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := sessionStore()
		if err != nil {
			return err
		}
		if err := store.Clear(); err != nil {
			return err
		}
		cmd.Println("logged out")
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the user of the stored session",
	RunE: func(cmd *cobra.Command, args []string) error {
		session, err := loadSession()
		if err != nil {
			return err
		}
		return render(cmd.OutOrStdout(), session.User, func() string {
			return fmt.Sprintf("%s (id %d, role %s)", session.User.Username, session.User.ID, session.User.Role)
		})
	},
}

var signupCmd = &cobra.Command{
	Use:   "signup",
	Short: "Create an account",
	Long: `Creates an account. The first account of a fresh archive becomes admin,
later ones are visitors unless a logged in admin passes --role.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		password, err := promptPassword(os.Stdin, cmd.ErrOrStderr(), "Password: ")
		if err != nil {
			return err
		}

		// Only an admin session can grant a role, anonymous signup otherwise
		var session *client.Session
		if signupRole != "" {
			if session, err = loadSession(); err != nil {
				return err
			}
		}

		user, err := newAPIClient().Signup(cmd.Context(), session, &models.SignupRequest{
			Username: signupUsername,
			Email:    signupEmail,
			Password: password,
			Contact:  signupContact,
			Role:     signupRole,
		})
		if err != nil {
			return clearOnUnauthorized(err)
		}

		return render(cmd.OutOrStdout(), user, func() string {
			return fmt.Sprintf("created user %s (id %d, role %s)", user.Username, user.ID, user.Role)
		})
	},
}

func init() {
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)
	rootCmd.AddCommand(signupCmd)

	loginCmd.Flags().StringVarP(&loginUser, "user", "u", "", "Username or email")
	loginCmd.Flags().StringVar(&loginPassword, "password", "", "Password (prompted when omitted)")

	signupCmd.Flags().StringVar(&signupUsername, "username", "", "Username")
	signupCmd.Flags().StringVar(&signupEmail, "email", "", "Email")
	signupCmd.Flags().StringVar(&signupContact, "contact", "", "Contact phone or WhatsApp")
	signupCmd.Flags().StringVar(&signupRole, "role", "", "Role to grant (admin session required)")
}
