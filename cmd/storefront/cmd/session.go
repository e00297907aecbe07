package cmd

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/jrsteele09/go-storefront-client/guard"
	"github.com/jrsteele09/go-storefront-client/services"
	"github.com/spf13/cobra"
)

var (
	loginEmail    string
	loginPassword string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in and persist the session",
	RunE: func(cmd *cobra.Command, args []string) error {
		current.location.Visit(guard.LoginPath)
		password := loginPassword
		if password == "" {
			fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
			line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
			if err != nil && line == "" {
				return fmt.Errorf("read password: %w", err)
			}
			password = strings.TrimSpace(line)
		}
		u, err := current.svc.Users.Login(cmd.Context(), services.LoginInput{Email: loginEmail, Password: password})
		if err != nil {
			return err
		}
		current.location.Visit(guard.HomePath)
		fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s (%s)\n", u.Name, u.Role)
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and forget the session",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := current.svc.Users.Logout(cmd.Context()); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "backend logout failed: %v\n", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Signed out")
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the persisted session",
	RunE: func(cmd *cobra.Command, args []string) error {
		state := current.client.Session().State()
		if !state.IsAuthenticated {
			fmt.Fprintln(cmd.OutOrStdout(), "Not signed in")
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s <%s> role=%s\n", state.User.Name, state.User.Email, state.Role())
		return nil
	},
}

func init() {
	loginCmd.Flags().StringVarP(&loginEmail, "email", "e", "", "account e-mail")
	loginCmd.Flags().StringVarP(&loginPassword, "password", "p", "", "account password (prompted when empty)")
	_ = loginCmd.MarkFlagRequired("email")

	rootCmd.AddCommand(loginCmd, logoutCmd, whoamiCmd)
}
