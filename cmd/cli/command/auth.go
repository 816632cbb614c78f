package command

import (
	"errors"
	"fmt"
	"os"
	"time"

	"movietracker/cmd/cli/authentication"
	"movietracker/cmd/cli/command/client"
	"movietracker/internal/middleware/auth"

	"github.com/spf13/cobra"
)

// auth.go handles login, logout and identity commands.

// authCmd represents the auth command for authentication related subcommands
var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Authentication commands",
	Long:  `Sign in to the catalog API as the administrator, sign out, or show who you are.`,
}

// loginCmd represents the login command
var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in with the administrator email and password",
	RunE: func(cmd *cobra.Command, args []string) error {
		email, _ := cmd.Flags().GetString("email")
		password, _ := cmd.Flags().GetString("password")
		if password == "" {
			password = os.Getenv("MOVIETRACKER_PASSWORD")
		}
		if password == "" {
			return errors.New("password is required (--password or MOVIETRACKER_PASSWORD)")
		}

		httpClient := client.NewHTTPClient(apiURL)
		response, err := httpClient.Login(cmd.Context(), email, password)
		if err != nil {
			return fmt.Errorf("login process failed: %w", err)
		}

		err = authentication.StoreTokens(&authentication.StoredCredentials{
			AccessToken: response.AccessToken,
			Email:       email,
			APIURL:      apiURL,
			ExpiresAt:   time.Now().Add(time.Duration(response.ExpiresIn) * time.Second).Unix(),
		})
		if err != nil {
			return fmt.Errorf("save token: %w", err)
		}

		fmt.Println("✓ Successfully logged in!")
		return nil
	},
}

// logoutCmd represents the logout command
var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the saved token",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := authentication.DeleteTokens(); err != nil {
			return err
		}
		fmt.Println("✓ Successfully logged out.")
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the identity behind the current token",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient()
		if err != nil {
			return err
		}
		me, err := c.Me(cmd.Context())
		if err != nil {
			return err
		}
		role := "viewer"
		if me.IsAdmin {
			role = "administrator"
		}
		fmt.Printf("%s (%s) - %s\n", me.Email, me.UserID, role)
		return nil
	},
}

// hashPasswordCmd prints a bcrypt hash suitable for ADMIN_PASSWORD_HASH.
var hashPasswordCmd = &cobra.Command{
	Use:   "hash-password PASSWORD",
	Short: "Print a bcrypt hash for ADMIN_PASSWORD_HASH",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		hash, err := auth.HashPassword(args[0])
		if err != nil {
			return err
		}
		fmt.Println(hash)
		return nil
	},
}

// init function to add auth commands to root command
func init() {
	authCmd.AddCommand(loginCmd, logoutCmd, whoamiCmd)

	loginCmd.Flags().StringP("email", "e", "", "Administrator email")
	loginCmd.Flags().StringP("password", "p", "", "Administrator password")
	loginCmd.MarkFlagRequired("email")
}
