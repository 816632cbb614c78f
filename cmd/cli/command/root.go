package command

// root.go defines the root command for the movietracker CLI and its global flags.

import (
	"errors"
	"fmt"
	"os"
	"time"

	"movietracker/cmd/cli/authentication"
	"movietracker/cmd/cli/command/client"

	"github.com/spf13/cobra"
)

var (
	apiURL string // Global flag for API server URL
	token  string // authentication token (jwt), overrides the keyring
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "movietracker",
	Short: "movietracker - movie collection catalog CLI",
	Long: `movietracker talks to the movie collection catalog API. Use it to:
- Browse, filter and sort the collection
- Add and edit items (administrator)
- Mark items as watched (administrator)
- Manage the films bundled in a box set (administrator)

Use "movietracker command --help" to see all available commands.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err) // Print error to standard error
		os.Exit(1)
	}
}

func init() {
	defaultAPI := os.Getenv("MOVIETRACKER_API")
	if defaultAPI == "" {
		defaultAPI = "http://localhost:8080"
	}

	// Global persistent flags = available to all subcommands
	rootCmd.PersistentFlags().StringVar(&apiURL, "api", defaultAPI, "API server URL")
	rootCmd.PersistentFlags().StringVar(&token, "token", "", "access token (defaults to the one saved by 'auth login')")

	rootCmd.AddCommand(authCmd, itemsCmd, titlesCmd, hashPasswordCmd)
}

// newClient returns an API client carrying the --token flag or the saved token.
func newClient() (*client.HTTPClient, error) {
	c := client.NewHTTPClient(apiURL)
	if token != "" {
		c.SetToken(token)
		return c, nil
	}

	creds, err := authentication.GetTokens()
	if errors.Is(err, authentication.ErrNoCredentials) {
		return c, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read saved token: %w", err)
	}
	if creds.ExpiresAt > 0 && time.Now().Unix() > creds.ExpiresAt {
		return nil, errors.New("saved token has expired, run 'movietracker auth login'")
	}
	c.SetToken(creds.AccessToken)
	return c, nil
}
